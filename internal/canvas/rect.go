/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

// RectItem draws an axis-aligned rectangle, stroked or filled.
type RectItem struct {
	baseItem
	filled bool
}

func newRectItem(p *Properties, filled bool) *RectItem {
	return &RectItem{baseItem: baseItem{name: "rectangle", props: p}, filled: filled}
}

func (r *RectItem) Draw(ctx RenderContext) {
	n := r.box.Normalized()
	if r.filled {
		ctx.FillRect(n, r.props)
	}
	ctx.StrokeRect(n, r.props)
}

func (r *RectItem) Save() Node {
	n := newItemNode(r.name, r.box, r.props)
	n.SetBool("filled", r.filled)
	return n
}

func (r *RectItem) Load(n Node) error {
	r.filled = n.Bool("filled")
	return loadItemNode(n, &r.baseItem)
}
