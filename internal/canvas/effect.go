/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

// Effect regions do not paint their own pixels; they ask the context to
// transform what is already underneath them. Rendering backends that cannot
// do that (PDF) substitute a visible placeholder.

// BlurItem pixelates the region beneath its box.
type BlurItem struct {
	baseItem
}

func newBlurItem(p *Properties) *BlurItem {
	return &BlurItem{baseItem: baseItem{name: "blur", props: p}}
}

func (b *BlurItem) Draw(ctx RenderContext) { ctx.Blur(b.box.Normalized()) }

func (b *BlurItem) Save() Node { return newItemNode(b.name, b.box, b.props) }

func (b *BlurItem) Load(n Node) error { return loadItemNode(n, &b.baseItem) }

// MagnifierItem repaints its box with the area around its center enlarged.
type MagnifierItem struct {
	baseItem
	zoom float64
}

func newMagnifierItem(p *Properties) *MagnifierItem {
	return &MagnifierItem{baseItem: baseItem{name: "magnifier", props: p}, zoom: 2}
}

func (m *MagnifierItem) Draw(ctx RenderContext) {
	n := m.box.Normalized()
	ctx.Magnify(n, m.zoom)
	ctx.StrokeOval(n, m.props)
}

func (m *MagnifierItem) Save() Node {
	n := newItemNode(m.name, m.box, m.props)
	n.SetF("zoom", m.zoom)
	return n
}

func (m *MagnifierItem) Load(n Node) error {
	if z := n.F("zoom"); z > 0 {
		m.zoom = z
	}
	return loadItemNode(n, &m.baseItem)
}
