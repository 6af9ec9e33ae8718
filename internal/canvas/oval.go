/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import "goannotate/internal/geom"

// OvalItem draws the ellipse inscribed in its box, stroked or filled.
type OvalItem struct {
	baseItem
	filled bool
}

func newOvalItem(p *Properties, filled bool) *OvalItem {
	return &OvalItem{baseItem: baseItem{name: "oval", props: p}, filled: filled}
}

// HitTest uses the point-in-ellipse equation rather than the bounding box.
func (o *OvalItem) HitTest(p geom.Pt) bool {
	n := o.box.Normalized()
	rx, ry := n.W/2, n.H/2
	if rx == 0 || ry == 0 {
		return false
	}
	c := n.Center()
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

func (o *OvalItem) Draw(ctx RenderContext) {
	n := o.box.Normalized()
	if o.filled {
		ctx.FillOval(n, o.props)
	}
	ctx.StrokeOval(n, o.props)
}

func (o *OvalItem) Save() Node {
	n := newItemNode(o.name, o.box, o.props)
	n.SetBool("filled", o.filled)
	return n
}

func (o *OvalItem) Load(n Node) error {
	o.filled = n.Bool("filled")
	return loadItemNode(n, &o.baseItem)
}
