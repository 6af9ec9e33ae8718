/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"math"

	"goannotate/internal/geom"
)

// LineItem is a straight segment from the box origin to its far corner.
// The box is deliberately kept un-normalized so the two endpoints keep
// their identity across a drag. With arrow set, a head is drawn at the
// second endpoint.
type LineItem struct {
	baseItem
	arrow bool
}

func newLineItem(p *Properties, arrow bool) *LineItem {
	name := "line"
	if arrow {
		name = "arrow"
	}
	return &LineItem{baseItem: baseItem{name: name, props: p}, arrow: arrow}
}

func (l *LineItem) endpoints() (geom.Pt, geom.Pt) {
	return geom.Pt{X: l.box.X, Y: l.box.Y}, geom.Pt{X: l.box.X + l.box.W, Y: l.box.Y + l.box.H}
}

// HitTest measures the distance from p to the segment; the grab zone is the
// stroke width with a small minimum so hairlines stay clickable.
func (l *LineItem) HitTest(p geom.Pt) bool {
	a, b := l.endpoints()
	tol := math.Max(l.props.Width, 4)
	return distToSegment(p, a, b) <= tol
}

// Selectors places one handle on each endpoint.
func (l *LineItem) Selectors() []geom.Box {
	a, b := l.endpoints()
	s := SelectorSize
	return []geom.Box{
		geom.B(a.X-s/2, a.Y-s/2, s, s),
		geom.B(b.X-s/2, b.Y-s/2, s, s),
	}
}

// MoveSelector drags one endpoint; the other stays fixed. With lock the
// segment direction snaps to 45-degree steps around the fixed endpoint.
func (l *LineItem) MoveSelector(idx int, to geom.Pt, lock bool) {
	a, b := l.endpoints()
	var fixed geom.Pt
	switch idx {
	case 0:
		fixed = b
	case 1:
		fixed = a
	default:
		return
	}
	if lock {
		to = snapToOctant(fixed, to)
	}
	if idx == 0 {
		l.box = geom.Box{X: to.X, Y: to.Y, W: fixed.X - to.X, H: fixed.Y - to.Y}
	} else {
		l.box = geom.Box{X: fixed.X, Y: fixed.Y, W: to.X - fixed.X, H: to.Y - fixed.Y}
	}
}

func (l *LineItem) Draw(ctx RenderContext) {
	a, b := l.endpoints()
	ctx.StrokeLine(a, b, l.props)
	if l.arrow {
		ctx.FillPolygon(l.arrowHead(a, b), l.props)
	}
}

// arrowHead builds the head triangle at b, sized relative to stroke width.
func (l *LineItem) arrowHead(a, b geom.Pt) []geom.Pt {
	ang := math.Atan2(b.Y-a.Y, b.X-a.X)
	size := math.Max(4*l.props.Width, 10)
	const spread = math.Pi / 7
	return []geom.Pt{
		b,
		{X: b.X - size*math.Cos(ang-spread), Y: b.Y - size*math.Sin(ang-spread)},
		{X: b.X - size*math.Cos(ang+spread), Y: b.Y - size*math.Sin(ang+spread)},
	}
}

func (l *LineItem) Save() Node {
	a, b := l.endpoints()
	n := NewNode(l.name)
	n.SetF("x1", a.X)
	n.SetF("y1", a.Y)
	n.SetF("x2", b.X)
	n.SetF("y2", b.Y)
	saveProps(&n, l.props)
	return n
}

func (l *LineItem) Load(n Node) error {
	x1, y1 := n.F("x1"), n.F("y1")
	x2, y2 := n.F("x2"), n.F("y2")
	l.box = geom.Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
	return loadProps(n, &l.baseItem)
}

// distToSegment returns the distance from p to segment ab.
func distToSegment(p, a, b geom.Pt) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	len2 := dx*dx + dy*dy
	if len2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / len2
	t = math.Max(0, math.Min(1, t))
	cx, cy := a.X+t*dx, a.Y+t*dy
	return math.Hypot(p.X-cx, p.Y-cy)
}

// snapToOctant moves p onto the nearest 45-degree ray out of origin.
func snapToOctant(origin, p geom.Pt) geom.Pt {
	dx, dy := p.X-origin.X, p.Y-origin.Y
	r := math.Hypot(dx, dy)
	if r == 0 {
		return p
	}
	ang := math.Atan2(dy, dx)
	step := math.Pi / 4
	ang = math.Round(ang/step) * step
	return geom.Pt{X: origin.X + r*math.Cos(ang), Y: origin.Y + r*math.Sin(ang)}
}
