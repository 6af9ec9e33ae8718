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

// StarItem draws a five-pointed star inscribed in its box.
type StarItem struct {
	baseItem
	filled bool
}

func newStarItem(p *Properties, filled bool) *StarItem {
	return &StarItem{baseItem: baseItem{name: "star", props: p}, filled: filled}
}

// points returns the ten polygon vertices, alternating outer and inner
// radius, first point at twelve o'clock.
func (s *StarItem) points() []geom.Pt {
	n := s.box.Normalized()
	c := n.Center()
	rx, ry := n.W/2, n.H/2
	const inner = 0.382 // radius ratio of a regular pentagram
	pts := make([]geom.Pt, 0, 10)
	for i := 0; i < 10; i++ {
		ang := -math.Pi/2 + float64(i)*math.Pi/5
		f := 1.0
		if i%2 == 1 {
			f = inner
		}
		pts = append(pts, geom.Pt{
			X: c.X + rx*f*math.Cos(ang),
			Y: c.Y + ry*f*math.Sin(ang),
		})
	}
	return pts
}

func (s *StarItem) Draw(ctx RenderContext) {
	pts := s.points()
	if s.filled {
		ctx.FillPolygon(pts, s.props)
	}
	ctx.StrokePolygon(pts, s.props)
}

func (s *StarItem) Save() Node {
	n := newItemNode(s.name, s.box, s.props)
	n.SetBool("filled", s.filled)
	return n
}

func (s *StarItem) Load(n Node) error {
	s.filled = n.Bool("filled")
	return loadItemNode(n, &s.baseItem)
}
