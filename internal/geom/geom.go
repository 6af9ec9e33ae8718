/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom provides the axis-aligned box and point primitives used by
// every canvas item. Width and height may go negative while a resize drag is
// in flight; call Normalized before hit-testing or persisting.
package geom

import "math"

// Pt is a 2D point in canvas coordinates.
type Pt struct{ X, Y float64 }

// Box is an axis-aligned rectangle defined by min corner and size.
type Box struct {
	X, Y float64
	W, H float64
}

func B(x, y, w, h float64) Box { return Box{X: x, Y: y, W: w, H: h} }

// Normalized returns an equivalent box with non-negative width and height.
func (b Box) Normalized() Box {
	if b.W < 0 {
		b.X += b.W
		b.W = -b.W
	}
	if b.H < 0 {
		b.Y += b.H
		b.H = -b.H
	}
	return b
}

func (b Box) Min() Pt    { return Pt{b.X, b.Y} }
func (b Box) Max() Pt    { return Pt{b.X + b.W, b.Y + b.H} }
func (b Box) Center() Pt { return Pt{b.X + b.W/2, b.Y + b.H/2} }

// Contains reports whether p lies inside the normalized box (edges included).
func (b Box) Contains(p Pt) bool {
	n := b.Normalized()
	return p.X >= n.X && p.Y >= n.Y && p.X <= n.X+n.W && p.Y <= n.Y+n.H
}

// Inset returns a box shrunk by dx,dy on all sides (negative grows).
func (b Box) Inset(dx, dy float64) Box {
	return Box{X: b.X + dx, Y: b.Y + dy, W: b.W - 2*dx, H: b.H - 2*dy}
}

// Translated returns the box moved by dx,dy.
func (b Box) Translated(dx, dy float64) Box {
	return Box{X: b.X + dx, Y: b.Y + dy, W: b.W, H: b.H}
}

// Union returns the minimal box containing both normalized boxes.
func (b Box) Union(o Box) Box {
	n, m := b.Normalized(), o.Normalized()
	minX := math.Min(n.X, m.X)
	minY := math.Min(n.Y, m.Y)
	maxX := math.Max(n.X+n.W, m.X+m.W)
	maxY := math.Max(n.Y+n.H, m.Y+m.H)
	return Box{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Empty reports whether the normalized box has zero area.
func (b Box) Empty() bool {
	n := b.Normalized()
	return n.W == 0 || n.H == 0
}

// CenteredIn returns a w-by-h box centered within b.
func CenteredIn(b Box, w, h float64) Box {
	c := b.Normalized().Center()
	return Box{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}
