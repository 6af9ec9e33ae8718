/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import "goannotate/internal/geom"

// Mode is the interaction state of a single item.
type Mode int

const (
	ModeNone Mode = iota
	ModeSelected
	ModeMoving
	ModeResizing
)

// Cursor names the pointer shapes the host can display. The core only
// requests shapes; the host maps them onto its toolkit.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorPointer        // over an item body
	CursorHand           // over a resize selector
	CursorText           // over editable text
)

// Mods is the modifier bitmask delivered with key and pointer events.
type Mods uint8

const (
	ModShift Mods = 1 << iota
	ModCtrl
)

// SelectorSize is the edge length of the square resize handles, in canvas
// units. Set once at startup (from config) before any drawing happens.
var SelectorSize = 8.0

// Host is the window/widget collaborator. The core calls it, never the
// other way around; all calls are synchronous and non-blocking.
type Host interface {
	// DisplayedRect returns the currently visible viewport in canvas coords.
	DisplayedRect() geom.Box
	SetCursor(Cursor)
	GrabFocus()
	// QueueDraw is an advisory redraw request; hosts may coalesce.
	QueueDraw()
}

// RenderContext is the drawing surface handed to Draw. Items call its
// primitives; the context owns rasterization (or PDF/SVG emission).
type RenderContext interface {
	StrokeRect(b geom.Box, p *Properties)
	FillRect(b geom.Box, p *Properties)
	StrokeOval(b geom.Box, p *Properties)
	FillOval(b geom.Box, p *Properties)
	StrokeLine(a, b geom.Pt, p *Properties)
	StrokePolygon(pts []geom.Pt, p *Properties)
	FillPolygon(pts []geom.Pt, p *Properties)
	// DrawText renders one line of text with its top-left corner at 'at'.
	DrawText(line string, at geom.Pt, p *Properties)
	// Blur pixelates the region already painted beneath b.
	Blur(b geom.Box)
	// Magnify repaints b with the area around its center scaled by factor.
	Magnify(b geom.Box, factor float64)
	// Decoration primitives used by the second draw pass.
	DrawHandle(b geom.Box)
	DrawCaret(x, top, bottom float64)
	HighlightRect(b geom.Box)
}

// Item is one drawable entity. Implementations embed baseItem and override
// the subset of the contract their geometry needs.
type Item interface {
	// Name is the variant tag used for dispatch and serialization.
	Name() string
	Box() geom.Box
	SetBox(geom.Box)
	Mode() Mode
	SetMode(Mode)
	Props() *Properties
	SetProps(*Properties)
	HitTest(p geom.Pt) bool
	// Selectors returns the resize-handle boxes in z-independent canvas
	// coordinates. The index into this slice is the selector index carried
	// through a resize drag.
	Selectors() []geom.Box
	// MoveSelector drags selector idx to the given point. lock constrains
	// the drag (aspect ratio for boxes, 45-degree snap for lines).
	MoveSelector(idx int, to geom.Pt, lock bool)
	MoveBy(dx, dy float64)
	SelectorCursor(idx int) Cursor
	Draw(ctx RenderContext)
	DrawSelectors(ctx RenderContext)
	Save() Node
	Load(n Node) error
}

// baseItem carries the state shared by every variant: bounding box, mode and
// the style properties reference. Boxy variants also inherit its four-corner
// selector behavior.
type baseItem struct {
	name  string
	box   geom.Box
	mode  Mode
	props *Properties
}

func (b *baseItem) Name() string          { return b.name }
func (b *baseItem) Box() geom.Box         { return b.box }
func (b *baseItem) SetBox(x geom.Box)     { b.box = x }
func (b *baseItem) Mode() Mode            { return b.mode }
func (b *baseItem) SetMode(m Mode)        { b.mode = m }
func (b *baseItem) Props() *Properties    { return b.props }
func (b *baseItem) SetProps(p *Properties) { b.props = p }

func (b *baseItem) HitTest(p geom.Pt) bool { return b.box.Contains(p) }

// Selectors places handles on the four corners of the normalized box.
// Order: NW, NE, SW, SE.
func (b *baseItem) Selectors() []geom.Box {
	n := b.box.Normalized()
	s := SelectorSize
	return []geom.Box{
		geom.B(n.X-s/2, n.Y-s/2, s, s),
		geom.B(n.X+n.W-s/2, n.Y-s/2, s, s),
		geom.B(n.X-s/2, n.Y+n.H-s/2, s, s),
		geom.B(n.X+n.W-s/2, n.Y+n.H-s/2, s, s),
	}
}

// MoveSelector drags a corner; the opposite corner stays anchored. With lock
// the original aspect ratio is preserved.
func (b *baseItem) MoveSelector(idx int, to geom.Pt, lock bool) {
	n := b.box.Normalized()
	var anchor geom.Pt
	switch idx {
	case 0: // NW
		anchor = geom.Pt{X: n.X + n.W, Y: n.Y + n.H}
	case 1: // NE
		anchor = geom.Pt{X: n.X, Y: n.Y + n.H}
	case 2: // SW
		anchor = geom.Pt{X: n.X + n.W, Y: n.Y}
	case 3: // SE
		anchor = geom.Pt{X: n.X, Y: n.Y}
	default:
		return
	}
	w := to.X - anchor.X
	h := to.Y - anchor.Y
	if lock && n.W != 0 && n.H != 0 {
		ratio := n.H / n.W
		if h < 0 != (w*ratio < 0) {
			ratio = -ratio
		}
		h = w * ratio
	}
	b.box = geom.Box{X: anchor.X, Y: anchor.Y, W: w, H: h}
}

func (b *baseItem) MoveBy(dx, dy float64) { b.box = b.box.Translated(dx, dy) }

func (b *baseItem) SelectorCursor(int) Cursor { return CursorHand }

func (b *baseItem) DrawSelectors(ctx RenderContext) {
	for _, h := range b.Selectors() {
		ctx.DrawHandle(h)
	}
}

// selectorAt returns the index of the selector under p, or noIndex.
func selectorAt(it Item, p geom.Pt) int {
	for i, h := range it.Selectors() {
		if h.Contains(p) {
			return i
		}
	}
	return noIndex
}
