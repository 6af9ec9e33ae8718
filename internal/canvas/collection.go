/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas is the interactive item-management core: it owns the
// z-ordered collection of annotation items, their selection and edit state,
// and translates pointer/keyboard events from the host into collection
// mutations with undo records. Everything here runs on the host's event
// thread; there is no internal locking.
package canvas

import (
	"fmt"
	"log/slog"

	"goannotate/internal/geom"
	"goannotate/internal/log"
	"goannotate/internal/undo"
)

// noIndex is the "no item / no selector" sentinel for index fields.
const noIndex = -1

// Kind selects an item factory.
type Kind int

const (
	KindRectangle Kind = iota
	KindRectangleFilled
	KindOval
	KindOvalFilled
	KindStar
	KindStarFilled
	KindLine
	KindArrow
	KindText
	KindBlur
	KindMagnifier
)

func (k Kind) String() string {
	switch k {
	case KindRectangle, KindRectangleFilled:
		return "rectangle"
	case KindOval, KindOvalFilled:
		return "oval"
	case KindStar, KindStarFilled:
		return "star"
	case KindLine:
		return "line"
	case KindArrow:
		return "arrow"
	case KindText:
		return "text"
	case KindBlur:
		return "blur"
	case KindMagnifier:
		return "magnifier"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// interaction is the pointer/keyboard state carried between events.
// active is the item currently under manipulation; editing the text item in
// edit mode. The two are tracked separately so a committed text item can
// stay put while the press/release cycle clears active.
type interaction struct {
	active     int
	editing    int
	selector   int
	pressCount int
	pressed    bool
	moved      bool
	last       geom.Pt
	before     []boxSnapshot
}

type boxSnapshot struct {
	index int
	box   geom.Box
}

func newInteraction() interaction {
	return interaction{active: noIndex, editing: noIndex, selector: noIndex}
}

// Collection is the ordered item list; slice order encodes z-order, later
// items draw on top.
type Collection struct {
	items []Item
	props *Properties
	host  Host
	undo  *undo.Buffer
	log   *slog.Logger
	in    interaction
}

// NewCollection wires the core to its host and undo buffer. A nil props
// starts from the stock style.
func NewCollection(host Host, buf *undo.Buffer, props *Properties) *Collection {
	if props == nil {
		props = DefaultProperties()
	}
	return &Collection{
		props: props,
		host:  host,
		undo:  buf,
		log:   log.L().With("component", "canvas"),
		in:    newInteraction(),
	}
}

func (c *Collection) Len() int           { return len(c.items) }
func (c *Collection) ItemAt(i int) Item  { return c.items[i] }
func (c *Collection) Props() *Properties { return c.props }

// newItem dispatches to the variant factory. An unknown kind is a
// programming error, not a runtime condition.
func (c *Collection) newItem(kind Kind) Item {
	p := c.props.Clone()
	switch kind {
	case KindRectangle:
		return newRectItem(p, false)
	case KindRectangleFilled:
		return newRectItem(p, true)
	case KindOval:
		return newOvalItem(p, false)
	case KindOvalFilled:
		return newOvalItem(p, true)
	case KindStar:
		return newStarItem(p, false)
	case KindStarFilled:
		return newStarItem(p, true)
	case KindLine:
		return newLineItem(p, false)
	case KindArrow:
		return newLineItem(p, true)
	case KindText:
		return newTextItem(p)
	case KindBlur:
		return newBlurItem(p)
	case KindMagnifier:
		return newMagnifierItem(p)
	}
	panic(fmt.Sprintf("canvas: unknown item kind %d", int(kind)))
}

// defaultBox sizes a fresh item and centers it in the visible viewport.
func (c *Collection) defaultBox(kind Kind) geom.Box {
	vp := c.host.DisplayedRect()
	w, h := 120.0, 80.0
	switch kind {
	case KindLine, KindArrow:
		h = 0
	case KindText:
		w, h = 40, 26
	case KindMagnifier:
		w, h = 100, 100
	}
	return geom.CenteredIn(vp, w, h)
}

// AddShapeItem creates an item of the given kind, selects it alone, puts it
// on top of the z-order and records the addition. Text items enter edit
// mode immediately.
func (c *Collection) AddShapeItem(kind Kind) Item {
	it := c.newItem(kind)
	it.SetBox(c.defaultBox(kind))
	c.ClearSelection()
	it.SetMode(ModeSelected)
	c.items = append(c.items, it)
	idx := len(c.items) - 1
	c.undo.AddItem(&addRecord{c: c, item: it, index: idx})
	if t, ok := it.(*TextItem); ok {
		c.in.active = idx
		c.in.editing = idx
		t.StartEdit()
		c.host.GrabFocus()
	}
	c.log.Debug("item added", "kind", kind.String(), "index", idx)
	c.host.QueueDraw()
	return it
}

// ClearSelection drops every item back to mode NONE and cancels any
// selector drag in progress.
func (c *Collection) ClearSelection() {
	for _, it := range c.items {
		it.SetMode(ModeNone)
	}
	c.in.selector = noIndex
}

// Clear drops every item along with the interaction state and undo history.
// Used when a different document is loaded into the collection.
func (c *Collection) Clear() {
	c.items = nil
	c.in = newInteraction()
	c.undo.Clear()
	c.host.QueueDraw()
}

// RemoveSelected deletes every SELECTED item, batching them into a single
// undo record. Reports whether anything was removed.
func (c *Collection) RemoveSelected() bool {
	var removed []deleteEntry
	kept := c.items[:0]
	for i, it := range c.items {
		if it.Mode() == ModeSelected {
			removed = append(removed, deleteEntry{item: it, index: i})
			continue
		}
		kept = append(kept, it)
	}
	if len(removed) == 0 {
		return false
	}
	c.items = kept
	c.in = newInteraction()
	c.undo.AddItem(&deleteRecord{c: c, entries: removed})
	c.host.SetCursor(CursorDefault)
	c.log.Debug("items removed", "count", len(removed))
	c.host.QueueDraw()
	return true
}

// ApplyProperties broadcasts a new style to every SELECTED item, recording
// the previous per-item styles when anything was affected. The new style
// also becomes the default for future items.
func (c *Collection) ApplyProperties(p *Properties) {
	c.props = p.Clone()
	var entries []propsEntry
	for _, it := range c.items {
		if it.Mode() != ModeSelected {
			continue
		}
		entries = append(entries, propsEntry{item: it, before: it.Props(), after: p.Clone()})
	}
	for _, e := range entries {
		e.item.SetProps(e.after)
	}
	if len(entries) > 0 {
		c.undo.AddItem(&propsRecord{c: c, entries: entries})
	}
	c.host.QueueDraw()
}

// Draw renders in two passes: item bodies in z-order, then selection
// decorations over everything so handles are never occluded.
func (c *Collection) Draw(ctx RenderContext) {
	for _, it := range c.items {
		it.Draw(ctx)
	}
	for _, it := range c.items {
		if it.Mode() != ModeNone {
			it.DrawSelectors(ctx)
		}
	}
}

// DrawBodies renders only the item bodies, without selection decorations.
// Exports use this so handles never end up in the output.
func (c *Collection) DrawBodies(ctx RenderContext) {
	for _, it := range c.items {
		it.Draw(ctx)
	}
}

func (c *Collection) insertAt(i int, it Item) {
	if i < 0 {
		i = 0
	}
	if i > len(c.items) {
		i = len(c.items)
	}
	c.items = append(c.items, nil)
	copy(c.items[i+1:], c.items[i:])
	c.items[i] = it
}

func (c *Collection) removeAt(i int) Item {
	if i < 0 || i >= len(c.items) {
		return nil
	}
	it := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	return it
}

// editingText returns the text item currently in edit mode.
func (c *Collection) editingText() (*TextItem, bool) {
	if c.in.editing == noIndex || c.in.editing >= len(c.items) {
		return nil, false
	}
	t, ok := c.items[c.in.editing].(*TextItem)
	return t, ok && t.Editing()
}

// stopEditing commits the current text edit, if any.
func (c *Collection) stopEditing() {
	if t, ok := c.editingText(); ok {
		t.StopEdit()
	}
	c.in.editing = noIndex
}

// CopySelection, CutSelection and Paste forward clipboard shortcuts to the
// text item being edited. Outside edit mode they are no-ops.
func (c *Collection) CopySelection() bool {
	t, ok := c.editingText()
	return ok && t.CopySelection()
}

func (c *Collection) CutSelection() bool {
	t, ok := c.editingText()
	if !ok || !t.CutSelection() {
		return false
	}
	c.host.QueueDraw()
	return true
}

func (c *Collection) Paste() bool {
	t, ok := c.editingText()
	if !ok || !t.Paste() {
		return false
	}
	c.host.QueueDraw()
	return true
}

// SelectAll extends the selection of the text item being edited to its whole
// content. Outside edit mode it is a no-op.
func (c *Collection) SelectAll() bool {
	t, ok := c.editingText()
	if !ok {
		return false
	}
	t.SelectAll()
	c.host.QueueDraw()
	return true
}
