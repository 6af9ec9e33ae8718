/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import "goannotate/internal/geom"

// Pointer state machine. The host forwards raw press/move/release events;
// the return value says whether a redraw is needed. All hit-testing walks
// the collection top-down so the topmost item wins.

// CursorPressed starts a press cycle. count is the click count (1, 2, 3);
// other values fall through the press-count switches as no-ops.
func (c *Collection) CursorPressed(x, y float64, mods Mods, count int) bool {
	p := geom.Pt{X: x, Y: y}
	c.in.pressed = true
	c.in.pressCount = count
	c.in.last = p
	c.in.moved = false
	c.in.before = nil

	for i := len(c.items) - 1; i >= 0; i-- {
		it := c.items[i]
		if it.Mode() != ModeNone {
			if s := selectorAt(it, p); s != noIndex {
				c.in.active = i
				c.in.selector = s
				c.in.before = []boxSnapshot{{index: i, box: it.Box()}}
				it.SetMode(ModeResizing)
				return false
			}
		}
		if !it.HitTest(p) {
			continue
		}
		if c.in.editing == i {
			// Clicks inside the item being edited place the caret.
			if t, ok := it.(*TextItem); ok {
				c.in.active = i
				t.ClickAt(p, count)
				return true
			}
		}
		if it.Mode() == ModeNone {
			c.ClearSelection()
		}
		c.stopEditing()
		c.in.active = i
		it.SetMode(ModeSelected)
		if count == 2 {
			// Double click enters edit mode, text items only.
			if t, ok := it.(*TextItem); ok {
				c.in.editing = i
				t.StartEdit()
				c.host.GrabFocus()
			}
		}
		return true
	}

	// Empty canvas: drop selection and edit state.
	c.ClearSelection()
	c.stopEditing()
	c.in.active = noIndex
	return true
}

// CursorMoved handles both drags and pure hover. During a selector drag the
// active item is resized and the undo buffer carries one in-flight "resize
// item" record that is refined on every motion; during a body drag every
// movable item translates by the delta, with recording deferred to release.
func (c *Collection) CursorMoved(x, y float64, mods Mods) bool {
	p := geom.Pt{X: x, Y: y}
	dx, dy := p.X-c.in.last.X, p.Y-c.in.last.Y
	c.in.last = p

	if c.in.pressed && c.in.selector != noIndex && c.in.active != noIndex {
		it := c.items[c.in.active]
		it.MoveSelector(c.in.selector, p, mods&ModShift != 0)
		if len(c.in.before) == 1 {
			rec := &boxRecord{
				c:       c,
				label:   "resize item",
				entries: []boxEntry{{item: it, before: c.in.before[0].box, after: it.Box()}},
			}
			if c.in.moved {
				c.undo.ReplaceItem(rec)
			} else {
				c.undo.AddItem(rec)
			}
		}
		c.in.moved = true
		c.host.QueueDraw()
		return true
	}
	if c.in.pressed {
		if t, ok := c.editingText(); ok {
			t.DragTo(p, c.in.pressCount)
			c.host.QueueDraw()
			return true
		}
	}
	if c.in.pressed && c.in.active != noIndex {
		if !c.in.moved {
			for i, it := range c.items {
				if it.Mode() == ModeSelected || it.Mode() == ModeMoving {
					c.in.before = append(c.in.before, boxSnapshot{index: i, box: it.Box()})
				}
			}
		}
		for _, it := range c.items {
			if it.Mode() == ModeSelected || it.Mode() == ModeMoving {
				it.MoveBy(dx, dy)
				it.SetMode(ModeMoving)
			}
		}
		c.in.moved = true
		c.host.QueueDraw()
		return true
	}

	// Hover: only the cursor shape changes, never item state.
	cur := CursorDefault
	for i := len(c.items) - 1; i >= 0; i-- {
		it := c.items[i]
		if it.Mode() != ModeNone {
			if s := selectorAt(it, p); s != noIndex {
				cur = it.SelectorCursor(s)
				break
			}
		}
		if it.HitTest(p) {
			cur = CursorPointer
			if t, ok := it.(*TextItem); ok && t.Editing() {
				cur = CursorText
			}
			break
		}
	}
	c.host.SetCursor(cur)
	return false
}

// CursorReleased finalizes the press cycle: a finished selector drag leaves
// its already-refined "resize item" record on the undo buffer, a finished
// body drag emits one "move items" record covering every item moved. The
// active reference is always cleared; text edit mode survives release and
// ends via Enter/Escape or an outside click.
func (c *Collection) CursorReleased(x, y float64, mods Mods) bool {
	defer func() {
		c.in.pressed = false
		c.in.pressCount = 0
		c.in.before = nil
		c.in.active = noIndex
		c.host.SetCursor(CursorDefault)
		c.host.GrabFocus()
	}()

	if c.in.selector != noIndex && c.in.active != noIndex {
		it := c.items[c.in.active]
		it.SetMode(ModeSelected)
		c.in.selector = noIndex
		c.in.moved = false
		c.host.QueueDraw()
		return true
	}

	if _, ok := c.editingText(); ok {
		return false
	}

	if c.in.moved {
		var entries []boxEntry
		for _, s := range c.in.before {
			if s.index >= 0 && s.index < len(c.items) {
				it := c.items[s.index]
				entries = append(entries, boxEntry{item: it, before: s.box, after: it.Box()})
			}
		}
		if len(entries) > 0 {
			c.undo.AddItem(&boxRecord{c: c, label: "move items", entries: entries})
		}
		for _, it := range c.items {
			if it.Mode() == ModeMoving {
				it.SetMode(ModeSelected)
			}
		}
		c.in.moved = false
		c.host.QueueDraw()
		return true
	}

	if c.in.active == noIndex {
		c.ClearSelection()
	}
	return true
}
