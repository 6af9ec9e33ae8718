/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

// Key is the toolkit-independent key code delivered to KeyPressed. The host
// maps its own key events onto these; everything else arrives via TextTyped.
type Key int

const (
	KeyNone Key = iota
	KeyBackspace
	KeyDelete
	KeyEnter
	KeyEscape
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
)

// KeyPressed runs the keyboard state machine. While a text item is being
// edited, deletion and navigation keys drive the caret; Enter commits
// (Shift+Enter inserts a newline), Escape commits without input. Outside
// edit mode only Backspace/Delete do anything: they delete the selection.
// Returns whether a redraw is needed.
func (c *Collection) KeyPressed(k Key, mods Mods) bool {
	t, editing := c.editingText()

	switch k {
	case KeyBackspace:
		if editing {
			if t.DeleteBackward() {
				c.host.QueueDraw()
				return true
			}
			return false
		}
		return c.RemoveSelected()

	case KeyDelete:
		if editing {
			if t.DeleteForward() {
				c.host.QueueDraw()
				return true
			}
			return false
		}
		return c.RemoveSelected()

	case KeyEnter:
		if !editing {
			return false
		}
		if mods&ModShift != 0 {
			t.InsertNewline()
			c.host.QueueDraw()
			return true
		}
		c.stopEditing()
		c.in.active = noIndex
		c.host.QueueDraw()
		return true

	case KeyEscape:
		if !editing {
			return false
		}
		c.stopEditing()
		c.in.active = noIndex
		c.host.QueueDraw()
		return true

	case KeyLeft, KeyRight, KeyUp, KeyDown, KeyHome, KeyEnd:
		if !editing {
			return false
		}
		extend := mods&ModShift != 0
		boundary := mods&ModCtrl != 0
		switch k {
		case KeyLeft:
			t.MoveLeft(extend, boundary)
		case KeyRight:
			t.MoveRight(extend, boundary)
		case KeyUp:
			t.MoveUp(extend, boundary)
		case KeyDown:
			t.MoveDown(extend, boundary)
		case KeyHome:
			t.MoveHome(extend, boundary)
		case KeyEnd:
			t.MoveEnd(extend, boundary)
		}
		c.host.QueueDraw()
		return true
	}

	return false
}

// TextTyped inserts typed characters into the item being edited. Outside
// edit mode typed text is ignored.
func (c *Collection) TextTyped(s string) bool {
	t, ok := c.editingText()
	if !ok || s == "" {
		return false
	}
	t.Insert(s)
	c.host.QueueDraw()
	return true
}
