/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"errors"
	"testing"

	"goannotate/internal/geom"
)

func newEditingText(content string) *TextItem {
	txt := newTextItem(DefaultProperties())
	txt.SetBox(geom.B(100, 100, 40, 26))
	txt.SetText(content)
	txt.StartEdit()
	return txt
}

func TestInsertReplacesSelection(t *testing.T) {
	txt := newEditingText("hello world")
	txt.anchor = 6
	txt.caret = 11
	txt.Insert("there")
	if txt.Text() != "hello there" {
		t.Fatalf("content = %q, want \"hello there\"", txt.Text())
	}
	if txt.caret != 11 || txt.hasSelection() {
		t.Fatalf("caret = %d after insert, want 11 collapsed", txt.caret)
	}
}

func TestDeleteBackwardAtStartIsNoop(t *testing.T) {
	txt := newEditingText("ab")
	txt.moveTo(0, false)
	if txt.DeleteBackward() {
		t.Fatalf("DeleteBackward at start reported a change")
	}
	if txt.Text() != "ab" {
		t.Fatalf("content changed: %q", txt.Text())
	}
}

func TestDeleteForwardRemovesSelectionFirst(t *testing.T) {
	txt := newEditingText("abcdef")
	txt.anchor = 1
	txt.caret = 4
	if !txt.DeleteForward() {
		t.Fatalf("DeleteForward reported no change")
	}
	if txt.Text() != "aef" {
		t.Fatalf("content = %q, want \"aef\"", txt.Text())
	}
}

func TestClickAtPressCounts(t *testing.T) {
	txt := newEditingText("one two")
	n := txt.Box().Normalized()
	inWord := geom.Pt{X: n.X + textPad + txt.advance("one t"), Y: n.Y + textPad + 1}

	txt.ClickAt(inWord, 1)
	if txt.caret != 5 || txt.hasSelection() {
		t.Fatalf("single click caret = %d sel=%v, want 5 collapsed", txt.caret, txt.hasSelection())
	}

	txt.ClickAt(inWord, 2)
	if txt.selStart() != 4 || txt.selEnd() != 7 {
		t.Fatalf("double click selection = [%d,%d), want the word [4,7)", txt.selStart(), txt.selEnd())
	}

	txt.ClickAt(inWord, 3)
	if txt.selStart() != 0 || txt.selEnd() != 7 {
		t.Fatalf("triple click selection = [%d,%d), want all [0,7)", txt.selStart(), txt.selEnd())
	}

	// Press counts beyond 3 are silently ignored.
	before := txt.caret
	txt.ClickAt(inWord, 4)
	if txt.caret != before || txt.selStart() != 0 {
		t.Fatalf("press count 4 mutated caret state")
	}
}

func TestFitBoxGrowsWithContent(t *testing.T) {
	txt := newEditingText("")
	w0 := txt.Box().Normalized().W
	h0 := txt.Box().Normalized().H
	txt.Insert("a considerably longer line of text")
	txt.InsertNewline()
	txt.Insert("second")
	n := txt.Box().Normalized()
	if n.W <= w0 {
		t.Fatalf("width did not grow: %v <= %v", n.W, w0)
	}
	if n.H <= h0 {
		t.Fatalf("height did not grow: %v <= %v", n.H, h0)
	}
	if n.X != 100 || n.Y != 100 {
		t.Fatalf("origin moved while growing: (%v, %v)", n.X, n.Y)
	}
}

func TestClipboardCopyCutPaste(t *testing.T) {
	var store string
	origRead, origWrite := clipboardRead, clipboardWrite
	clipboardRead = func() (string, error) { return store, nil }
	clipboardWrite = func(s string) error { store = s; return nil }
	defer func() { clipboardRead, clipboardWrite = origRead, origWrite }()

	txt := newEditingText("hello world")
	txt.anchor = 0
	txt.caret = 5
	if !txt.CopySelection() {
		t.Fatalf("copy failed")
	}
	if store != "hello" {
		t.Fatalf("clipboard = %q, want \"hello\"", store)
	}

	if !txt.CutSelection() {
		t.Fatalf("cut failed")
	}
	if txt.Text() != " world" {
		t.Fatalf("content after cut = %q", txt.Text())
	}

	txt.moveTo(len(txt.runes), false)
	if !txt.Paste() {
		t.Fatalf("paste failed")
	}
	if txt.Text() != " worldhello" {
		t.Fatalf("content after paste = %q", txt.Text())
	}
}

func TestPasteFailureIsNoop(t *testing.T) {
	origRead := clipboardRead
	clipboardRead = func() (string, error) { return "", errors.New("no clipboard") }
	defer func() { clipboardRead = origRead }()

	txt := newEditingText("ab")
	if txt.Paste() {
		t.Fatalf("paste reported success without clipboard")
	}
	if txt.Text() != "ab" {
		t.Fatalf("content changed: %q", txt.Text())
	}
}

func TestTextSaveLoadRoundTrip(t *testing.T) {
	txt := newEditingText("line one\nline two")
	txt.StopEdit()
	n := txt.Save()

	loaded := newTextItem(DefaultProperties())
	if err := loaded.Load(n); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Text() != "line one\nline two" {
		t.Fatalf("content = %q", loaded.Text())
	}
	if loaded.Editing() {
		t.Fatalf("edit state leaked into persistence")
	}
	if loaded.Box().Normalized() != txt.Box().Normalized() {
		t.Fatalf("box = %+v, want %+v", loaded.Box(), txt.Box())
	}
}
