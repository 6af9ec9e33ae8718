/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"testing"

	"goannotate/internal/geom"
	"goannotate/internal/undo"
)

type fakeHost struct {
	viewport geom.Box
	cursor   Cursor
	focus    int
	draws    int
}

func (h *fakeHost) DisplayedRect() geom.Box { return h.viewport }
func (h *fakeHost) SetCursor(c Cursor)      { h.cursor = c }
func (h *fakeHost) GrabFocus()              { h.focus++ }
func (h *fakeHost) QueueDraw()              { h.draws++ }

func newTestCollection() (*Collection, *fakeHost, *undo.Buffer) {
	host := &fakeHost{viewport: geom.B(0, 0, 800, 600)}
	buf := undo.NewBuffer(undo.Config{})
	return NewCollection(host, buf, nil), host, buf
}

func TestAddShapeItemSelectsAndRecords(t *testing.T) {
	c, _, buf := newTestCollection()

	c.AddShapeItem(KindRectangle)
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	if c.ItemAt(0).Mode() != ModeSelected {
		t.Fatalf("new item mode = %v, want selected", c.ItemAt(0).Mode())
	}
	if d, _ := buf.Stats(); d != 1 {
		t.Fatalf("undo depth = %d, want 1", d)
	}

	c.AddShapeItem(KindOval)
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if c.ItemAt(0).Mode() != ModeNone {
		t.Fatalf("previous item still selected")
	}
	if c.ItemAt(1).Name() != "oval" || c.ItemAt(1).Mode() != ModeSelected {
		t.Fatalf("new item not top-of-z and selected")
	}
	if d, _ := buf.Stats(); d != 2 {
		t.Fatalf("undo depth = %d, want 2", d)
	}
}

func TestAddShapeItemCentersInViewport(t *testing.T) {
	c, _, _ := newTestCollection()
	it := c.AddShapeItem(KindRectangle)
	center := it.Box().Normalized().Center()
	if center.X != 400 || center.Y != 300 {
		t.Fatalf("box center = %v, want (400, 300)", center)
	}
}

func TestAddTextEntersEditMode(t *testing.T) {
	c, host, _ := newTestCollection()
	it := c.AddShapeItem(KindText)
	txt, ok := it.(*TextItem)
	if !ok {
		t.Fatalf("factory returned %T, want *TextItem", it)
	}
	if !txt.Editing() {
		t.Fatalf("text item not in edit mode after creation")
	}
	if host.focus == 0 {
		t.Fatalf("focus was not grabbed")
	}
}

func TestUnknownKindPanics(t *testing.T) {
	c, _, _ := newTestCollection()
	defer func() {
		if recover() == nil {
			t.Fatalf("no panic for unknown kind")
		}
	}()
	c.AddShapeItem(Kind(99))
}

func TestRemoveSelectedBatchesAndUndoRestoresOrder(t *testing.T) {
	c, _, buf := newTestCollection()
	c.AddShapeItem(KindRectangle)
	c.AddShapeItem(KindOval)
	c.AddShapeItem(KindStar)

	c.ClearSelection()
	c.ItemAt(0).SetMode(ModeSelected)
	c.ItemAt(2).SetMode(ModeSelected)

	if !c.RemoveSelected() {
		t.Fatalf("RemoveSelected = false, want true")
	}
	if c.Len() != 1 || c.ItemAt(0).Name() != "oval" {
		t.Fatalf("wrong survivor set")
	}

	rec, ok := buf.Undo()
	if !ok {
		t.Fatalf("nothing to undo")
	}
	if rec.Label() != "delete items" {
		t.Fatalf("label = %q", rec.Label())
	}
	want := []string{"rectangle", "oval", "star"}
	if c.Len() != 3 {
		t.Fatalf("Len after undo = %d, want 3", c.Len())
	}
	for i, name := range want {
		if c.ItemAt(i).Name() != name {
			t.Fatalf("item %d = %q, want %q", i, c.ItemAt(i).Name(), name)
		}
	}
}

func TestRemoveSelectedNoopWithoutSelection(t *testing.T) {
	c, host, buf := newTestCollection()
	c.AddShapeItem(KindRectangle)
	c.ClearSelection()
	host.cursor = CursorPointer

	if c.RemoveSelected() {
		t.Fatalf("RemoveSelected = true with nothing selected")
	}
	if d, _ := buf.Stats(); d != 1 {
		t.Fatalf("undo depth = %d, want 1 (add only)", d)
	}
	if host.cursor != CursorPointer {
		t.Fatalf("cursor touched on no-op removal")
	}
}

func TestApplyPropertiesRecordsAndUndoes(t *testing.T) {
	c, _, buf := newTestCollection()
	it := c.AddShapeItem(KindRectangle)
	oldWidth := it.Props().Width

	p := c.Props().Clone()
	p.Width = 9
	c.ApplyProperties(p)
	if it.Props().Width != 9 {
		t.Fatalf("width = %v after broadcast, want 9", it.Props().Width)
	}
	if d, _ := buf.Stats(); d != 2 {
		t.Fatalf("undo depth = %d, want 2", d)
	}

	buf.Undo()
	if it.Props().Width != oldWidth {
		t.Fatalf("width = %v after undo, want %v", it.Props().Width, oldWidth)
	}
}

func TestApplyPropertiesNoRecordWithoutSelection(t *testing.T) {
	c, _, buf := newTestCollection()
	c.AddShapeItem(KindRectangle)
	c.ClearSelection()

	p := c.Props().Clone()
	p.Width = 9
	c.ApplyProperties(p)
	if d, _ := buf.Stats(); d != 1 {
		t.Fatalf("undo depth = %d, want 1 (no PropertyChange record)", d)
	}
}

// opRecorder captures the order of draw calls so the two-pass contract can
// be asserted.
type opRecorder struct{ ops []string }

func (r *opRecorder) StrokeRect(geom.Box, *Properties)          { r.ops = append(r.ops, "body") }
func (r *opRecorder) FillRect(geom.Box, *Properties)            { r.ops = append(r.ops, "body") }
func (r *opRecorder) StrokeOval(geom.Box, *Properties)          { r.ops = append(r.ops, "body") }
func (r *opRecorder) FillOval(geom.Box, *Properties)            { r.ops = append(r.ops, "body") }
func (r *opRecorder) StrokeLine(geom.Pt, geom.Pt, *Properties)  { r.ops = append(r.ops, "body") }
func (r *opRecorder) StrokePolygon([]geom.Pt, *Properties)      { r.ops = append(r.ops, "body") }
func (r *opRecorder) FillPolygon([]geom.Pt, *Properties)        { r.ops = append(r.ops, "body") }
func (r *opRecorder) DrawText(string, geom.Pt, *Properties)     { r.ops = append(r.ops, "body") }
func (r *opRecorder) Blur(geom.Box)                             { r.ops = append(r.ops, "body") }
func (r *opRecorder) Magnify(geom.Box, float64)                 { r.ops = append(r.ops, "body") }
func (r *opRecorder) DrawHandle(geom.Box)                       { r.ops = append(r.ops, "handle") }
func (r *opRecorder) DrawCaret(float64, float64, float64)       { r.ops = append(r.ops, "caret") }
func (r *opRecorder) HighlightRect(geom.Box)                    { r.ops = append(r.ops, "highlight") }

func TestDrawRunsBodiesBeforeHandles(t *testing.T) {
	c, _, _ := newTestCollection()
	c.AddShapeItem(KindRectangle)
	c.AddShapeItem(KindOval) // selected

	rec := &opRecorder{}
	c.Draw(rec)

	sawHandle := false
	for _, op := range rec.ops {
		if op == "handle" {
			sawHandle = true
		}
		if op == "body" && sawHandle {
			t.Fatalf("body drawn after a handle: %v", rec.ops)
		}
	}
	if !sawHandle {
		t.Fatalf("no handles drawn for selected item")
	}
}
