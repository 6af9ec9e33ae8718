/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import "testing"

type fakeRecord struct {
	label  string
	undone int
	redone int
}

func (f *fakeRecord) Label() string { return f.label }
func (f *fakeRecord) Undo()         { f.undone++ }
func (f *fakeRecord) Redo()         { f.redone++ }

func TestUndoRedoBasic(t *testing.T) {
	b := NewBuffer(Config{MaxDepth: 10})
	r1 := &fakeRecord{label: "a"}
	r2 := &fakeRecord{label: "b"}
	b.AddItem(r1)
	b.AddItem(r2)
	if u, _ := b.Stats(); u != 2 {
		t.Fatalf("expected 2 records, got %d", u)
	}
	r, ok := b.Undo()
	if !ok || r.Label() != "b" || r2.undone != 1 {
		t.Fatalf("undo expected 'b' applied once, got ok=%v label=%q undone=%d", ok, r.Label(), r2.undone)
	}
	r, ok = b.Redo()
	if !ok || r.Label() != "b" || r2.redone != 1 {
		t.Fatalf("redo expected 'b' applied once, got ok=%v undone=%d", ok, r2.redone)
	}
}

func TestAddInvalidatesRedo(t *testing.T) {
	b := NewBuffer(Config{})
	b.AddItem(&fakeRecord{label: "a"})
	if _, ok := b.Undo(); !ok {
		t.Fatalf("undo failed")
	}
	b.AddItem(&fakeRecord{label: "b"})
	if _, ok := b.Redo(); ok {
		t.Fatalf("redo should be invalidated by a new record")
	}
}

func TestReplaceItem(t *testing.T) {
	b := NewBuffer(Config{})
	b.ReplaceItem(&fakeRecord{label: "only"}) // empty buffer: behaves like add
	b.ReplaceItem(&fakeRecord{label: "swapped"})
	if u, _ := b.Stats(); u != 1 {
		t.Fatalf("expected a single record, got %d", u)
	}
	r, _ := b.Undo()
	if r.Label() != "swapped" {
		t.Fatalf("expected swapped record, got %q", r.Label())
	}
}

func TestDepthCapPrunesOldest(t *testing.T) {
	b := NewBuffer(Config{MaxDepth: 2})
	b.AddItem(&fakeRecord{label: "1"})
	b.AddItem(&fakeRecord{label: "2"})
	b.AddItem(&fakeRecord{label: "3"})
	if u, _ := b.Stats(); u != 2 {
		t.Fatalf("expected depth capped at 2, got %d", u)
	}
	r, _ := b.Undo()
	if r.Label() != "3" {
		t.Fatalf("expected newest record kept, got %q", r.Label())
	}
}
