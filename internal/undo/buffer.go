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

import "sync"

// Record is one reversible mutation of the canvas. Records are opaque to the
// buffer; the producer binds whatever state Undo/Redo need at construction
// time. Label is used for menus and logging ("move items", "resize item").
type Record interface {
	Label() string
	Undo()
	Redo()
}

// Config controls depth caps.
type Config struct {
	// MaxDepth limits the number of records kept; older entries are pruned
	// when exceeded (0 means use the default).
	MaxDepth int
}

// Buffer is an in-memory undo/redo stack of records. The canvas core is the
// sole producer. It is safe for concurrent use.
type Buffer struct {
	cfg  Config
	mu   sync.Mutex
	past []Record
	next []Record
}

func NewBuffer(cfg Config) *Buffer {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 200
	}
	return &Buffer{cfg: cfg}
}

// AddItem pushes a new record. Any new record invalidates the redo stack.
func (b *Buffer) AddItem(r Record) {
	if r == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.past = append(b.past, r)
	b.next = nil
	if extra := len(b.past) - b.cfg.MaxDepth; extra > 0 {
		b.past = append([]Record{}, b.past[extra:]...)
	}
}

// ReplaceItem swaps the most recent record for r, or pushes r when the
// buffer is empty. Used when an in-flight action refines its own record.
func (b *Buffer) ReplaceItem(r Record) {
	if r == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if n := len(b.past); n > 0 {
		b.past[n-1] = r
	} else {
		b.past = append(b.past, r)
	}
	b.next = nil
}

// Undo pops the most recent record, applies its reverse mutation, and moves
// it to the redo stack.
func (b *Buffer) Undo() (Record, bool) {
	b.mu.Lock()
	n := len(b.past)
	if n == 0 {
		b.mu.Unlock()
		return nil, false
	}
	r := b.past[n-1]
	b.past = b.past[:n-1]
	b.next = append(b.next, r)
	b.mu.Unlock()
	r.Undo()
	return r, true
}

// Redo re-applies the most recently undone record.
func (b *Buffer) Redo() (Record, bool) {
	b.mu.Lock()
	n := len(b.next)
	if n == 0 {
		b.mu.Unlock()
		return nil, false
	}
	r := b.next[n-1]
	b.next = b.next[:n-1]
	b.past = append(b.past, r)
	b.mu.Unlock()
	r.Redo()
	return r, true
}

// Clear drops both stacks.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.past, b.next = nil, nil
}

// Stats returns current stack sizes for diagnostics.
func (b *Buffer) Stats() (undoDepth, redoDepth int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.past), len(b.next)
}
