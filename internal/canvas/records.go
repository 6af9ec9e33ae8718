/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import "goannotate/internal/geom"

// Undo records for collection mutations. Each record owns enough state to
// replay the mutation in both directions; indexes are the positions valid
// at record time, which is why delete batches re-insert in ascending order.

// addRecord reverses/replays a single item insertion.
type addRecord struct {
	c     *Collection
	item  Item
	index int
}

func (r *addRecord) Label() string { return "add item" }

func (r *addRecord) Undo() {
	r.c.removeAt(r.index)
	r.c.in = newInteraction()
	r.c.host.QueueDraw()
}

func (r *addRecord) Redo() {
	r.c.insertAt(r.index, r.item)
	r.c.in = newInteraction()
	r.c.host.QueueDraw()
}

type deleteEntry struct {
	item  Item
	index int
}

// deleteRecord batches one removal pass. entries are in ascending index
// order because RemoveSelected walks the collection front to back.
type deleteRecord struct {
	c       *Collection
	entries []deleteEntry
}

func (r *deleteRecord) Label() string { return "delete items" }

// Undo re-inserts in ascending index order so each recorded position is
// valid again by the time it is used.
func (r *deleteRecord) Undo() {
	for _, e := range r.entries {
		r.c.insertAt(e.index, e.item)
		e.item.SetMode(ModeNone)
	}
	r.c.in = newInteraction()
	r.c.host.QueueDraw()
}

// Redo removes in descending order for the same reason.
func (r *deleteRecord) Redo() {
	for i := len(r.entries) - 1; i >= 0; i-- {
		r.c.removeAt(r.entries[i].index)
	}
	r.c.in = newInteraction()
	r.c.host.QueueDraw()
}

type propsEntry struct {
	item   Item
	before *Properties
	after  *Properties
}

// propsRecord batches one style broadcast across the selection.
type propsRecord struct {
	c       *Collection
	entries []propsEntry
}

func (r *propsRecord) Label() string { return "change style" }

func (r *propsRecord) Undo() {
	for _, e := range r.entries {
		e.item.SetProps(e.before)
	}
	r.c.host.QueueDraw()
}

func (r *propsRecord) Redo() {
	for _, e := range r.entries {
		e.item.SetProps(e.after)
	}
	r.c.host.QueueDraw()
}

type boxEntry struct {
	item   Item
	before geom.Box
	after  geom.Box
}

// boxRecord batches geometry changes from one drag: a single-item resize or
// a multi-item move.
type boxRecord struct {
	c       *Collection
	label   string
	entries []boxEntry
}

func (r *boxRecord) Label() string { return r.label }

func (r *boxRecord) Undo() {
	for _, e := range r.entries {
		e.item.SetBox(e.before)
	}
	r.c.host.QueueDraw()
}

func (r *boxRecord) Redo() {
	for _, e := range r.entries {
		e.item.SetBox(e.after)
	}
	r.c.host.QueueDraw()
}
