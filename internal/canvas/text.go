/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"math"
	"strings"
	"unicode"

	"github.com/atotto/clipboard"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"goannotate/internal/geom"
)

// Clipboard access is routed through vars so tests can run headless.
var (
	clipboardRead  = clipboard.ReadAll
	clipboardWrite = clipboard.WriteAll
)

// textPad is the inner margin between the box edge and the glyphs.
const textPad = 4.0

// measureFace is used for caret placement and box sizing. Its 7x13 metrics
// are scaled to the item's font size; the rendering backend substitutes its
// own face, so positions are approximate but monotonic, which is all caret
// logic needs.
var measureFace font.Face = basicfont.Face7x13

// TextItem is a multi-line text box with in-place editing. Caret and
// selection are rune indices into the content; anchor == caret means no
// selection. Edit state is session-only and never persisted.
type TextItem struct {
	baseItem
	runes   []rune
	caret   int
	anchor  int
	editing bool
}

func newTextItem(p *Properties) *TextItem {
	return &TextItem{baseItem: baseItem{name: "text", props: p}}
}

func (t *TextItem) Text() string { return string(t.runes) }

func (t *TextItem) SetText(s string) {
	t.runes = []rune(s)
	t.caret = len(t.runes)
	t.anchor = t.caret
	t.fitBox()
}

func (t *TextItem) Editing() bool { return t.editing }

func (t *TextItem) StartEdit() {
	t.editing = true
	t.caret = len(t.runes)
	t.anchor = t.caret
}

// StopEdit leaves edit mode. Content stays as typed; there is no separate
// commit step.
func (t *TextItem) StopEdit() {
	t.editing = false
	t.anchor = t.caret
}

func (t *TextItem) scale() float64 { return t.props.FontSize / 13.0 }

func (t *TextItem) lineHeight() float64 { return t.props.FontSize * 1.3 }

func (t *TextItem) advance(s string) float64 {
	return float64(font.MeasureString(measureFace, s)) / 64.0 * t.scale()
}

// lines splits the content into per-line rune spans [start,end), end
// excluding the newline.
func (t *TextItem) lines() [][2]int {
	spans := [][2]int{}
	start := 0
	for i, r := range t.runes {
		if r == '\n' {
			spans = append(spans, [2]int{start, i})
			start = i + 1
		}
	}
	spans = append(spans, [2]int{start, len(t.runes)})
	return spans
}

// fitBox grows the box to hold the content, keeping the origin. The box
// never shrinks below a click-friendly minimum.
func (t *TextItem) fitBox() {
	n := t.box.Normalized()
	w, lines := 0.0, t.lines()
	for _, sp := range lines {
		w = math.Max(w, t.advance(string(t.runes[sp[0]:sp[1]])))
	}
	w += 2 * textPad
	h := float64(len(lines))*t.lineHeight() + 2*textPad
	t.box = geom.B(n.X, n.Y, math.Max(w, 40), math.Max(h, t.lineHeight()+2*textPad))
}

func (t *TextItem) selStart() int { return min(t.caret, t.anchor) }
func (t *TextItem) selEnd() int   { return max(t.caret, t.anchor) }

func (t *TextItem) hasSelection() bool { return t.caret != t.anchor }

func (t *TextItem) deleteSelection() {
	s, e := t.selStart(), t.selEnd()
	t.runes = append(t.runes[:s], t.runes[e:]...)
	t.caret = s
	t.anchor = s
}

// Insert replaces the selection (if any) with s and places the caret after
// it.
func (t *TextItem) Insert(s string) {
	if t.hasSelection() {
		t.deleteSelection()
	}
	ins := []rune(s)
	t.runes = append(t.runes[:t.caret], append(ins, t.runes[t.caret:]...)...)
	t.caret += len(ins)
	t.anchor = t.caret
	t.fitBox()
}

func (t *TextItem) InsertNewline() { t.Insert("\n") }

// DeleteBackward removes the selection, or the rune before the caret.
// Reports whether anything changed.
func (t *TextItem) DeleteBackward() bool {
	if t.hasSelection() {
		t.deleteSelection()
		t.fitBox()
		return true
	}
	if t.caret == 0 {
		return false
	}
	t.runes = append(t.runes[:t.caret-1], t.runes[t.caret:]...)
	t.caret--
	t.anchor = t.caret
	t.fitBox()
	return true
}

// DeleteForward removes the selection, or the rune after the caret.
func (t *TextItem) DeleteForward() bool {
	if t.hasSelection() {
		t.deleteSelection()
		t.fitBox()
		return true
	}
	if t.caret >= len(t.runes) {
		return false
	}
	t.runes = append(t.runes[:t.caret], t.runes[t.caret+1:]...)
	t.anchor = t.caret
	t.fitBox()
	return true
}

// moveTo places the caret, extending the selection instead when extend is
// set.
func (t *TextItem) moveTo(i int, extend bool) {
	if i < 0 {
		i = 0
	}
	if i > len(t.runes) {
		i = len(t.runes)
	}
	t.caret = i
	if !extend {
		t.anchor = i
	}
}

func (t *TextItem) MoveLeft(extend, byWord bool) {
	if byWord {
		t.moveTo(t.wordLeft(t.caret), extend)
		return
	}
	if t.hasSelection() && !extend {
		t.moveTo(t.selStart(), false)
		return
	}
	t.moveTo(t.caret-1, extend)
}

func (t *TextItem) MoveRight(extend, byWord bool) {
	if byWord {
		t.moveTo(t.wordRight(t.caret), extend)
		return
	}
	if t.hasSelection() && !extend {
		t.moveTo(t.selEnd(), false)
		return
	}
	t.moveTo(t.caret+1, extend)
}

// MoveUp goes one line up keeping the column; toBoundary jumps to the very
// start of the content.
func (t *TextItem) MoveUp(extend, toBoundary bool) {
	if toBoundary {
		t.moveTo(0, extend)
		return
	}
	line, col := t.lineCol(t.caret)
	if line == 0 {
		t.moveTo(0, extend)
		return
	}
	t.moveTo(t.indexOf(line-1, col), extend)
}

func (t *TextItem) MoveDown(extend, toBoundary bool) {
	if toBoundary {
		t.moveTo(len(t.runes), extend)
		return
	}
	spans := t.lines()
	line, col := t.lineCol(t.caret)
	if line == len(spans)-1 {
		t.moveTo(len(t.runes), extend)
		return
	}
	t.moveTo(t.indexOf(line+1, col), extend)
}

// MoveHome goes to line start; toBoundary to the start of the content.
func (t *TextItem) MoveHome(extend, toBoundary bool) {
	if toBoundary {
		t.moveTo(0, extend)
		return
	}
	line, _ := t.lineCol(t.caret)
	t.moveTo(t.lines()[line][0], extend)
}

func (t *TextItem) MoveEnd(extend, toBoundary bool) {
	if toBoundary {
		t.moveTo(len(t.runes), extend)
		return
	}
	line, _ := t.lineCol(t.caret)
	t.moveTo(t.lines()[line][1], extend)
}

func (t *TextItem) SelectAll() {
	t.anchor = 0
	t.caret = len(t.runes)
}

// lineCol maps a rune index to (line, column).
func (t *TextItem) lineCol(i int) (int, int) {
	for li, sp := range t.lines() {
		if i <= sp[1] {
			return li, i - sp[0]
		}
	}
	spans := t.lines()
	last := len(spans) - 1
	return last, spans[last][1] - spans[last][0]
}

// indexOf maps (line, column) back to a rune index, clamping the column to
// the line length.
func (t *TextItem) indexOf(line, col int) int {
	spans := t.lines()
	if line < 0 {
		line = 0
	}
	if line >= len(spans) {
		line = len(spans) - 1
	}
	sp := spans[line]
	if col > sp[1]-sp[0] {
		col = sp[1] - sp[0]
	}
	return sp[0] + col
}

func isWordRune(r rune) bool { return !unicode.IsSpace(r) }

func (t *TextItem) wordLeft(i int) int {
	for i > 0 && !isWordRune(t.runes[i-1]) {
		i--
	}
	for i > 0 && isWordRune(t.runes[i-1]) {
		i--
	}
	return i
}

func (t *TextItem) wordRight(i int) int {
	for i < len(t.runes) && !isWordRune(t.runes[i]) {
		i++
	}
	for i < len(t.runes) && isWordRune(t.runes[i]) {
		i++
	}
	return i
}

// indexAt maps a canvas point onto the nearest caret position.
func (t *TextItem) indexAt(p geom.Pt) int {
	n := t.box.Normalized()
	spans := t.lines()
	line := int(math.Floor((p.Y - n.Y - textPad) / t.lineHeight()))
	if line < 0 {
		line = 0
	}
	if line >= len(spans) {
		line = len(spans) - 1
	}
	sp := spans[line]
	x := p.X - n.X - textPad
	best, bestDist := sp[0], math.Abs(x)
	for i := sp[0] + 1; i <= sp[1]; i++ {
		adv := t.advance(string(t.runes[sp[0]:i]))
		if d := math.Abs(x - adv); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// ClickAt routes a press inside an editing text item: single click places
// the caret, double selects the word, triple selects everything. Other
// press counts do nothing.
func (t *TextItem) ClickAt(p geom.Pt, count int) {
	switch count {
	case 1:
		t.moveTo(t.indexAt(p), false)
	case 2:
		i := t.indexAt(p)
		t.anchor = t.wordLeft(i)
		t.caret = t.wordRight(i)
	case 3:
		t.SelectAll()
	}
}

// DragTo extends the selection toward the pointer during a press-drag.
func (t *TextItem) DragTo(p geom.Pt, count int) {
	switch count {
	case 1:
		t.moveTo(t.indexAt(p), true)
	case 2:
		t.caret = t.wordRight(t.indexAt(p))
	}
}

// CopySelection puts the selected text on the system clipboard.
func (t *TextItem) CopySelection() bool {
	if !t.hasSelection() {
		return false
	}
	return clipboardWrite(string(t.runes[t.selStart():t.selEnd()])) == nil
}

func (t *TextItem) CutSelection() bool {
	if !t.CopySelection() {
		return false
	}
	t.deleteSelection()
	t.fitBox()
	return true
}

func (t *TextItem) Paste() bool {
	s, err := clipboardRead()
	if err != nil || s == "" {
		return false
	}
	t.Insert(strings.ReplaceAll(s, "\r\n", "\n"))
	return true
}

func (t *TextItem) Draw(ctx RenderContext) {
	n := t.box.Normalized()
	lh := t.lineHeight()
	spans := t.lines()
	selS, selE := t.selStart(), t.selEnd()
	y := n.Y + textPad
	for _, sp := range spans {
		line := string(t.runes[sp[0]:sp[1]])
		if t.editing && t.hasSelection() && selS < sp[1] && selE > sp[0] {
			s := max(selS, sp[0])
			e := min(selE, sp[1])
			x0 := n.X + textPad + t.advance(string(t.runes[sp[0]:s]))
			x1 := n.X + textPad + t.advance(string(t.runes[sp[0]:e]))
			ctx.HighlightRect(geom.B(x0, y, x1-x0, lh))
		}
		ctx.DrawText(line, geom.Pt{X: n.X + textPad, Y: y}, t.props)
		y += lh
	}
	if t.editing {
		line, _ := t.lineCol(t.caret)
		sp := spans[line]
		x := n.X + textPad + t.advance(string(t.runes[sp[0]:t.caret]))
		top := n.Y + textPad + float64(line)*lh
		ctx.DrawCaret(x, top, top+lh)
	}
	if !t.editing || len(t.runes) > 0 {
		return
	}
	// Empty box in edit mode: outline it so there is something to aim at.
	ctx.StrokeRect(n, t.props)
}

func (t *TextItem) SelectorCursor(int) Cursor { return CursorHand }

func (t *TextItem) Save() Node {
	n := newItemNode(t.name, t.box, t.props)
	n.Text = t.Text()
	return n
}

func (t *TextItem) Load(n Node) error {
	if err := loadItemNode(n, &t.baseItem); err != nil {
		return err
	}
	t.SetText(n.Text)
	return nil
}
