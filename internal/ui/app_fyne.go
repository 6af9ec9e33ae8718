//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fcanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"goannotate/internal/canvas"
	"goannotate/internal/config"
	"goannotate/internal/crash"
	"goannotate/internal/export"
	"goannotate/internal/geom"
	applog "goannotate/internal/log"
	"goannotate/internal/presets"
	"goannotate/internal/storage"
	"goannotate/internal/telemetry"
	"goannotate/internal/undo"
)

// Run starts the Fyne-based annotation editor. docName, when non-empty,
// names a library document to open immediately.
func Run(docName string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
	}
	libPath, err := cfg.LibraryPath()
	if err != nil {
		return fmt.Errorf("resolve library path: %w", err)
	}
	lib, err := storage.Open(libPath)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	defer func() {
		if err := lib.Close(); err != nil {
			l.Error("close library", slog.Any("err", err))
		}
	}()

	if cfg.Canvas.SelectorSize > 0 {
		canvas.SelectorSize = cfg.Canvas.SelectorSize
	}
	buf := undo.NewBuffer(undo.Config{MaxDepth: cfg.Canvas.UndoDepth})
	ac := NewAnnotationCanvas(buf, propertiesFromConfig(cfg.Canvas))
	defer crash.Recover(lib, ac.Collection().SaveXML)

	fyneApp := app.NewWithID("goannotate")
	w := fyneApp.NewWindow("Go Annotate")
	ac.win = w

	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1000)
	winH := prefs.IntWithFallback("window.height", 700)
	if winW < 640 {
		winW = 640
	}
	if winH < 480 {
		winH = 480
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	ac.OnChanged = func() {
		undoDepth, redoDepth := buf.Stats()
		status.SetText(fmt.Sprintf("%d items | undo %d / redo %d", ac.Collection().Len(), undoDepth, redoDepth))
	}

	sess := &session{ac: ac, lib: lib, cfg: cfg, win: w, status: status, log: l}

	w.SetMainMenu(buildMainMenu(sess))
	content := container.NewBorder(buildToolbar(sess), status, nil, nil, ac)
	w.SetContent(content)
	ac.trackModifiers(w.Canvas())
	w.Canvas().Focus(ac)

	if docName != "" {
		sess.openByName(docName)
	}

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		w.Close()
	})
	w.ShowAndRun()
	return nil
}

// propertiesFromConfig turns the configured style seed into canvas
// properties, keeping the stock value for any field that fails to parse.
func propertiesFromConfig(c config.CanvasConfig) *canvas.Properties {
	p := canvas.DefaultProperties()
	if col, err := canvas.ParseHex(c.StrokeColor); err == nil {
		p.Stroke = col
	}
	if col, err := canvas.ParseHex(c.FillColor); err == nil {
		p.Fill = col
	}
	if c.StrokeWidth > 0 {
		p.Width = c.StrokeWidth
	}
	if c.FontFamily != "" {
		p.FontFamily = c.FontFamily
	}
	if c.FontSize > 0 {
		p.FontSize = c.FontSize
	}
	return p
}

// session binds the open document to the widgets acting on it.
type session struct {
	ac     *AnnotationCanvas
	lib    *storage.Library
	cfg    config.AppConfig
	win    fyne.Window
	status *widget.Label
	log    *slog.Logger

	docID   string
	docName string
}

func (s *session) newDocument() {
	s.ac.Collection().Clear()
	s.docID = ""
	s.docName = ""
	s.status.SetText("New document")
}

func (s *session) saveDocument() {
	data, err := s.ac.Collection().SaveXML()
	if err != nil {
		dialog.ShowError(err, s.win)
		return
	}
	if s.docID != "" {
		if err := s.lib.UpdateDocument(context.Background(), s.docID, data); err != nil {
			dialog.ShowError(err, s.win)
			return
		}
		telemetry.Event("document_saved", map[string]any{"items": s.ac.Collection().Len()})
		s.status.SetText(fmt.Sprintf("Saved %q", s.docName))
		return
	}
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Document name")
	items := []*widget.FormItem{widget.NewFormItem("Name", entry)}
	dialog.ShowForm("Save Document", "Save", "Cancel", items, func(ok bool) {
		if !ok || entry.Text == "" {
			return
		}
		doc, err := s.lib.SaveDocument(context.Background(), entry.Text, data)
		if err != nil {
			dialog.ShowError(err, s.win)
			return
		}
		s.docID = doc.ID
		s.docName = doc.Name
		telemetry.Event("document_saved", map[string]any{"items": s.ac.Collection().Len()})
		s.status.SetText(fmt.Sprintf("Saved %q", s.docName))
	}, s.win)
}

func (s *session) openDocument() {
	docs, err := s.lib.ListDocuments(context.Background())
	if err != nil {
		dialog.ShowError(err, s.win)
		return
	}
	if len(docs) == 0 {
		dialog.ShowInformation("Open Document", "The library is empty.", s.win)
		return
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	sel := widget.NewSelect(names, nil)
	sel.SetSelectedIndex(0)
	items := []*widget.FormItem{widget.NewFormItem("Document", sel)}
	dialog.ShowForm("Open Document", "Open", "Cancel", items, func(ok bool) {
		if !ok || sel.SelectedIndex() < 0 {
			return
		}
		s.loadDocument(docs[sel.SelectedIndex()].ID)
	}, s.win)
}

func (s *session) openByName(name string) {
	docs, err := s.lib.ListDocuments(context.Background())
	if err != nil {
		dialog.ShowError(err, s.win)
		return
	}
	for _, d := range docs {
		if d.Name == name {
			s.loadDocument(d.ID)
			return
		}
	}
	s.status.SetText(fmt.Sprintf("No document named %q", name))
}

func (s *session) loadDocument(id string) {
	doc, err := s.lib.GetDocument(context.Background(), id)
	if err != nil {
		dialog.ShowError(err, s.win)
		return
	}
	col := s.ac.Collection()
	col.Clear()
	if err := col.LoadXML(doc.Data); err != nil {
		dialog.ShowError(err, s.win)
		return
	}
	s.docID = doc.ID
	s.docName = doc.Name
	s.status.SetText(fmt.Sprintf("Opened %q (%d items)", doc.Name, col.Len()))
}

// exportAs renders the current canvas into the exports directory next to the
// library database.
func (s *session) exportAs(format string) {
	name := s.docName
	if name == "" {
		name = "untitled"
	}
	stamp := time.Now().Format("20060102-150405")
	dir := filepath.Join(filepath.Dir(s.lib.Path()), "exports")
	out := filepath.Join(dir, fmt.Sprintf("%s-%s.%s", name, stamp, format))

	col := s.ac.Collection()
	view := s.ac.DisplayedRect()
	var err error
	switch format {
	case "png":
		scale := s.cfg.Export.PNGScale
		err = export.ExportPNG(col, view, out, export.PNGOptions{Scale: scale, Background: s.ac.background})
	case "svg":
		err = export.ExportSVG(col, view, out, export.SVGOptions{Title: name})
	case "pdf":
		err = export.ExportPDF(col, view, out, export.PDFOptions{Title: name})
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		dialog.ShowError(err, s.win)
		return
	}
	telemetry.Event("export_completed", map[string]any{"format": format})
	s.log.Info("export written", slog.String("path", out))
	s.status.SetText("Exported " + out)
}

func buildMainMenu(s *session) *fyne.MainMenu {
	newItem := fyne.NewMenuItem("New", s.newDocument)
	newItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyN, Modifier: fyne.KeyModifierControl}
	openItem := fyne.NewMenuItem("Open…", s.openDocument)
	openItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}
	saveItem := fyne.NewMenuItem("Save", s.saveDocument)
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}
	exportPNG := fyne.NewMenuItem("Export PNG", func() { s.exportAs("png") })
	exportSVG := fyne.NewMenuItem("Export SVG", func() { s.exportAs("svg") })
	exportPDF := fyne.NewMenuItem("Export PDF", func() { s.exportAs("pdf") })
	fileMenu := fyne.NewMenu("File", newItem, openItem, saveItem,
		fyne.NewMenuItemSeparator(), exportPNG, exportSVG, exportPDF)

	col := s.ac.Collection()
	undoItem := fyne.NewMenuItem("Undo", func() { s.ac.undoLast() })
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}
	redoItem := fyne.NewMenuItem("Redo", func() { s.ac.redoLast() })
	redoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}
	cutItem := fyne.NewMenuItem("Cut", func() {
		if col.CutSelection() {
			s.ac.Refresh()
		}
	})
	cutItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyX, Modifier: fyne.KeyModifierControl}
	copyItem := fyne.NewMenuItem("Copy", func() { col.CopySelection() })
	copyItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyC, Modifier: fyne.KeyModifierControl}
	pasteItem := fyne.NewMenuItem("Paste", func() {
		if col.Paste() {
			s.ac.Refresh()
		}
	})
	pasteItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyV, Modifier: fyne.KeyModifierControl}
	selectAllItem := fyne.NewMenuItem("Select All", func() {
		if col.SelectAll() {
			s.ac.Refresh()
		}
	})
	selectAllItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyA, Modifier: fyne.KeyModifierControl}
	deleteItem := fyne.NewMenuItem("Delete", func() {
		if col.RemoveSelected() {
			s.ac.Refresh()
		}
	})
	editMenu := fyne.NewMenu("Edit", undoItem, redoItem, fyne.NewMenuItemSeparator(),
		cutItem, copyItem, pasteItem, selectAllItem, deleteItem)

	return fyne.NewMainMenu(fileMenu, editMenu)
}

// buildToolbar offers one button per item kind plus a style preset picker.
func buildToolbar(s *session) fyne.CanvasObject {
	col := s.ac.Collection()
	add := func(kind canvas.Kind) func() {
		return func() { col.AddShapeItem(kind) }
	}
	buttons := container.NewHBox(
		widget.NewButton("Rect", add(canvas.KindRectangle)),
		widget.NewButton("Rect●", add(canvas.KindRectangleFilled)),
		widget.NewButton("Oval", add(canvas.KindOval)),
		widget.NewButton("Oval●", add(canvas.KindOvalFilled)),
		widget.NewButton("Star", add(canvas.KindStar)),
		widget.NewButton("Star●", add(canvas.KindStarFilled)),
		widget.NewButton("Line", add(canvas.KindLine)),
		widget.NewButton("Arrow", add(canvas.KindArrow)),
		widget.NewButton("Text", add(canvas.KindText)),
		widget.NewButton("Blur", add(canvas.KindBlur)),
		widget.NewButton("Zoom", add(canvas.KindMagnifier)),
	)

	available := presets.Builtin()
	if dir, err := config.Dir(); err == nil {
		if user, err := presets.LoadDir(filepath.Join(dir, "presets")); err == nil {
			available = append(available, user...)
		} else if len(user) > 0 {
			available = append(available, user...)
			s.log.Warn("some presets were skipped", slog.Any("err", err))
		}
	}
	names := make([]string, len(available))
	for i, p := range available {
		names[i] = p.Name
	}
	styleSelect := widget.NewSelect(names, func(name string) {
		for _, p := range available {
			if p.Name != name {
				continue
			}
			props, err := p.Properties()
			if err != nil {
				dialog.ShowError(err, s.win)
				return
			}
			col.ApplyProperties(props)
			return
		}
	})
	styleSelect.PlaceHolder = "Style"

	return container.NewBorder(nil, nil, buttons, styleSelect)
}

const (
	doubleClickDelay = 400 * time.Millisecond
	clickSlop        = 5.0
)

// AnnotationCanvas is the interactive drawing surface. It renders the item
// collection through the raster backend and feeds pointer and keyboard
// events into the collection's state machines.
type AnnotationCanvas struct {
	widget.BaseWidget

	col  *canvas.Collection
	undo *undo.Buffer

	win        fyne.Window
	background image.Image
	cursor     canvas.Cursor
	mods       canvas.Mods

	lastPress  time.Time
	pressPos   geom.Pt
	clickCount int

	// OnChanged fires after every queued redraw; the shell uses it to keep
	// the status line current.
	OnChanged func()
}

func NewAnnotationCanvas(buf *undo.Buffer, props *canvas.Properties) *AnnotationCanvas {
	a := &AnnotationCanvas{undo: buf}
	a.col = canvas.NewCollection(a, buf, props)
	a.ExtendBaseWidget(a)
	return a
}

func (a *AnnotationCanvas) Collection() *canvas.Collection { return a.col }

// SetBackground places a screenshot under the annotations.
func (a *AnnotationCanvas) SetBackground(img image.Image) {
	a.background = img
	a.Refresh()
}

func (a *AnnotationCanvas) undoLast() {
	if _, ok := a.undo.Undo(); ok {
		a.QueueDraw()
	}
}

func (a *AnnotationCanvas) redoLast() {
	if _, ok := a.undo.Redo(); ok {
		a.QueueDraw()
	}
}

// DisplayedRect reports the visible viewport in canvas coordinates. The
// widget shows the whole canvas, so this is simply its own extent.
func (a *AnnotationCanvas) DisplayedRect() geom.Box {
	s := a.Size()
	return geom.B(0, 0, float64(s.Width), float64(s.Height))
}

func (a *AnnotationCanvas) SetCursor(c canvas.Cursor) {
	a.cursor = c
}

func (a *AnnotationCanvas) GrabFocus() {
	if a.win != nil {
		a.win.Canvas().Focus(a)
	}
}

func (a *AnnotationCanvas) QueueDraw() {
	a.Refresh()
	if a.OnChanged != nil {
		a.OnChanged()
	}
}

// Cursor maps the collection's cursor request onto the desktop set.
func (a *AnnotationCanvas) Cursor() desktop.Cursor {
	switch a.cursor {
	case canvas.CursorPointer:
		return desktop.PointerCursor
	case canvas.CursorHand:
		return desktop.CrosshairCursor
	case canvas.CursorText:
		return desktop.TextCursor
	}
	return desktop.DefaultCursor
}

func (a *AnnotationCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	a.mods = modsFrom(e.Modifier)
	p := geom.Pt{X: float64(e.Position.X), Y: float64(e.Position.Y)}
	now := time.Now()
	if now.Sub(a.lastPress) <= doubleClickDelay && math.Hypot(p.X-a.pressPos.X, p.Y-a.pressPos.Y) <= clickSlop {
		a.clickCount++
	} else {
		a.clickCount = 1
	}
	a.lastPress = now
	a.pressPos = p
	a.col.CursorPressed(p.X, p.Y, a.mods, a.clickCount)
	a.Refresh()
}

func (a *AnnotationCanvas) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	a.col.CursorReleased(float64(e.Position.X), float64(e.Position.Y), modsFrom(e.Modifier))
	a.Refresh()
}

func (a *AnnotationCanvas) Dragged(e *fyne.DragEvent) {
	a.col.CursorMoved(float64(e.Position.X), float64(e.Position.Y), a.mods)
	a.Refresh()
}

func (a *AnnotationCanvas) DragEnd() {}

func (a *AnnotationCanvas) MouseIn(_ *desktop.MouseEvent) {}

func (a *AnnotationCanvas) MouseMoved(e *desktop.MouseEvent) {
	a.col.CursorMoved(float64(e.Position.X), float64(e.Position.Y), modsFrom(e.Modifier))
}

func (a *AnnotationCanvas) MouseOut() {
	a.cursor = canvas.CursorDefault
}

func (a *AnnotationCanvas) FocusGained() {}

func (a *AnnotationCanvas) FocusLost() {}

func (a *AnnotationCanvas) TypedRune(r rune) {
	if a.col.TextTyped(string(r)) {
		a.Refresh()
	}
}

func (a *AnnotationCanvas) TypedKey(e *fyne.KeyEvent) {
	k := mapKey(e.Name)
	if k == canvas.KeyNone {
		return
	}
	if a.col.KeyPressed(k, a.mods) {
		a.QueueDraw()
	}
}

// trackModifiers mirrors shift/ctrl state from raw desktop key events;
// fyne's focus events do not carry modifier flags.
func (a *AnnotationCanvas) trackModifiers(c fyne.Canvas) {
	dc, ok := c.(desktop.Canvas)
	if !ok {
		return
	}
	dc.SetOnKeyDown(func(e *fyne.KeyEvent) { a.setModifier(e.Name, true) })
	dc.SetOnKeyUp(func(e *fyne.KeyEvent) { a.setModifier(e.Name, false) })
}

func (a *AnnotationCanvas) setModifier(name fyne.KeyName, down bool) {
	var m canvas.Mods
	switch name {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		m = canvas.ModShift
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		m = canvas.ModCtrl
	default:
		return
	}
	if down {
		a.mods |= m
	} else {
		a.mods &^= m
	}
}

func mapKey(name fyne.KeyName) canvas.Key {
	switch name {
	case fyne.KeyBackspace:
		return canvas.KeyBackspace
	case fyne.KeyDelete:
		return canvas.KeyDelete
	case fyne.KeyReturn, fyne.KeyEnter:
		return canvas.KeyEnter
	case fyne.KeyEscape:
		return canvas.KeyEscape
	case fyne.KeyLeft:
		return canvas.KeyLeft
	case fyne.KeyRight:
		return canvas.KeyRight
	case fyne.KeyUp:
		return canvas.KeyUp
	case fyne.KeyDown:
		return canvas.KeyDown
	case fyne.KeyHome:
		return canvas.KeyHome
	case fyne.KeyEnd:
		return canvas.KeyEnd
	}
	return canvas.KeyNone
}

func modsFrom(m fyne.KeyModifier) canvas.Mods {
	var out canvas.Mods
	if m&fyne.KeyModifierShift != 0 {
		out |= canvas.ModShift
	}
	if m&fyne.KeyModifierControl != 0 {
		out |= canvas.ModCtrl
	}
	return out
}

// CreateRenderer draws the collection through the raster exporter so the
// on-screen result matches PNG output pixel for pixel.
func (a *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	raster := fcanvas.NewRaster(a.render)
	return &annotationRenderer{ac: a, raster: raster}
}

func (a *AnnotationCanvas) render(w, h int) image.Image {
	view := a.DisplayedRect()
	scale := 1.0
	if view.W > 0 {
		scale = float64(w) / view.W
	}
	r := export.NewRasterOver(view, scale, a.background)
	a.col.Draw(r)
	return r.Image()
}

type annotationRenderer struct {
	ac     *AnnotationCanvas
	raster *fcanvas.Raster
}

func (r *annotationRenderer) Destroy()                     {}
func (r *annotationRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.raster} }
func (r *annotationRenderer) MinSize() fyne.Size           { return fyne.NewSize(400, 300) }
func (r *annotationRenderer) Layout(size fyne.Size)        { r.raster.Resize(size) }
func (r *annotationRenderer) Refresh()                     { r.raster.Refresh() }
