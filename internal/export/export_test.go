/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goannotate/internal/canvas"
	"goannotate/internal/geom"
	"goannotate/internal/undo"
)

type stubHost struct {
	viewport geom.Box
}

func (h *stubHost) DisplayedRect() geom.Box   { return h.viewport }
func (h *stubHost) SetCursor(_ canvas.Cursor) {}
func (h *stubHost) GrabFocus()                {}
func (h *stubHost) QueueDraw()                {}

func newTestCollection(t *testing.T) (*canvas.Collection, geom.Box) {
	t.Helper()
	view := geom.B(0, 0, 400, 300)
	host := &stubHost{viewport: view}
	col := canvas.NewCollection(host, undo.NewBuffer(undo.Config{}), nil)
	col.AddShapeItem(canvas.KindRectangleFilled)
	col.AddShapeItem(canvas.KindOval)
	col.AddShapeItem(canvas.KindStarFilled)
	col.AddShapeItem(canvas.KindArrow)
	txt := col.AddShapeItem(canvas.KindText).(*canvas.TextItem)
	txt.SetText("note & detail")
	col.ClearSelection()
	return col, view
}

func TestRenderImageSize(t *testing.T) {
	col, view := newTestCollection(t)

	img := RenderImage(col, view, PNGOptions{Scale: 2})
	b := img.Bounds()
	if b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("expected 800x600 output, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderImagePaintsShapes(t *testing.T) {
	col, view := newTestCollection(t)

	img := RenderImage(col, view, PNGOptions{})
	// Default items land centered; the fill must have altered the white
	// background at the viewport center.
	r, g, b, _ := img.At(200, 150).RGBA()
	if r>>8 == 255 && g>>8 == 255 && b>>8 == 255 {
		t.Fatalf("viewport center is still white, nothing was painted")
	}
}

func TestExportPNGWritesDecodableFile(t *testing.T) {
	col, view := newTestCollection(t)
	out := filepath.Join(t.TempDir(), "exports", "annotated.png")

	if err := ExportPNG(col, view, out, PNGOptions{}); err != nil {
		t.Fatalf("export png: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open exported file: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode exported png: %v", err)
	}
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 300 {
		t.Fatalf("unexpected image size %v", img.Bounds())
	}
}

func TestExportPNGWithBackground(t *testing.T) {
	col, view := newTestCollection(t)
	bg := image.NewRGBA(image.Rect(0, 0, 400, 300))
	out := filepath.Join(t.TempDir(), "shot.png")

	if err := ExportPNG(col, view, out, PNGOptions{Background: bg}); err != nil {
		t.Fatalf("export png with background: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
}

func TestRasterBlurChangesRegion(t *testing.T) {
	r := NewRaster(geom.B(0, 0, 100, 100), 1)
	red := &canvas.Properties{Stroke: canvas.Color{R: 255, A: 255}, Fill: canvas.Color{R: 255, A: 255}, Width: 1}
	// Paint a hard edge through the region, then pixelate it. Averaging the
	// edge into blocks must change the formerly solid pixel next to it.
	r.FillRect(geom.B(0, 0, 45, 100), red)
	before := r.Image().(*image.RGBA).RGBAAt(44, 50)
	r.Blur(geom.B(40, 40, 20, 20))
	after := r.Image().(*image.RGBA).RGBAAt(44, 50)
	if before == after {
		t.Fatalf("blur left the region untouched")
	}
}

func TestRenderSVGContainsElements(t *testing.T) {
	col, view := newTestCollection(t)

	data, err := RenderSVG(col, view, SVGOptions{Title: "session"})
	if err != nil {
		t.Fatalf("render svg: %v", err)
	}
	s := string(data)
	for _, want := range []string{"<svg", "viewBox=\"0 0 400 300\"", "<rect", "<ellipse", "<polygon", "<line", "<text", "note &amp; detail", "</svg>"} {
		if !strings.Contains(s, want) {
			t.Fatalf("svg output missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "stroke-width=\"0\"") {
		t.Fatalf("svg emitted zero stroke width")
	}
}

func TestRenderSVGEmptyViewport(t *testing.T) {
	col, _ := newTestCollection(t)
	if _, err := RenderSVG(col, geom.Box{}, SVGOptions{}); err == nil {
		t.Fatalf("expected error for empty viewport")
	}
}

func TestExportPDFWritesFile(t *testing.T) {
	col, view := newTestCollection(t)
	out := filepath.Join(t.TempDir(), "annotated.pdf")

	if err := ExportPDF(col, view, out, PDFOptions{Title: "session"}); err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read exported pdf: %v", err)
	}
	if len(b) == 0 || !strings.HasPrefix(string(b), "%PDF") {
		t.Fatalf("output is not a PDF (%d bytes)", len(b))
	}
}
