/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"goannotate/internal/canvas"
	"goannotate/internal/geom"
)

// PDFOptions controls PDF export behavior.
// Units are points (pt); one canvas unit maps to one point.
// Vector output uses built-in Helvetica for portability; font embedding can
// be added later.
//
// Blur and magnifier regions cannot be reproduced as vectors, so they are
// drawn as hatched placeholder rectangles.
type PDFOptions struct {
	Title string
}

// ExportPDF renders the collection onto a single-page PDF sized to the
// viewport and writes it to outPath.
func ExportPDF(col *canvas.Collection, view geom.Box, outPath string, opt PDFOptions) error {
	if col == nil {
		return fmt.Errorf("collection is nil")
	}
	v := view.Normalized()
	if v.W <= 0 || v.H <= 0 {
		return fmt.Errorf("viewport is empty")
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: v.W, Ht: v.H},
		OrientationStr: "",
	})
	title := opt.Title
	if title == "" {
		title = "Annotations"
	}
	pdf.SetTitle(title, false)
	pdf.AddPage()

	ctx := &pdfContext{pdf: pdf, view: v}
	col.DrawBodies(ctx)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// pdfContext adapts gofpdf to canvas.RenderContext. Coordinates are shifted
// so the viewport origin lands on the page origin.
type pdfContext struct {
	pdf  *gofpdf.Fpdf
	view geom.Box
}

func (p *pdfContext) tr(x, y float64) (float64, float64) {
	return x - p.view.X, y - p.view.Y
}

func (p *pdfContext) applyStroke(pr *canvas.Properties) {
	c := pr.Stroke
	p.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	p.pdf.SetAlpha(float64(c.A)/255, "Normal")
	p.pdf.SetLineWidth(pr.Width)
}

func (p *pdfContext) applyFill(pr *canvas.Properties) {
	c := pr.Fill
	p.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	p.pdf.SetAlpha(float64(c.A)/255, "Normal")
}

func (p *pdfContext) StrokeRect(b geom.Box, pr *canvas.Properties) {
	x, y := p.tr(b.X, b.Y)
	p.applyStroke(pr)
	p.pdf.Rect(x, y, b.W, b.H, "D")
}

func (p *pdfContext) FillRect(b geom.Box, pr *canvas.Properties) {
	x, y := p.tr(b.X, b.Y)
	p.applyFill(pr)
	p.pdf.Rect(x, y, b.W, b.H, "F")
}

func (p *pdfContext) StrokeOval(b geom.Box, pr *canvas.Properties) {
	cx, cy := p.tr(b.X+b.W/2, b.Y+b.H/2)
	p.applyStroke(pr)
	p.pdf.Ellipse(cx, cy, b.W/2, b.H/2, 0, "D")
}

func (p *pdfContext) FillOval(b geom.Box, pr *canvas.Properties) {
	cx, cy := p.tr(b.X+b.W/2, b.Y+b.H/2)
	p.applyFill(pr)
	p.pdf.Ellipse(cx, cy, b.W/2, b.H/2, 0, "F")
}

func (p *pdfContext) StrokeLine(a, b geom.Pt, pr *canvas.Properties) {
	x1, y1 := p.tr(a.X, a.Y)
	x2, y2 := p.tr(b.X, b.Y)
	p.applyStroke(pr)
	p.pdf.Line(x1, y1, x2, y2)
}

func (p *pdfContext) points(pts []geom.Pt) []gofpdf.PointType {
	out := make([]gofpdf.PointType, len(pts))
	for i, pt := range pts {
		x, y := p.tr(pt.X, pt.Y)
		out[i] = gofpdf.PointType{X: x, Y: y}
	}
	return out
}

func (p *pdfContext) StrokePolygon(pts []geom.Pt, pr *canvas.Properties) {
	if len(pts) == 0 {
		return
	}
	p.applyStroke(pr)
	p.pdf.Polygon(p.points(pts), "D")
}

func (p *pdfContext) FillPolygon(pts []geom.Pt, pr *canvas.Properties) {
	if len(pts) == 0 {
		return
	}
	p.applyFill(pr)
	p.pdf.Polygon(p.points(pts), "F")
}

func (p *pdfContext) DrawText(line string, at geom.Pt, pr *canvas.Properties) {
	x, y := p.tr(at.X, at.Y)
	c := pr.Stroke
	p.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	p.pdf.SetAlpha(float64(c.A)/255, "Normal")
	size := pr.FontSize
	if size <= 0 {
		size = 14
	}
	p.pdf.SetFont("Helvetica", "", size)
	// at is the top-left of the line; gofpdf places text at the baseline.
	_, unit := p.pdf.GetFontSize()
	p.pdf.Text(x, y+unit*0.8, line)
}

// Blur has no vector equivalent; draw a hatched placeholder so the reader
// can see where the effect sits.
func (p *pdfContext) Blur(b geom.Box) {
	p.placeholder(b)
}

func (p *pdfContext) Magnify(b geom.Box, _ float64) {
	p.placeholder(b)
	n := b.Normalized()
	cx, cy := p.tr(n.X+n.W/2, n.Y+n.H/2)
	p.pdf.Ellipse(cx, cy, n.W/2, n.H/2, 0, "D")
}

func (p *pdfContext) placeholder(b geom.Box) {
	n := b.Normalized()
	x, y := p.tr(n.X, n.Y)
	p.pdf.SetDrawColor(128, 128, 128)
	p.pdf.SetFillColor(210, 210, 210)
	p.pdf.SetAlpha(1, "Normal")
	p.pdf.SetLineWidth(1)
	p.pdf.Rect(x, y, n.W, n.H, "FD")
	p.pdf.Line(x, y, x+n.W, y+n.H)
	p.pdf.Line(x+n.W, y, x, y+n.H)
}

func (p *pdfContext) DrawHandle(b geom.Box) {
	x, y := p.tr(b.X, b.Y)
	p.pdf.SetDrawColor(0, 0, 0)
	p.pdf.SetFillColor(255, 255, 255)
	p.pdf.SetAlpha(1, "Normal")
	p.pdf.SetLineWidth(1)
	p.pdf.Rect(x, y, b.W, b.H, "FD")
}

func (p *pdfContext) DrawCaret(x, top, bottom float64) {
	x1, y1 := p.tr(x, top)
	_, y2 := p.tr(x, bottom)
	p.pdf.SetDrawColor(0, 0, 0)
	p.pdf.SetLineWidth(1)
	p.pdf.Line(x1, y1, x1, y2)
}

func (p *pdfContext) HighlightRect(b geom.Box) {
	x, y := p.tr(b.X, b.Y)
	p.pdf.SetFillColor(51, 102, 204)
	p.pdf.SetAlpha(0.35, "Normal")
	p.pdf.Rect(x, y, b.W, b.H, "F")
	p.pdf.SetAlpha(1, "Normal")
}
