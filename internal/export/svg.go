/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"goannotate/internal/canvas"
	"goannotate/internal/geom"
)

// SVGOptions controls SVG export behavior.
// The coordinate system matches the canvas (units become user units); a
// viewBox maps the viewport onto the document.
type SVGOptions struct {
	Title string
}

// RenderSVG draws the collection into an SVG document.
func RenderSVG(col *canvas.Collection, view geom.Box, opt SVGOptions) ([]byte, error) {
	if col == nil {
		return nil, fmt.Errorf("collection is nil")
	}
	v := view.Normalized()
	if v.W <= 0 || v.H <= 0 {
		return nil, fmt.Errorf("viewport is empty")
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%s\" height=\"%s\" viewBox=\"%s %s %s %s\">\n",
		fnum(v.W), fnum(v.H), fnum(v.X), fnum(v.Y), fnum(v.W), fnum(v.H))
	if opt.Title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(opt.Title))
	}

	ctx := &svgContext{buf: &buf}
	col.DrawBodies(ctx)

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// ExportSVG renders the collection and writes the document to outPath.
func ExportSVG(col *canvas.Collection, view geom.Box, outPath string, opt SVGOptions) error {
	data, err := RenderSVG(col, view, opt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// svgContext emits SVG elements in canvas coordinates; the viewBox does the
// mapping, so no per-shape translation is needed.
type svgContext struct {
	buf *bytes.Buffer
}

func fnum(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func escapeXML(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func rgb(c canvas.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func opacity(c canvas.Color) string {
	return fnum(float64(c.A) / 255)
}

func strokeAttrs(p *canvas.Properties) string {
	return fmt.Sprintf("fill=\"none\" stroke=\"%s\" stroke-opacity=\"%s\" stroke-width=\"%s\"",
		rgb(p.Stroke), opacity(p.Stroke), fnum(p.Width))
}

func fillAttrs(p *canvas.Properties) string {
	return fmt.Sprintf("fill=\"%s\" fill-opacity=\"%s\" stroke=\"none\"",
		rgb(p.Fill), opacity(p.Fill))
}

func (s *svgContext) StrokeRect(b geom.Box, p *canvas.Properties) {
	n := b.Normalized()
	fmt.Fprintf(s.buf, "  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" %s/>\n",
		fnum(n.X), fnum(n.Y), fnum(n.W), fnum(n.H), strokeAttrs(p))
}

func (s *svgContext) FillRect(b geom.Box, p *canvas.Properties) {
	n := b.Normalized()
	fmt.Fprintf(s.buf, "  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" %s/>\n",
		fnum(n.X), fnum(n.Y), fnum(n.W), fnum(n.H), fillAttrs(p))
}

func (s *svgContext) StrokeOval(b geom.Box, p *canvas.Properties) {
	n := b.Normalized()
	fmt.Fprintf(s.buf, "  <ellipse cx=\"%s\" cy=\"%s\" rx=\"%s\" ry=\"%s\" %s/>\n",
		fnum(n.X+n.W/2), fnum(n.Y+n.H/2), fnum(n.W/2), fnum(n.H/2), strokeAttrs(p))
}

func (s *svgContext) FillOval(b geom.Box, p *canvas.Properties) {
	n := b.Normalized()
	fmt.Fprintf(s.buf, "  <ellipse cx=\"%s\" cy=\"%s\" rx=\"%s\" ry=\"%s\" %s/>\n",
		fnum(n.X+n.W/2), fnum(n.Y+n.H/2), fnum(n.W/2), fnum(n.H/2), fillAttrs(p))
}

func (s *svgContext) StrokeLine(a, b geom.Pt, p *canvas.Properties) {
	fmt.Fprintf(s.buf, "  <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" %s stroke-linecap=\"round\"/>\n",
		fnum(a.X), fnum(a.Y), fnum(b.X), fnum(b.Y), strokeAttrs(p))
}

func pointsAttr(pts []geom.Pt) string {
	parts := make([]string, len(pts))
	for i, pt := range pts {
		parts[i] = fnum(pt.X) + "," + fnum(pt.Y)
	}
	return strings.Join(parts, " ")
}

func (s *svgContext) StrokePolygon(pts []geom.Pt, p *canvas.Properties) {
	if len(pts) == 0 {
		return
	}
	fmt.Fprintf(s.buf, "  <polygon points=\"%s\" %s/>\n", pointsAttr(pts), strokeAttrs(p))
}

func (s *svgContext) FillPolygon(pts []geom.Pt, p *canvas.Properties) {
	if len(pts) == 0 {
		return
	}
	fmt.Fprintf(s.buf, "  <polygon points=\"%s\" %s/>\n", pointsAttr(pts), fillAttrs(p))
}

func (s *svgContext) DrawText(line string, at geom.Pt, p *canvas.Properties) {
	size := p.FontSize
	if size <= 0 {
		size = 14
	}
	// at is the top-left corner; shift down by an approximate ascent so the
	// baseline lands where raster output puts it.
	fmt.Fprintf(s.buf, "  <text x=\"%s\" y=\"%s\" font-family=\"sans-serif\" font-size=\"%s\" fill=\"%s\" fill-opacity=\"%s\">%s</text>\n",
		fnum(at.X), fnum(at.Y+size*0.8), fnum(size), rgb(p.Stroke), opacity(p.Stroke), escapeXML(line))
}

// Blur regions come out as frosted rectangles; SVG filters over raster
// content are not available without the backdrop image.
func (s *svgContext) Blur(b geom.Box) {
	n := b.Normalized()
	fmt.Fprintf(s.buf, "  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"#d2d2d2\" fill-opacity=\"0.9\" stroke=\"#808080\" stroke-width=\"1\"/>\n",
		fnum(n.X), fnum(n.Y), fnum(n.W), fnum(n.H))
}

func (s *svgContext) Magnify(b geom.Box, _ float64) {
	n := b.Normalized()
	s.Blur(b)
	fmt.Fprintf(s.buf, "  <ellipse cx=\"%s\" cy=\"%s\" rx=\"%s\" ry=\"%s\" fill=\"none\" stroke=\"#808080\" stroke-width=\"1\"/>\n",
		fnum(n.X+n.W/2), fnum(n.Y+n.H/2), fnum(n.W/2), fnum(n.H/2))
}

func (s *svgContext) DrawHandle(b geom.Box) {
	n := b.Normalized()
	fmt.Fprintf(s.buf, "  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"#ffffff\" stroke=\"#000000\" stroke-width=\"1\"/>\n",
		fnum(n.X), fnum(n.Y), fnum(n.W), fnum(n.H))
}

func (s *svgContext) DrawCaret(x, top, bottom float64) {
	fmt.Fprintf(s.buf, "  <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" stroke=\"#000000\" stroke-width=\"1\"/>\n",
		fnum(x), fnum(top), fnum(x), fnum(bottom))
}

func (s *svgContext) HighlightRect(b geom.Box) {
	n := b.Normalized()
	fmt.Fprintf(s.buf, "  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"#3366cc\" fill-opacity=\"0.35\"/>\n",
		fnum(n.X), fnum(n.Y), fnum(n.W), fnum(n.H))
}
