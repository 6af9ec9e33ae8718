/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders the annotation canvas to PNG, PDF and SVG. Each
// backend implements canvas.RenderContext, so exporting is a single Draw
// pass over the collection.
package export

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"goannotate/internal/canvas"
	"goannotate/internal/geom"
)

// pixelateFactor is the block size of the blur effect at scale 1.
const pixelateFactor = 8

// Raster draws the canvas into an RGBA image via gg. Effect regions (blur,
// magnifier) operate on the pixels already painted, so item z-order doubles
// as effect order.
type Raster struct {
	ctx   *gg.Context
	view  geom.Box
	scale float64
}

// NewRaster prepares a white surface covering view at the given
// supersampling scale.
func NewRaster(view geom.Box, scale float64) *Raster {
	if scale <= 0 {
		scale = 1
	}
	v := view.Normalized()
	w := int(math.Ceil(v.W * scale))
	h := int(math.Ceil(v.H * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	ctx := gg.NewContext(w, h)
	ctx.SetRGB(1, 1, 1)
	ctx.Clear()
	return &Raster{ctx: ctx, view: v, scale: scale}
}

// NewRasterOver prepares a surface with the given background image (the
// screenshot being annotated) stretched over the viewport.
func NewRasterOver(view geom.Box, scale float64, background image.Image) *Raster {
	r := NewRaster(view, scale)
	if background != nil {
		b := r.ctx.Image().Bounds()
		dst := r.ctx.Image().(*image.RGBA)
		xdraw.ApproxBiLinear.Scale(dst, b, background, background.Bounds(), xdraw.Src, nil)
	}
	return r
}

// Image returns the rendered surface.
func (r *Raster) Image() image.Image { return r.ctx.Image() }

func (r *Raster) px(x, y float64) (float64, float64) {
	return (x - r.view.X) * r.scale, (y - r.view.Y) * r.scale
}

func (r *Raster) setStroke(p *canvas.Properties) {
	c := p.Stroke
	r.ctx.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
	r.ctx.SetLineWidth(p.Width * r.scale)
}

func (r *Raster) setFill(p *canvas.Properties) {
	c := p.Fill
	r.ctx.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
}

func (r *Raster) StrokeRect(b geom.Box, p *canvas.Properties) {
	x, y := r.px(b.X, b.Y)
	r.setStroke(p)
	r.ctx.DrawRectangle(x, y, b.W*r.scale, b.H*r.scale)
	r.ctx.Stroke()
}

func (r *Raster) FillRect(b geom.Box, p *canvas.Properties) {
	x, y := r.px(b.X, b.Y)
	r.setFill(p)
	r.ctx.DrawRectangle(x, y, b.W*r.scale, b.H*r.scale)
	r.ctx.Fill()
}

func (r *Raster) StrokeOval(b geom.Box, p *canvas.Properties) {
	cx, cy := r.px(b.X+b.W/2, b.Y+b.H/2)
	r.setStroke(p)
	r.ctx.DrawEllipse(cx, cy, b.W/2*r.scale, b.H/2*r.scale)
	r.ctx.Stroke()
}

func (r *Raster) FillOval(b geom.Box, p *canvas.Properties) {
	cx, cy := r.px(b.X+b.W/2, b.Y+b.H/2)
	r.setFill(p)
	r.ctx.DrawEllipse(cx, cy, b.W/2*r.scale, b.H/2*r.scale)
	r.ctx.Fill()
}

func (r *Raster) StrokeLine(a, b geom.Pt, p *canvas.Properties) {
	x1, y1 := r.px(a.X, a.Y)
	x2, y2 := r.px(b.X, b.Y)
	r.setStroke(p)
	r.ctx.DrawLine(x1, y1, x2, y2)
	r.ctx.Stroke()
}

func (r *Raster) path(pts []geom.Pt) {
	for i, p := range pts {
		x, y := r.px(p.X, p.Y)
		if i == 0 {
			r.ctx.MoveTo(x, y)
		} else {
			r.ctx.LineTo(x, y)
		}
	}
	r.ctx.ClosePath()
}

func (r *Raster) StrokePolygon(pts []geom.Pt, p *canvas.Properties) {
	if len(pts) == 0 {
		return
	}
	r.setStroke(p)
	r.path(pts)
	r.ctx.Stroke()
}

func (r *Raster) FillPolygon(pts []geom.Pt, p *canvas.Properties) {
	if len(pts) == 0 {
		return
	}
	r.setFill(p)
	r.path(pts)
	r.ctx.Fill()
}

func (r *Raster) DrawText(line string, at geom.Pt, p *canvas.Properties) {
	x, y := r.px(at.X, at.Y)
	c := p.Stroke
	r.ctx.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
	face := faceFor(p.FontSize * r.scale)
	r.ctx.SetFontFace(face)
	// at is the line's top-left corner; DrawString wants the baseline.
	ascent := float64(face.Metrics().Ascent.Round())
	r.ctx.DrawString(line, x, y+ascent)
}

// Blur pixelates the already-painted region by downscaling and blowing it
// back up with nearest-neighbor sampling.
func (r *Raster) Blur(b geom.Box) {
	rect := r.pixelRect(b)
	if rect.Empty() {
		return
	}
	src := r.ctx.Image()
	block := int(math.Max(1, pixelateFactor*r.scale))
	sw := maxInt(1, rect.Dx()/block)
	sh := maxInt(1, rect.Dy()/block)
	small := image.NewRGBA(image.Rect(0, 0, sw, sh))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), src, rect, xdraw.Src, nil)
	big := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	xdraw.NearestNeighbor.Scale(big, big.Bounds(), small, small.Bounds(), xdraw.Src, nil)
	r.ctx.DrawImage(big, rect.Min.X, rect.Min.Y)
}

// Magnify repaints the region with the area around its center enlarged by
// factor.
func (r *Raster) Magnify(b geom.Box, factor float64) {
	if factor <= 0 {
		factor = 2
	}
	rect := r.pixelRect(b)
	if rect.Empty() {
		return
	}
	src := r.ctx.Image()
	cw := int(float64(rect.Dx()) / factor)
	ch := int(float64(rect.Dy()) / factor)
	cx := rect.Min.X + (rect.Dx()-cw)/2
	cy := rect.Min.Y + (rect.Dy()-ch)/2
	srcRect := image.Rect(cx, cy, cx+cw, cy+ch)
	big := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	xdraw.ApproxBiLinear.Scale(big, big.Bounds(), src, srcRect, xdraw.Src, nil)
	r.ctx.DrawImage(big, rect.Min.X, rect.Min.Y)
}

func (r *Raster) DrawHandle(b geom.Box) {
	x, y := r.px(b.X, b.Y)
	r.ctx.SetRGB255(255, 255, 255)
	r.ctx.DrawRectangle(x, y, b.W*r.scale, b.H*r.scale)
	r.ctx.FillPreserve()
	r.ctx.SetRGB255(0, 0, 0)
	r.ctx.SetLineWidth(1)
	r.ctx.Stroke()
}

func (r *Raster) DrawCaret(x, top, bottom float64) {
	x1, y1 := r.px(x, top)
	_, y2 := r.px(x, bottom)
	r.ctx.SetRGB255(0, 0, 0)
	r.ctx.SetLineWidth(1)
	r.ctx.DrawLine(x1, y1, x1, y2)
	r.ctx.Stroke()
}

func (r *Raster) HighlightRect(b geom.Box) {
	x, y := r.px(b.X, b.Y)
	r.ctx.SetRGBA255(51, 102, 204, 90)
	r.ctx.DrawRectangle(x, y, b.W*r.scale, b.H*r.scale)
	r.ctx.Fill()
}

func (r *Raster) pixelRect(b geom.Box) image.Rectangle {
	n := b.Normalized()
	x0, y0 := r.px(n.X, n.Y)
	x1, y1 := r.px(n.X+n.W, n.Y+n.H)
	rect := image.Rect(int(x0), int(y0), int(math.Ceil(x1)), int(math.Ceil(y1)))
	return rect.Intersect(r.ctx.Image().Bounds())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// faceFor builds a Go Regular face at the given pixel size. Parsing is done
// once; faces are cheap.
func faceFor(size float64) font.Face {
	if size <= 0 {
		size = 14
	}
	return truetype.NewFace(regularFont, &truetype.Options{Size: size})
}

var regularFont = mustParseFont()

func mustParseFont() *truetype.Font {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic("parse embedded font: " + err.Error())
	}
	return f
}
