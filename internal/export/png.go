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
	"image"
	"image/png"
	"os"
	"path/filepath"

	"goannotate/internal/canvas"
	"goannotate/internal/geom"
)

// PNGOptions controls PNG export behavior.
// - Scale: output pixels per canvas unit; 0 means 1.
// - Background: optional image painted under the annotations (the screenshot
//   being annotated); nil leaves a white surface.
// - IncludeSelection: also draw selection handles; off by default because
//   exports normally show only the artwork.
type PNGOptions struct {
	Scale            float64
	Background       image.Image
	IncludeSelection bool
}

// RenderImage draws the collection over the viewport and returns the pixels.
func RenderImage(col *canvas.Collection, view geom.Box, opt PNGOptions) image.Image {
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	r := NewRasterOver(view, scale, opt.Background)
	if opt.IncludeSelection {
		col.Draw(r)
	} else {
		col.DrawBodies(r)
	}
	return r.Image()
}

// ExportPNG renders the collection and writes a PNG file at outPath,
// creating parent directories as needed.
func ExportPNG(col *canvas.Collection, view geom.Box, outPath string, opt PNGOptions) error {
	if col == nil {
		return fmt.Errorf("collection is nil")
	}
	img := RenderImage(col, view, opt)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
