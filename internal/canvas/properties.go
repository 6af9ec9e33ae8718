/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import "fmt"

// Color is an 8-bit RGBA color.
type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Red         = Color{220, 50, 47, 255}
	Transparent = Color{0, 0, 0, 0}
)

// Hex returns the color as #rrggbbaa.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseHex parses #rrggbb or #rrggbbaa. Malformed input yields opaque black
// and an error.
func ParseHex(s string) (Color, error) {
	c := Black
	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
			return Black, fmt.Errorf("parse color %q: %w", s, err)
		}
		c.A = 255
	case 9:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A); err != nil {
			return Black, fmt.Errorf("parse color %q: %w", s, err)
		}
	default:
		return Black, fmt.Errorf("parse color %q: bad length", s)
	}
	return c, nil
}

// Properties is the shared style record. One instance is broadcast to all
// selected items; items hold their own copy so per-item overrides survive.
type Properties struct {
	Stroke     Color
	Fill       Color
	Width      float64
	FontFamily string
	FontSize   float64
}

// DefaultProperties returns the stock annotation style.
func DefaultProperties() *Properties {
	return &Properties{
		Stroke:     Red,
		Fill:       Color{220, 50, 47, 80},
		Width:      3,
		FontFamily: "sans",
		FontSize:   14,
	}
}

// Clone returns an independent copy.
func (p *Properties) Clone() *Properties {
	cp := *p
	return &cp
}
