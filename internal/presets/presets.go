/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package presets loads named annotation styles from JSON files. Each file
// holds one preset and is validated against an embedded JSON schema before
// it can reach the canvas, so a hand-edited file cannot smuggle bad values
// into the style pipeline.
package presets

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"goannotate/internal/canvas"
)

//go:embed preset.schema.json
var schemaBytes []byte

// Preset is the on-disk shape of a named style. Colors are hex strings
// (#rrggbb or #rrggbbaa); zero-valued fields fall back to the stock style.
type Preset struct {
	Name       string  `json:"name"`
	Stroke     string  `json:"stroke"`
	Fill       string  `json:"fill,omitempty"`
	Width      float64 `json:"width,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
}

// Validate checks raw JSON against the preset schema.
func Validate(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("preset invalid: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// Parse validates and decodes a single preset document.
func Parse(data []byte) (Preset, error) {
	var p Preset
	if err := Validate(data); err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decode preset: %w", err)
	}
	return p, nil
}

// Load reads and parses one preset file.
func Load(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("read preset: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return Preset{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// LoadDir reads every *.json preset under dir, sorted by name. Invalid files
// are reported together so one broken preset does not hide the rest.
func LoadDir(dir string) ([]Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read preset dir: %w", err)
	}
	var out []Preset
	var bad []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		p, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			bad = append(bad, err.Error())
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(bad) > 0 {
		return out, fmt.Errorf("skipped invalid presets: %s", strings.Join(bad, "; "))
	}
	return out, nil
}

// Save writes the preset as pretty-printed JSON to dir, named after a
// slug of the preset name. Returns the written path.
func Save(dir string, p Preset) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode preset: %w", err)
	}
	if err := Validate(data); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create preset dir: %w", err)
	}
	path := filepath.Join(dir, slug(p.Name)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write preset: %w", err)
	}
	return path, nil
}

// FromProperties captures the current canvas style as a named preset.
func FromProperties(name string, props *canvas.Properties) Preset {
	return Preset{
		Name:       name,
		Stroke:     props.Stroke.Hex(),
		Fill:       props.Fill.Hex(),
		Width:      props.Width,
		FontFamily: props.FontFamily,
		FontSize:   props.FontSize,
	}
}

// Properties converts the preset into a canvas style, filling omitted
// fields from the stock defaults.
func (p Preset) Properties() (*canvas.Properties, error) {
	out := canvas.DefaultProperties()
	stroke, err := canvas.ParseHex(p.Stroke)
	if err != nil {
		return nil, fmt.Errorf("preset %q stroke: %w", p.Name, err)
	}
	out.Stroke = stroke
	if p.Fill != "" {
		fill, err := canvas.ParseHex(p.Fill)
		if err != nil {
			return nil, fmt.Errorf("preset %q fill: %w", p.Name, err)
		}
		out.Fill = fill
	}
	if p.Width > 0 {
		out.Width = p.Width
	}
	if p.FontFamily != "" {
		out.FontFamily = p.FontFamily
	}
	if p.FontSize > 0 {
		out.FontSize = p.FontSize
	}
	return out, nil
}

func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "preset"
	}
	return b.String()
}

// Builtin returns the presets shipped with the application.
func Builtin() []Preset {
	return []Preset{
		{Name: "Marker", Stroke: "#dc322fff", Fill: "#dc322f50", Width: 3, FontSize: 14},
		{Name: "Outline", Stroke: "#002b36ff", Fill: "#00000000", Width: 2, FontSize: 14},
		{Name: "Caption", Stroke: "#073642ff", Fill: "#fdf6e3d0", Width: 1.5, FontFamily: "sans", FontSize: 18},
	}
}
