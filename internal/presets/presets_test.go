/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package presets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goannotate/internal/canvas"
)

func TestParseValidPreset(t *testing.T) {
	data := []byte(`{"name":"Warning","stroke":"#ff8800ff","fill":"#ff880040","width":4,"fontSize":16}`)
	p, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Name != "Warning" || p.Width != 4 {
		t.Fatalf("unexpected preset: %+v", p)
	}
	props, err := p.Properties()
	if err != nil {
		t.Fatalf("to properties: %v", err)
	}
	if props.Stroke != (canvas.Color{R: 255, G: 136, B: 0, A: 255}) {
		t.Fatalf("unexpected stroke %+v", props.Stroke)
	}
	if props.FontSize != 16 {
		t.Fatalf("unexpected font size %v", props.FontSize)
	}
	if props.FontFamily != "sans" {
		t.Fatalf("omitted font family should keep default, got %q", props.FontFamily)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"missing stroke":  `{"name":"x"}`,
		"bad color":       `{"name":"x","stroke":"red"}`,
		"width too small": `{"name":"x","stroke":"#000000","width":0.1}`,
		"unknown field":   `{"name":"x","stroke":"#000000","dash":"dotted"}`,
		"empty name":      `{"name":"","stroke":"#000000"}`,
	}
	for label, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected validation error", label)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := FromProperties("Team Review", canvas.DefaultProperties())

	path, err := Save(dir, p)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != "team-review.json" {
		t.Fatalf("unexpected file name %s", path)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != p {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, p)
	}
}

func TestLoadDirSortsAndReportsInvalid(t *testing.T) {
	dir := t.TempDir()
	if _, err := Save(dir, Preset{Name: "Zeta", Stroke: "#112233"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := Save(dir, Preset{Name: "Alpha", Stroke: "#445566"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"stroke":"#fff"}`), 0o644); err != nil {
		t.Fatalf("write broken: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatalf("write txt: %v", err)
	}

	got, err := LoadDir(dir)
	if err == nil || !strings.Contains(err.Error(), "broken.json") {
		t.Fatalf("expected error naming broken.json, got %v", err)
	}
	if len(got) != 2 || got[0].Name != "Alpha" || got[1].Name != "Zeta" {
		t.Fatalf("unexpected presets %+v", got)
	}
}

func TestLoadDirMissingIsEmpty(t *testing.T) {
	got, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no presets, got %+v", got)
	}
}

func TestBuiltinPresetsAreValid(t *testing.T) {
	for _, p := range Builtin() {
		if _, err := p.Properties(); err != nil {
			t.Fatalf("builtin %q: %v", p.Name, err)
		}
	}
}
