/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package presets

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestExportInstallPackRoundTrip(t *testing.T) {
	src := t.TempDir()
	if _, err := Save(src, Preset{Name: "Alpha", Stroke: "#112233"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := Save(src, Preset{Name: "Beta", Stroke: "#445566", Width: 2}); err != nil {
		t.Fatalf("save: %v", err)
	}
	zipPath := filepath.Join(t.TempDir(), "pack.zip")
	if err := ExportPack(src, zipPath); err != nil {
		t.Fatalf("export pack: %v", err)
	}

	dst := t.TempDir()
	installed, err := InstallPack(dst, zipPath)
	if err != nil {
		t.Fatalf("install pack: %v", err)
	}
	if installed != 2 {
		t.Fatalf("expected 2 installed, got %d", installed)
	}
	got, err := LoadDir(dst)
	if err != nil {
		t.Fatalf("load installed presets: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Alpha" || got[1].Name != "Beta" {
		t.Fatalf("unexpected presets after install: %+v", got)
	}
}

func TestInstallPackSkipsExisting(t *testing.T) {
	src := t.TempDir()
	if _, err := Save(src, Preset{Name: "Alpha", Stroke: "#112233"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	zipPath := filepath.Join(t.TempDir(), "pack.zip")
	if err := ExportPack(src, zipPath); err != nil {
		t.Fatalf("export pack: %v", err)
	}

	dst := t.TempDir()
	if _, err := Save(dst, Preset{Name: "Alpha", Stroke: "#999999"}); err != nil {
		t.Fatalf("seed existing: %v", err)
	}
	installed, err := InstallPack(dst, zipPath)
	if err != nil {
		t.Fatalf("install pack: %v", err)
	}
	if installed != 0 {
		t.Fatalf("expected 0 installed over existing file, got %d", installed)
	}
	got, err := Load(filepath.Join(dst, "alpha.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Stroke != "#999999" {
		t.Fatalf("existing preset was overwritten: %+v", got)
	}
}

func TestInstallPackRejectsBadEntries(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "pack.zip")
	zf, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(zf)
	// Traversal attempt, invalid preset and a valid one.
	w, _ := zw.Create("../evil.json")
	_, _ = w.Write([]byte(`{"name":"evil","stroke":"#000000"}`))
	w, _ = zw.Create("broken.json")
	_, _ = w.Write([]byte(`{"stroke":"#fff"}`))
	w, _ = zw.Create("good.json")
	_, _ = w.Write([]byte(`{"name":"good","stroke":"#010203"}`))
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := zf.Close(); err != nil {
		t.Fatalf("close zip file: %v", err)
	}

	dst := t.TempDir()
	installed, err := InstallPack(dst, zipPath)
	if err != nil {
		t.Fatalf("install pack: %v", err)
	}
	if installed != 1 {
		t.Fatalf("expected only the valid entry installed, got %d", installed)
	}
	if _, err := os.Stat(filepath.Join(dst, "good.json")); err != nil {
		t.Fatalf("good.json missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dst), "evil.json")); err == nil {
		t.Fatalf("traversal entry escaped the preset dir")
	}
}

func TestExportPackMissingSourceStillCreatesArchive(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "pack.zip")
	if err := ExportPack(filepath.Join(t.TempDir(), "nope"), zipPath); err != nil {
		t.Fatalf("export pack: %v", err)
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open produced zip: %v", err)
	}
	defer r.Close()
	if len(r.File) != 1 || r.File[0].Name != packManifestName {
		t.Fatalf("expected only the manifest, got %d entries", len(r.File))
	}
}
