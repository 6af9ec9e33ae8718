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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	applog "goannotate/internal/log"
)

const packManifestName = "presetpack.manifest.txt"

// ExportPack zips every preset file under presetDir into a single .zip so a
// style set can be shared. The archive gets a small manifest at the root for
// quick human inspection. A missing or empty preset directory still produces
// an archive with only the manifest.
func ExportPack(presetDir, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("presets"), "export-pack").With(slog.String("dir", presetDir))
	if strings.TrimSpace(presetDir) == "" {
		return errors.New("presetDir is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("Go Annotate Preset Pack\nCreated: %s\nSource: %s\n\nEach .json entry is one style preset.\n",
		time.Now().Format(time.RFC3339), presetDir)
	w, err := zw.Create(packManifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	entries, err := os.ReadDir(presetDir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read preset dir: %w", err)
	}
	added := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		fw, err := zw.Create(e.Name())
		if err != nil {
			return fmt.Errorf("add %s: %w", e.Name(), err)
		}
		f, err := os.Open(filepath.Join(presetDir, e.Name()))
		if err != nil {
			return fmt.Errorf("open %s: %w", e.Name(), err)
		}
		if _, err := io.Copy(fw, f); err != nil {
			_ = f.Close()
			return fmt.Errorf("copy %s: %w", e.Name(), err)
		}
		_ = f.Close()
		added++
	}
	l.Info("preset pack exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return nil
}

// InstallPack extracts the .json presets of a pack into presetDir. Entries
// are schema-validated before they touch the disk; existing files are never
// overwritten; entries that would escape presetDir are rejected. Returns the
// count of files installed (skipped files are not counted).
func InstallPack(presetDir, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("presets"), "install-pack").With(slog.String("dir", presetDir))
	if strings.TrimSpace(presetDir) == "" {
		return 0, errors.New("presetDir is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	if err := os.MkdirAll(presetDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure preset dir: %w", err)
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := path.Clean(f.Name)
		if name == packManifestName || f.FileInfo().IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		// Flatten directories and reject anything trying to climb out.
		base := path.Base(name)
		if strings.HasPrefix(base, ".") || strings.Contains(name, "..") {
			l.Warn("skip suspicious entry", slog.String("entry", f.Name))
			continue
		}
		target := filepath.Join(presetDir, base)
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing preset", slog.String("path", target))
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return installed, fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return installed, fmt.Errorf("read entry %s: %w", f.Name, err)
		}
		if _, err := Parse(data); err != nil {
			l.Warn("skip invalid preset", slog.String("entry", f.Name), slog.Any("err", err))
			continue
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return installed, fmt.Errorf("write %s: %w", target, err)
		}
		installed++
	}
	l.Info("preset pack installed", slog.Int("files", installed))
	return installed, nil
}
