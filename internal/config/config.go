/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal, so older binaries tolerate newer files.

type GeneralConfig struct {
	Theme string `yaml:"theme"` // "system" | "light" | "dark" (informational for now)
}

// CanvasConfig seeds the annotation defaults: handle size and the stock
// style applied to new items.
type CanvasConfig struct {
	SelectorSize float64 `yaml:"selector_size"`
	StrokeColor  string  `yaml:"stroke_color"` // #rrggbb or #rrggbbaa
	FillColor    string  `yaml:"fill_color"`
	StrokeWidth  float64 `yaml:"stroke_width"`
	FontFamily   string  `yaml:"font_family"`
	FontSize     float64 `yaml:"font_size"`
	UndoDepth    int     `yaml:"undo_depth"`
}

// LibraryConfig locates the local annotation-document library database.
type LibraryConfig struct {
	Path string `yaml:"path"` // empty = <config dir>/library.db
}

type ExportConfig struct {
	PNGScale float64 `yaml:"png_scale"` // raster export supersampling factor
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Library       LibraryConfig `yaml:"library"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Theme: "system"},
		Canvas: CanvasConfig{
			SelectorSize: 8,
			StrokeColor:  "#dc322fff",
			FillColor:    "#dc322f50",
			StrokeWidth:  3,
			FontFamily:   "sans",
			FontSize:     14,
			UndoDepth:    200,
		},
		Library: LibraryConfig{Path: ""},
		Export:  ExportConfig{PNGScale: 1},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvLibraryPath  = "GAN_LIBRARY_PATH"
	EnvUndoDepth    = "GAN_UNDO_DEPTH"
	EnvSelectorSize = "GAN_SELECTOR_SIZE"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GAN_LOG_LEVEL"
	EnvLogFormat = "GAN_LOG_FORMAT"
	EnvLogSource = "GAN_LOG_SOURCE"
	EnvLogFile   = "GAN_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Dir returns the per-user configuration directory for the app.
func Dir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoAnnotate")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoAnnotate")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "goannotate")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// LibraryPath resolves the effective library database location.
func (c AppConfig) LibraryPath() (string, error) {
	if p := strings.TrimSpace(c.Library.Path); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "library.db"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	if src.Canvas.SelectorSize > 0 {
		dst.Canvas.SelectorSize = src.Canvas.SelectorSize
	}
	if strings.TrimSpace(src.Canvas.StrokeColor) != "" {
		dst.Canvas.StrokeColor = strings.TrimSpace(src.Canvas.StrokeColor)
	}
	if strings.TrimSpace(src.Canvas.FillColor) != "" {
		dst.Canvas.FillColor = strings.TrimSpace(src.Canvas.FillColor)
	}
	if src.Canvas.StrokeWidth > 0 {
		dst.Canvas.StrokeWidth = src.Canvas.StrokeWidth
	}
	if strings.TrimSpace(src.Canvas.FontFamily) != "" {
		dst.Canvas.FontFamily = strings.TrimSpace(src.Canvas.FontFamily)
	}
	if src.Canvas.FontSize > 0 {
		dst.Canvas.FontSize = src.Canvas.FontSize
	}
	if src.Canvas.UndoDepth > 0 {
		dst.Canvas.UndoDepth = src.Canvas.UndoDepth
	}
	if strings.TrimSpace(src.Library.Path) != "" {
		dst.Library.Path = strings.TrimSpace(src.Library.Path)
	}
	if src.Export.PNGScale > 0 {
		dst.Export.PNGScale = src.Export.PNGScale
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvLibraryPath)); v != "" {
		cfg.Library.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvUndoDepth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Canvas.UndoDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSelectorSize)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Canvas.SelectorSize = f
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	switch key {
	case "library.path":
		if os.Getenv(EnvLibraryPath) != "" {
			return EnvLibraryPath, true
		}
	case "canvas.undo_depth":
		if os.Getenv(EnvUndoDepth) != "" {
			return EnvUndoDepth, true
		}
	case "canvas.selector_size":
		if os.Getenv(EnvSelectorSize) != "" {
			return EnvSelectorSize, true
		}
	case "logging.level":
		if os.Getenv(EnvLogLevel) != "" {
			return EnvLogLevel, true
		}
	case "logging.format":
		if os.Getenv(EnvLogFormat) != "" {
			return EnvLogFormat, true
		}
	case "logging.source":
		if os.Getenv(EnvLogSource) != "" {
			return EnvLogSource, true
		}
	case "logging.file":
		if os.Getenv(EnvLogFile) != "" {
			return EnvLogFile, true
		}
	}
	return "", false
}
