/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"goannotate/internal/canvas"
	"goannotate/internal/config"
	"goannotate/internal/crash"
	"goannotate/internal/export"
	"goannotate/internal/geom"
	applog "goannotate/internal/log"
	"goannotate/internal/storage"
	"goannotate/internal/telemetry"
	"goannotate/internal/ui"
	"goannotate/internal/undo"
	"goannotate/internal/version"
)

func usage() {
	fmt.Println("Go Annotate — screenshot annotation tool")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  goannotate version|-v|--version             Show version")
	fmt.Println("  goannotate list                              List documents in the library")
	fmt.Println("  goannotate export <name> <png|svg|pdf> [out] Render a document to a file")
	fmt.Println("  goannotate delete <name>                     Remove a document from the library")
	fmt.Println("  goannotate ui [<name>]                       Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var lib *storage.Library
	defer func() { crash.Recover(lib, nil) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Go Annotate — screenshot annotation tool")
			fmt.Println(version.String())
			return
		case "list":
			lib = openLibrary(l)
			docs, err := lib.ListDocuments(context.Background())
			if err != nil {
				fail(l, "list failed", err)
			}
			if len(docs) == 0 {
				fmt.Println("Library is empty.")
				return
			}
			for _, d := range docs {
				fmt.Printf("%-30s  updated %s\n", d.Name, d.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <name> and <png|svg|pdf>")
				usage()
				os.Exit(2)
			}
			name := args[2]
			format := strings.ToLower(args[3])
			lib = openLibrary(l)
			out := ""
			if len(args) >= 5 {
				out = args[4]
			}
			path, err := exportDocument(lib, name, format, out)
			if err != nil {
				fail(l, "export failed", err)
			}
			fmt.Println("Exported to", path)
			return
		case "delete":
			if len(args) < 3 {
				fmt.Println("delete requires <name>")
				usage()
				os.Exit(2)
			}
			lib = openLibrary(l)
			doc, err := findDocument(lib, args[2])
			if err != nil {
				fail(l, "delete failed", err)
			}
			if err := lib.DeleteDocument(context.Background(), doc.ID); err != nil {
				fail(l, "delete failed", err)
			}
			fmt.Printf("Deleted %q\n", doc.Name)
			return
		case "ui":
			var name string
			if len(args) >= 3 {
				name = args[2]
			}
			if err := ui.Run(name); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func openLibrary(l *slog.Logger) *storage.Library {
	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
	}
	path, err := cfg.LibraryPath()
	if err != nil {
		fail(l, "resolve library path failed", err)
	}
	lib, err := storage.Open(path)
	if err != nil {
		fail(l, "open library failed", err)
	}
	return lib
}

func findDocument(lib *storage.Library, name string) (storage.Document, error) {
	docs, err := lib.ListDocuments(context.Background())
	if err != nil {
		return storage.Document{}, err
	}
	for _, d := range docs {
		if d.Name == name {
			return d, nil
		}
	}
	return storage.Document{}, fmt.Errorf("no document named %q", name)
}

// headlessHost satisfies the canvas host interface for rendering without a
// window. The viewport is fixed up after loading, once the item extent is
// known.
type headlessHost struct {
	viewport geom.Box
}

func (h *headlessHost) DisplayedRect() geom.Box   { return h.viewport }
func (h *headlessHost) SetCursor(_ canvas.Cursor) {}
func (h *headlessHost) GrabFocus()                {}
func (h *headlessHost) QueueDraw()                {}

// exportDocument loads the named document and renders it to outPath (or a
// default name in the working directory) in the requested format.
func exportDocument(lib *storage.Library, name, format, outPath string) (string, error) {
	doc, err := findDocument(lib, name)
	if err != nil {
		return "", err
	}
	host := &headlessHost{viewport: geom.B(0, 0, 800, 600)}
	col := canvas.NewCollection(host, undo.NewBuffer(undo.Config{}), nil)
	if err := col.LoadXML(doc.Data); err != nil {
		return "", err
	}
	host.viewport = contentViewport(col, host.viewport)

	if outPath == "" {
		outPath = fmt.Sprintf("%s.%s", sanitize(doc.Name), format)
	}
	abs, _ := filepath.Abs(outPath)
	view := host.viewport
	switch format {
	case "png":
		err = export.ExportPNG(col, view, abs, export.PNGOptions{})
	case "svg":
		err = export.ExportSVG(col, view, abs, export.SVGOptions{Title: doc.Name})
	case "pdf":
		err = export.ExportPDF(col, view, abs, export.PDFOptions{Title: doc.Name})
	default:
		err = fmt.Errorf("unknown format %q (want png, svg or pdf)", format)
	}
	if err != nil {
		return "", err
	}
	telemetry.Event("export_completed", map[string]any{"format": format, "items": col.Len()})
	return abs, nil
}

// contentViewport grows the fallback viewport to cover every item, with a
// margin so strokes at the edge are not clipped.
func contentViewport(col *canvas.Collection, fallback geom.Box) geom.Box {
	if col.Len() == 0 {
		return fallback
	}
	bounds := col.ItemAt(0).Box().Normalized()
	for i := 1; i < col.Len(); i++ {
		bounds = bounds.Union(col.ItemAt(i).Box().Normalized())
	}
	return bounds.Inset(-16, -16)
}

func sanitize(name string) string {
	out := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)
	if out == "" {
		out = "document"
	}
	return out
}
