/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists annotation documents in a local SQLite library.
// A document is the serialized <items> payload plus naming metadata; the
// canvas core never touches this package directly, the application shell
// moves bytes between the two.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	applog "goannotate/internal/log"
	"goannotate/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// AutosaveDirName holds crash snapshots next to the library database.
	AutosaveDirName = "autosave"

	// schemaVersion tracks the local SQLite schema. Bump on breaking schema
	// changes and add a migration to runMigrations.
	schemaVersion = 1
)

// Document is one stored annotation set. Data holds the serialized items;
// listings omit it.
type Document struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Data      []byte
}

var ErrNotFound = errors.New("document not found")

// Library is the on-disk document store. Safe for use from a single process;
// the pool is capped at one connection as is usual for embedded SQLite.
type Library struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// Open creates or opens the library database at path, enables WAL mode and
// ensures the schema is current.
func Open(path string) (*Library, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "library_open").With(
		slog.String("path", path),
	)
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("library path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create library dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("library ready")
	return &Library{db: db, path: path, log: applog.WithComponent("storage")}, nil
}

func (l *Library) Close() error { return l.db.Close() }

func (l *Library) Path() string { return l.path }

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS documents (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			data        BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_name ON documents(name);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx,
			`INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`,
			schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx,
			`UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations brings an existing database up to schemaVersion. There is
// only one schema so far; the ladder is here so the next bump has a place
// to land.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		return fmt.Errorf("library schema %d is newer than supported %d", cur, schemaVersion)
	}
	for cur < schemaVersion {
		switch cur {
		default:
			return fmt.Errorf("no migration from schema %d", cur)
		}
	}
	return nil
}

// SaveDocument stores a new document and returns it with its generated id.
func (l *Library) SaveDocument(ctx context.Context, name string, data []byte) (Document, error) {
	now := time.Now().UTC()
	doc := Document{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
		Data:      data,
	}
	if doc.Name == "" {
		doc.Name = "untitled"
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO documents (id, name, created_at, updated_at, data) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano), doc.Data)
	if err != nil {
		return Document{}, fmt.Errorf("insert document: %w", err)
	}
	l.log.Info("document saved", slog.String("id", doc.ID), slog.String("name", doc.Name), slog.Int("bytes", len(data)))
	return doc, nil
}

// UpdateDocument replaces the payload of an existing document.
func (l *Library) UpdateDocument(ctx context.Context, id string, data []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := l.db.ExecContext(ctx,
		`UPDATE documents SET data=?, updated_at=? WHERE id=?`, data, now, id)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RenameDocument changes the display name.
func (l *Library) RenameDocument(ctx context.Context, id, name string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := l.db.ExecContext(ctx,
		`UPDATE documents SET name=?, updated_at=? WHERE id=?`, strings.TrimSpace(name), now, id)
	if err != nil {
		return fmt.Errorf("rename document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDocument loads one document including its payload.
func (l *Library) GetDocument(ctx context.Context, id string) (Document, error) {
	var doc Document
	var created, updated string
	err := l.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at, data FROM documents WHERE id=?`, id).
		Scan(&doc.ID, &doc.Name, &created, &updated, &doc.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	doc.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	doc.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return doc, nil
}

// ListDocuments returns all documents without payloads, most recently
// updated first.
func (l *Library) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM documents ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var created, updated string
		if err := rows.Scan(&doc.ID, &doc.Name, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		doc.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document.
func (l *Library) DeleteDocument(ctx context.Context, id string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM documents WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AutosaveDir returns the crash-snapshot directory next to the database.
func (l *Library) AutosaveDir() string {
	return filepath.Join(filepath.Dir(l.path), AutosaveDirName)
}

// AutosaveCrashSnapshot writes the serialized items to the autosave
// directory so an interrupted session can be recovered after a crash.
func (l *Library) AutosaveCrashSnapshot(data []byte) (string, error) {
	dir := l.AutosaveDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create autosave dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("autosave-%s.xml", stamp))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return path, fmt.Errorf("write autosave: %w", err)
	}
	l.log.Info("autosave snapshot written", slog.String("path", path))
	return path, nil
}
