/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	applog "kitedeck/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// AutosaveDirName stores per-deck ephemeral data under the deck root.
	AutosaveDirName  = ".kd"
	AutosaveFileName = "autosave.sqlite"
)

// language=SQL
const insertAutosaveSQL = `INSERT INTO autosaves(ts, payload) VALUES (?, ?)`

// language=SQL
const selectLatestAutosaveSQL = `SELECT ts, payload FROM autosaves ORDER BY id DESC LIMIT 1`

// language=SQL
const pruneAutosavesSQL = `DELETE FROM autosaves WHERE id NOT IN (
	SELECT id FROM autosaves ORDER BY id DESC LIMIT ?
)`

// AutosavePath returns the full path to the deck's autosave database file.
func AutosavePath(root string) string {
	return filepath.Join(root, AutosaveDirName, AutosaveFileName)
}

// openAutosave ensures the autosave database exists under <root>/.kd, opens
// it in WAL mode with a single connection, and ensures the schema.
func openAutosave(root string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "autosave_open").With(slog.String("root", root))
	if root == "" {
		return nil, errors.New("deck root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, AutosaveDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create %s dir: %w", AutosaveDirName, err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(AutosavePath(root)))
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
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS autosaves (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		ts      TEXT NOT NULL,
		payload BLOB NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure autosave schema: %w", err)
	}
	return db, nil
}

// WriteAutosave appends a payload blob with a timestamp.
func WriteAutosave(ctx context.Context, root string, payload []byte, ts time.Time) error {
	db, err := openAutosave(root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, insertAutosaveSQL, ts.UTC().Format(time.RFC3339Nano), payload)
	return err
}

// LatestAutosave returns the most recent autosave blob, or nil if none.
func LatestAutosave(ctx context.Context, root string) ([]byte, time.Time, error) {
	db, err := openAutosave(root)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer func() { _ = db.Close() }()
	var tsStr string
	var blob []byte
	err = db.QueryRowContext(ctx, selectLatestAutosaveSQL).Scan(&tsStr, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, tsStr)
	if err != nil {
		return blob, time.Time{}, nil // return blob even if ts parse fails
	}
	return blob, ts, nil
}

// PruneAutosaves keeps at most keepLast autosaves and deletes older ones.
func PruneAutosaves(ctx context.Context, root string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	db, err := openAutosave(root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	res, err := db.ExecContext(ctx, pruneAutosavesSQL, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
