/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package storage persists decks on the local filesystem: a human-readable
// JSON manifest written transactionally with timestamped backups, plus an
// embedded SQLite autosave store for crash recovery.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"kitedeck/internal/domain"
)

const (
	ManifestFileName = "deck.json"
	BackupsDirName   = "backups"
)

var standardSubDirs = []string{
	"assets",
	"exports",
	BackupsDirName,
}

// DeckHandle tracks a deck directory on disk. Root contains deck.json and
// the standard subfolders.
type DeckHandle struct {
	Root         string
	ManifestPath string
	Payload      domain.DeckPayload
}

// Init creates a deck directory at root (creating it if needed), scaffolds
// the standard subfolders, and writes the manifest transactionally.
func Init(root string, payload domain.DeckPayload) (*DeckHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create deck root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	h := &DeckHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Payload:      payload,
	}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads an existing deck from the given root directory. A manifest that
// cannot be read, fails schema validation or fails to parse falls back to
// the latest backup.
func Open(root string) (*DeckHandle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err != nil {
		p, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return &DeckHandle{Root: root, ManifestPath: mpath, Payload: *p}, nil
	}
	p, perr := parseManifest(b)
	if perr != nil {
		bp, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", perr, berr)
		}
		return &DeckHandle{Root: root, ManifestPath: mpath, Payload: *bp}, nil
	}
	return &DeckHandle{Root: root, ManifestPath: mpath, Payload: *p}, nil
}

func parseManifest(b []byte) (*domain.DeckPayload, error) {
	if err := ValidateManifest(b); err != nil {
		return nil, err
	}
	var p domain.DeckPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	if p.Kites == nil {
		p.Kites = []domain.Kite{}
	}
	return &p, nil
}

// Save writes the handle's payload to disk with transactional semantics and
// a timestamped backup of the previous manifest (if present).
func Save(h *DeckHandle) error {
	if h == nil {
		return errors.New("nil DeckHandle")
	}
	if h.Root == "" || h.ManifestPath == "" {
		return errors.New("invalid DeckHandle: missing paths")
	}
	data, err := json.MarshalIndent(h.Payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(h.ManifestPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp))
		if cerr := copyFile(h.ManifestPath, bpath); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}

	// Write to a temp file in the same directory, then rename over the target.
	dir := filepath.Dir(h.ManifestPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", ManifestFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	// On Windows, replace by removing the destination first.
	if _, err := os.Stat(h.ManifestPath); err == nil {
		_ = os.Remove(h.ManifestPath)
	}
	if rerr := os.Rename(temp, h.ManifestPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	return nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

func openFromLatestBackup(root string) (*domain.DeckPayload, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	for i := len(candidates) - 1; i >= 0; i-- {
		b, err := os.ReadFile(candidates[i])
		if err != nil {
			continue
		}
		if p, perr := parseManifest(b); perr == nil {
			return p, nil
		}
	}
	return nil, errors.New("no readable backup found")
}
