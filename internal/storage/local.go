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
	"encoding/json"
	"log/slog"
	"path/filepath"
	"time"

	"kitedeck/internal/domain"
	applog "kitedeck/internal/log"
)

// LocalBackend persists decks to a directory on disk. It satisfies the
// persistence pipeline's Saver interface, so the editor can run fully
// offline: Save writes the manifest plus an autosave snapshot, Beacon is the
// synchronous best-effort teardown path.
type LocalBackend struct {
	Root string
	// KeepAutosaves bounds the autosave table; zero keeps everything.
	KeepAutosaves int

	log *slog.Logger
}

// NewLocalBackend returns a backend rooted at the given deck directory.
func NewLocalBackend(root string, keepAutosaves int) *LocalBackend {
	return &LocalBackend{Root: root, KeepAutosaves: keepAutosaves, log: applog.WithComponent("storage")}
}

// Load opens the deck at Root, falling back to the documented defaults when
// nothing is stored there yet.
func (b *LocalBackend) Load(ctx context.Context) (domain.DeckPayload, error) {
	h, err := Open(b.Root)
	if err != nil {
		return domain.DefaultPayload(), nil
	}
	return h.Payload, nil
}

// Save writes the manifest transactionally and appends an autosave snapshot.
func (b *LocalBackend) Save(ctx context.Context, p domain.DeckPayload) error {
	h := &DeckHandle{Root: b.Root, ManifestPath: manifestPath(b.Root), Payload: p}
	if err := Save(h); err != nil {
		return err
	}
	blob, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := WriteAutosave(ctx, b.Root, blob, time.Now()); err != nil {
		// The manifest write already succeeded; the autosave trail is
		// advisory.
		b.log.Warn("autosave write failed", slog.Any("err", err))
		return nil
	}
	if b.KeepAutosaves > 0 {
		if _, err := PruneAutosaves(ctx, b.Root, b.KeepAutosaves); err != nil {
			b.log.Warn("autosave prune failed", slog.Any("err", err))
		}
	}
	return nil
}

// Beacon saves synchronously and swallows failures; on local disk the
// fire-and-forget transport is just an unconfirmed write.
func (b *LocalBackend) Beacon(p domain.DeckPayload) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.Save(ctx, p); err != nil {
		b.log.Warn("beacon save failed", slog.Any("err", err))
	}
}

func manifestPath(root string) string {
	return filepath.Join(root, ManifestFileName)
}
