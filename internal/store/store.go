/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package store owns the live deck and exposes every mutating operation on
// it. All actions are synchronous, atomic with respect to each other, and
// total: an unknown kite or block id is a no-op that returns a zero-value
// sentinel, never an error or a panic. The store is an explicitly
// constructed container (no package singleton) so tests can run isolated
// instances.
package store

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"kitedeck/internal/domain"
	"kitedeck/internal/history"
	applog "kitedeck/internal/log"
)

// ChangeScope is a bitmask describing which slice of the document a mutation
// touched. Observers use it to filter; the persistence pipeline ignores
// changes where only the selection moved.
type ChangeScope uint8

const (
	ChangeBlocks ChangeScope = 1 << iota
	ChangeSelection
	ChangeCursor
	ChangeDeckMeta
)

// Change is delivered to subscribers after each applied mutation.
type Change struct {
	Scope ChangeScope
}

// SelectionOnly reports whether nothing but the block selection changed.
func (c Change) SelectionOnly() bool { return c.Scope == ChangeSelection }

// Options configures a Store.
type Options struct {
	// Clock supplies timestamps for kite UpdatedAt stamping; defaults to
	// time.Now.
	Clock func() time.Time
	// UndoDepth bounds the history stacks; defaults to history.DefaultDepth.
	UndoDepth int
}

// Store is the single-writer state container for one deck.
type Store struct {
	mu     sync.Mutex
	deck   domain.Deck
	loaded bool
	hist   *history.Manager
	subs   []func(Change)
	now    func() time.Time
	log    *slog.Logger
}

// New constructs an empty store. Lifecycle: construct, Load once, mutate,
// tear down with the process.
func New(opts Options) *Store {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Store{
		deck: domain.Deck{Kites: []domain.Kite{}, Theme: domain.DefaultThemeID, Title: "Untitled", TotalDurationMinutes: 25},
		hist: history.NewManager(opts.UndoDepth),
		now:  now,
		log:  applog.WithComponent("store"),
	}
}

// Subscribe registers a change observer. Observers run synchronously after
// the mutation is applied and the lock released; they must not mutate the
// store re-entrantly from another goroutine without expecting coalescing.
func (s *Store) Subscribe(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify(scope ChangeScope) {
	if scope == 0 {
		return
	}
	s.mu.Lock()
	subs := append(([]func(Change))(nil), s.subs...)
	s.mu.Unlock()
	c := Change{Scope: scope}
	for _, fn := range subs {
		fn(c)
	}
}

// Deck returns a read snapshot of the document. The kites slice is copied;
// kite values share their block slices with the live document, which is safe
// because mutations never write into an existing block slice in place.
func (s *Store) Deck() domain.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.deck
	d.Kites = append([]domain.Kite(nil), s.deck.Kites...)
	return d
}

// Payload projects the savable fields of the deck (selection excluded).
func (s *Store) Payload() domain.DeckPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.DeckPayload{
		Kites:                append([]domain.Kite(nil), s.deck.Kites...),
		CurrentKiteIndex:     s.deck.CurrentKiteIndex,
		CurrentTheme:         s.deck.Theme,
		Title:                s.deck.Title,
		TotalDurationMinutes: s.deck.TotalDurationMinutes,
	}
}

// Load installs a persisted payload as the live document and marks the store
// loaded. It resets history and selection.
func (s *Store) Load(p domain.DeckPayload) {
	s.mu.Lock()
	kites := p.Kites
	if kites == nil {
		kites = []domain.Kite{}
	}
	s.deck = domain.Deck{
		Kites:                kites,
		CurrentKiteIndex:     clampIndex(p.CurrentKiteIndex, len(kites)),
		Theme:                p.CurrentTheme,
		Title:                p.Title,
		TotalDurationMinutes: p.TotalDurationMinutes,
	}
	if s.deck.Theme == "" {
		s.deck.Theme = domain.DefaultThemeID
	}
	s.loaded = true
	s.hist.Clear()
	s.mu.Unlock()
	s.log.Info("deck loaded", slog.Int("kites", len(kites)), slog.String("theme", s.deck.Theme))
	s.notify(ChangeBlocks | ChangeSelection | ChangeCursor | ChangeDeckMeta)
}

// Loaded reports whether Load has completed.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Snapshot records the current block collection on the undo stack. Callers
// invoke it before a logical edit begins (drag start, text-edit session,
// structural CRUD); the store does not infer edit boundaries.
func (s *Store) Snapshot() {
	s.mu.Lock()
	blob := s.marshalKitesLocked()
	s.mu.Unlock()
	s.hist.Push(blob)
}

// Undo replaces the live kites collection with the previous snapshot.
// Returns false when there is nothing to undo.
func (s *Store) Undo() bool { return s.restore(s.hist.Undo) }

// Redo re-applies the most recently undone snapshot.
func (s *Store) Redo() bool { return s.restore(s.hist.Redo) }

func (s *Store) restore(op func(current []byte) ([]byte, bool)) bool {
	s.mu.Lock()
	current := s.marshalKitesLocked()
	blob, ok := op(current)
	if !ok {
		s.mu.Unlock()
		return false
	}
	var kites []domain.Kite
	if err := json.Unmarshal(blob, &kites); err != nil {
		// A snapshot we wrote ourselves failed to parse; keep the live state.
		s.mu.Unlock()
		s.log.Error("history snapshot unmarshal failed", slog.Any("err", err))
		return false
	}
	if kites == nil {
		kites = []domain.Kite{}
	}
	s.deck.Kites = kites
	s.deck.CurrentKiteIndex = clampIndex(s.deck.CurrentKiteIndex, len(kites))
	s.deck.SelectedBlockID = ""
	s.mu.Unlock()
	s.notify(ChangeBlocks | ChangeSelection | ChangeCursor)
	return true
}

func (s *Store) marshalKitesLocked() []byte {
	blob, err := json.Marshal(s.deck.Kites)
	if err != nil {
		// Kites contain only JSON-encodable fields; treat failure as empty.
		s.log.Error("kites marshal failed", slog.Any("err", err))
		return []byte("[]")
	}
	return blob
}

// --- structural sharing helpers ---

// touchKite copies the kites slice, the kite at index i and its block slice,
// stamps UpdatedAt, and returns a pointer into the new slice. Every other
// kite keeps reference equality across the update.
func (s *Store) touchKiteLocked(i int) *domain.Kite {
	kites := make([]domain.Kite, len(s.deck.Kites))
	copy(kites, s.deck.Kites)
	k := &kites[i]
	k.ContentBlocks = append([]domain.ContentBlock(nil), k.ContentBlocks...)
	k.UpdatedAt = s.now()
	s.deck.Kites = kites
	return k
}

func (s *Store) kiteIndexLocked(id string) int {
	for i, k := range s.deck.Kites {
		if k.ID == id {
			return i
		}
	}
	return -1
}

func blockIndex(k *domain.Kite, id string) int {
	for i, b := range k.ContentBlocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func clampIndex(i, length int) int {
	if length == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= length {
		return length - 1
	}
	return i
}
