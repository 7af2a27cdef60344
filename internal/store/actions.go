/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package store

import (
	"kitedeck/internal/domain"
	"kitedeck/internal/geometry"
)

// --- kite CRUD ---

// AddKite appends an empty kite, makes it current and clears the block
// selection. Returns the new kite id.
func (s *Store) AddKite() string {
	s.mu.Lock()
	k := domain.NewKite(s.now())
	s.deck.Kites = append(append([]domain.Kite(nil), s.deck.Kites...), k)
	s.deck.CurrentKiteIndex = len(s.deck.Kites) - 1
	s.deck.SelectedBlockID = ""
	s.mu.Unlock()
	s.notify(ChangeBlocks | ChangeCursor | ChangeSelection)
	return k.ID
}

// DeleteKite removes the kite with the given id, re-clamping the cursor and
// clearing the block selection. Unknown ids are a no-op.
func (s *Store) DeleteKite(id string) bool {
	s.mu.Lock()
	idx := s.kiteIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	kites := make([]domain.Kite, 0, len(s.deck.Kites)-1)
	kites = append(kites, s.deck.Kites[:idx]...)
	kites = append(kites, s.deck.Kites[idx+1:]...)
	s.deck.Kites = kites
	if idx <= s.deck.CurrentKiteIndex {
		s.deck.CurrentKiteIndex = clampIndex(s.deck.CurrentKiteIndex, len(kites))
	}
	s.deck.SelectedBlockID = ""
	s.mu.Unlock()
	s.notify(ChangeBlocks | ChangeCursor | ChangeSelection)
	return true
}

// DuplicateKite deep-copies the kite, assigns fresh ids to it and its blocks,
// and inserts the copy immediately after the original. Returns the new id,
// or "" for unknown ids.
func (s *Store) DuplicateKite(id string) string {
	s.mu.Lock()
	idx := s.kiteIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ""
	}
	dup := domain.CloneKite(s.deck.Kites[idx], s.now())
	kites := make([]domain.Kite, 0, len(s.deck.Kites)+1)
	kites = append(kites, s.deck.Kites[:idx+1]...)
	kites = append(kites, dup)
	kites = append(kites, s.deck.Kites[idx+1:]...)
	s.deck.Kites = kites
	// keep the cursor on the same kite it pointed at before the insert
	if idx < s.deck.CurrentKiteIndex {
		s.deck.CurrentKiteIndex++
	}
	s.mu.Unlock()
	s.notify(ChangeBlocks | ChangeCursor)
	return dup.ID
}

// ReorderKites moves the kite at from to position to. Out-of-range indices
// are a no-op. If the moved kite was current, the cursor follows it.
func (s *Store) ReorderKites(from, to int) bool {
	s.mu.Lock()
	n := len(s.deck.Kites)
	if from < 0 || from >= n || to < 0 || to >= n {
		s.mu.Unlock()
		return false
	}
	if from == to {
		s.mu.Unlock()
		return true
	}
	kites := make([]domain.Kite, n)
	copy(kites, s.deck.Kites)
	moved := kites[from]
	kites = append(kites[:from], kites[from+1:]...)
	rest := append(kites[:to:to], append([]domain.Kite{moved}, kites[to:]...)...)
	s.deck.Kites = rest

	switch cur := s.deck.CurrentKiteIndex; {
	case cur == from:
		s.deck.CurrentKiteIndex = to
	case from < cur && to >= cur:
		s.deck.CurrentKiteIndex--
	case from > cur && to <= cur:
		s.deck.CurrentKiteIndex++
	}
	s.mu.Unlock()
	s.notify(ChangeBlocks | ChangeCursor)
	return true
}

// SetCurrentKite moves the cursor, clamped into range. Changing kites never
// carries a stale block selection forward.
func (s *Store) SetCurrentKite(index int) {
	s.mu.Lock()
	s.deck.CurrentKiteIndex = clampIndex(index, len(s.deck.Kites))
	s.deck.SelectedBlockID = ""
	s.mu.Unlock()
	s.notify(ChangeCursor | ChangeSelection)
}

// GoToNextKite advances the cursor by one, clamped at the end.
func (s *Store) GoToNextKite() { s.step(1) }

// GoToPreviousKite moves the cursor back by one, clamped at the start.
func (s *Store) GoToPreviousKite() { s.step(-1) }

func (s *Store) step(delta int) {
	s.mu.Lock()
	s.deck.CurrentKiteIndex = clampIndex(s.deck.CurrentKiteIndex+delta, len(s.deck.Kites))
	s.deck.SelectedBlockID = ""
	s.mu.Unlock()
	s.notify(ChangeCursor | ChangeSelection)
}

// --- block CRUD (always on the current kite) ---

// AddBlock appends a block of the given type with its defaults to the current
// kite and selects it. An optional content argument overrides the placeholder.
// Returns "" when the deck has no kites.
func (s *Store) AddBlock(t domain.BlockType, content ...string) string {
	s.mu.Lock()
	if len(s.deck.Kites) == 0 {
		s.mu.Unlock()
		return ""
	}
	b := domain.NewContentBlock(t)
	if len(content) > 0 {
		b.Content = content[0]
	}
	k := s.touchKiteLocked(s.deck.CurrentKiteIndex)
	k.ContentBlocks = append(k.ContentBlocks, b)
	s.deck.SelectedBlockID = b.ID
	s.mu.Unlock()
	s.notify(ChangeBlocks | ChangeSelection)
	return b.ID
}

// PositionPatch merges only the supplied axes into a block position.
type PositionPatch struct {
	X      *float64
	Y      *float64
	Width  *float64
	Height *float64
}

// StylePatch merges only the supplied style fields.
type StylePatch struct {
	FontSize   *int
	FontWeight *string
	TextAlign  *string
	Color      *string
}

// BlockPatch is a partial block update; nil fields are left untouched.
type BlockPatch struct {
	Content  *string
	Position *PositionPatch
	Style    *StylePatch
	ZIndex   *int
}

// UpdateBlock applies a partial update to a block on the current kite.
func (s *Store) UpdateBlock(id string, patch BlockPatch) bool {
	return s.withBlock(id, func(b *domain.ContentBlock) {
		if patch.Content != nil {
			b.Content = *patch.Content
		}
		if patch.Position != nil {
			mergePosition(&b.Position, *patch.Position)
		}
		if patch.Style != nil {
			p := patch.Style
			if p.FontSize != nil {
				b.Style.FontSize = *p.FontSize
			}
			if p.FontWeight != nil {
				b.Style.FontWeight = *p.FontWeight
			}
			if p.TextAlign != nil {
				b.Style.TextAlign = *p.TextAlign
			}
			if p.Color != nil {
				b.Style.Color = *p.Color
			}
		}
		if patch.ZIndex != nil {
			z := *patch.ZIndex
			if z < 1 {
				z = 1
			}
			b.ZIndex = z
		}
	})
}

// UpdateBlockPosition merges the supplied axes into the block position,
// preserving the rest, and clamps the origin to [0, 100-size].
func (s *Store) UpdateBlockPosition(id string, patch PositionPatch) bool {
	return s.withBlock(id, func(b *domain.ContentBlock) {
		mergePosition(&b.Position, patch)
	})
}

// UpdateBlockContent replaces the block's content text.
func (s *Store) UpdateBlockContent(id, text string) bool {
	return s.withBlock(id, func(b *domain.ContentBlock) { b.Content = text })
}

// DeleteBlock removes a block from the current kite, clearing the selection
// iff the deleted block was selected.
func (s *Store) DeleteBlock(id string) bool {
	s.mu.Lock()
	ki, bi := s.locateBlockLocked(id)
	if bi < 0 {
		s.mu.Unlock()
		return false
	}
	k := s.touchKiteLocked(ki)
	k.ContentBlocks = append(k.ContentBlocks[:bi], k.ContentBlocks[bi+1:]...)
	scope := ChangeBlocks
	if s.deck.SelectedBlockID == id {
		s.deck.SelectedBlockID = ""
		scope |= ChangeSelection
	}
	s.mu.Unlock()
	s.notify(scope)
	return true
}

// DuplicateBlock copies a block on the current kite, nudges the copy by
// +2/+2 percentage points so it is visibly distinct, inserts it immediately
// after the original and selects it. Returns "" for unknown ids.
func (s *Store) DuplicateBlock(id string) string {
	s.mu.Lock()
	ki, bi := s.locateBlockLocked(id)
	if bi < 0 {
		s.mu.Unlock()
		return ""
	}
	k := s.touchKiteLocked(ki)
	dup := domain.CloneBlock(k.ContentBlocks[bi])
	r := geometry.R(dup.Position.X+2, dup.Position.Y+2, dup.Position.Width, dup.Position.Height).ClampToCanvas()
	dup.Position.X, dup.Position.Y = r.X, r.Y
	blocks := make([]domain.ContentBlock, 0, len(k.ContentBlocks)+1)
	blocks = append(blocks, k.ContentBlocks[:bi+1]...)
	blocks = append(blocks, dup)
	blocks = append(blocks, k.ContentBlocks[bi+1:]...)
	k.ContentBlocks = blocks
	s.deck.SelectedBlockID = dup.ID
	s.mu.Unlock()
	s.notify(ChangeBlocks | ChangeSelection)
	return dup.ID
}

// SelectBlock marks a block on the current kite as selected; "" clears.
// Selecting a block that is not on the current kite is a no-op.
func (s *Store) SelectBlock(id string) bool {
	s.mu.Lock()
	if id != "" {
		if _, bi := s.locateBlockLocked(id); bi < 0 {
			s.mu.Unlock()
			return false
		}
	}
	s.deck.SelectedBlockID = id
	s.mu.Unlock()
	s.notify(ChangeSelection)
	return true
}

// ClearSelection drops the block selection.
func (s *Store) ClearSelection() { s.SelectBlock("") }

// SelectedBlockID returns the current selection, "" when none.
func (s *Store) SelectedBlockID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.SelectedBlockID
}

// --- layering ---

// BringToFront raises the block above every other block on its kite.
func (s *Store) BringToFront(id string) bool {
	s.mu.Lock()
	ki, bi := s.locateBlockLocked(id)
	if bi < 0 {
		s.mu.Unlock()
		return false
	}
	k := s.touchKiteLocked(ki)
	maxZ := 1
	for i, b := range k.ContentBlocks {
		if i == bi {
			continue
		}
		if z := b.EffectiveZ(); z > maxZ {
			maxZ = z
		}
	}
	k.ContentBlocks[bi].ZIndex = maxZ + 1
	s.mu.Unlock()
	s.notify(ChangeBlocks)
	return true
}

// SendToBack lowers the block below every other block on its kite. The
// z-index never drops below 1: when the kite's minimum is already 1, every
// other block is shifted up by one and the target set to exactly 1, keeping
// all content above any background layer.
func (s *Store) SendToBack(id string) bool {
	s.mu.Lock()
	ki, bi := s.locateBlockLocked(id)
	if bi < 0 {
		s.mu.Unlock()
		return false
	}
	k := s.touchKiteLocked(ki)
	minZ := k.ContentBlocks[0].EffectiveZ()
	for _, b := range k.ContentBlocks[1:] {
		if z := b.EffectiveZ(); z < minZ {
			minZ = z
		}
	}
	if minZ > 1 {
		k.ContentBlocks[bi].ZIndex = minZ - 1
	} else {
		for i := range k.ContentBlocks {
			if i == bi {
				continue
			}
			k.ContentBlocks[i].ZIndex = k.ContentBlocks[i].EffectiveZ() + 1
		}
		k.ContentBlocks[bi].ZIndex = 1
	}
	s.mu.Unlock()
	s.notify(ChangeBlocks)
	return true
}

// --- deck and kite field setters ---

// SetTitle updates the deck title.
func (s *Store) SetTitle(title string) {
	s.mu.Lock()
	s.deck.Title = title
	s.mu.Unlock()
	s.notify(ChangeDeckMeta)
}

// SetTheme updates the deck-level theme id.
func (s *Store) SetTheme(themeID string) {
	s.mu.Lock()
	s.deck.Theme = themeID
	s.mu.Unlock()
	s.notify(ChangeDeckMeta)
}

// SetTotalDuration sets the deck duration budget, clamped to at least one
// minute.
func (s *Store) SetTotalDuration(minutes int) {
	if minutes < 1 {
		minutes = 1
	}
	s.mu.Lock()
	s.deck.TotalDurationMinutes = minutes
	s.mu.Unlock()
	s.notify(ChangeDeckMeta)
}

// UpdateKiteBackground sets a kite's background color.
func (s *Store) UpdateKiteBackground(kiteID, color string) bool {
	return s.withKite(kiteID, func(k *domain.Kite) { k.BackgroundColor = color })
}

// UpdateSpeakerNotes sets a kite's speaker notes.
func (s *Store) UpdateSpeakerNotes(kiteID, notes string) bool {
	return s.withKite(kiteID, func(k *domain.Kite) { k.SpeakerNotes = notes })
}

// UpdateKiteThemeOverride sets the per-kite theme override used in hybrid
// mode; "" clears it.
func (s *Store) UpdateKiteThemeOverride(kiteID, themeID string) bool {
	return s.withKite(kiteID, func(k *domain.Kite) { k.ThemeOverride = themeID })
}

// UpdateKiteDuration sets the per-kite duration override in seconds; zero or
// negative clears the override.
func (s *Store) UpdateKiteDuration(kiteID string, seconds int) bool {
	if seconds < 0 {
		seconds = 0
	}
	return s.withKite(kiteID, func(k *domain.Kite) { k.DurationOverride = seconds })
}

// --- internal plumbing ---

func mergePosition(pos *domain.BlockPosition, patch PositionPatch) {
	if patch.Width != nil {
		pos.Width = *patch.Width
	}
	if patch.Height != nil {
		pos.Height = *patch.Height
	}
	if patch.X != nil {
		pos.X = *patch.X
	}
	if patch.Y != nil {
		pos.Y = *patch.Y
	}
	r := geometry.R(pos.X, pos.Y, pos.Width, pos.Height).ClampToCanvas()
	pos.X, pos.Y = r.X, r.Y
}

// locateBlockLocked resolves a block id on the current kite, returning
// (kiteIndex, blockIndex) or (-1, -1).
func (s *Store) locateBlockLocked(id string) (int, int) {
	if len(s.deck.Kites) == 0 || id == "" {
		return -1, -1
	}
	ki := s.deck.CurrentKiteIndex
	k := s.deck.Kites[ki]
	if bi := blockIndex(&k, id); bi >= 0 {
		return ki, bi
	}
	return -1, -1
}

func (s *Store) withBlock(id string, mutate func(*domain.ContentBlock)) bool {
	s.mu.Lock()
	ki, bi := s.locateBlockLocked(id)
	if bi < 0 {
		s.mu.Unlock()
		return false
	}
	k := s.touchKiteLocked(ki)
	mutate(&k.ContentBlocks[bi])
	s.mu.Unlock()
	s.notify(ChangeBlocks)
	return true
}

func (s *Store) withKite(id string, mutate func(*domain.Kite)) bool {
	s.mu.Lock()
	ki := s.kiteIndexLocked(id)
	if ki < 0 {
		s.mu.Unlock()
		return false
	}
	k := s.touchKiteLocked(ki)
	mutate(k)
	s.mu.Unlock()
	s.notify(ChangeBlocks)
	return true
}
