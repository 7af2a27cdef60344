/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for a kite deck: an ordered sequence
// of kites (canvases) holding positioned content blocks. The structures are
// plain values; consumers that mutate them are expected to copy the touched
// kite and leave the rest referentially unchanged.

import "time"

// DefaultThemeID is the baseline theme applied when nothing else is chosen.
const DefaultThemeID = "daylight"

// BlockType enumerates the supported content block kinds.
type BlockType string

const (
	BlockH1    BlockType = "h1"
	BlockH2    BlockType = "h2"
	BlockH3    BlockType = "h3"
	BlockH4    BlockType = "h4"
	BlockText  BlockType = "text"
	BlockImage BlockType = "image"
)

// Deck is the full presentation document: ordered kites plus deck-level
// settings. CurrentKiteIndex is always a valid index into Kites, or 0 when
// the deck is empty. SelectedBlockID is scoped to the current kite.
type Deck struct {
	Kites                []Kite `json:"kites"`
	CurrentKiteIndex     int    `json:"currentKiteIndex"`
	SelectedBlockID      string `json:"selectedBlockId,omitempty"`
	Theme                string `json:"currentTheme"`
	Title                string `json:"title"`
	TotalDurationMinutes int    `json:"totalDurationMinutes"`
}

// Kite is one canvas in the deck. UpdatedAt is refreshed on every mutation to
// the kite or any of its blocks. ThemeOverride and DurationOverride only take
// effect when the deck theme is the hybrid theme.
type Kite struct {
	ID               string         `json:"id"`
	ContentBlocks    []ContentBlock `json:"contentBlocks"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	BackgroundColor  string         `json:"backgroundColor,omitempty"`
	SpeakerNotes     string         `json:"speakerNotes,omitempty"`
	ThemeOverride    string         `json:"themeOverride,omitempty"`
	DurationOverride int            `json:"durationOverride,omitempty"` // seconds
}

// ContentBlock is a positioned element on a kite. ZIndex is advisory paint
// order; zero means unset and is treated as 1.
type ContentBlock struct {
	ID       string        `json:"id"`
	Type     BlockType     `json:"type"`
	Position BlockPosition `json:"position"`
	Content  string        `json:"content"`
	Style    Style         `json:"style,omitempty"`
	ZIndex   int           `json:"zIndex,omitempty"`
}

// BlockPosition is expressed in percent of the canvas, 0-100 per axis.
// Positions are not required to stay in bounds, but editing operations clamp
// them to [0, 100-size].
type BlockPosition struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Style carries the optional text styling of a block.
type Style struct {
	FontSize   int    `json:"fontSize,omitempty"` // points
	FontWeight string `json:"fontWeight,omitempty"`
	TextAlign  string `json:"textAlign,omitempty"`
	Color      string `json:"color,omitempty"` // #rrggbb
}

// EffectiveZ returns the paint order of the block, defaulting to 1.
func (b ContentBlock) EffectiveZ() int {
	if b.ZIndex == 0 {
		return 1
	}
	return b.ZIndex
}

// DeckPayload is the persisted projection of a deck: everything except the
// transient block selection.
type DeckPayload struct {
	Kites                []Kite `json:"kites"`
	CurrentKiteIndex     int    `json:"currentKiteIndex"`
	CurrentTheme         string `json:"currentTheme"`
	Title                string `json:"title"`
	TotalDurationMinutes int    `json:"totalDurationMinutes"`
}

// DefaultPayload returns the documented defaults used when the persistence
// backend has nothing stored.
func DefaultPayload() DeckPayload {
	return DeckPayload{
		Kites:                []Kite{},
		CurrentKiteIndex:     0,
		CurrentTheme:         DefaultThemeID,
		Title:                "Untitled",
		TotalDurationMinutes: 25,
	}
}
