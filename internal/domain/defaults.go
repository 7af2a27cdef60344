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

import (
	"time"

	"github.com/google/uuid"
)

// Per-type defaults for newly created blocks. Images start on the lowest
// conventional layer (1); text and headings start at 10 so fresh text paints
// above fresh images without explicit ordering.
const (
	zImage = 1
	zText  = 10
)

type blockDefaults struct {
	pos     BlockPosition
	content string
	style   Style
	z       int
}

var defaultsByType = map[BlockType]blockDefaults{
	BlockH1: {
		pos:     BlockPosition{X: 10, Y: 8, Width: 80, Height: 16},
		content: "Heading 1",
		style:   Style{FontSize: 48, FontWeight: "bold", TextAlign: "center"},
		z:       zText,
	},
	BlockH2: {
		pos:     BlockPosition{X: 10, Y: 12, Width: 80, Height: 14},
		content: "Heading 2",
		style:   Style{FontSize: 36, FontWeight: "bold", TextAlign: "left"},
		z:       zText,
	},
	BlockH3: {
		pos:     BlockPosition{X: 10, Y: 14, Width: 80, Height: 12},
		content: "Heading 3",
		style:   Style{FontSize: 28, FontWeight: "bold", TextAlign: "left"},
		z:       zText,
	},
	BlockH4: {
		pos:     BlockPosition{X: 10, Y: 16, Width: 80, Height: 10},
		content: "Heading 4",
		style:   Style{FontSize: 22, FontWeight: "bold", TextAlign: "left"},
		z:       zText,
	},
	BlockText: {
		pos:     BlockPosition{X: 10, Y: 35, Width: 80, Height: 25},
		content: "Double-click to edit",
		style:   Style{FontSize: 18, TextAlign: "left"},
		z:       zText,
	},
	BlockImage: {
		pos: BlockPosition{X: 25, Y: 25, Width: 50, Height: 50},
		z:   zImage,
	},
}

// NewID returns a fresh opaque identifier for kites and blocks.
func NewID() string { return uuid.NewString() }

// NewKite constructs an empty kite with both timestamps set to now.
func NewKite(now time.Time) Kite {
	return Kite{
		ID:            NewID(),
		ContentBlocks: []ContentBlock{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NewContentBlock constructs a block of the given type with its type-specific
// default position, placeholder content, style and z-index. Unknown types get
// the text defaults.
func NewContentBlock(t BlockType) ContentBlock {
	d, ok := defaultsByType[t]
	if !ok {
		d = defaultsByType[BlockText]
	}
	return ContentBlock{
		ID:       NewID(),
		Type:     t,
		Position: d.pos,
		Content:  d.content,
		Style:    d.style,
		ZIndex:   d.z,
	}
}

// CloneBlock deep-copies a block and assigns it a fresh id.
func CloneBlock(b ContentBlock) ContentBlock {
	c := b
	c.ID = NewID()
	return c
}

// CloneKite deep-copies a kite, assigning fresh ids to the copy and all of
// its blocks. Timestamps are reset to now.
func CloneKite(k Kite, now time.Time) Kite {
	c := k
	c.ID = NewID()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.ContentBlocks = make([]ContentBlock, len(k.ContentBlocks))
	for i, b := range k.ContentBlocks {
		c.ContentBlocks[i] = CloneBlock(b)
	}
	return c
}
