/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package history keeps bounded undo/redo stacks of serialized kite
// collections. Blobs are opaque to the manager; callers decide what to
// serialize and when an edit boundary begins. The stacks live outside the
// document so pushing a snapshot never triggers persistence or re-render.
package history

import (
	"bytes"
	"sync"
)

// DefaultDepth caps each stack when no explicit depth is configured.
const DefaultDepth = 80

// Manager provides a linear-history undo/redo stack. It is safe for
// concurrent use.
type Manager struct {
	mu    sync.Mutex
	depth int
	undo  [][]byte
	redo  [][]byte
}

func NewManager(depth int) *Manager {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Manager{depth: depth}
}

// Push records a snapshot taken before a logical edit. A snapshot textually
// identical to the top of the undo stack is skipped, so a caller invoking
// Push twice around one edit does not create a duplicate entry. Any push
// clears the redo stack: new edits invalidate redo history.
func (m *Manager) Push(snapshot []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.undo); n > 0 && bytes.Equal(m.undo[n-1], snapshot) {
		m.redo = nil
		return
	}
	m.undo = append(m.undo, snapshot)
	if len(m.undo) > m.depth {
		m.undo = append([][]byte(nil), m.undo[len(m.undo)-m.depth:]...)
	}
	m.redo = nil
}

// Undo pops the most recent snapshot, pushing the caller's current state onto
// the redo stack. Returns false when the undo stack is empty.
func (m *Manager) Undo(current []byte) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.undo)
	if n == 0 {
		return nil, false
	}
	s := m.undo[n-1]
	m.undo = m.undo[:n-1]
	m.redo = append(m.redo, current)
	if len(m.redo) > m.depth {
		m.redo = append([][]byte(nil), m.redo[len(m.redo)-m.depth:]...)
	}
	return s, true
}

// Redo is symmetric to Undo, popping from the redo stack.
func (m *Manager) Redo(current []byte) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.redo)
	if n == 0 {
		return nil, false
	}
	s := m.redo[n-1]
	m.redo = m.redo[:n-1]
	m.undo = append(m.undo, current)
	if len(m.undo) > m.depth {
		m.undo = append([][]byte(nil), m.undo[len(m.undo)-m.depth:]...)
	}
	return s, true
}

// Depths reports the current stack sizes for diagnostics.
func (m *Manager) Depths() (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}

// Clear drops both stacks, e.g. after loading a different deck.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = nil
	m.redo = nil
}
