/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package theme resolves the effective per-kite theme and timing. Both
// resolvers are pure: per-kite overrides only take effect when the deck-level
// theme is the composite "hybrid" theme and are inert otherwise.
package theme

import "kitedeck/internal/domain"

// HybridID is the composite theme: each kite resolves its own theme and
// duration through its overrides.
const HybridID = "hybrid"

// BaselineID is the theme a hybrid kite falls back to without an override.
const BaselineID = domain.DefaultThemeID

// Theme describes the visual identity consumed by export renderers.
// Colors are #rrggbb.
type Theme struct {
	ID         string
	Name       string
	Background string
	Heading    string
	Body       string
	Accent     string
}

var catalog = map[string]Theme{
	"daylight": {ID: "daylight", Name: "Daylight", Background: "#ffffff", Heading: "#1a1a2e", Body: "#333344", Accent: "#2563eb"},
	"midnight": {ID: "midnight", Name: "Midnight", Background: "#0f1020", Heading: "#f5f5ff", Body: "#c9c9dd", Accent: "#8b5cf6"},
	"harbor":   {ID: "harbor", Name: "Harbor", Background: "#eef4f8", Heading: "#0b3954", Body: "#27496d", Accent: "#087e8b"},
	"ember":    {ID: "ember", Name: "Ember", Background: "#1c1412", Heading: "#ffe8d6", Body: "#e0c3ae", Accent: "#e4572e"},
}

// Lookup returns the theme for id, or false for unknown ids (including the
// hybrid id, which is a mode, not a renderable theme).
func Lookup(id string) (Theme, bool) {
	t, ok := catalog[id]
	return t, ok
}

// IDs lists the renderable theme ids (excluding hybrid).
func IDs() []string {
	return []string{"daylight", "midnight", "harbor", "ember"}
}

// IsHybrid reports whether the deck theme is the composite theme.
func IsHybrid(deckTheme string) bool { return deckTheme == HybridID }

// ResolveForKite returns the effective theme for a kite. In hybrid mode the
// kite's own override wins, defaulting to the baseline when absent or
// unknown; outside hybrid mode the deck theme applies regardless of
// overrides. Unknown deck themes also fall back to the baseline.
func ResolveForKite(deckTheme, kiteOverride string) Theme {
	if IsHybrid(deckTheme) {
		if t, ok := Lookup(kiteOverride); ok {
			return t
		}
		return catalog[BaselineID]
	}
	if t, ok := Lookup(deckTheme); ok {
		return t
	}
	return catalog[BaselineID]
}

// ResolveKiteDurations converts the deck's total budget into one duration in
// seconds per kite. In hybrid mode kites with an explicit override get
// exactly that value and the remaining budget is split evenly across the
// rest; the division truncates and the leftover seconds go to the first
// non-overridden kite, so the sum stays total-preserving. Outside hybrid
// mode a single uniform share applies and overrides are ignored.
func ResolveKiteDurations(totalMinutes int, kites []domain.Kite, hybrid bool) []int {
	n := len(kites)
	if n == 0 {
		return []int{}
	}
	totalSec := totalMinutes * 60
	if totalSec < 0 {
		totalSec = 0
	}
	out := make([]int, n)

	if !hybrid {
		share := totalSec / n
		for i := range out {
			out[i] = share
		}
		return out
	}

	remaining := totalSec
	free := 0
	for i, k := range kites {
		if k.DurationOverride > 0 {
			out[i] = k.DurationOverride
			remaining -= k.DurationOverride
		} else {
			free++
		}
	}
	if free == 0 {
		return out
	}
	if remaining < 0 {
		remaining = 0
	}
	share := remaining / free
	leftover := remaining - share*free
	for i, k := range kites {
		if k.DurationOverride > 0 {
			continue
		}
		out[i] = share + leftover
		leftover = 0
	}
	return out
}
