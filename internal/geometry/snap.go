/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package geometry

// Alignment guides and snapping for interactive drag/resize. The functions are
// UI-agnostic and deterministic to enable unit testing and reuse across
// frontends. Snapping happens independently in X and Y: the nearest candidate
// within the threshold wins per axis.

import "math"

// CanvasLines are the preset guide positions considered on both axes:
// the canvas edges, the center, and the quarter lines.
var CanvasLines = []float64{0, 25, 50, 75, 100}

// SnapOptions controls which guide candidates are considered and the
// threshold. The threshold is in canvas percent; it is a UX tunable, not a
// correctness invariant.
type SnapOptions struct {
	Threshold     float64
	SnapToEdges   bool // block edge-to-edge alignment, including abutting edges
	SnapToCenters bool // block center-to-center alignment
	SnapToCanvas  bool // canvas preset lines (CanvasLines)
}

// DefaultSnapOptions enables every rule with the default threshold.
func DefaultSnapOptions() SnapOptions {
	return SnapOptions{Threshold: 1.5, SnapToEdges: true, SnapToCenters: true, SnapToCanvas: true}
}

// Anchor is a static reference rect (another block on the same kite).
// Weight biases selection when distances tie; use 1 when uncertain.
type Anchor struct {
	Rect   Rect
	Weight float64
}

// GuideLine describes a visual guide produced by a snap alignment.
// Orientation is "vertical" or "horizontal"; Kind is "edge", "center" or
// "canvas". Position is the x (vertical) or y (horizontal) coordinate and
// From/To are the extents for rendering. Values are rounded to 3 decimals.
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
}

// axisBest tracks the best snap candidate found so far on one axis.
type axisBest struct {
	delta float64
	dist  float64
	guide GuideLine
	found bool
}

func (b *axisBest) consider(delta, threshold, weight float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	score := dist / math.Max(1, weight)
	if !b.found || score < b.dist {
		b.found = true
		b.dist = dist
		b.delta = delta
		b.guide = g
	}
}

// Snap computes the snapped position for a moving rectangle against the
// canvas preset lines and a set of anchors. It returns the snapped rect and
// the guide lines to render for visual feedback.
func Snap(moving Rect, anchors []Anchor, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 1.5
	}

	mL, mR := moving.X, moving.X+moving.W
	mT, mB := moving.Y, moving.Y+moving.H
	mCX, mCY := moving.X+moving.W/2, moving.Y+moving.H/2

	var bestX, bestY axisBest

	if opts.SnapToCanvas {
		for _, line := range CanvasLines {
			for _, feature := range []float64{mL, mCX, mR} {
				bestX.consider(feature-line, opts.Threshold, 1, verticalGuide(line, moving, fullCanvas, "canvas"))
			}
			for _, feature := range []float64{mT, mCY, mB} {
				bestY.consider(feature-line, opts.Threshold, 1, horizontalGuide(line, moving, fullCanvas, "canvas"))
			}
		}
	}

	for _, a := range anchors {
		aL, aR := a.Rect.X, a.Rect.X+a.Rect.W
		aT, aB := a.Rect.Y, a.Rect.Y+a.Rect.H
		aCX, aCY := a.Rect.X+a.Rect.W/2, a.Rect.Y+a.Rect.H/2

		if opts.SnapToEdges {
			// like edges, then abutting edges
			bestX.consider(mL-aL, opts.Threshold, a.Weight, verticalGuide(aL, moving, a.Rect, "edge"))
			bestX.consider(mR-aR, opts.Threshold, a.Weight, verticalGuide(aR, moving, a.Rect, "edge"))
			bestX.consider(mL-aR, opts.Threshold, a.Weight, verticalGuide(aR, moving, a.Rect, "edge"))
			bestX.consider(mR-aL, opts.Threshold, a.Weight, verticalGuide(aL, moving, a.Rect, "edge"))

			bestY.consider(mT-aT, opts.Threshold, a.Weight, horizontalGuide(aT, moving, a.Rect, "edge"))
			bestY.consider(mB-aB, opts.Threshold, a.Weight, horizontalGuide(aB, moving, a.Rect, "edge"))
			bestY.consider(mT-aB, opts.Threshold, a.Weight, horizontalGuide(aB, moving, a.Rect, "edge"))
			bestY.consider(mB-aT, opts.Threshold, a.Weight, horizontalGuide(aT, moving, a.Rect, "edge"))
		}
		if opts.SnapToCenters {
			bestX.consider(mCX-aCX, opts.Threshold, a.Weight, verticalGuide(aCX, moving, a.Rect, "center"))
			bestY.consider(mCY-aCY, opts.Threshold, a.Weight, horizontalGuide(aCY, moving, a.Rect, "center"))
		}
	}

	snapped := moving
	var guides []GuideLine
	if bestX.found {
		snapped.X = Round(moving.X-bestX.delta, 3)
		guides = append(guides, bestX.guide)
	}
	if bestY.found {
		snapped.Y = Round(moving.Y-bestY.delta, 3)
		guides = append(guides, bestY.guide)
	}
	return snapped, guides
}

// ResizeEdge names the edge being dragged during a resize.
type ResizeEdge int

const (
	EdgeLeft ResizeEdge = iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

// SnapResize snaps the dragged edge of a resizing rectangle, adjusting the
// size so the opposite edge stays fixed. Only edge and canvas candidates
// apply; center alignment is meaningless mid-resize.
func SnapResize(moving Rect, edge ResizeEdge, anchors []Anchor, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 1.5
	}

	vertical := edge == EdgeLeft || edge == EdgeRight
	var feature float64
	switch edge {
	case EdgeLeft:
		feature = moving.X
	case EdgeRight:
		feature = moving.X + moving.W
	case EdgeTop:
		feature = moving.Y
	case EdgeBottom:
		feature = moving.Y + moving.H
	}

	var best axisBest
	if opts.SnapToCanvas {
		for _, line := range CanvasLines {
			best.consider(feature-line, opts.Threshold, 1, edgeGuide(line, vertical, moving, fullCanvas))
		}
	}
	if opts.SnapToEdges {
		for _, a := range anchors {
			var lines [2]float64
			if vertical {
				lines = [2]float64{a.Rect.X, a.Rect.X + a.Rect.W}
			} else {
				lines = [2]float64{a.Rect.Y, a.Rect.Y + a.Rect.H}
			}
			for _, line := range lines {
				best.consider(feature-line, opts.Threshold, a.Weight, edgeGuide(line, vertical, moving, a.Rect))
			}
		}
	}

	snapped := moving
	if !best.found {
		return snapped, nil
	}
	target := Round(feature-best.delta, 3)
	switch edge {
	case EdgeLeft:
		snapped.W = Round(moving.X+moving.W-target, 3)
		snapped.X = target
	case EdgeRight:
		snapped.W = Round(target-moving.X, 3)
	case EdgeTop:
		snapped.H = Round(moving.Y+moving.H-target, 3)
		snapped.Y = target
	case EdgeBottom:
		snapped.H = Round(target-moving.Y, 3)
	}
	return snapped, []GuideLine{best.guide}
}

// fullCanvas spans the whole canvas so canvas guides render edge to edge.
var fullCanvas = Rect{X: 0, Y: 0, W: 100, H: 100}

func verticalGuide(x float64, a, b Rect, kind string) GuideLine {
	minY := math.Min(a.Y, b.Y)
	maxY := math.Max(a.Y+a.H, b.Y+b.H)
	x = Round(x, 3)
	return GuideLine{
		Orientation: "vertical",
		Kind:        kind,
		Position:    x,
		From:        Pt{x, minY},
		To:          Pt{x, maxY},
	}
}

func horizontalGuide(y float64, a, b Rect, kind string) GuideLine {
	minX := math.Min(a.X, b.X)
	maxX := math.Max(a.X+a.W, b.X+b.W)
	y = Round(y, 3)
	return GuideLine{
		Orientation: "horizontal",
		Kind:        kind,
		Position:    y,
		From:        Pt{minX, y},
		To:          Pt{maxX, y},
	}
}

func edgeGuide(line float64, vertical bool, a, b Rect) GuideLine {
	kind := "edge"
	if b == fullCanvas {
		kind = "canvas"
	}
	if vertical {
		return verticalGuide(line, a, b, kind)
	}
	return horizontalGuide(line, a, b, kind)
}
