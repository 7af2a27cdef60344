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

import (
	"math"
	"testing"
)

func TestRectBasics(t *testing.T) {
	r := R(10, 20, 30, 40)
	if r.Min() != (Pt{10, 20}) || r.Max() != (Pt{40, 60}) {
		t.Fatalf("min/max wrong: %v %v", r.Min(), r.Max())
	}
	if r.Center() != (Pt{25, 40}) {
		t.Fatalf("center wrong: %v", r.Center())
	}
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{40, 60}) {
		t.Fatalf("contains should include edges")
	}
	if r.Contains(Pt{9.9, 20}) {
		t.Fatalf("contains should exclude outside points")
	}
}

func TestRectUnion(t *testing.T) {
	u := R(0, 0, 10, 10).Union(R(5, 5, 20, 20))
	want := R(0, 0, 25, 25)
	if u != want {
		t.Fatalf("union = %v, want %v", u, want)
	}
}

func TestClampToCanvas(t *testing.T) {
	cases := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"inside", R(10, 10, 20, 20), R(10, 10, 20, 20)},
		{"negative origin", R(-5, -3, 20, 20), R(0, 0, 20, 20)},
		{"past right edge", R(95, 10, 20, 20), R(80, 10, 20, 20)},
		{"past bottom edge", R(10, 99, 20, 20), R(10, 80, 20, 20)},
		{"oversized pins to origin", R(40, 40, 120, 120), R(0, 0, 120, 120)},
	}
	for _, tc := range cases {
		if got := tc.in.ClampToCanvas(); got != tc.want {
			t.Errorf("%s: clamp(%v) = %v, want %v", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestRound(t *testing.T) {
	if got := Round(1.23456, 3); got != 1.235 {
		t.Fatalf("Round(1.23456, 3) = %v", got)
	}
	if got := Round(2.5, 0); got != 3 {
		t.Fatalf("Round(2.5, 0) = %v", got)
	}
	if got := Round(1.5, -1); got != 1.5 {
		t.Fatalf("negative places should be a no-op, got %v", got)
	}
	if got := Round(-1.0005, 3); math.Abs(got - -1.0) > 0.001 {
		t.Fatalf("Round(-1.0005, 3) = %v", got)
	}
}
