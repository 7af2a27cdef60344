/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kitedeck/internal/domain"
	"kitedeck/internal/store"
)

// fakeSaver records saves and beacons and can simulate failures and latency.
type fakeSaver struct {
	mu      sync.Mutex
	saves   []domain.DeckPayload
	beacons []domain.DeckPayload
	err     error
	block   chan struct{} // when set, the first Save waits for a signal
}

func (f *fakeSaver) Save(ctx context.Context, p domain.DeckPayload) error {
	f.mu.Lock()
	gate := f.block
	f.block = nil
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saves = append(f.saves, p)
	return nil
}

func (f *fakeSaver) Beacon(p domain.DeckPayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beacons = append(f.beacons, p)
}

func (f *fakeSaver) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeSaver) lastSave() (domain.DeckPayload, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saves) == 0 {
		return domain.DeckPayload{}, false
	}
	return f.saves[len(f.saves)-1], true
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestDebounceCoalescesEdits(t *testing.T) {
	f := &fakeSaver{}
	s := store.New(store.Options{})
	p := New(f, s.Payload, Options{Delay: 30 * time.Millisecond})
	p.Attach(s)
	s.Load(domain.DefaultPayload())
	p.MarkLoaded()

	s.AddKite()
	s.AddKite()
	s.SetTitle("rapid edits")

	waitFor(t, func() bool { return f.saveCount() >= 1 })
	time.Sleep(80 * time.Millisecond)
	if got := f.saveCount(); got != 1 {
		t.Fatalf("save count = %d, want 1 (edits coalesce)", got)
	}
	last, _ := f.lastSave()
	if len(last.Kites) != 2 || last.Title != "rapid edits" {
		t.Fatalf("saved payload not the latest: %+v", last)
	}
	if p.Pending() {
		t.Fatalf("pending must clear after a successful save")
	}
}

func TestNoSaveBeforeLoaded(t *testing.T) {
	f := &fakeSaver{}
	s := store.New(store.Options{})
	p := New(f, s.Payload, Options{Delay: 10 * time.Millisecond})
	p.Attach(s)

	s.AddKite()
	time.Sleep(60 * time.Millisecond)
	if f.saveCount() != 0 {
		t.Fatalf("no save may run before MarkLoaded")
	}
	if p.Pending() {
		t.Fatalf("unloaded pipeline must not record pending payloads")
	}
}

func TestSelectionOnlyIgnored(t *testing.T) {
	f := &fakeSaver{}
	s := store.New(store.Options{})
	p := New(f, s.Payload, Options{Delay: 10 * time.Millisecond})
	s.Load(domain.DefaultPayload())
	p.MarkLoaded()

	p.Observe(store.Change{Scope: store.ChangeSelection})
	time.Sleep(50 * time.Millisecond)
	if f.saveCount() != 0 || p.Pending() {
		t.Fatalf("selection-only changes must not schedule saves")
	}
}

func TestFailedSaveKeepsPending(t *testing.T) {
	f := &fakeSaver{err: errors.New("backend down")}
	s := store.New(store.Options{})
	p := New(f, s.Payload, Options{Delay: 10 * time.Millisecond})
	p.Attach(s)
	s.Load(domain.DefaultPayload())
	p.MarkLoaded()

	s.AddKite()
	time.Sleep(60 * time.Millisecond)
	if !p.Pending() {
		t.Fatalf("failed save must leave the payload pending")
	}

	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()
	s.SetTitle("retry")
	waitFor(t, func() bool { return f.saveCount() >= 1 })
	if p.Pending() {
		t.Fatalf("pending must clear once a save lands")
	}
}

func TestStaleInFlightDoesNotClearNewerPending(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeSaver{block: gate}
	s := store.New(store.Options{})
	p := New(f, s.Payload, Options{Delay: 150 * time.Millisecond})
	p.Attach(s)
	s.Load(domain.DefaultPayload())
	p.MarkLoaded()

	s.AddKite()
	time.Sleep(200 * time.Millisecond) // first fire is now blocked inside Save

	s.SetTitle("newer") // replaces pending while the save is in flight
	close(gate)
	waitFor(t, func() bool { return f.saveCount() >= 1 })
	if !p.Pending() {
		t.Fatalf("completing a stale save must not clear the newer pending payload")
	}

	waitFor(t, func() bool { return f.saveCount() >= 2 })
	last, _ := f.lastSave()
	if last.Title != "newer" {
		t.Fatalf("second save must carry the newer payload, got %q", last.Title)
	}
	waitFor(t, func() bool { return !p.Pending() })
}

func TestFlushUsesBeacon(t *testing.T) {
	f := &fakeSaver{}
	s := store.New(store.Options{})
	p := New(f, s.Payload, Options{Delay: time.Hour}) // never fires on its own
	p.Attach(s)
	s.Load(domain.DefaultPayload())
	p.MarkLoaded()

	s.SetTitle("about to close")
	if !p.Pending() {
		t.Fatalf("edit must be pending under a long debounce window")
	}
	p.Flush()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.beacons) != 1 || f.beacons[0].Title != "about to close" {
		t.Fatalf("flush must beacon the pending payload: %+v", f.beacons)
	}
	if len(f.saves) != 0 {
		t.Fatalf("flush must not use the confirmed save path")
	}
}

func TestFlushIdleIsNoOp(t *testing.T) {
	f := &fakeSaver{}
	p := New(f, func() domain.DeckPayload { return domain.DefaultPayload() }, Options{})
	p.MarkLoaded()
	p.Flush()
	if len(f.beacons) != 0 {
		t.Fatalf("idle flush must not beacon")
	}
}
