/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package persist debounces deck saves behind the store's change feed. The
// pipeline is a small state machine over {idle, pending, in-flight}: rapid
// edits coalesce to the latest pending payload, a slow in-flight save can
// never erase a newer pending payload, and a flush path delivers the last
// pending payload fire-and-forget on teardown.
package persist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"kitedeck/internal/domain"
	applog "kitedeck/internal/log"
	"kitedeck/internal/store"
)

// Saver is the slice of the persistence backend the pipeline needs.
// Save may fail and is retried implicitly by the next coalesced edit;
// Beacon must not block on delivery or confirmation.
type Saver interface {
	Save(ctx context.Context, p domain.DeckPayload) error
	Beacon(p domain.DeckPayload)
}

// DefaultDelay is the debounce window for coalescing edits into one save.
const DefaultDelay = 300 * time.Millisecond

// Options configures a Pipeline.
type Options struct {
	Delay       time.Duration // defaults to DefaultDelay
	SaveTimeout time.Duration // per-save context timeout, defaults to 10s
}

// Pipeline observes store changes and schedules debounced saves.
type Pipeline struct {
	saver   Saver
	payload func() domain.DeckPayload
	delay   time.Duration
	timeout time.Duration
	log     *slog.Logger

	mu      sync.Mutex
	loaded  bool
	pending *domain.DeckPayload
	timer   *time.Timer
}

// New builds a pipeline reading payloads from the given function (normally
// store.Payload). Call Attach to wire it to a store's change feed.
func New(saver Saver, payload func() domain.DeckPayload, opts Options) *Pipeline {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 10 * time.Second
	}
	return &Pipeline{
		saver:   saver,
		payload: payload,
		delay:   opts.Delay,
		timeout: opts.SaveTimeout,
		log:     applog.WithComponent("persist"),
	}
}

// Attach subscribes the pipeline to a store.
func (p *Pipeline) Attach(s *store.Store) {
	s.Subscribe(p.Observe)
}

// MarkLoaded opens the gate: no save is attempted before the initial load has
// completed, so bootstrap state can never overwrite persisted state.
func (p *Pipeline) MarkLoaded() {
	p.mu.Lock()
	p.loaded = true
	p.mu.Unlock()
}

// Observe handles one store change: selection-only changes are ignored, any
// other change records the current payload as pending (last write wins) and
// restarts the debounce timer.
func (p *Pipeline) Observe(c store.Change) {
	if c.SelectionOnly() {
		return
	}
	p.mu.Lock()
	if !p.loaded {
		p.mu.Unlock()
		return
	}
	pl := p.payload()
	p.pending = &pl
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.delay, p.fire)
	p.mu.Unlock()
}

// fire sends the pending payload. The pending marker is cleared only when the
// payload that completed is still the pending one; a newer edit that arrived
// while the request was in flight keeps its pending slot and will be saved by
// its own timer.
func (p *Pipeline) fire() {
	p.mu.Lock()
	sending := p.pending
	p.mu.Unlock()
	if sending == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	err := p.saver.Save(ctx, *sending)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		// Leave the payload pending; the next coalesced edit (or flush)
		// re-attempts with fresher data.
		p.log.Warn("save failed", slog.Any("err", err))
		return
	}
	if p.pending == sending {
		p.pending = nil
	}
}

// Flush delivers a still-pending payload via the fire-and-forget beacon
// transport. It is the teardown/page-hide backstop against losing the last
// debounce window of edits; delivery is best-effort and unconfirmed.
func (p *Pipeline) Flush() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
	}
	sending := p.pending
	p.pending = nil
	p.mu.Unlock()
	if sending == nil {
		return
	}
	p.log.Info("flushing pending deck payload")
	p.saver.Beacon(*sending)
}

// Pending reports whether a payload is waiting to be saved.
func (p *Pipeline) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}
