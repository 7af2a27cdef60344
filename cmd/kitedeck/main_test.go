/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"kitedeck/internal/config"
	"kitedeck/internal/domain"
	"kitedeck/internal/storage"
)

func TestLogOptionsFromConfig(t *testing.T) {
	o := logOptions(config.LoggingConfig{Level: "debug", Format: "json", Source: true, File: "/tmp/kd.log"})
	if o.Level != "debug" || o.Format != "json" || !o.AddSource || o.File != "/tmp/kd.log" {
		t.Fatalf("logOptions = %+v", o)
	}
}

func TestNewDeckPayloadUsesConfigTheme(t *testing.T) {
	cfg := config.Defaults()
	cfg.General.DefaultTheme = "midnight"
	p := newDeckPayload(cfg, "Kickoff")
	if p.Title != "Kickoff" || p.CurrentTheme != "midnight" {
		t.Fatalf("payload = %+v", p)
	}
	p = newDeckPayload(config.AppConfig{}, "")
	if p.Title != "Untitled" || p.CurrentTheme != domain.DefaultThemeID {
		t.Fatalf("empty config must fall back to defaults: %+v", p)
	}
}

func TestRecoverDeckRestoresLatestAutosave(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	want := domain.DefaultPayload()
	want.Title = "Recovered"
	want.Kites = append(want.Kites, domain.NewKite(time.Now()))
	blob, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := storage.WriteAutosave(ctx, root, []byte(`{"title":"older","kites":[],"currentKiteIndex":0,"currentTheme":"daylight","totalDurationMinutes":25}`), time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("WriteAutosave: %v", err)
	}
	if err := storage.WriteAutosave(ctx, root, blob, time.Now()); err != nil {
		t.Fatalf("WriteAutosave: %v", err)
	}

	got, err := recoverDeck(root, 5)
	if err != nil {
		t.Fatalf("recoverDeck: %v", err)
	}
	if got.Title != "Recovered" || len(got.Kites) != 1 {
		t.Fatalf("recovered payload wrong: %+v", got)
	}

	h, err := storage.Open(root)
	if err != nil {
		t.Fatalf("Open after recover: %v", err)
	}
	if h.Payload.Title != "Recovered" {
		t.Fatalf("manifest not restored: %q", h.Payload.Title)
	}
}

func TestRecoverDeckNoAutosave(t *testing.T) {
	if _, err := recoverDeck(t.TempDir(), 5); err == nil {
		t.Fatalf("recover without an autosave must fail")
	}
}

func TestRecoverDeckCorruptAutosave(t *testing.T) {
	root := t.TempDir()
	if err := storage.WriteAutosave(context.Background(), root, []byte("{broken"), time.Now()); err != nil {
		t.Fatalf("WriteAutosave: %v", err)
	}
	if _, err := recoverDeck(root, 5); err == nil {
		t.Fatalf("corrupt autosave must fail, not restore garbage")
	}
}
