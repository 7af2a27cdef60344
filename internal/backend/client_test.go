/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"kitedeck/internal/domain"
)

func TestClientLoad(t *testing.T) {
	p := domain.DefaultPayload()
	p.Title = "remote deck"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/deck" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer s3cret" {
			t.Errorf("authorization header = %q", got)
		}
		_ = json.NewEncoder(w).Encode(p)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "s3cret", time.Second)
	got, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Title != "remote deck" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.Kites == nil {
		t.Fatalf("kites must never be nil")
	}
}

func TestClientLoadNotFoundYieldsDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	got, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("404 is not an error: %v", err)
	}
	if got.Title != "Untitled" || got.CurrentTheme != domain.DefaultThemeID || got.TotalDurationMinutes != 25 {
		t.Fatalf("defaults wrong: %+v", got)
	}
}

func TestClientLoadUnreachableYieldsDefaultsAndError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", 200*time.Millisecond)
	got, err := c.Load(context.Background())
	if err == nil {
		t.Fatalf("unreachable backend must report the transport error")
	}
	if got.Title != "Untitled" {
		t.Fatalf("defaults must still be usable: %+v", got)
	}
}

func TestClientSave(t *testing.T) {
	var saved []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/deck" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		saved = body
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := domain.DefaultPayload()
	p.Title = "saved"
	c := NewClient(srv.URL, "", time.Second)
	if err := c.Save(context.Background(), p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	var got domain.DeckPayload
	if err := json.Unmarshal(saved, &got); err != nil {
		t.Fatalf("server received invalid JSON: %v", err)
	}
	if got.Title != "saved" {
		t.Fatalf("payload lost: %+v", got)
	}
}

func TestClientSaveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	if err := c.Save(context.Background(), domain.DefaultPayload()); err == nil {
		t.Fatalf("5xx must surface as an error")
	}
}

func TestClientBeaconDelivers(t *testing.T) {
	var mu sync.Mutex
	var got []byte
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/deck/beacon" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = body
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
		close(done)
	}))
	defer srv.Close()

	p := domain.DefaultPayload()
	p.Title = "beaconed"
	c := NewClient(srv.URL, "", time.Second)
	c.Beacon(p)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("beacon never arrived")
	}
	mu.Lock()
	defer mu.Unlock()
	var decoded domain.DeckPayload
	if err := json.Unmarshal(got, &decoded); err != nil || decoded.Title != "beaconed" {
		t.Fatalf("beacon body wrong: %v %s", err, got)
	}
}

func TestAuthorized(t *testing.T) {
	mk := func(header string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/deck", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		return r
	}
	if !authorized(mk(""), "") {
		t.Fatalf("empty configured token disables auth")
	}
	if !authorized(mk("Bearer tok"), "tok") {
		t.Fatalf("matching token must pass")
	}
	if authorized(mk("Bearer wrong"), "tok") {
		t.Fatalf("mismatched token must fail")
	}
	if authorized(mk(""), "tok") {
		t.Fatalf("missing header must fail when a token is configured")
	}
}
