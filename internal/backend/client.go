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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"kitedeck/internal/domain"
	applog "kitedeck/internal/log"
)

// Client talks to the deck persistence server. It satisfies the pipeline's
// Saver interface and additionally provides the bootstrap Load.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
	log     *slog.Logger
}

// beaconTimeout bounds the fire-and-forget delivery attempt.
const beaconTimeout = 2 * time.Second

// NewClient creates a backend client. baseURL may include a trailing slash;
// it will be normalized.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: timeout},
		log:     applog.WithComponent("backend"),
	}
}

// Load fetches the persisted deck payload. When the server has nothing
// stored (404) or the backend is unreachable, the documented defaults are
// returned so the editing session can start regardless; transport errors are
// reported alongside the defaults for the caller to log.
func (c *Client) Load(ctx context.Context) (domain.DeckPayload, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/deck", nil)
	if err != nil {
		return domain.DefaultPayload(), err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return domain.DefaultPayload(), err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return domain.DefaultPayload(), nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.DefaultPayload(), fmt.Errorf("server GET /api/deck: %s", resp.Status)
	}
	var p domain.DeckPayload
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return domain.DefaultPayload(), fmt.Errorf("decode deck payload: %w", err)
	}
	if p.Kites == nil {
		p.Kites = []domain.Kite{}
	}
	return p, nil
}

// Save stores the payload. Failures are returned to the pipeline, which
// leaves the payload pending for the next coalesced attempt.
func (c *Client) Save(ctx context.Context, p domain.DeckPayload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal deck payload: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPut, "/api/deck", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server PUT /api/deck: %s", resp.Status)
	}
	return nil
}

// Beacon posts the payload from a detached goroutine and does not wait for
// or inspect the response. It is the unload-safe delivery path: send and
// don't wait, at-least-once from the caller's perspective.
func (c *Client) Beacon(p domain.DeckPayload) {
	body, err := json.Marshal(p)
	if err != nil {
		c.log.Warn("beacon marshal failed", slog.Any("err", err))
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), beaconTimeout)
		defer cancel()
		req, err := c.newRequest(ctx, http.MethodPost, "/api/deck/beacon", bytes.NewReader(body))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.client.Do(req)
		if err != nil {
			c.log.Debug("beacon delivery failed", slog.Any("err", err))
			return
		}
		_ = resp.Body.Close()
	}()
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	}
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}
