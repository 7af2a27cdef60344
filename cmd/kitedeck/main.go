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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kitedeck/internal/backend"
	"kitedeck/internal/config"
	"kitedeck/internal/crash"
	"kitedeck/internal/domain"
	"kitedeck/internal/export"
	applog "kitedeck/internal/log"
	"kitedeck/internal/storage"
	"kitedeck/internal/version"
)

func usage() {
	fmt.Println("kitedeck — presentation deck engine")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  kitedeck version|-v|--version          Show version")
	fmt.Println("  kitedeck init <dir> [title]            Create a new deck directory")
	fmt.Println("  kitedeck serve                         Run the deck persistence server")
	fmt.Println("  kitedeck export <dir> <out.pdf>        Export the deck at <dir> to PDF")
	fmt.Println("  kitedeck recover <dir>                 Restore the latest autosave snapshot")
}

// logOptions maps the user logging config onto logger options.
func logOptions(lc config.LoggingConfig) applog.Options {
	return applog.Options{Level: lc.Level, Format: lc.Format, AddSource: lc.Source, File: lc.File}
}

// newDeckPayload builds the payload for a freshly created deck, taking the
// default theme from the user config.
func newDeckPayload(cfg config.AppConfig, title string) domain.DeckPayload {
	p := domain.DefaultPayload()
	if title != "" {
		p.Title = title
	}
	if cfg.General.DefaultTheme != "" {
		p.CurrentTheme = cfg.General.DefaultTheme
	}
	return p
}

// recoverDeck restores the newest autosave snapshot as the deck manifest.
// The restore goes through the local backend so it lands transactionally,
// leaves a backup of the manifest it replaces, and prunes the autosave trail
// to the configured cap.
func recoverDeck(root string, keepAutosaves int) (domain.DeckPayload, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	blob, ts, err := storage.LatestAutosave(ctx, root)
	if err != nil {
		return domain.DeckPayload{}, fmt.Errorf("read autosave: %w", err)
	}
	if blob == nil {
		return domain.DeckPayload{}, errors.New("no autosave snapshot found")
	}
	var p domain.DeckPayload
	if err := json.Unmarshal(blob, &p); err != nil {
		return domain.DeckPayload{}, fmt.Errorf("autosave snapshot corrupt: %w", err)
	}
	if p.Kites == nil {
		p.Kites = []domain.Kite{}
	}
	b := storage.NewLocalBackend(root, keepAutosaves)
	if err := b.Save(ctx, p); err != nil {
		return domain.DeckPayload{}, fmt.Errorf("restore manifest: %w", err)
	}
	applog.WithComponent("cli").Info("autosave restored",
		slog.String("root", root), slog.Time("snapshot_ts", ts), slog.Int("kites", len(p.Kites)))
	return p, nil
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(logOptions(cfg.Logging))
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config load", slog.Any("err", cfgErr))
	}
	defer crash.Recover(nil)

	args := os.Args
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 3 {
				fmt.Println("init requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			title := ""
			if len(args) > 3 {
				title = args[3]
			}
			payload := newDeckPayload(cfg, title)
			l.Info("init deck", slog.String("root", abs), slog.String("title", payload.Title))
			if _, err := storage.Init(abs, payload); err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Created deck at", abs)
			return
		case "serve":
			if err := backend.Start(); err != nil {
				l.Error("server failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <dir> and <out.pdf>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			out := args[3]
			if !filepath.IsAbs(out) {
				out = filepath.Join(abs, "exports", out)
			}
			if err := export.ExportDeckPDF(h.Payload, out, export.PDFOptions{IncludeNotes: true}); err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Exported", out)
			return
		case "recover":
			if len(args) < 3 {
				fmt.Println("recover requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			p, err := recoverDeck(abs, cfg.Editor.AutosaveKeep)
			if err != nil {
				l.Error("recover failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Printf("Restored %q (%d kites) at %s\n", p.Title, len(p.Kites), abs)
			return
		}
	}

	usage()
}
