/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package log

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Leveler{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitAndHelpers(t *testing.T) {
	Init(Options{Level: "debug", Format: "json"})
	l := L()
	if l == nil {
		t.Fatalf("L returned nil after Init")
	}
	cl := WithComponent("testcomp")
	if cl == nil {
		t.Fatalf("WithComponent returned nil")
	}
	ol := WithOperation(cl, "op")
	ol.Debug("helper loggers must not panic")
}

func TestInitWithFileWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	Init(Options{Level: "info", Format: "console", File: path})
	L().Info("hello file", slog.String("k", "v"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello file"`) {
		t.Fatalf("file handler output wrong: %s", data)
	}
	if !strings.Contains(string(data), `"app":"kitedeck"`) {
		t.Fatalf("base attributes missing: %s", data)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("KD_LOG_LEVEL", "warn")
	t.Setenv("KD_LOG_FORMAT", "json")
	t.Setenv("KD_LOG_SOURCE", "TRUE")
	t.Setenv("KD_LOG_FILE", "/tmp/x.log")
	o := FromEnv()
	if o.Level != "warn" || o.Format != "json" || !o.AddSource || o.File != "/tmp/x.log" {
		t.Fatalf("FromEnv = %+v", o)
	}
}
