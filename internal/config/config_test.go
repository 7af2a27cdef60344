/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"runtime"
	"testing"
)

func isolateHome(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("home isolation via HOME only")
	}
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{EnvBackendURL, EnvBackendTimeoutMs, EnvSnapThreshold, EnvSaveDebounceMs, EnvLogLevel, EnvLogFormat, EnvLogSource, EnvLogFile} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Editor.SnapThreshold != 1.5 || cfg.Editor.UndoDepth != 80 || cfg.Editor.SaveDebounceMs != 300 {
		t.Fatalf("editor defaults wrong: %+v", cfg.Editor)
	}
	if cfg.General.DefaultTheme != "daylight" {
		t.Fatalf("default theme = %q", cfg.General.DefaultTheme)
	}
	if cfg.Backend.BaseURL == "" || cfg.Backend.TimeoutMs <= 0 {
		t.Fatalf("backend defaults wrong: %+v", cfg.Backend)
	}
}

func TestLoadWithoutFileYieldsDefaults(t *testing.T) {
	isolateHome(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("no file + no env must equal defaults: %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolateHome(t)
	cfg := Defaults()
	cfg.General.DefaultTheme = "midnight"
	cfg.Editor.UndoDepth = 40
	cfg.Logging.Level = "debug"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.DefaultTheme != "midnight" || got.Editor.UndoDepth != 40 || got.Logging.Level != "debug" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	// untouched fields keep defaults
	if got.Editor.SnapThreshold != 1.5 {
		t.Fatalf("defaults lost in merge: %+v", got.Editor)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv(EnvBackendURL, "http://backend:9090")
	t.Setenv(EnvSnapThreshold, "2.5")
	t.Setenv(EnvSaveDebounceMs, "150")
	t.Setenv(EnvLogLevel, "WARN")
	t.Setenv(EnvLogSource, "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL != "http://backend:9090" {
		t.Fatalf("backend url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Editor.SnapThreshold != 2.5 || cfg.Editor.SaveDebounceMs != 150 {
		t.Fatalf("editor overrides lost: %+v", cfg.Editor)
	}
	if cfg.Logging.Level != "warn" || !cfg.Logging.Source {
		t.Fatalf("logging overrides lost: %+v", cfg.Logging)
	}
}

func TestEnvOverridesIgnoreGarbage(t *testing.T) {
	isolateHome(t)
	t.Setenv(EnvSnapThreshold, "not-a-number")
	t.Setenv(EnvSaveDebounceMs, "-10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Editor.SnapThreshold != 1.5 || cfg.Editor.SaveDebounceMs != 300 {
		t.Fatalf("invalid env values must be ignored: %+v", cfg.Editor)
	}
}
