package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/headfix/internal/heading"
	"github.com/google/go-cmp/cmp"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HEADFIX_CONFIG", "PORT", "HEADFIX_API_KEY", "MAX_UPLOAD_BYTES",
		"HEADING_DELTA", "RELOCATE_ORPHANS", "ASSIGN_IDS", "ID_PREFIX",
		"PRESERVE_EXISTING_IDS", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Defaults(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("HEADING_DELTA", "2")
	t.Setenv("RELOCATE_ORPHANS", "true")
	t.Setenv("ASSIGN_IDS", "1")
	t.Setenv("ID_PREFIX", "toc-")
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.MaxUploadBytes != defaultMaxUploadBytes {
		t.Errorf("expected invalid value to fall back, got %d", cfg.MaxUploadBytes)
	}

	want := heading.Options{Delta: 2, RelocateOrphans: true, AssignIDs: true, IDPrefix: "toc-"}
	if diff := cmp.Diff(want, cfg.HeadingOptions()); diff != "" {
		t.Errorf("heading options mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "headfix.yaml")
	data := []byte("port: \"7000\"\ndelta: 1\nassign_ids: true\nid_prefix: doc-\nlog_level: debug\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HEADFIX_CONFIG", path)
	t.Setenv("HEADING_DELTA", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7000" || cfg.IDPrefix != "doc-" || !cfg.AssignIDs || cfg.LogLevel != "debug" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Delta != 3 {
		t.Errorf("expected env to win, got delta %d", cfg.Delta)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("delta: [1"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative delta", func(c *Config) { c.Delta = -1 }, true},
		{"zero upload", func(c *Config) { c.MaxUploadBytes = 0 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
	}
	for _, tt := range tests {
		cfg := Defaults()
		tt.mutate(&cfg)
		if err := cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
