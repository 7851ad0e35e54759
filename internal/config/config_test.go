package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(viper.New())
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if !cfg.Indent {
		t.Error("Indent = false, want true")
	}
	if cfg.ArchivePath != "mnoda.db" {
		t.Errorf("ArchivePath = %q, want mnoda.db", cfg.ArchivePath)
	}
	if cfg.WatchDebounce != 200*time.Millisecond {
		t.Errorf("WatchDebounce = %v, want 200ms", cfg.WatchDebounce)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".mnoda.yaml")
	content := "format: toml\nlog_level: warn\narchive_path: /tmp/a.db\nwatch_debounce: 1s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}
	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Format != "toml" || cfg.LogLevel != "warn" || cfg.ArchivePath != "/tmp/a.db" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.WatchDebounce != time.Second {
		t.Errorf("WatchDebounce = %v, want 1s", cfg.WatchDebounce)
	}
}

func TestLoadVerboseRaisesLogLevel(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set("verbose", true)
	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "unknown format", key: "format", value: "xml"},
		{name: "unknown log level", key: "log_level", value: "loud"},
		{name: "empty archive path", key: "archive_path", value: ""},
		{name: "zero debounce", key: "watch_debounce", value: "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := viper.New()
			v.Set(tt.key, tt.value)
			if _, err := LoadFrom(v); err == nil {
				t.Errorf("LoadFrom with %s=%v succeeded, want error", tt.key, tt.value)
			}
		})
	}
}
