package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Fsync != "always" {
		t.Fatalf("default fsync should be always")
	}
	if cfg.QueueDepth != 0 {
		t.Fatalf("default queue depth should be unbounded")
	}
	if cfg.SkipBadEvents {
		t.Fatalf("bad events should be fatal by default")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "flyvr.json")
	data := []byte(`{"dataDir":"/tmp/rig","fsync":"interval","fsyncIntervalMs":10,"queueDepth":4096,"skipBadEvents":true}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/rig" {
		t.Fatalf("expected data dir override")
	}
	if cfg.Fsync != "interval" || cfg.FsyncIntervalMs != 10 {
		t.Fatalf("expected fsync override")
	}
	if cfg.QueueDepth != 4096 {
		t.Fatalf("expected bounded queue")
	}
	if !cfg.SkipBadEvents {
		t.Fatalf("expected skip-bad-events true")
	}
	// untouched fields keep defaults
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log level")
	}
}

func TestLoadRejectsNonJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "flyvr.yaml")
	if err := os.WriteFile(file, []byte("dataDir: /tmp"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(file); err == nil {
		t.Fatalf("expected error for yaml config")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("FLYVR_FSYNC", "never")
	os.Setenv("FLYVR_QUEUE_DEPTH", "128")
	os.Setenv("FLYVR_SKIP_BAD_EVENTS", "true")
	t.Cleanup(func() {
		os.Unsetenv("FLYVR_FSYNC")
		os.Unsetenv("FLYVR_QUEUE_DEPTH")
		os.Unsetenv("FLYVR_SKIP_BAD_EVENTS")
	})
	FromEnv(&cfg)
	if cfg.Fsync != "never" {
		t.Fatalf("env override fsync")
	}
	if cfg.QueueDepth != 128 {
		t.Fatalf("env override queue depth")
	}
	if !cfg.SkipBadEvents {
		t.Fatalf("env override skip-bad-events")
	}
}
