package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// DataDir is where recording containers are created. Empty selects an
	// OS-specific default.
	DataDir string `json:"dataDir"`
	// Fsync selects storage durability: always|interval|never.
	Fsync string `json:"fsync"`
	// FsyncIntervalMs is the group-commit window when Fsync is "interval".
	FsyncIntervalMs int `json:"fsyncIntervalMs"`
	// QueueDepth bounds the log event transport. 0 means unbounded, the
	// fire-and-forget default for latency-sensitive producers.
	QueueDepth int `json:"queueDepth"`
	// SkipBadEvents downgrades shape/type errors from fatal to warnings.
	// Documented deviation: trades data completeness for availability.
	SkipBadEvents bool `json:"skipBadEvents"`
	// LogLevel is the process log level: debug|info|warn|error.
	LogLevel string `json:"logLevel"`
	// LogFormat is the process log format: text|json.
	LogFormat string `json:"logFormat"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Fsync:           "always",
		FsyncIntervalMs: 5,
		QueueDepth:      0,
		SkipBadEvents:   false,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads configuration from a JSON file. If path is empty, returns
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if ext := filepath.Ext(path); ext != "" && ext != ".json" {
		return Config{}, fmt.Errorf("unsupported config extension %q; use JSON", ext)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
