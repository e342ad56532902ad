package config

import (
	"os"
	"strconv"
)

// FromEnv overlays FLYVR_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("FLYVR_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("FLYVR_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("FLYVR_FSYNC_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FsyncIntervalMs = n
		}
	}
	if v := os.Getenv("FLYVR_QUEUE_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueDepth = n
		}
	}
	if v := os.Getenv("FLYVR_SKIP_BAD_EVENTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SkipBadEvents = b
		}
	}
	if v := os.Getenv("FLYVR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FLYVR_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
