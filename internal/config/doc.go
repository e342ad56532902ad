// Package config loads fly-vr process configuration.
//
// Configuration is a small JSON document overlaid with FLYVR_* environment
// variables. It covers where recording containers live, the storage fsync
// policy, the log event transport capacity, and process logging. Defaults
// favor durability: fsync on every processed event and an unbounded
// transport so hardware acquisition callbacks never block.
package config
