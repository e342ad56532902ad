// Package id generates lexicographically sortable 128-bit identifiers.
//
// fly-vr stamps every recording session with one of these IDs so that
// session metadata written into the storage container sorts by start time.
// IDs are [8 bytes ms timestamp][8 bytes per-ms sequence], big-endian, and
// are monotonic per process even across clock regressions.
package id
