// Package recordrun exposes the shared Run entrypoint the CLI uses to drive
// one recording session: open a fresh container, start the dataset log
// server, optionally log experiment metadata and a heartbeat stream, and
// drain cleanly on shutdown.
package recordrun
