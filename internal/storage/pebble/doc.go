// Package pebblestore provides a thin wrapper around Pebble with fsync
// policy, batches, and minimal metrics hooks. It is the durable container
// backing fly-vr recording files: opened in truncate-create mode at the
// start of a run, exclusively locked against other writer processes, and
// fsynced per the configured durability policy.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir:  "./session.flyvr",
//	    Truncate: true,
//	    Fsync:    pebblestore.FsyncModeAlways,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	// Atomic updates with batches
//	b := db.NewBatch()
//	_ = b.Set([]byte("k"), []byte("v"), nil)
//	_ = db.CommitBatch(context.Background(), b)
//	b.Close()
//
//	// Point ops
//	_ = db.Set([]byte("k2"), []byte("v2"))
//	v, _ := db.Get([]byte("k2"))
package pebblestore
