package recordrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	cfgpkg "github.com/albertlin1194/fly-vr/internal/config"
	"github.com/albertlin1194/fly-vr/internal/dataset"
	"github.com/albertlin1194/fly-vr/internal/logevent"
	pebblestore "github.com/albertlin1194/fly-vr/internal/storage/pebble"
)

func TestGetenvDefault(t *testing.T) {
	t.Setenv("FLYVR_TEST_VAR", "from-env")
	if got := getenvDefault("FLYVR_TEST_VAR", "fallback"); got != "from-env" {
		t.Fatalf("got %q", got)
	}
	if got := getenvDefault("FLYVR_TEST_VAR_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("got %q", got)
	}
}

func TestRunRecordsMetadataAndHeartbeat(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dir := t.TempDir()
	metaFile := filepath.Join(dir, "meta.json")
	if err := os.WriteFile(metaFile, []byte(`{"name":"exp01","trial":1}`), 0o644); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	err := Run(ctx, Options{
		DataDir:           dir,
		ContainerName:     "run01",
		MetadataFile:      metaFile,
		HeartbeatInterval: 20 * time.Millisecond,
		Fsync:             pebblestore.FsyncModeNever,
		Config:            cfgpkg.Default(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	db, err := pebblestore.Open(pebblestore.Options{
		DataDir: filepath.Join(dir, "run01"),
		Fsync:   pebblestore.FsyncModeNever,
	})
	if err != nil {
		t.Fatalf("reopen container: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store := dataset.New(db)

	raw, err := store.GetLeaf("/experiment/name")
	if err != nil {
		t.Fatalf("GetLeaf: %v", err)
	}
	v, err := logevent.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.AsString() != "exp01" {
		t.Fatalf("/experiment/name = %q", v.AsString())
	}

	hb, err := store.ReadAll("/debug/heartbeat")
	if err != nil {
		t.Fatalf("ReadAll heartbeat: %v", err)
	}
	if hb.Rows() == 0 {
		t.Fatal("no heartbeat rows recorded")
	}
}

func TestRunFailsOnBadMetadata(t *testing.T) {
	dir := t.TempDir()
	metaFile := filepath.Join(dir, "meta.json")
	if err := os.WriteFile(metaFile, []byte(`{"xs": [1, "two"]}`), 0o644); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := Run(ctx, Options{
		DataDir:       dir,
		ContainerName: "run02",
		MetadataFile:  metaFile,
		Fsync:         pebblestore.FsyncModeNever,
		Config:        cfgpkg.Default(),
	})
	if err == nil {
		t.Fatal("Run with unloggable metadata should fail")
	}
}
