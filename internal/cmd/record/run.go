package recordrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	cfgpkg "github.com/albertlin1194/fly-vr/internal/config"
	"github.com/albertlin1194/fly-vr/internal/dataset"
	"github.com/albertlin1194/fly-vr/internal/logevent"
	"github.com/albertlin1194/fly-vr/internal/logserver"
	pebblestore "github.com/albertlin1194/fly-vr/internal/storage/pebble"
	logpkg "github.com/albertlin1194/fly-vr/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Options configures one recording run.
type Options struct {
	// DataDir is where the container directory is created. Empty selects
	// the OS default.
	DataDir string
	// ContainerName is the directory name of this run's container under
	// DataDir.
	ContainerName string
	// MetadataFile is an optional JSON file logged under /experiment before
	// acquisition starts.
	MetadataFile string
	// HeartbeatInterval enables the built-in heartbeat producer when
	// positive: one (timestamp, seq) row per tick under /debug/heartbeat.
	HeartbeatInterval time.Duration
	Fsync             pebblestore.FsyncMode
	FsyncInterval     time.Duration
	QueueDepth        int
	SkipBadEvents     bool
	Config            cfgpkg.Config
}

// Run starts the dataset log server and blocks until ctx is cancelled, then
// drains and closes the container.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.ContainerName == "" {
		opts.ContainerName = "container"
	}
	containerDir := filepath.Join(opts.DataDir, opts.ContainerName)

	cfg := &logpkg.Config{
		Level:  getenvDefault("FLYVR_LOG_LEVEL", opts.Config.LogLevel),
		Format: getenvDefault("FLYVR_LOG_FORMAT", opts.Config.LogFormat),
	}
	procLogger, err := logpkg.ApplyConfig(cfg)
	if err != nil {
		procLogger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}
	logpkg.RedirectStdLog(procLogger)

	srv, err := logserver.New(logserver.Options{
		DataDir:       containerDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		QueueDepth:    opts.QueueDepth,
		SkipBadEvents: opts.SkipBadEvents,
		Logger:        procLogger,
	})
	if err != nil {
		return err
	}
	dl := srv.Start()

	procLogger.Info("recording started",
		logpkg.Str("container", containerDir),
		logpkg.Int("queue_depth", opts.QueueDepth),
		logpkg.Bool("skip_bad_events", opts.SkipBadEvents))

	if opts.MetadataFile != "" {
		if err := logMetadata(dl, opts.MetadataFile); err != nil {
			procLogger.WithError(err).Error("metadata not logged")
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Stop(stopCtx)
			return err
		}
	}

	hbDone := make(chan struct{})
	if opts.HeartbeatInterval > 0 {
		go heartbeat(sctx, dl, opts.HeartbeatInterval, procLogger, hbDone)
	} else {
		close(hbDone)
	}

	select {
	case <-sctx.Done():
		procLogger.Info("shutdown requested")
	case <-srv.Done():
		// The loop stopped on its own: a fatal event error.
	}
	<-hbDone

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Stop(stopCtx); err != nil {
		return err
	}
	procLogger.Info("recording finished", logpkg.Str("container", containerDir))
	return nil
}

func logMetadata(dl logserver.DatasetLogger, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fields, err := logevent.FieldsFromJSON(b)
	if err != nil {
		return err
	}
	return dl.LogFields("/experiment", fields)
}

// heartbeat is a built-in producer used to verify a rig end to end: one row
// of (unix_ms, seq) per tick.
func heartbeat(ctx context.Context, dl logserver.DatasetLogger, interval time.Duration, logger logpkg.Logger, done chan<- struct{}) {
	defer close(done)

	spec := dataset.Spec{
		Shape:    []int{0, 2},
		Dtype:    dataset.DtypeFloat64,
		MaxShape: []int{dataset.Unlimited, 2},
	}
	if err := dl.Create("/debug/heartbeat", spec); err != nil {
		logger.WithError(err).Warn("heartbeat dataset not created")
		return
	}

	tick := time.NewTicker(interval)
	defer tick.Stop()
	var seq float64
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-tick.C:
			row, err := dataset.Float64Array([]int{1, 2}, []float64{float64(t.UnixMilli()), seq})
			if err != nil {
				return
			}
			if err := dl.Log("/debug/heartbeat", row); err != nil {
				// Queue closed: the server is shutting down.
				return
			}
			seq++
		}
	}
}
