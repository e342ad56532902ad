package logserver

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/albertlin1194/fly-vr/internal/dataset"
	"github.com/albertlin1194/fly-vr/internal/logevent"
	pebblestore "github.com/albertlin1194/fly-vr/internal/storage/pebble"
	"github.com/albertlin1194/fly-vr/pkg/id"
	logpkg "github.com/albertlin1194/fly-vr/pkg/log"
)

// State reports where a Server is in its lifecycle.
type State int32

const (
	StateNew State = iota
	StateRunning
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options configures a Server.
type Options struct {
	// DataDir is the recording container directory. Opening always truncates
	// it; a run never appends to a previous run's data.
	DataDir string
	// Fsync selects the WAL durability policy.
	Fsync pebblestore.FsyncMode
	// FsyncInterval applies when Fsync is FsyncModeInterval.
	FsyncInterval time.Duration
	// QueueDepth bounds the event queue. Zero means unbounded.
	QueueDepth int
	// SkipBadEvents downgrades per-event data errors from fatal to a logged
	// warning. Storage and protocol errors stay fatal.
	SkipBadEvents bool
	// Logger is the structured logger. Nil selects the package default.
	Logger logpkg.Logger
}

// Server owns the recording container exclusively and applies every event in
// arrival order on a single goroutine. Producers only ever talk to it
// through the DatasetLogger returned by Start.
type Server struct {
	opts  Options
	log   logpkg.Logger
	db    *pebblestore.DB
	store *dataset.Store
	queue *Queue

	// cursors maps dataset path to the next append row, maintained only by
	// the run loop.
	cursors map[string]int

	state    atomic.Int32
	stopOnce sync.Once
	done     chan struct{}

	errMu sync.Mutex
	err   error
}

// effectiveFsync resolves the zero value to the durability default. Losing
// more than one in-flight event on crash is only ruled out when every commit
// syncs, so an unset mode means always, not Pebble's group-commit default.
func effectiveFsync(m pebblestore.FsyncMode) pebblestore.FsyncMode {
	if m == pebblestore.FsyncModeUnspecified {
		return pebblestore.FsyncModeAlways
	}
	return m
}

// New opens the recording container and prepares a server. Start must be
// called before any events are accepted.
func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	logger = logger.WithComponent("logserver")

	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Truncate:      true,
		Fsync:         effectiveFsync(opts.Fsync),
		FsyncInterval: opts.FsyncInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}

	s := &Server{
		opts:    opts,
		log:     logger,
		db:      db,
		store:   dataset.New(db),
		queue:   NewQueue(opts.QueueDepth),
		cursors: make(map[string]int),
		done:    make(chan struct{}),
	}
	if err := s.writeSessionLeaves(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// writeSessionLeaves stamps the container with run identity metadata.
func (s *Server) writeSessionLeaves() error {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	session := id.NewSession()
	leaves := map[string]logevent.Value{
		"/session/id":         logevent.Str(session.String()),
		"/session/started_at": logevent.Int(session.Time().UnixMilli()),
		"/session/host":       logevent.Str(host),
	}
	for path, v := range leaves {
		enc, err := v.Encode()
		if err != nil {
			return err
		}
		if err := s.store.PutLeaf(path, enc); err != nil {
			return fmt.Errorf("write session metadata: %w", err)
		}
	}
	s.log.Info("session started",
		logpkg.Str("session", session.String()),
		logpkg.Str("data_dir", s.opts.DataDir))
	return nil
}

// Start launches the run loop and hands back the producer-facing logger.
// DatasetLogger values are copyable; give every producer its own copy.
func (s *Server) Start() DatasetLogger {
	if s.state.CompareAndSwap(int32(StateNew), int32(StateRunning)) {
		go s.run()
	}
	return DatasetLogger{queue: s.queue}
}

// Stop enqueues the shutdown sentinel and waits for the loop to drain every
// event ahead of it and close the container. Events enqueued after Stop are
// discarded.
func (s *Server) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		// ErrClosed here means the loop already fataled and closed the
		// queue itself; Done is or will be signalled either way.
		_ = s.queue.Put(stopEvent{})
	})
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed after the container has been finalized.
func (s *Server) Done() <-chan struct{} { return s.done }

// WaitUntilClosed blocks until the loop has finalized the container or the
// timeout elapses. A timeout <= 0 waits forever. Returns true once closed.
func (s *Server) WaitUntilClosed(timeout time.Duration) bool {
	if timeout <= 0 {
		<-s.done
		return true
	}
	select {
	case <-s.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// State reports the current lifecycle state.
func (s *Server) State() State { return State(s.state.Load()) }

// Err returns the fatal error that stopped the loop, or nil after a clean
// shutdown.
func (s *Server) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Cursor reports the next append row for a dataset. Safe to call only after
// Done, when the loop no longer mutates the map.
func (s *Server) Cursor(path string) int {
	return s.cursors[dataset.CleanPath(path)]
}

// stopEvent is the shutdown sentinel. It is enqueued like any other event so
// everything ahead of it drains first.
type stopEvent struct{}

func (stopEvent) DatasetPath() string { return "" }

func (s *Server) run() {
	defer close(s.done)

	var runErr error
loop:
	for raw := range s.queue.Out() {
		switch ev := raw.(type) {
		case stopEvent:
			s.log.Debug("shutdown sentinel received", logpkg.Int("pending", s.queue.Len()))
			break loop
		case logevent.Event:
			if err := s.processEvent(ev); err != nil {
				if s.opts.SkipBadEvents && isDataError(err) {
					s.log.Warn("skipping bad event",
						logpkg.Str("dataset", ev.DatasetPath()),
						logpkg.Err(err))
					continue
				}
				runErr = err
				break loop
			}
		default:
			runErr = fmt.Errorf("unknown event type %T", raw)
			break loop
		}
	}

	s.queue.Shutdown()
	if err := s.finalize(); err != nil && runErr == nil {
		runErr = err
	}

	s.errMu.Lock()
	s.err = runErr
	s.errMu.Unlock()
	s.state.Store(int32(StateClosed))

	if runErr != nil {
		s.log.Error("log server stopped", logpkg.Err(runErr))
	}
}

// finalize flushes and closes the container exactly once, at the end of the
// run loop.
func (s *Server) finalize() error {
	if err := s.store.Flush(); err != nil {
		_ = s.db.Close()
		return fmt.Errorf("flush container: %w", err)
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close container: %w", err)
	}
	s.log.Info("container closed", logpkg.Int("datasets", len(s.cursors)))
	return nil
}
