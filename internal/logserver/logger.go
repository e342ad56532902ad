package logserver

import (
	"fmt"

	"github.com/albertlin1194/fly-vr/internal/dataset"
	"github.com/albertlin1194/fly-vr/internal/logevent"
)

// DatasetLogger is the handle producers log through. It is a small value
// meant to be copied freely: hand one to each acquisition goroutine. Every
// call validates and deep-copies its payload before enqueueing, so the
// caller may reuse buffers immediately and a malformed payload fails the
// caller, never the server.
type DatasetLogger struct {
	queue *Queue
}

// Create registers a dataset. The server absorbs duplicate creates, so
// restarted producers can re-issue this unconditionally.
func (l DatasetLogger) Create(path string, spec dataset.Spec) error {
	if path == "" {
		return fmt.Errorf("create: empty dataset path")
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	spec.Shape = append([]int(nil), spec.Shape...)
	spec.ChunkShape = append([]int(nil), spec.ChunkShape...)
	spec.MaxShape = append([]int(nil), spec.MaxShape...)
	spec.FillValue = append([]byte(nil), spec.FillValue...)
	return l.queue.Put(&logevent.CreateEvent{Path: path, Spec: spec})
}

// Log appends the array at the dataset's write cursor. Scalars and vectors
// are promoted to a single row on the server side.
func (l DatasetLogger) Log(path string, a dataset.Array) error {
	return l.put(path, a, true)
}

// Rewrite overwrites the dataset in place. The array must match the stored
// extent exactly.
func (l DatasetLogger) Rewrite(path string, a dataset.Array) error {
	return l.put(path, a, false)
}

func (l DatasetLogger) put(path string, a dataset.Array, appendMode bool) error {
	if path == "" {
		return fmt.Errorf("log: empty dataset path")
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("log %s: %w", path, err)
	}
	c := a.Clone()
	return l.queue.Put(&logevent.WriteEvent{Path: path, Array: &c, Append: appendMode})
}

// LogFields stores a nested mapping as leaves under path.
func (l DatasetLogger) LogFields(path string, fields logevent.Fields) error {
	if path == "" {
		return fmt.Errorf("log fields: empty path")
	}
	if err := fields.Validate(); err != nil {
		return fmt.Errorf("log fields %s: %w", path, err)
	}
	return l.queue.Put(&logevent.WriteEvent{Path: path, Fields: fields.Clone()})
}
