package logevent

import (
	"github.com/albertlin1194/fly-vr/internal/dataset"
)

// Event is the interface shared by everything that crosses the log queue.
// The server loop type-switches on the concrete events below.
type Event interface {
	DatasetPath() string
}

// CreateEvent asks the server to create (or reopen) a dataset at Path with
// the given spec.
type CreateEvent struct {
	Path string
	Spec dataset.Spec
}

func (e *CreateEvent) DatasetPath() string { return e.Path }

// WriteEvent carries one payload for a dataset: either a numeric Array or a
// nested Fields mapping, never both. Append selects cursor-append versus
// in-place overwrite for array payloads.
type WriteEvent struct {
	Path   string
	Array  *dataset.Array
	Fields Fields
	Append bool
}

func (e *WriteEvent) DatasetPath() string { return e.Path }
