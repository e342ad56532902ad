package logserver

import (
	"errors"
	"fmt"
	"sort"

	"github.com/albertlin1194/fly-vr/internal/dataset"
	"github.com/albertlin1194/fly-vr/internal/logevent"
	logpkg "github.com/albertlin1194/fly-vr/pkg/log"
)

// errBadPayload marks a payload the leaf codec cannot represent.
var errBadPayload = errors.New("unencodable payload")

// isDataError reports whether an error is a property of the event itself
// rather than of the container. Only these may be skipped; storage failures
// always stop the run.
func isDataError(err error) bool {
	return errors.Is(err, errBadPayload) ||
		errors.Is(err, dataset.ErrBadSpec) ||
		errors.Is(err, dataset.ErrShapeMismatch) ||
		errors.Is(err, dataset.ErrDtypeMismatch) ||
		errors.Is(err, dataset.ErrShrink) ||
		errors.Is(err, dataset.ErrMaxShape) ||
		errors.Is(err, dataset.ErrNotFound)
}

func (s *Server) processEvent(ev logevent.Event) error {
	switch ev := ev.(type) {
	case *logevent.CreateEvent:
		return s.processCreate(ev)
	case *logevent.WriteEvent:
		return s.processWrite(ev)
	default:
		return fmt.Errorf("unknown event type %T", ev)
	}
}

func (s *Server) processCreate(ev *logevent.CreateEvent) error {
	path := dataset.CleanPath(ev.Path)
	created, err := s.store.Create(path, ev.Spec)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if !created {
		s.log.Debug("dataset already exists", logpkg.Str("dataset", path))
		return nil
	}
	s.cursors[path] = 0
	s.log.Debug("dataset created",
		logpkg.Str("dataset", path),
		logpkg.Str("dtype", ev.Spec.Dtype.String()),
		logpkg.Any("shape", ev.Spec.Shape))
	return nil
}

func (s *Server) processWrite(ev *logevent.WriteEvent) error {
	path := dataset.CleanPath(ev.Path)
	switch {
	case ev.Array != nil && ev.Fields != nil:
		return fmt.Errorf("write %s: event carries both array and fields", path)
	case ev.Array != nil:
		if ev.Append {
			return s.appendRows(path, *ev.Array)
		}
		return s.overwrite(path, *ev.Array)
	case ev.Fields != nil:
		return s.writeFields(path, ev.Fields)
	default:
		return fmt.Errorf("write %s: empty event", path)
	}
}

// appendRows promotes the payload to at least two dimensions, grows the
// dataset when the cursor runs past its extent, writes at the cursor, and
// advances it. The cursor, not the stored extent, decides where rows land,
// so preallocated space is filled in place before any resize happens.
func (s *Server) appendRows(path string, a dataset.Array) error {
	a = a.AtLeast2D()
	desc, err := s.store.Describe(path)
	if err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}

	// Reject incompatible payloads before the resize below, so a bad event
	// never grows the extent it then fails to fill.
	if err := desc.CheckCompatible(a); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}

	cursor := s.cursors[path]
	need := cursor + a.Rows()
	if need > desc.Spec.Shape[0] {
		if err := s.store.Resize(path, need); err != nil {
			return fmt.Errorf("append %s: %w", path, err)
		}
	}
	if err := s.store.WriteRows(path, cursor, a); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	s.cursors[path] = need
	return nil
}

// overwrite replaces the dataset contents in place. The payload shape must
// match the stored extent exactly; the cursor is untouched.
func (s *Server) overwrite(path string, a dataset.Array) error {
	if err := s.store.Overwrite(path, a.AtLeast2D()); err != nil {
		return fmt.Errorf("overwrite %s: %w", path, err)
	}
	return nil
}

// writeFields flattens a nested mapping into leaves under the event path.
// Keys are visited in sorted order so repeated runs lay leaves down in a
// stable order.
func (s *Server) writeFields(path string, fields logevent.Fields) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		leafPath := dataset.JoinPath(path, k)
		v := fields[k]
		if v.Kind() == logevent.KindMap {
			if err := s.writeFields(leafPath, v.AsMap()); err != nil {
				return err
			}
			continue
		}
		enc, err := v.Encode()
		if err != nil {
			return fmt.Errorf("%w: leaf %s: %v", errBadPayload, leafPath, err)
		}
		if err := s.store.PutLeaf(leafPath, enc); err != nil {
			return fmt.Errorf("leaf %s: %w", leafPath, err)
		}
	}
	return nil
}
