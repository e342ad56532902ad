package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/albertlin1194/fly-vr/internal/storage/pebble"
)

var (
	// ErrNotFound reports a dataset or leaf that does not exist.
	ErrNotFound = errors.New("dataset not found")
	// ErrBadSpec reports a structurally invalid creation spec.
	ErrBadSpec = errors.New("invalid dataset spec")
	// ErrShapeMismatch reports a payload whose shape is incompatible with the
	// target dataset.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrDtypeMismatch reports a payload whose dtype differs from the dataset's.
	ErrDtypeMismatch = errors.New("dtype mismatch")
	// ErrOutOfRange reports a row write beyond the dataset's current extent.
	ErrOutOfRange = errors.New("row range outside dataset extent")
	// ErrMaxShape reports growth beyond a bounded max-shape axis.
	ErrMaxShape = errors.New("resize exceeds max shape")
	// ErrShrink reports an attempt to shrink the leading dimension.
	ErrShrink = errors.New("datasets never shrink")
)

// Store exposes named, typed, resizable datasets over the pebble container.
// It is owned exclusively by the log server; producers never touch it.
type Store struct {
	db *pebblestore.DB
}

// New wraps an open container.
func New(db *pebblestore.DB) *Store { return &Store{db: db} }

// Flush forces the container's buffered writes to stable storage.
func (s *Store) Flush() error { return s.db.Flush() }

// Create makes a new dataset at path, or verifies one already exists there.
// Duplicate creates are absorbed as no-ops: restarted producers re-issue
// their create calls and must not fail. The duplicate's parameters are not
// re-validated against the existing descriptor.
func (s *Store) Create(path string, spec Spec) (bool, error) {
	path = CleanPath(path)
	if err := spec.Validate(); err != nil {
		return false, err
	}
	if _, err := s.Describe(path); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	desc := Descriptor{Path: path, Spec: spec}
	desc.Shape = append([]int(nil), spec.Shape...)
	if spec.TrackTimes {
		desc.CreatedAtMs = time.Now().UnixMilli()
	}
	if err := s.putDescriptor(desc); err != nil {
		return false, err
	}
	return true, nil
}

// Describe loads the descriptor for path.
func (s *Store) Describe(path string) (Descriptor, error) {
	b, err := s.db.Get(KeyMeta(CleanPath(path)))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return Descriptor{}, fmt.Errorf("%w: %s", ErrNotFound, CleanPath(path))
		}
		return Descriptor{}, err
	}
	var desc Descriptor
	if err := json.Unmarshal(b, &desc); err != nil {
		return Descriptor{}, fmt.Errorf("corrupt descriptor at %s: %w", path, err)
	}
	return desc, nil
}

// Resize grows the leading dimension of path to rows. Shrinking is refused;
// growth beyond a bounded max shape is refused.
func (s *Store) Resize(path string, rows int) error {
	desc, err := s.Describe(path)
	if err != nil {
		return err
	}
	if rows < desc.Shape[0] {
		return fmt.Errorf("%w: %s has %d rows, asked for %d", ErrShrink, desc.Path, desc.Shape[0], rows)
	}
	if rows == desc.Shape[0] {
		return nil
	}
	if len(desc.MaxShape) > 0 && desc.MaxShape[0] != Unlimited && rows > desc.MaxShape[0] {
		return fmt.Errorf("%w: %s capped at %d rows, asked for %d", ErrMaxShape, desc.Path, desc.MaxShape[0], rows)
	}
	desc.Shape[0] = rows
	return s.putDescriptor(desc)
}

// WriteRows writes the rows of a (at-least-2D) array at row offset at. The
// target range must lie within the dataset's current extent; the caller
// resizes first when appending past the end.
func (s *Store) WriteRows(path string, at int, a Array) error {
	desc, err := s.Describe(path)
	if err != nil {
		return err
	}
	if err := desc.CheckCompatible(a); err != nil {
		return err
	}
	if at < 0 || at+a.Rows() > desc.Shape[0] {
		return fmt.Errorf("%w: rows [%d:%d) of %s (extent %d)", ErrOutOfRange, at, at+a.Rows(), desc.Path, desc.Shape[0])
	}
	return s.writeRowRange(desc, at, a)
}

// Overwrite replaces the dataset contents in place. The payload shape must
// equal the dataset's current shape exactly; on mismatch the dataset is left
// unmodified.
func (s *Store) Overwrite(path string, a Array) error {
	desc, err := s.Describe(path)
	if err != nil {
		return err
	}
	if err := desc.CheckCompatible(a); err != nil {
		return err
	}
	if !ShapeEqual(a.Shape, desc.Shape) {
		return fmt.Errorf("%w: payload %v cannot overwrite %s with shape %v", ErrShapeMismatch, a.Shape, desc.Path, desc.Shape)
	}
	return s.writeRowRange(desc, 0, a)
}

// CheckCompatible reports whether the array's rows can be written into the
// dataset: same dtype, same per-row element count. Callers that mutate the
// dataset before writing (resize on append) run this first so a rejected
// payload leaves no trace.
func (d Descriptor) CheckCompatible(a Array) error {
	if a.Dtype != d.Dtype {
		return fmt.Errorf("%w: payload %s vs dataset %s at %s", ErrDtypeMismatch, a.Dtype, d.Dtype, d.Path)
	}
	if a.RowWidth() != d.rowWidth() {
		return fmt.Errorf("%w: payload rows of %d elements vs dataset rows of %d at %s", ErrShapeMismatch, a.RowWidth(), d.rowWidth(), d.Path)
	}
	return nil
}

func (s *Store) writeRowRange(desc Descriptor, at int, a Array) error {
	b := s.db.NewBatch()
	defer b.Close()
	for i := 0; i < a.Rows(); i++ {
		val, err := encodeRow(desc.Spec, a.Row(i))
		if err != nil {
			return err
		}
		if err := b.Set(KeyRow(desc.Path, uint64(at+i)), val, nil); err != nil {
			return err
		}
	}
	return s.db.CommitBatch(context.Background(), b)
}

// ReadRows materializes n rows starting at from. Rows that were never
// written come back as the fill value (zero when unset).
func (s *Store) ReadRows(path string, from, n int) (Array, error) {
	desc, err := s.Describe(path)
	if err != nil {
		return Array{}, err
	}
	if from < 0 || n < 0 || from+n > desc.Shape[0] {
		return Array{}, fmt.Errorf("%w: rows [%d:%d) of %s (extent %d)", ErrOutOfRange, from, from+n, desc.Path, desc.Shape[0])
	}

	shape := append([]int{n}, desc.Shape[1:]...)
	out, err := NewArray(desc.Dtype, shape)
	if err != nil {
		return Array{}, err
	}
	if fill := fillRow(desc.Spec); fill != nil {
		for i := 0; i < n; i++ {
			copy(out.Row(i), fill)
		}
	}

	low, hi := rowBounds(desc.Path, uint64(from))
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: hi})
	if err != nil {
		return Array{}, err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		row := int(rowIndex(iter.Key()))
		if row >= from+n {
			break
		}
		raw, err := decodeRow(desc.Spec, iter.Value())
		if err != nil {
			return Array{}, fmt.Errorf("row %d of %s: %w", row, desc.Path, err)
		}
		if len(raw) != out.RowBytes() {
			return Array{}, fmt.Errorf("row %d of %s: stored %d bytes, want %d", row, desc.Path, len(raw), out.RowBytes())
		}
		copy(out.Row(row-from), raw)
	}
	return out, nil
}

// ReadAll materializes the full dataset.
func (s *Store) ReadAll(path string) (Array, error) {
	desc, err := s.Describe(path)
	if err != nil {
		return Array{}, err
	}
	return s.ReadRows(path, 0, desc.Shape[0])
}

// PutLeaf stores an encoded mapping leaf at path, creating or overwriting.
func (s *Store) PutLeaf(path string, encoded []byte) error {
	return s.db.Set(KeyLeaf(CleanPath(path)), encoded)
}

// GetLeaf loads the encoded mapping leaf at path.
func (s *Store) GetLeaf(path string) ([]byte, error) {
	b, err := s.db.Get(KeyLeaf(CleanPath(path)))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return nil, fmt.Errorf("%w: leaf %s", ErrNotFound, CleanPath(path))
		}
		return nil, err
	}
	return b, nil
}

// List returns the descriptors of every dataset in the container, in path
// order.
func (s *Store) List() ([]Descriptor, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: metaPrefix, UpperBound: prefixEnd(metaPrefix)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []Descriptor
	for iter.First(); iter.Valid(); iter.Next() {
		var desc Descriptor
		if err := json.Unmarshal(iter.Value(), &desc); err != nil {
			return nil, fmt.Errorf("corrupt descriptor at key %q: %w", iter.Key(), err)
		}
		out = append(out, desc)
	}
	return out, nil
}

// ListLeaves returns the paths of every stored mapping leaf, in path order.
func (s *Store) ListLeaves() ([]string, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: leafPrefix, UpperBound: prefixEnd(leafPrefix)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []string
	for iter.First(); iter.Valid(); iter.Next() {
		out = append(out, string(iter.Key()[len(leafPrefix):]))
	}
	return out, nil
}

func (s *Store) putDescriptor(desc Descriptor) error {
	b, err := json.Marshal(desc)
	if err != nil {
		return err
	}
	return s.db.Set(KeyMeta(desc.Path), b)
}

// fillRow builds one row of fill values, or nil when the fill is zero.
func fillRow(spec Spec) []byte {
	if spec.FillValue == nil {
		return nil
	}
	zero := true
	for _, b := range spec.FillValue {
		if b != 0 {
			zero = false
			break
		}
	}
	if zero {
		return nil
	}
	width := spec.rowWidth()
	row := make([]byte, 0, width*spec.Dtype.Size())
	for i := 0; i < width; i++ {
		row = append(row, spec.FillValue...)
	}
	return row
}
