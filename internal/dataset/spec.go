package dataset

import (
	"encoding/json"
	"fmt"
)

// Unlimited marks a max-shape axis that may grow without bound.
const Unlimited = -1

// CompressionKind selects the per-row codec.
type CompressionKind uint8

const (
	CompressionNone CompressionKind = iota
	CompressionSnappy
)

func (k CompressionKind) String() string {
	switch k {
	case CompressionNone:
		return "none"
	case CompressionSnappy:
		return "snappy"
	default:
		return "unknown"
	}
}

// ParseCompression maps a name to a CompressionKind.
func ParseCompression(s string) (CompressionKind, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "snappy":
		return CompressionSnappy, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression %q", s)
	}
}

// MarshalJSON encodes the kind by name.
func (k CompressionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name.
func (k *CompressionKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseCompression(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Compression describes the codec applied to stored rows. Level is advisory
// and ignored by codecs without tunable levels (snappy).
type Compression struct {
	Kind  CompressionKind `json:"kind"`
	Level int             `json:"level,omitempty"`
}

// Spec is the dataset-creation call surface, forwarded verbatim from
// producers to the store.
type Spec struct {
	// Shape is the initial extent per axis.
	Shape []int `json:"shape"`
	// Dtype is the element type.
	Dtype Dtype `json:"dtype"`
	// ChunkShape is the preferred I/O chunking, advisory metadata carried on
	// the descriptor.
	ChunkShape []int `json:"chunkShape,omitempty"`
	// MaxShape bounds growth per axis; Unlimited marks a growable axis.
	// Empty means the dataset is fixed at Shape.
	MaxShape []int `json:"maxShape,omitempty"`
	// Compression is the per-row codec.
	Compression Compression `json:"compression,omitempty"`
	// FillValue is one dtype-sized element used when reading rows that were
	// never written. Nil means zero.
	FillValue []byte `json:"fillValue,omitempty"`
	// Fletcher32 enables a per-row checksum verified on read.
	Fletcher32 bool `json:"fletcher32,omitempty"`
	// TrackTimes stamps the descriptor with its creation time.
	TrackTimes bool `json:"trackTimes,omitempty"`
}

// Validate checks the spec for structural problems before it reaches storage.
func (s Spec) Validate() error {
	if s.Dtype.Size() == 0 {
		return fmt.Errorf("%w: unknown dtype", ErrBadSpec)
	}
	if len(s.Shape) == 0 {
		return fmt.Errorf("%w: empty shape", ErrBadSpec)
	}
	for _, dim := range s.Shape {
		if dim < 0 {
			return fmt.Errorf("%w: negative dimension in shape %v", ErrBadSpec, s.Shape)
		}
	}
	if len(s.MaxShape) > 0 {
		if len(s.MaxShape) != len(s.Shape) {
			return fmt.Errorf("%w: max shape rank %d != shape rank %d", ErrBadSpec, len(s.MaxShape), len(s.Shape))
		}
		for i, m := range s.MaxShape {
			if m == Unlimited {
				continue
			}
			if m < s.Shape[i] {
				return fmt.Errorf("%w: max shape %v below initial shape %v", ErrBadSpec, s.MaxShape, s.Shape)
			}
		}
	}
	if s.FillValue != nil && len(s.FillValue) != s.Dtype.Size() {
		return fmt.Errorf("%w: fill value is %d bytes, dtype %s needs %d", ErrBadSpec, len(s.FillValue), s.Dtype, s.Dtype.Size())
	}
	return nil
}

// rowWidth is the element count per leading-dimension row.
func (s Spec) rowWidth() int {
	w := 1
	for _, dim := range s.Shape[1:] {
		w *= dim
	}
	return w
}

// Descriptor is the persisted identity of a dataset: its spec plus path and
// creation time. Mutated only by the log server (shape growth on append).
type Descriptor struct {
	Path string `json:"path"`
	Spec
	CreatedAtMs int64 `json:"createdAtMs,omitempty"`
}
