package dataset

import (
	"encoding/json"
	"fmt"
)

// Dtype identifies the element type of a dataset.
type Dtype uint8

const (
	DtypeInvalid Dtype = iota
	DtypeFloat64
	DtypeFloat32
	DtypeInt64
	DtypeInt32
	DtypeInt16
	DtypeUint8
)

// Size returns the element size in bytes.
func (d Dtype) Size() int {
	switch d {
	case DtypeFloat64, DtypeInt64:
		return 8
	case DtypeFloat32, DtypeInt32:
		return 4
	case DtypeInt16:
		return 2
	case DtypeUint8:
		return 1
	default:
		return 0
	}
}

// String returns the canonical dtype name.
func (d Dtype) String() string {
	switch d {
	case DtypeFloat64:
		return "float64"
	case DtypeFloat32:
		return "float32"
	case DtypeInt64:
		return "int64"
	case DtypeInt32:
		return "int32"
	case DtypeInt16:
		return "int16"
	case DtypeUint8:
		return "uint8"
	default:
		return "invalid"
	}
}

// ParseDtype maps a canonical name to a Dtype.
func ParseDtype(s string) (Dtype, error) {
	switch s {
	case "float64":
		return DtypeFloat64, nil
	case "float32":
		return DtypeFloat32, nil
	case "int64":
		return DtypeInt64, nil
	case "int32":
		return DtypeInt32, nil
	case "int16":
		return DtypeInt16, nil
	case "uint8":
		return DtypeUint8, nil
	default:
		return DtypeInvalid, fmt.Errorf("unknown dtype %q", s)
	}
}

// MarshalJSON encodes the dtype as its canonical name so descriptors stay
// readable in the container.
func (d Dtype) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a canonical dtype name.
func (d *Dtype) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDtype(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
