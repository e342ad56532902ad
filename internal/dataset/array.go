package dataset

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Array is a dense, row-major numeric array with an explicit element type.
// Data is stored little-endian. Arrays are the only payload kind the append
// path accepts; the leading dimension is the one that grows.
type Array struct {
	Dtype Dtype
	Shape []int
	Data  []byte
}

// NewArray returns a zero-filled array of the given dtype and shape.
func NewArray(dtype Dtype, shape []int) (Array, error) {
	n, err := checkShape(dtype, shape)
	if err != nil {
		return Array{}, err
	}
	return Array{Dtype: dtype, Shape: append([]int(nil), shape...), Data: make([]byte, n*dtype.Size())}, nil
}

// Float64Array builds a float64 array from vals, which must fill shape exactly.
func Float64Array(shape []int, vals []float64) (Array, error) {
	n, err := checkShape(DtypeFloat64, shape)
	if err != nil {
		return Array{}, err
	}
	if len(vals) != n {
		return Array{}, fmt.Errorf("array: %d values do not fill shape %v", len(vals), shape)
	}
	data := make([]byte, n*8)
	for i, v := range vals {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
	}
	return Array{Dtype: DtypeFloat64, Shape: append([]int(nil), shape...), Data: data}, nil
}

// Int64Array builds an int64 array from vals, which must fill shape exactly.
func Int64Array(shape []int, vals []int64) (Array, error) {
	n, err := checkShape(DtypeInt64, shape)
	if err != nil {
		return Array{}, err
	}
	if len(vals) != n {
		return Array{}, fmt.Errorf("array: %d values do not fill shape %v", len(vals), shape)
	}
	data := make([]byte, n*8)
	for i, v := range vals {
		binary.LittleEndian.PutUint64(data[i*8:], uint64(v))
	}
	return Array{Dtype: DtypeInt64, Shape: append([]int(nil), shape...), Data: data}, nil
}

func checkShape(dtype Dtype, shape []int) (int, error) {
	if dtype.Size() == 0 {
		return 0, fmt.Errorf("array: invalid dtype")
	}
	if len(shape) == 0 {
		return 1, nil
	}
	n := 1
	for _, dim := range shape {
		if dim < 0 {
			return 0, fmt.Errorf("array: negative dimension in shape %v", shape)
		}
		n *= dim
	}
	return n, nil
}

// Validate checks that the array is structurally sound: known dtype,
// non-negative dims, and a data buffer that fills the shape exactly.
func (a Array) Validate() error {
	n, err := checkShape(a.Dtype, a.Shape)
	if err != nil {
		return err
	}
	if len(a.Data) != n*a.Dtype.Size() {
		return fmt.Errorf("array: %d data bytes do not fill shape %v of %s", len(a.Data), a.Shape, a.Dtype)
	}
	return nil
}

// NumElems returns the total element count.
func (a Array) NumElems() int {
	n := 1
	for _, dim := range a.Shape {
		n *= dim
	}
	return n
}

// Rows returns the leading-dimension extent.
func (a Array) Rows() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return a.Shape[0]
}

// RowWidth returns the number of elements per leading-dimension row.
func (a Array) RowWidth() int {
	w := 1
	for _, dim := range a.Shape[1:] {
		w *= dim
	}
	return w
}

// RowBytes returns the byte size of one row.
func (a Array) RowBytes() int { return a.RowWidth() * a.Dtype.Size() }

// Row returns the raw bytes of row i without copying.
func (a Array) Row(i int) []byte {
	rb := a.RowBytes()
	return a.Data[i*rb : (i+1)*rb]
}

// AtLeast2D promotes scalars and vectors to two dimensions: a scalar becomes
// shape [1 1], a vector of n elements one row of shape [1 n]. Higher ranks
// are returned unchanged.
func (a Array) AtLeast2D() Array {
	switch len(a.Shape) {
	case 0:
		a.Shape = []int{1, 1}
	case 1:
		a.Shape = []int{1, a.Shape[0]}
	}
	return a
}

// Clone returns a deep copy. Producers hand arrays to the logging proxy and
// may reuse their buffers immediately afterwards.
func (a Array) Clone() Array {
	return Array{
		Dtype: a.Dtype,
		Shape: append([]int(nil), a.Shape...),
		Data:  append([]byte(nil), a.Data...),
	}
}

// Float64s converts the elements to float64 regardless of dtype.
func (a Array) Float64s() []float64 {
	n := a.NumElems()
	out := make([]float64, n)
	sz := a.Dtype.Size()
	for i := 0; i < n; i++ {
		b := a.Data[i*sz:]
		switch a.Dtype {
		case DtypeFloat64:
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b))
		case DtypeFloat32:
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		case DtypeInt64:
			out[i] = float64(int64(binary.LittleEndian.Uint64(b)))
		case DtypeInt32:
			out[i] = float64(int32(binary.LittleEndian.Uint32(b)))
		case DtypeInt16:
			out[i] = float64(int16(binary.LittleEndian.Uint16(b)))
		case DtypeUint8:
			out[i] = float64(b[0])
		}
	}
	return out
}

// ShapeEqual reports whether two shapes are identical, rank included.
func ShapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
