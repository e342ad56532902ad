package logevent

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/albertlin1194/fly-vr/internal/dataset"
)

// Kind tags the variants a mapping value can take. The set is closed: the
// server fails fast on anything it does not recognize rather than guessing.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindListScalar
	KindListString
	KindArray
	KindMap
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindListScalar:
		return "list<scalar>"
	case KindListString:
		return "list<string>"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// Value is one mapping payload value: a tagged variant over the kinds a
// nested-mapping log event may carry.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	raw  []byte
	nums []float64
	strs []string
	arr  dataset.Array
	m    map[string]Value
}

// Fields is a nested mapping payload.
type Fields map[string]Value

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int wraps an integer scalar.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float wraps a float scalar.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Str wraps a string.
func Str(v string) Value { return Value{kind: KindString, s: v} }

// Bytes wraps raw bytes.
func Bytes(v []byte) Value { return Value{kind: KindBytes, raw: v} }

// Floats wraps a list of numeric scalars.
func Floats(v []float64) Value { return Value{kind: KindListScalar, nums: v} }

// Strs wraps a list of strings.
func Strs(v []string) Value { return Value{kind: KindListString, strs: v} }

// Arr wraps a numeric array.
func Arr(a dataset.Array) Value { return Value{kind: KindArray, arr: a} }

// Map wraps a nested mapping.
func Map(m Fields) Value { return Value{kind: KindMap, m: m} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

func (v Value) AsBool() bool          { return v.b }
func (v Value) AsInt() int64          { return v.i }
func (v Value) AsFloat() float64      { return v.f }
func (v Value) AsString() string      { return v.s }
func (v Value) AsBytes() []byte       { return v.raw }
func (v Value) AsFloats() []float64   { return v.nums }
func (v Value) AsStrings() []string   { return v.strs }
func (v Value) AsArray() dataset.Array { return v.arr }
func (v Value) AsMap() Fields         { return v.m }

// Clone deep-copies the value. Producers may reuse their buffers the moment
// a log call returns.
func (v Value) Clone() Value {
	out := v
	if v.raw != nil {
		out.raw = append([]byte(nil), v.raw...)
	}
	if v.nums != nil {
		out.nums = append([]float64(nil), v.nums...)
	}
	if v.strs != nil {
		out.strs = append([]string(nil), v.strs...)
	}
	if v.kind == KindArray {
		out.arr = v.arr.Clone()
	}
	if v.m != nil {
		out.m = Fields(v.m).Clone()
	}
	return out
}

// Validate walks the value and rejects anything outside the closed kind set.
// Called at the log call site so that an unencodable payload fails the
// producer synchronously instead of poisoning the server loop.
func (v Value) Validate() error {
	switch v.kind {
	case KindNull, KindBool, KindInt, KindFloat, KindString, KindBytes,
		KindListScalar, KindListString:
		return nil
	case KindArray:
		return v.arr.Validate()
	case KindMap:
		return Fields(v.m).Validate()
	default:
		return fmt.Errorf("cannot log value of kind %s", v.kind)
	}
}

// Clone deep-copies the mapping.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v.Clone()
	}
	return out
}

// Validate walks the mapping and rejects unencodable values.
func (f Fields) Validate() error {
	for k, v := range f {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
	}
	return nil
}

// Leaf encoding: 1 byte kind | payload | crc32c(kind|payload). Maps are
// never encoded; the server flattens them to leaves first.

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Encode frames the value for leaf storage.
func (v Value) Encode() ([]byte, error) {
	out := []byte{byte(v.kind)}
	switch v.kind {
	case KindNull:
	case KindBool:
		if v.b {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	case KindInt:
		out = appendUint64(out, uint64(v.i))
	case KindFloat:
		out = appendUint64(out, math.Float64bits(v.f))
	case KindString:
		out = append(out, v.s...)
	case KindBytes:
		out = append(out, v.raw...)
	case KindListScalar:
		for _, n := range v.nums {
			out = appendUint64(out, math.Float64bits(n))
		}
	case KindListString:
		var tmp [10]byte
		for _, s := range v.strs {
			n := binary.PutUvarint(tmp[:], uint64(len(s)))
			out = append(out, tmp[:n]...)
			out = append(out, s...)
		}
	case KindArray:
		out = append(out, byte(v.arr.Dtype))
		var tmp [10]byte
		n := binary.PutUvarint(tmp[:], uint64(len(v.arr.Shape)))
		out = append(out, tmp[:n]...)
		for _, dim := range v.arr.Shape {
			n = binary.PutUvarint(tmp[:], uint64(dim))
			out = append(out, tmp[:n]...)
		}
		out = append(out, v.arr.Data...)
	default:
		return nil, fmt.Errorf("cannot encode value of kind %s", v.kind)
	}

	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc32.Checksum(out, castagnoli))
	return append(out, crcb[:]...), nil
}

// Decode reverses Encode.
func Decode(b []byte) (Value, error) {
	if len(b) < 5 {
		return Value{}, fmt.Errorf("leaf too short")
	}
	body, crcb := b[:len(b)-4], b[len(b)-4:]
	if got := crc32.Checksum(body, castagnoli); got != binary.BigEndian.Uint32(crcb) {
		return Value{}, fmt.Errorf("leaf checksum mismatch")
	}

	kind := Kind(body[0])
	payload := body[1:]
	switch kind {
	case KindNull:
		return Null(), nil
	case KindBool:
		if len(payload) != 1 {
			return Value{}, fmt.Errorf("bad bool leaf")
		}
		return Bool(payload[0] != 0), nil
	case KindInt:
		if len(payload) != 8 {
			return Value{}, fmt.Errorf("bad int leaf")
		}
		return Int(int64(binary.BigEndian.Uint64(payload))), nil
	case KindFloat:
		if len(payload) != 8 {
			return Value{}, fmt.Errorf("bad float leaf")
		}
		return Float(math.Float64frombits(binary.BigEndian.Uint64(payload))), nil
	case KindString:
		return Str(string(payload)), nil
	case KindBytes:
		return Bytes(append([]byte(nil), payload...)), nil
	case KindListScalar:
		if len(payload)%8 != 0 {
			return Value{}, fmt.Errorf("bad scalar list leaf")
		}
		nums := make([]float64, len(payload)/8)
		for i := range nums {
			nums[i] = math.Float64frombits(binary.BigEndian.Uint64(payload[i*8:]))
		}
		return Floats(nums), nil
	case KindListString:
		var strs []string
		for len(payload) > 0 {
			l, n := binary.Uvarint(payload)
			if n <= 0 || int(l) > len(payload)-n {
				return Value{}, fmt.Errorf("bad string list leaf")
			}
			strs = append(strs, string(payload[n:n+int(l)]))
			payload = payload[n+int(l):]
		}
		return Strs(strs), nil
	case KindArray:
		if len(payload) < 2 {
			return Value{}, fmt.Errorf("bad array leaf")
		}
		dtype := dataset.Dtype(payload[0])
		payload = payload[1:]
		rank, n := binary.Uvarint(payload)
		if n <= 0 {
			return Value{}, fmt.Errorf("bad array leaf rank")
		}
		payload = payload[n:]
		shape := make([]int, rank)
		for i := range shape {
			dim, n := binary.Uvarint(payload)
			if n <= 0 {
				return Value{}, fmt.Errorf("bad array leaf shape")
			}
			shape[i] = int(dim)
			payload = payload[n:]
		}
		arr := dataset.Array{Dtype: dtype, Shape: shape, Data: append([]byte(nil), payload...)}
		if err := arr.Validate(); err != nil {
			return Value{}, fmt.Errorf("bad array leaf: %w", err)
		}
		return Arr(arr), nil
	default:
		return Value{}, fmt.Errorf("cannot decode leaf of kind %d", kind)
	}
}

func appendUint64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}
