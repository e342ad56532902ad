package logevent

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/albertlin1194/fly-vr/internal/dataset"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	arr, err := dataset.Float64Array([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("build array: %v", err)
	}

	cases := []struct {
		name string
		v    Value
	}{
		{"null", Null()},
		{"bool", Bool(true)},
		{"int", Int(-42)},
		{"float", Float(3.25)},
		{"string", Str("exp/one")},
		{"bytes", Bytes([]byte{0, 1, 0xff})},
		{"floats", Floats([]float64{0.5, -1, 9e9})},
		{"strings", Strs([]string{"", "a", "long string here"})},
		{"array", Arr(arr)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tc.v.Encode()
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := Decode(b)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Kind() != tc.v.Kind() {
				t.Fatalf("kind = %s, want %s", got.Kind(), tc.v.Kind())
			}
			if tc.name == "array" {
				if diff := cmp.Diff(tc.v.AsArray(), got.AsArray()); diff != "" {
					t.Fatalf("array mismatch (-want +got):\n%s", diff)
				}
				return
			}
			if diff := cmp.Diff(tc.v, got, cmp.AllowUnexported(Value{})); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeRejectsMap(t *testing.T) {
	if _, err := Map(Fields{"a": Int(1)}).Encode(); err == nil {
		t.Fatal("encoding a map leaf should fail")
	}
}

func TestDecodeRejectsCorruption(t *testing.T) {
	b, err := Str("hello").Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b[2] ^= 0x01
	if _, err := Decode(b); err == nil {
		t.Fatal("decode of corrupted leaf should fail")
	}
	if _, err := Decode([]byte{1, 2}); err == nil {
		t.Fatal("decode of truncated leaf should fail")
	}
}

func TestCloneIsDeep(t *testing.T) {
	nums := []float64{1, 2, 3}
	v := Map(Fields{"xs": Floats(nums), "note": Str("n")})
	c := v.Clone()
	nums[0] = 99
	if got := c.AsMap()["xs"].AsFloats()[0]; got != 1 {
		t.Fatalf("clone shares backing slice, got %v", got)
	}
}

func TestValidateRejectsInvalidKind(t *testing.T) {
	var zero Value
	if err := zero.Validate(); err == nil {
		t.Fatal("zero value should not validate")
	}
	if err := (Fields{"bad": {}}).Validate(); err == nil {
		t.Fatal("mapping with invalid value should not validate")
	}
}

func TestValidateRecursesIntoMapValues(t *testing.T) {
	ok := Map(Fields{"inner": Map(Fields{"x": Int(1)})})
	if err := ok.Validate(); err != nil {
		t.Fatalf("nested map should validate, got %v", err)
	}
	bad := Map(Fields{"inner": Map(Fields{"x": {}})})
	if err := bad.Validate(); err == nil {
		t.Fatal("map holding an invalid value should not validate")
	}
}
