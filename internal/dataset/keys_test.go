package dataset

import (
	"bytes"
	"testing"
)

func TestRowKeyOrdering(t *testing.T) {
	a := KeyRow("/x", 10)
	b := KeyRow("/x", 11)
	if bytes.Compare(a, b) >= 0 {
		t.Fatalf("expected row 10 < row 11")
	}
	// sibling datasets sort outside each other's row range
	low, hi := rowBounds("/a", 0)
	nested := KeyRow("/a/b", 0)
	if bytes.Compare(nested, low) >= 0 && bytes.Compare(nested, hi) < 0 {
		t.Fatalf("nested dataset rows fall inside /a's bounds")
	}
}

func TestRowIndexRoundTrip(t *testing.T) {
	k := KeyRow("/deep/dataset", 123456789)
	if got := rowIndex(k); got != 123456789 {
		t.Fatalf("row index round trip: %d", got)
	}
}

func TestCleanPath(t *testing.T) {
	cases := map[string]string{
		"x":          "/x",
		"/x/":        "/x",
		"//a//b/":    "/a/b",
		"/deeper/t2": "/deeper/t2",
		"":           "/",
	}
	for in, want := range cases {
		if got := CleanPath(in); got != want {
			t.Fatalf("CleanPath(%q) = %q, want %q", in, got, want)
		}
	}
	if got := JoinPath("/options/", "producer"); got != "/options/producer" {
		t.Fatalf("JoinPath: %q", got)
	}
}
