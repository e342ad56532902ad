package dataset

import (
	"encoding/binary"
	"strings"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - dsm/{path}                  (dataset descriptor JSON)
// - dsr/{path}\x00{row_be8}     (one stored row per key)
// - leaf/{path}                 (encoded mapping leaf)
//
// The NUL between path and row index self-delimits the dataset name, so a
// range scan over one dataset's rows never bleeds into a sibling whose path
// extends it ("/a" vs "/a/b"). Paths never contain NUL.

var (
	metaPrefix = []byte("dsm/")
	rowPrefix  = []byte("dsr/")
	leafPrefix = []byte("leaf/")
	rowSep     = byte(0x00)
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// KeyMeta builds the descriptor key for a dataset path.
func KeyMeta(path string) []byte {
	k := make([]byte, 0, len(metaPrefix)+len(path))
	k = append(k, metaPrefix...)
	k = append(k, path...)
	return k
}

// KeyRow builds the key of one stored row.
func KeyRow(path string, row uint64) []byte {
	k := make([]byte, 0, len(rowPrefix)+len(path)+9)
	k = append(k, rowPrefix...)
	k = append(k, path...)
	k = append(k, rowSep)
	k = appendBE8(k, row)
	return k
}

// KeyLeaf builds the key of an encoded mapping leaf.
func KeyLeaf(path string) []byte {
	k := make([]byte, 0, len(leafPrefix)+len(path))
	k = append(k, leafPrefix...)
	k = append(k, path...)
	return k
}

// rowBounds returns the iterator bounds covering rows [from, ∞) of a dataset.
func rowBounds(path string, from uint64) (low, hi []byte) {
	low = KeyRow(path, from)
	hi = KeyRow(path, ^uint64(0))
	hi = append(hi, 0x00)
	return low, hi
}

// rowIndex extracts the row number from a row key.
func rowIndex(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-8:])
}

// prefixEnd returns the smallest key greater than every key with the given
// prefix, for use as an iterator upper bound.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// CleanPath normalizes a dataset path: '/'-rooted, no trailing or repeated
// separators.
func CleanPath(p string) string {
	parts := strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(parts, "/")
}

// JoinPath extends a dataset path by one hierarchy level.
func JoinPath(base, key string) string {
	return CleanPath(CleanPath(base) + "/" + key)
}
