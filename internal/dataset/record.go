package dataset

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/golang/snappy"
)

// Row framing: raw row bytes, optionally suffixed with crc32c(row) when the
// descriptor enables Fletcher32-style checksums, optionally snappy-compressed
// as the outermost layer.

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// encodeRow frames one row for storage according to the descriptor.
func encodeRow(spec Spec, row []byte) ([]byte, error) {
	out := row
	if spec.Fletcher32 {
		out = make([]byte, 0, len(row)+4)
		out = append(out, row...)
		var crcb [4]byte
		binary.BigEndian.PutUint32(crcb[:], crc32.Checksum(row, castagnoli))
		out = append(out, crcb[:]...)
	}
	switch spec.Compression.Kind {
	case CompressionNone:
		return out, nil
	case CompressionSnappy:
		return snappy.Encode(nil, out), nil
	default:
		return nil, fmt.Errorf("unknown compression kind %d", spec.Compression.Kind)
	}
}

// decodeRow reverses encodeRow and verifies the checksum when enabled.
func decodeRow(spec Spec, stored []byte) ([]byte, error) {
	buf := stored
	if spec.Compression.Kind == CompressionSnappy {
		dec, err := snappy.Decode(nil, stored)
		if err != nil {
			return nil, fmt.Errorf("row decompress: %w", err)
		}
		buf = dec
	}
	if spec.Fletcher32 {
		if len(buf) < 4 {
			return nil, fmt.Errorf("row too short for checksum")
		}
		row, crcb := buf[:len(buf)-4], buf[len(buf)-4:]
		want := binary.BigEndian.Uint32(crcb)
		if got := crc32.Checksum(row, castagnoli); got != want {
			return nil, fmt.Errorf("row checksum mismatch: got %08x want %08x", got, want)
		}
		buf = row
	}
	return buf, nil
}
