package streamlog

import (
	"encoding/binary"

	"github.com/rzbill/flostream/pkg/id"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - s/{len_be4}{stream}/e/{ms_be8}{seq_be8}
//
// The length prefix keeps one stream's prefix from matching another stream
// whose name happens to extend it.

var (
	streamPrefix = []byte("s/")
	entrySeg     = []byte("/e/")
)

func appendBE4(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

// KeyEntryPrefix returns the prefix shared by all entry keys of a stream.
func KeyEntryPrefix(stream string) []byte {
	k := make([]byte, 0, len(streamPrefix)+4+len(stream)+len(entrySeg)+16)
	k = append(k, streamPrefix...)
	k = appendBE4(k, uint32(len(stream)))
	k = append(k, stream...)
	k = append(k, entrySeg...)
	return k
}

// KeyEntry builds the entry key with a big-endian id for proper ordering.
func KeyEntry(stream string, v id.ID) []byte {
	return append(KeyEntryPrefix(stream), v.Bytes()...)
}

// prefixEnd returns the smallest key greater than every key with the prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
