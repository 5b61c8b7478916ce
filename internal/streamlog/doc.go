// Package streamlog implements the in-memory stream entry log.
//
// # Overview
//
// A Log is an append-only sequence of entries, each an id.ID plus an ordered
// list of field/value pairs. Appends only accept IDs strictly greater than the
// last appended ID, so storage order always equals ID order and IDs are unique.
//
// API surface (internal)
//
//	l := streamlog.New()
//	idStr, _ := l.Append("*", "temperature", 21.5, "room", "lab")
//
//	// Inclusive range with optional reversal and COUNT-style options
//	items, _ := l.Range("-", "+", false, "count", "10")
//
//	// Every entry at or after an ID
//	items, _ = l.Read("1526919030474-0")
//
//	// Keep only the newest 1000 entries
//	deleted, _ := l.Trim(1000)
//
// # Storage
//
// Entries live behind the Store interface. The default is a sorted slice;
// NewPebbleStore keeps entries in an in-memory Pebble instance under a
// per-stream key prefix, encoded as msgpack inside a crc32c frame.
package streamlog
