// Package pebblestore provides a thin wrapper around Pebble running on an
// in-memory filesystem. flostream uses it as an ordered key/value engine for
// stream entries; it is not a durability layer.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{CacheBytes: 8 << 20})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	// Atomic updates with batches
//	b := db.NewBatch()
//	_ = b.Set([]byte("k"), []byte("v"), nil)
//	_ = db.CommitBatch(context.Background(), b)
//	b.Close()
//
//	// Point ops
//	_ = db.Set([]byte("k2"), []byte("v2"))
//	v, _ := db.Get([]byte("k2"))
package pebblestore
