package keyspace

import (
	pebblestore "github.com/rzbill/flostream/internal/storage/pebble"
	"github.com/rzbill/flostream/internal/streamlog"
)

// StoreFactory builds the store behind a newly created key.
type StoreFactory func(key string) (streamlog.Store, error)

// MemoryFactory backs every log with the in-process slice store.
func MemoryFactory() StoreFactory {
	return func(string) (streamlog.Store, error) { return streamlog.NewMemStore(), nil }
}

// PebbleFactory backs every log with a prefix of db.
func PebbleFactory(db *pebblestore.DB) StoreFactory {
	return func(key string) (streamlog.Store, error) { return streamlog.NewPebbleStore(db, key) }
}
