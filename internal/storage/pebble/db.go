package pebblestore

import (
	"context"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// Options configures the Pebble store wrapper.
type Options struct {
	// Name is the directory name inside the in-memory filesystem.
	Name string
	// CacheBytes sizes the block cache. Zero uses Pebble's default.
	CacheBytes int64
	// PebbleOptions allows advanced tuning of Pebble. If nil, sensible defaults are used.
	// FS is always replaced with an in-memory filesystem.
	PebbleOptions *pebble.Options
	// Metrics allows observing read and commit latencies. Optional.
	Metrics MetricsHook
}

// MetricsHook is a minimal hook surface for storage observations.
type MetricsHook interface {
	ObserveRead(elapsed time.Duration, bytes int)
	ObserveBatchCommit(elapsed time.Duration, bytes int)
}

// NoopMetrics is used when no metrics hook is provided.
type NoopMetrics struct{}

func (NoopMetrics) ObserveRead(time.Duration, int)        {}
func (NoopMetrics) ObserveBatchCommit(time.Duration, int) {}

// DB wraps an in-memory Pebble instance used as an ordered key/value engine.
// Nothing is written to disk and nothing survives Close.
type DB struct {
	inner   *pebble.DB
	metrics MetricsHook
}

// Open creates an empty Pebble database on an in-memory filesystem.
func Open(opts Options) (*DB, error) {
	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	po.FS = vfs.NewMem()
	if opts.CacheBytes > 0 {
		c := pebble.NewCache(opts.CacheBytes)
		defer c.Unref()
		po.Cache = c
	}
	name := opts.Name
	if name == "" {
		name = "flostream"
	}

	inner, err := pebble.Open(name, po)
	if err != nil {
		return nil, err
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &DB{inner: inner, metrics: metrics}, nil
}

// Close closes the Pebble database and discards its contents.
func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	return db.inner.Close()
}

// NewBatch creates a new batch for atomic multi-key updates.
func (db *DB) NewBatch() *pebble.Batch {
	return db.inner.NewBatch()
}

// CommitBatch commits the provided batch. WAL syncing is pointless on an
// in-memory filesystem, so batches are always committed with NoSync.
func (db *DB) CommitBatch(ctx context.Context, b *pebble.Batch) error {
	if b == nil {
		return errors.New("pebble: nil batch")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	size := b.Len()
	defer func() { db.metrics.ObserveBatchCommit(time.Since(start), size) }()
	return b.Commit(pebble.NoSync)
}

// Set sets a key to a value using a small internal batch.
func (db *DB) Set(key, value []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.Set(key, value, nil); err != nil {
		return err
	}
	return db.CommitBatch(context.Background(), b)
}

// Delete removes a key using a small internal batch.
func (db *DB) Delete(key []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.Delete(key, nil); err != nil {
		return err
	}
	return db.CommitBatch(context.Background(), b)
}

// DeleteRange removes every key in [start, end).
func (db *DB) DeleteRange(start, end []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.DeleteRange(start, end, nil); err != nil {
		return err
	}
	return db.CommitBatch(context.Background(), b)
}

// Get copies the value for the given key.
func (db *DB) Get(key []byte) ([]byte, error) {
	start := time.Now()
	val, closer, err := db.inner.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	buf := append([]byte(nil), val...)
	db.metrics.ObserveRead(time.Since(start), len(buf))
	return buf, nil
}

// NewIter creates a raw Pebble iterator with the provided options.
func (db *DB) NewIter(opts *pebble.IterOptions) (*pebble.Iterator, error) {
	return db.inner.NewIter(opts)
}

// IsNotFound reports whether err is Pebble's not-found error.
func IsNotFound(err error) bool { return errors.Is(err, pebble.ErrNotFound) }
