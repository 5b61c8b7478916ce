package keyspace

import (
	"errors"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/rzbill/flostream/internal/streamlog"
	logpkg "github.com/rzbill/flostream/pkg/log"
)

// ErrClosed is returned by operations on a closed Keyspace.
var ErrClosed = errors.New("keyspace: closed")

// Options configures a Keyspace.
type Options struct {
	// Shards must be a power of two; zero means 16.
	Shards  int
	Factory StoreFactory
	Logger  logpkg.Logger
}

type shard struct {
	mu   sync.RWMutex
	logs map[string]*streamlog.Log
}

// Keyspace owns one log per key.
type Keyspace struct {
	shards  []*shard
	mask    uint64
	factory StoreFactory
	logger  logpkg.Logger

	closeMu sync.RWMutex
	closed  bool
}

// New returns an empty Keyspace.
func New(opts Options) *Keyspace {
	n := opts.Shards
	if n <= 0 || n&(n-1) != 0 {
		n = 16
	}
	if opts.Factory == nil {
		opts.Factory = MemoryFactory()
	}
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	ks := &Keyspace{
		shards:  make([]*shard, n),
		mask:    uint64(n - 1),
		factory: opts.Factory,
		logger:  opts.Logger.With(logpkg.Component("keyspace")),
	}
	for i := range ks.shards {
		ks.shards[i] = &shard{logs: make(map[string]*streamlog.Log)}
	}
	return ks
}

func (k *Keyspace) shardFor(key string) *shard {
	return k.shards[xxhash.Sum64String(key)&k.mask]
}

// View runs fn against the log stored at key under a shard read lock. It
// reports false without calling fn when the key does not exist.
func (k *Keyspace) View(key string, fn func(*streamlog.Log) error) (bool, error) {
	k.closeMu.RLock()
	defer k.closeMu.RUnlock()
	if k.closed {
		return false, ErrClosed
	}
	s := k.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.logs[key]
	if !ok {
		return false, nil
	}
	return true, fn(l)
}

// Update runs fn against the log at key under a shard write lock. When the
// key is missing and create is set, a fresh log is built and kept only if fn
// succeeds. It reports whether a log was visited.
func (k *Keyspace) Update(key string, create bool, fn func(*streamlog.Log) error) (bool, error) {
	k.closeMu.RLock()
	defer k.closeMu.RUnlock()
	if k.closed {
		return false, ErrClosed
	}
	s := k.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.logs[key]; ok {
		return true, fn(l)
	}
	if !create {
		return false, nil
	}
	store, err := k.factory(key)
	if err != nil {
		return false, err
	}
	l := streamlog.NewWithStore(store)
	if err := fn(l); err != nil {
		_ = l.Close()
		return true, err
	}
	s.logs[key] = l
	k.logger.Debug("key created", logpkg.Str("key", key))
	return true, nil
}

// Delete removes keys and returns how many existed.
func (k *Keyspace) Delete(keys ...string) int {
	k.closeMu.RLock()
	defer k.closeMu.RUnlock()
	if k.closed {
		return 0
	}
	n := 0
	for _, key := range keys {
		s := k.shardFor(key)
		s.mu.Lock()
		if l, ok := s.logs[key]; ok {
			delete(s.logs, key)
			if err := l.Close(); err != nil {
				k.logger.Warn("close log failed", logpkg.Str("key", key), logpkg.Err(err))
			}
			n++
		}
		s.mu.Unlock()
	}
	return n
}

// Exists counts how many of keys exist; repeated keys count repeatedly.
func (k *Keyspace) Exists(keys ...string) int {
	n := 0
	for _, key := range keys {
		if ok, _ := k.View(key, func(*streamlog.Log) error { return nil }); ok {
			n++
		}
	}
	return n
}

// Keys returns every key, sorted.
func (k *Keyspace) Keys() []string {
	k.closeMu.RLock()
	defer k.closeMu.RUnlock()
	out := []string{}
	if k.closed {
		return out
	}
	for _, s := range k.shards {
		s.mu.RLock()
		for key := range s.logs {
			out = append(out, key)
		}
		s.mu.RUnlock()
	}
	sort.Strings(out)
	return out
}

// Len returns the number of keys.
func (k *Keyspace) Len() int {
	k.closeMu.RLock()
	defer k.closeMu.RUnlock()
	n := 0
	for _, s := range k.shards {
		s.mu.RLock()
		n += len(s.logs)
		s.mu.RUnlock()
	}
	return n
}

// Close releases every log. Further operations fail with ErrClosed.
func (k *Keyspace) Close() error {
	k.closeMu.Lock()
	defer k.closeMu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true
	var errs []error
	for _, s := range k.shards {
		s.mu.Lock()
		for key, l := range s.logs {
			if err := l.Close(); err != nil {
				errs = append(errs, err)
			}
			delete(s.logs, key)
		}
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}
