package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rzbill/flostream/internal/commands"
	cfgpkg "github.com/rzbill/flostream/internal/config"
	"github.com/rzbill/flostream/internal/keyspace"
	pebblestore "github.com/rzbill/flostream/internal/storage/pebble"
	logpkg "github.com/rzbill/flostream/pkg/log"
)

// ErrClosed is returned by CheckHealth after Close.
var ErrClosed = errors.New("runtime closed")

var healthKey = []byte("sys/health")

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
}

// Runtime wires storage, config, and facades for a single-node instance.
type Runtime struct {
	db       *pebblestore.DB
	ks       *keyspace.Keyspace
	commands *commands.Dispatcher
	config   cfgpkg.Config
	logger   logpkg.Logger

	mu     sync.Mutex
	closed bool
}

// Open validates the configuration and builds the keyspace on the selected backend.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	rt := &Runtime{config: opts.Config, logger: logger}

	factory := keyspace.MemoryFactory()
	if opts.Config.Storage.Backend == cfgpkg.BackendPebble {
		db, err := pebblestore.Open(pebblestore.Options{
			CacheBytes: opts.Config.Storage.PebbleCacheBytes,
			Metrics:    &storageMetrics{logger: logger.With(logpkg.Component("storage")), slow: 50 * time.Millisecond},
		})
		if err != nil {
			return nil, fmt.Errorf("open pebble: %w", err)
		}
		rt.db = db
		factory = keyspace.PebbleFactory(db)
	}
	rt.ks = keyspace.New(keyspace.Options{
		Shards:  opts.Config.Keyspace.Shards,
		Factory: factory,
		Logger:  logger,
	})
	rt.commands = commands.New(rt.ks, commands.WithLogger(logger))
	return rt, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.ks.Close()
	if r.db != nil {
		err = errors.Join(err, r.db.Close())
	}
	return err
}

// CheckHealth performs a simple health check. With the Pebble backend it
// round-trips a probe key.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.db == nil {
		return nil
	}
	stamp := []byte(time.Now().UTC().Format(time.RFC3339Nano))
	if err := r.db.Set(healthKey, stamp); err != nil {
		return err
	}
	if _, err := r.db.Get(healthKey); err != nil {
		return err
	}
	return r.db.Delete(healthKey)
}

// Keyspace returns the key to log mapping.
func (r *Runtime) Keyspace() *keyspace.Keyspace { return r.ks }

// Commands returns the command dispatcher bound to the keyspace.
func (r *Runtime) Commands() *commands.Dispatcher { return r.commands }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// storageMetrics reports slow Pebble operations.
type storageMetrics struct {
	logger logpkg.Logger
	slow   time.Duration
}

func (m *storageMetrics) ObserveRead(elapsed time.Duration, bytes int) {
	if elapsed >= m.slow {
		m.logger.Warn("slow read", logpkg.Dur("elapsed", elapsed), logpkg.Int("bytes", bytes))
	}
}

func (m *storageMetrics) ObserveBatchCommit(elapsed time.Duration, bytes int) {
	if elapsed >= m.slow {
		m.logger.Warn("slow batch commit", logpkg.Dur("elapsed", elapsed), logpkg.Int("bytes", bytes))
	}
}
