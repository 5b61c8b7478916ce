package runtime

import (
	"context"
	"errors"
	"testing"

	cfgpkg "github.com/rzbill/flostream/internal/config"
	"github.com/rzbill/flostream/internal/streamlog"
)

func TestOpenCloseHealth(t *testing.T) {
	for _, backend := range []string{cfgpkg.BackendMemory, cfgpkg.BackendPebble} {
		cfg := cfgpkg.Default()
		cfg.Storage.Backend = backend
		rt, err := Open(Options{Config: cfg})
		if err != nil {
			t.Fatalf("%s: open runtime: %v", backend, err)
		}
		if err := rt.CheckHealth(context.Background()); err != nil {
			t.Fatalf("%s: health: %v", backend, err)
		}
		if err := rt.Close(); err != nil {
			t.Fatalf("%s: close: %v", backend, err)
		}
		if err := rt.CheckHealth(context.Background()); !errors.Is(err, ErrClosed) {
			t.Fatalf("%s: expected ErrClosed, got %v", backend, err)
		}
		if err := rt.Close(); err != nil {
			t.Fatalf("%s: second close: %v", backend, err)
		}
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Storage.Backend = "tape"
	if _, err := Open(Options{Config: cfg}); !errors.Is(err, cfgpkg.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestCommandsShareKeyspace(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Storage.Backend = cfgpkg.BackendPebble
	rt, err := Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	if _, err := rt.Commands().Do(context.Background(), []string{"XADD", "orders", "1-1", "sku", "42"}); err != nil {
		t.Fatalf("xadd: %v", err)
	}
	var n int
	ok, _ := rt.Keyspace().View("orders", func(l *streamlog.Log) error { n = l.Len(); return nil })
	if !ok || n != 1 {
		t.Fatalf("expected one entry through the keyspace, ok=%v n=%d", ok, n)
	}
}
