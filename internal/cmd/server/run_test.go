package serverrun

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	cfgpkg "github.com/rzbill/flostream/internal/config"
	logpkg "github.com/rzbill/flostream/pkg/log"
)

func TestBuildLogger(t *testing.T) {
	tests := []struct {
		name  string
		cfg   cfgpkg.LogConfig
		level logpkg.Level
	}{
		{name: "defaults", cfg: cfgpkg.LogConfig{}, level: logpkg.InfoLevel},
		{name: "debug json", cfg: cfgpkg.LogConfig{Level: "debug", Format: "json"}, level: logpkg.DebugLevel},
		{name: "bad format falls back", cfg: cfgpkg.LogConfig{Level: "warn", Format: "xml"}, level: logpkg.WarnLevel},
		{name: "bad level falls back to info", cfg: cfgpkg.LogConfig{Level: "loud", Format: "text"}, level: logpkg.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := buildLogger(tt.cfg)
			if l == nil {
				t.Fatal("nil logger")
			}
			if got := l.GetLevel(); got != tt.level {
				t.Errorf("level = %v, want %v", got, tt.level)
			}
		})
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Keyspace.Shards = 3
	err := Run(context.Background(), Options{GRPCAddr: "127.0.0.1:0", HTTPAddr: "127.0.0.1:0", Config: cfg})
	if err == nil {
		t.Fatal("expected config error")
	}
}

func TestRunReportsListenFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = Run(ctx, Options{GRPCAddr: "127.0.0.1:0", HTTPAddr: l.Addr().String(), Config: cfgpkg.Default()})
	if err == nil {
		t.Fatal("expected listen error for occupied address")
	}
	if ctx.Err() != nil {
		t.Fatal("Run should return before the context deadline")
	}
}

// TestRunIntegration verifies Run starts both servers and returns cleanly
// when the context is cancelled.
func TestRunIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	cfg := cfgpkg.Default()
	cfg.Storage.Backend = cfgpkg.BackendPebble
	cfg.Log.Level = "error"

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := Run(ctx, Options{GRPCAddr: "127.0.0.1:0", HTTPAddr: "127.0.0.1:0", Config: cfg}); err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestResolveConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: pebble\nkeyspace:\n  shards: 4\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("FLOSTREAM_KEYSPACE_SHARDS", "8")

	cfg, err := ResolveConfig(path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Storage.Backend != cfgpkg.BackendPebble {
		t.Errorf("backend = %q", cfg.Storage.Backend)
	}
	if cfg.Keyspace.Shards != 8 {
		t.Errorf("env should override file, shards = %d", cfg.Keyspace.Shards)
	}

	t.Setenv("FLOSTREAM_CONFIG", path)
	cfg, err = ResolveConfig("")
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if cfg.Storage.Backend != cfgpkg.BackendPebble {
		t.Errorf("FLOSTREAM_CONFIG not honoured, backend = %q", cfg.Storage.Backend)
	}

	if _, err := ResolveConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
