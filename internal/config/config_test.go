package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Storage.Backend != BackendMemory {
		t.Fatalf("default backend should be memory, got %q", cfg.Storage.Backend)
	}
	if cfg.Keyspace.Shards != 16 {
		t.Fatalf("shards default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "flostream.json")
	data := []byte(`{"storage":{"backend":"pebble"},"keyspace":{"shards":32},"server":{"grpcAddr":":6000"}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != BackendPebble {
		t.Fatalf("expected pebble")
	}
	if cfg.Keyspace.Shards != 32 {
		t.Fatalf("expected 32")
	}
	if cfg.Server.GRPCAddr != ":6000" || cfg.Server.HTTPAddr != ":8080" {
		t.Fatalf("unset fields must keep defaults: %+v", cfg.Server)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "flostream.yaml")
	data := []byte("log:\n  level: debug\n  format: json\nsearch:\n  maxScan: 50\n")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("log section: %+v", cfg.Log)
	}
	if cfg.Search.MaxScan != 50 {
		t.Fatalf("expected maxScan 50, got %d", cfg.Search.MaxScan)
	}
	if cfg.Keyspace.Shards != 16 {
		t.Fatalf("defaults lost")
	}
}

func TestLoadMalformed(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(file, []byte("{"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(file); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv("FLOSTREAM_STORAGE_BACKEND", "pebble")
	t.Setenv("FLOSTREAM_KEYSPACE_SHARDS", "64")
	t.Setenv("FLOSTREAM_MAX_COMMANDS_PER_SECOND", "12.5")
	t.Setenv("FLOSTREAM_LOG_LEVEL", "warn")
	t.Setenv("FLOSTREAM_BURST", "not-a-number")
	FromEnv(&cfg)
	if cfg.Storage.Backend != BackendPebble {
		t.Fatalf("env override backend")
	}
	if cfg.Keyspace.Shards != 64 {
		t.Fatalf("env override shards")
	}
	if cfg.Server.MaxCommandsPerSecond != 12.5 {
		t.Fatalf("env override rate")
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("env override level")
	}
	if cfg.Server.Burst != 100 {
		t.Fatalf("unparsable values must be ignored")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "rocks" }, ErrUnknownBackend},
		{"zero shards", func(c *Config) { c.Keyspace.Shards = 0 }, ErrShards},
		{"non power of two", func(c *Config) { c.Keyspace.Shards = 12 }, ErrShards},
		{"negative burst", func(c *Config) { c.Server.Burst = -1 }, ErrNegativeLimit},
		{"negative scan", func(c *Config) { c.Search.MaxScan = -5 }, ErrNegativeLimit},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}
}
