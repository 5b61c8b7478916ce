package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Storage backends accepted by StorageConfig.Backend.
const (
	BackendMemory = "memory"
	BackendPebble = "pebble"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Keyspace KeyspaceConfig `json:"keyspace" yaml:"keyspace"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Search   SearchConfig   `json:"search" yaml:"search"`
}

// StorageConfig selects the ordered container behind every stream.
type StorageConfig struct {
	Backend          string `json:"backend" yaml:"backend"`
	PebbleCacheBytes int64  `json:"pebbleCacheBytes" yaml:"pebbleCacheBytes"`
}

// KeyspaceConfig controls key sharding.
type KeyspaceConfig struct {
	Shards int `json:"shards" yaml:"shards"`
}

// ServerConfig captures listener addresses and admission limits.
type ServerConfig struct {
	GRPCAddr             string  `json:"grpcAddr" yaml:"grpcAddr"`
	HTTPAddr             string  `json:"httpAddr" yaml:"httpAddr"`
	MaxCommandsPerSecond float64 `json:"maxCommandsPerSecond" yaml:"maxCommandsPerSecond"`
	Burst                int     `json:"burst" yaml:"burst"`
}

// LogConfig mirrors the knobs of pkg/log.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// SearchConfig bounds filtered scans.
type SearchConfig struct {
	MaxScan int `json:"maxScan" yaml:"maxScan"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Storage:  StorageConfig{Backend: BackendMemory, PebbleCacheBytes: 8 << 20},
		Keyspace: KeyspaceConfig{Shards: 16},
		Server: ServerConfig{
			GRPCAddr: ":50051",
			HTTPAddr: ":8080",
			Burst:    100,
		},
		Log:    LogConfig{Level: "info", Format: "text"},
		Search: SearchConfig{MaxScan: 10000},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

var (
	ErrUnknownBackend = errors.New("config: unknown storage backend")
	ErrShards         = errors.New("config: keyspace.shards must be a positive power of two")
	ErrNegativeLimit  = errors.New("config: limits must not be negative")
)

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendPebble:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage.Backend)
	}
	if n := c.Keyspace.Shards; n <= 0 || n&(n-1) != 0 {
		return ErrShards
	}
	if c.Storage.PebbleCacheBytes < 0 || c.Server.MaxCommandsPerSecond < 0 || c.Server.Burst < 0 || c.Search.MaxScan < 0 {
		return ErrNegativeLimit
	}
	return nil
}
