package config

import (
	"os"
	"strconv"
)

// FromEnv overlays FLOSTREAM_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("FLOSTREAM_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("FLOSTREAM_STORAGE_PEBBLE_CACHE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Storage.PebbleCacheBytes = n
		}
	}
	if v := os.Getenv("FLOSTREAM_KEYSPACE_SHARDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Keyspace.Shards = n
		}
	}
	if v := os.Getenv("FLOSTREAM_GRPC_ADDR"); v != "" {
		cfg.Server.GRPCAddr = v
	}
	if v := os.Getenv("FLOSTREAM_HTTP_ADDR"); v != "" {
		cfg.Server.HTTPAddr = v
	}
	if v := os.Getenv("FLOSTREAM_MAX_COMMANDS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Server.MaxCommandsPerSecond = f
		}
	}
	if v := os.Getenv("FLOSTREAM_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Burst = n
		}
	}
	if v := os.Getenv("FLOSTREAM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("FLOSTREAM_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("FLOSTREAM_SEARCH_MAX_SCAN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxScan = n
		}
	}
}
