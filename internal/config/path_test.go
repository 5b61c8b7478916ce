package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigFileEnvOverride(t *testing.T) {
	t.Setenv("FLOSTREAM_CONFIG", "/custom/flostream.yaml")
	if got := DefaultConfigFile(); got != "/custom/flostream.yaml" {
		t.Errorf("Expected env override, got %s", got)
	}
}

func TestDefaultConfigFileXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("FLOSTREAM_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())

	dir := filepath.Join(xdg, "flostream")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(want, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := DefaultConfigFile(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.json")
	if err := os.WriteFile(file, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{name: "regular file", path: file, expected: true},
		{name: "directory", path: dir, expected: false},
		{name: "non-existent path", path: filepath.Join(dir, "missing"), expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isFile(tt.path); got != tt.expected {
				t.Errorf("isFile(%s) = %v, expected %v", tt.path, got, tt.expected)
			}
		})
	}
}
