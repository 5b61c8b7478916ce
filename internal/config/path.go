package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigFile returns the first configuration file found in the usual
// locations, or "" when none exists. FLOSTREAM_CONFIG wins when set.
func DefaultConfigFile() string {
	if v := os.Getenv("FLOSTREAM_CONFIG"); v != "" {
		return v
	}
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "flostream"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", "flostream"))
	}
	dirs = append(dirs, "/etc/flostream")

	for _, dir := range dirs {
		for _, name := range []string{"config.yaml", "config.yml", "config.json"} {
			p := filepath.Join(dir, name)
			if isFile(p) {
				return p
			}
		}
	}
	return ""
}

func isFile(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}
