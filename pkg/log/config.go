package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config declares a logger: level, format and outputs plus optional
// redaction and sampling.
type Config struct {
	Level      string         `json:"level" yaml:"level"`
	Format     string         `json:"format" yaml:"format"`
	Outputs    []OutputConfig `json:"outputs" yaml:"outputs"`
	ShowCaller bool           `json:"showCaller" yaml:"showCaller"`
	RedactKeys []string       `json:"redactKeys" yaml:"redactKeys"`
	Sampling   *Sampling      `json:"sampling" yaml:"sampling"`
}

// OutputConfig selects one output: "console", "null" or "file" (with Path).
type OutputConfig struct {
	Type string `json:"type" yaml:"type"`
	Path string `json:"path" yaml:"path"`
}

// Sampling keeps the first Initial entries per message, then every Thereafter-th.
type Sampling struct {
	Initial    int `json:"initial" yaml:"initial"`
	Thereafter int `json:"thereafter" yaml:"thereafter"`
}

// ParseLevel maps a case-insensitive name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("log: unknown level %q", s)
	}
}

// ApplyConfig builds a Logger from cfg. A nil cfg yields info/text on console.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := []LoggerOption{WithLevel(level)}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		opts = append(opts, WithFormatter(&TextFormatter{ShowCaller: cfg.ShowCaller}))
	case "json":
		opts = append(opts, WithFormatter(&JSONFormatter{ShowCaller: cfg.ShowCaller}))
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}

	for _, oc := range cfg.Outputs {
		switch strings.ToLower(oc.Type) {
		case "", "console":
			opts = append(opts, WithOutput(NewConsoleOutput()))
		case "null":
			opts = append(opts, WithOutput(NullOutput{}))
		case "file":
			fo, err := NewFileOutput(oc.Path)
			if err != nil {
				return nil, fmt.Errorf("log: open %s: %w", oc.Path, err)
			}
			opts = append(opts, WithOutput(fo))
		default:
			return nil, fmt.Errorf("log: unknown output %q", oc.Type)
		}
	}

	l := newBaseLogger(opts...)
	l.slogLogger = slog.New(newBridgeHandler(l, newBridgePolicy(cfg.RedactKeys, cfg.Sampling)))
	return l, nil
}
