package commands

import (
	"context"
	"strings"
)

// PING [message]
func (d *Dispatcher) ping(_ context.Context, args []string) (Reply, error) {
	switch len(args) {
	case 1:
		return Status("PONG"), nil
	case 2:
		return args[1], nil
	default:
		return nil, errWrongArgs("ping")
	}
}

// DEL key [key ...]
func (d *Dispatcher) del(_ context.Context, args []string) (Reply, error) {
	return int64(d.ks.Delete(args[1:]...)), nil
}

// EXISTS key [key ...]
func (d *Dispatcher) exists(_ context.Context, args []string) (Reply, error) {
	return int64(d.ks.Exists(args[1:]...)), nil
}

// TYPE key
func (d *Dispatcher) typeOf(_ context.Context, args []string) (Reply, error) {
	if d.ks.Exists(args[1]) > 0 {
		return Status("stream"), nil
	}
	return Status("none"), nil
}

// KEYS *
func (d *Dispatcher) keys(_ context.Context, args []string) (Reply, error) {
	if strings.TrimSpace(args[1]) != "*" {
		return nil, errorf("only the '*' pattern is supported")
	}
	keys := d.ks.Keys()
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, k)
	}
	return out, nil
}
