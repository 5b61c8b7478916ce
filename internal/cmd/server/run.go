package serverrun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	cfgpkg "github.com/rzbill/flostream/internal/config"
	"github.com/rzbill/flostream/internal/runtime"
	grpcserver "github.com/rzbill/flostream/internal/server/grpc"
	httpserver "github.com/rzbill/flostream/internal/server/http"
	logpkg "github.com/rzbill/flostream/pkg/log"
)

// Options select listen addresses and configuration. Empty addresses fall
// back to Config.Server.
type Options struct {
	GRPCAddr string
	HTTPAddr string
	Config   cfgpkg.Config
}

// Run starts gRPC and HTTP servers and blocks until ctx is cancelled, a
// signal arrives, or either server fails to serve.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.GRPCAddr == "" {
		opts.GRPCAddr = opts.Config.Server.GRPCAddr
	}
	if opts.HTTPAddr == "" {
		opts.HTTPAddr = opts.Config.Server.HTTPAddr
	}

	procLogger := buildLogger(opts.Config.Log)
	restore := logpkg.RedirectStdLog(procLogger)
	defer restore()

	rt, err := runtime.Open(runtime.Options{Config: opts.Config, Logger: procLogger})
	if err != nil {
		return err
	}
	defer rt.Close()

	procLogger.Info("Starting flostream server",
		logpkg.Str("grpc", opts.GRPCAddr),
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("backend", opts.Config.Storage.Backend),
		logpkg.Int("shards", opts.Config.Keyspace.Shards),
		logpkg.Str("level", opts.Config.Log.Level),
		logpkg.Str("format", opts.Config.Log.Format),
	)

	gsrv := grpcserver.New(rt, procLogger)
	hsrv := httpserver.New(rt, procLogger)

	sctx, cancel := context.WithCancel(sctx)
	defer cancel()
	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		serveErr error
	)
	fail := func(name string, err error) {
		errMu.Lock()
		serveErr = errors.Join(serveErr, fmt.Errorf("%s: %w", name, err))
		errMu.Unlock()
		cancel()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gsrv.ListenAndServe(sctx, opts.GRPCAddr); err != nil && sctx.Err() == nil {
			procLogger.Error("grpc error", logpkg.Err(err))
			fail("grpc", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
			procLogger.Error("http error", logpkg.Err(err))
			fail("http", err)
		}
	}()

	<-sctx.Done()
	// Stop both servers before the runtime closes its stores.
	gsrv.Close()
	hsrv.Close()
	wg.Wait()
	procLogger.Info("flostream server stopped")
	return serveErr
}

// buildLogger applies the log section of the config and falls back to a
// text logger at the parsed level when the section is invalid.
func buildLogger(c cfgpkg.LogConfig) logpkg.Logger {
	cfg := &logpkg.Config{Level: c.Level, Format: c.Format}
	l, err := logpkg.ApplyConfig(cfg)
	if err == nil {
		return l
	}
	lvl := logpkg.InfoLevel
	if p, e := logpkg.ParseLevel(c.Level); e == nil {
		lvl = p
	}
	return logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
}

// ResolveConfig loads path, or the first default config file when path is
// empty, then overlays FLOSTREAM_* environment variables.
func ResolveConfig(path string) (cfgpkg.Config, error) {
	if path == "" {
		path = cfgpkg.DefaultConfigFile()
	}
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfgpkg.Config{}, err
	}
	cfgpkg.FromEnv(&cfg)
	return cfg, nil
}
