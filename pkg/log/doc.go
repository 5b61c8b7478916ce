// Package log provides flostream's structured logging facade and utilities.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Internally it is backed by the
// standard library's slog via a bridge handler that feeds the package's own
// formatter/outputs pipeline, with optional key redaction and sampling.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("keyspace"), log.Str("backend", "pebble"))
//	l.Info("keyspace opened", log.Int("shards", 16))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config: JSON or text
// formatting, console/file/null outputs, redacted keys and sampling.
//
// # Interop
//
// To integrate with libraries expecting *log.Logger, use ToStdLogger or
// RedirectStdLog.
package log
