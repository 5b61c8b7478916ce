package log

import (
	"bytes"
	stdlog "log"
)

// stdWriter forwards lines written by the standard library logger.
type stdWriter struct {
	logger Logger
	level  Level
}

func (w stdWriter) Write(p []byte) (int, error) {
	msg := string(bytes.TrimRight(p, "\n"))
	switch w.level {
	case DebugLevel:
		w.logger.Debug(msg)
	case WarnLevel:
		w.logger.Warn(msg)
	case ErrorLevel, FatalLevel:
		w.logger.Error(msg)
	default:
		w.logger.Info(msg)
	}
	return len(p), nil
}

// ToStdLogger adapts l for libraries that want a *log.Logger.
func ToStdLogger(l Logger, level Level) *stdlog.Logger {
	return stdlog.New(stdWriter{logger: l, level: level}, "", 0)
}

// RedirectStdLog sends the standard library's default logger to l at info
// level. The returned func restores the previous writer and flags.
func RedirectStdLog(l Logger) func() {
	prevOut, prevFlags, prevPrefix := stdlog.Writer(), stdlog.Flags(), stdlog.Prefix()
	stdlog.SetOutput(stdWriter{logger: l.With(Str("source", "stdlog")), level: InfoLevel})
	stdlog.SetFlags(0)
	stdlog.SetPrefix("")
	return func() {
		stdlog.SetOutput(prevOut)
		stdlog.SetFlags(prevFlags)
		stdlog.SetPrefix(prevPrefix)
	}
}
