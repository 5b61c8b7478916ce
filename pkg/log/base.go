package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"
)

// exit is swapped in tests so Fatal can be observed.
var (
	osExit = os.Exit
	exit   = osExit
)

// levelVar is shared by a logger and every child derived from it.
type levelVar struct{ v atomic.Int32 }

func newLevelVar(l Level) *levelVar {
	lv := &levelVar{}
	lv.set(l)
	return lv
}

func (lv *levelVar) set(l Level) { lv.v.Store(int32(l)) }
func (lv *levelVar) get() Level  { return Level(lv.v.Load()) }

func (l *BaseLogger) log(level Level, msg string, fields []Field) {
	if l.level.get() > level {
		return
	}
	var pcs [1]uintptr
	// skip Callers, log and the exported method
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), toSlogLevel(level), msg, pcs[0])
	r.AddAttrs(fieldAttrs(fields)...)
	_ = l.slogLogger.Handler().Handle(context.Background(), r)
}

func (l *BaseLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *BaseLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *BaseLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *BaseLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

// Fatal logs at FatalLevel and terminates the process.
func (l *BaseLogger) Fatal(msg string, fields ...Field) {
	l.log(FatalLevel, msg, fields)
	l.closeOutputs()
	exit(1)
}

func (l *BaseLogger) Debugf(msg string, args ...interface{}) {
	l.log(DebugLevel, fmt.Sprintf(msg, args...), nil)
}

func (l *BaseLogger) Infof(msg string, args ...interface{}) {
	l.log(InfoLevel, fmt.Sprintf(msg, args...), nil)
}

func (l *BaseLogger) Warnf(msg string, args ...interface{}) {
	l.log(WarnLevel, fmt.Sprintf(msg, args...), nil)
}

func (l *BaseLogger) Errorf(msg string, args ...interface{}) {
	l.log(ErrorLevel, fmt.Sprintf(msg, args...), nil)
}

func (l *BaseLogger) Fatalf(msg string, args ...interface{}) {
	l.log(FatalLevel, fmt.Sprintf(msg, args...), nil)
	l.closeOutputs()
	exit(1)
}

func (l *BaseLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	nl := *l
	nl.fields = make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		nl.fields[k] = v
	}
	for _, f := range fields {
		nl.fields[f.Key] = f.Value
	}
	args := make([]any, len(fields))
	for i, a := range fieldAttrs(fields) {
		args[i] = a
	}
	nl.slogLogger = l.slogLogger.With(args...)
	return &nl
}

func (l *BaseLogger) WithField(key string, value interface{}) Logger {
	return l.With(Any(key, value))
}

func (l *BaseLogger) WithFields(fields Fields) Logger {
	out := make([]Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, Any(k, v))
	}
	return l.With(out...)
}

func (l *BaseLogger) WithError(err error) Logger { return l.With(Err(err)) }

func (l *BaseLogger) WithContext(ctx context.Context) Logger {
	return l.WithFields(ContextExtractor(ctx))
}

func (l *BaseLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

func (l *BaseLogger) SetLevel(level Level) { l.level.set(level) }

func (l *BaseLogger) GetLevel() Level { return l.level.get() }

// write formats e once and hands it to every output. Output errors are dropped.
func (l *BaseLogger) write(e *Entry) error {
	formatted, err := l.formatter.Format(e)
	if err != nil {
		return err
	}
	for _, out := range l.outputs {
		_ = out.Write(e, formatted)
	}
	return nil
}

func (l *BaseLogger) closeOutputs() {
	for _, out := range l.outputs {
		_ = out.Close()
	}
}
