package log

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"strconv"
	"sync"
)

// LevelFatal sits above slog.LevelError so Fatal entries keep their level.
const LevelFatal = slog.Level(12)

// slogLevels pairs each Level with its slog counterpart, ascending.
var slogLevels = [...]struct {
	level Level
	slog  slog.Level
}{
	{DebugLevel, slog.LevelDebug},
	{InfoLevel, slog.LevelInfo},
	{WarnLevel, slog.LevelWarn},
	{ErrorLevel, slog.LevelError},
	{FatalLevel, LevelFatal},
}

func toSlogLevel(level Level) slog.Level {
	for _, m := range slogLevels {
		if m.level == level {
			return m.slog
		}
	}
	return slog.LevelInfo
}

// fromSlogLevel rounds down to the nearest known level. Anything below
// slog.LevelInfo is debug.
func fromSlogLevel(level slog.Level) Level {
	out := DebugLevel
	for _, m := range slogLevels {
		if level >= m.slog {
			out = m.level
		}
	}
	return out
}

// bridgePolicy holds the redaction and sampling settings shared by a handler
// and every handler derived from it. A nil policy admits everything.
type bridgePolicy struct {
	redact  map[string]struct{}
	sampler *sampler
}

func newBridgePolicy(redactKeys []string, sampling *Sampling) *bridgePolicy {
	if len(redactKeys) == 0 && (sampling == nil || sampling.Thereafter <= 0) {
		return nil
	}
	p := &bridgePolicy{}
	if len(redactKeys) > 0 {
		p.redact = make(map[string]struct{}, len(redactKeys))
		for _, k := range redactKeys {
			p.redact[k] = struct{}{}
		}
	}
	if sampling != nil && sampling.Thereafter > 0 {
		p.sampler = newSampler(sampling.Initial, sampling.Thereafter)
	}
	return p
}

func (p *bridgePolicy) admit(level slog.Level, msg string) bool {
	return p == nil || p.sampler == nil || p.sampler.allow(level, msg)
}

func (p *bridgePolicy) redacted(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p.redact[key]
	return ok
}

// bridgeHandler is the slog.Handler behind every BaseLogger. Records are
// flattened into an Entry and written through the logger's formatter and
// outputs. Groups become dotted key prefixes.
type bridgeHandler struct {
	logger *BaseLogger
	policy *bridgePolicy
	bound  Fields
	prefix string
}

func newBridgeHandler(logger *BaseLogger, policy *bridgePolicy) *bridgeHandler {
	return &bridgeHandler{logger: logger, policy: policy}
}

func (h *bridgeHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.level.get() <= fromSlogLevel(level)
}

func (h *bridgeHandler) Handle(_ context.Context, r slog.Record) error {
	if !h.policy.admit(r.Level, r.Message) {
		return nil
	}
	e := &Entry{
		Level:     fromSlogLevel(r.Level),
		Message:   r.Message,
		Timestamp: r.Time,
		Caller:    callerOf(r.PC),
		Fields:    make(Fields, len(h.bound)+r.NumAttrs()),
	}
	for k, v := range h.bound {
		e.Fields[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		h.put(e.Fields, h.prefix, a)
		return true
	})
	if msg, ok := e.Fields["error"].(string); ok && msg != "" {
		e.Error = errors.New(msg)
	}
	return h.logger.write(e)
}

// put stores a under prefix, descending into groups.
func (h *bridgeHandler) put(dst Fields, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			h.put(dst, inner, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	if h.policy.redacted(a.Key) {
		dst[prefix+a.Key] = "[REDACTED]"
		return
	}
	dst[prefix+a.Key] = v.Any()
}

func (h *bridgeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := *h
	nh.bound = make(Fields, len(h.bound)+len(attrs))
	for k, v := range h.bound {
		nh.bound[k] = v
	}
	for _, a := range attrs {
		h.put(nh.bound, h.prefix, a)
	}
	return &nh
}

func (h *bridgeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.prefix = h.prefix + name + "."
	return &nh
}

func callerOf(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	f, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if f.File == "" {
		return ""
	}
	return f.File + ":" + strconv.Itoa(f.Line)
}

// sampler lets the first initial records of each (level, message) through,
// then one in every thereafter.
type sampler struct {
	mu         sync.Mutex
	initial    uint64
	thereafter uint64
	seen       map[sampleKey]uint64
}

type sampleKey struct {
	level slog.Level
	msg   string
}

func newSampler(initial, thereafter int) *sampler {
	if initial < 0 {
		initial = 0
	}
	if thereafter <= 0 {
		thereafter = 1
	}
	return &sampler{
		initial:    uint64(initial),
		thereafter: uint64(thereafter),
		seen:       make(map[sampleKey]uint64),
	}
}

func (s *sampler) allow(level slog.Level, msg string) bool {
	k := sampleKey{level, msg}
	s.mu.Lock()
	n := s.seen[k]
	s.seen[k] = n + 1
	s.mu.Unlock()
	if n < s.initial {
		return true
	}
	return (n-s.initial)%s.thereafter == 0
}

// fieldAttrs converts fields to slog attributes.
func fieldAttrs(fields []Field) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	return attrs
}
