package commands

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/rzbill/flostream/internal/keyspace"
	"github.com/rzbill/flostream/internal/streamlog"
	"github.com/rzbill/flostream/pkg/id"
)

func newDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()
	ks := keyspace.New(keyspace.Options{})
	t.Cleanup(func() { _ = ks.Close() })
	return New(ks, opts...)
}

func do(t *testing.T, d *Dispatcher, args ...string) Reply {
	t.Helper()
	r, err := d.Do(context.Background(), args)
	require.NoError(t, err, "%v", args)
	return r
}

func doErr(t *testing.T, d *Dispatcher, args ...string) string {
	t.Helper()
	_, err := d.Do(context.Background(), args)
	require.Error(t, err, "%v", args)
	require.True(t, IsReplyError(err), "expected reply error, got %v", err)
	return err.Error()
}

func seed(t *testing.T, d *Dispatcher, key string) {
	for i, v := range []string{"1234567891234-0", "1234567891245-0", "1234567891245-1", "1234567891278-0", "1234567891278-1", "1234567891299-0"} {
		do(t, d, "XADD", key, v, fmt.Sprintf("key%d", i+1), fmt.Sprintf("value%d", i+1))
	}
}

func ids(t *testing.T, r Reply) []string {
	t.Helper()
	arr, ok := r.([]any)
	require.True(t, ok, "expected array reply, got %T", r)
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		out = append(out, e.([]any)[0].(string))
	}
	return out
}

func TestPing(t *testing.T) {
	d := newDispatcher(t)
	require.Equal(t, Status("PONG"), do(t, d, "PING"))
	require.Equal(t, "hello", do(t, d, "ping", "hello"))
	require.Equal(t, "ERR wrong number of arguments for 'ping' command", doErr(t, d, "PING", "a", "b"))
}

func TestUnknownAndArity(t *testing.T) {
	d := newDispatcher(t)
	require.Equal(t, "ERR unknown command 'FLUSHALL'", doErr(t, d, "FLUSHALL"))
	require.Equal(t, "ERR wrong number of arguments for 'xadd' command", doErr(t, d, "XADD", "s", "*"))
	require.Equal(t, "ERR wrong number of arguments for 'xadd' command", doErr(t, d, "XADD", "s", "*", "f", "v", "dangling"))
	require.Equal(t, "ERR wrong number of arguments for 'xlen' command", doErr(t, d, "XLEN"))
	require.Equal(t, "ERR empty command", doErr(t, d))
}

func TestXAddAndRange(t *testing.T) {
	d := newDispatcher(t)
	got := do(t, d, "XADD", "s", "1234567891234-2", "key", "value")
	require.Equal(t, "1234567891234-2", got)

	r := do(t, d, "XRANGE", "s", "-", "+")
	require.Equal(t, []any{[]any{"1234567891234-2", []any{"key", "value"}}}, r)

	require.Equal(t,
		"ERR the ID specified is equal or smaller than the target log's most recent item.",
		doErr(t, d, "XADD", "s", "1234567891233-0", "key", "value"))
	require.Equal(t, int64(1), do(t, d, "XLEN", "s"))
}

func TestXAddRepeatedFieldName(t *testing.T) {
	d := newDispatcher(t)
	do(t, d, "XADD", "s", "1-1", "a", "1", "b", "2", "a", "3")
	r := do(t, d, "XRANGE", "s", "-", "+")
	require.Equal(t, []any{[]any{"1-1", []any{"a", "3", "b", "2"}}}, r)
}

func TestXAddInvalidIDLeavesNoKey(t *testing.T) {
	d := newDispatcher(t)
	require.Equal(t, "ERR invalid identifier specified.", doErr(t, d, "XADD", "s", "abc", "f", "v"))
	require.Equal(t, int64(0), do(t, d, "EXISTS", "s"))
}

func TestXAddZeroIDRejected(t *testing.T) {
	d := newDispatcher(t)
	msg := doErr(t, d, "XADD", "s", "0-0", "f", "v")
	require.Equal(t, "ERR "+id.ErrNotMonotonic.Error(), msg)
}

func TestXAddMaxLen(t *testing.T) {
	d := newDispatcher(t)
	for i := 1; i <= 5; i++ {
		do(t, d, "XADD", "s", "MAXLEN", "~", "3", fmt.Sprintf("%d-0", i), "n", fmt.Sprint(i))
	}
	require.Equal(t, int64(3), do(t, d, "XLEN", "s"))
	require.Equal(t, []string{"3-0", "4-0", "5-0"}, ids(t, do(t, d, "XRANGE", "s", "-", "+")))
	require.Equal(t, "ERR value is not an integer or out of range", doErr(t, d, "XADD", "s", "MAXLEN", "x", "*", "f", "v"))
	require.Equal(t, "ERR The MAXLEN argument must be >= 0.", doErr(t, d, "XADD", "s", "MAXLEN", "-1", "*", "f", "v"))
}

func TestRangeScenarios(t *testing.T) {
	d := newDispatcher(t)
	seed(t, d, "k")

	require.Equal(t,
		[]string{"1234567891245-0", "1234567891245-1", "1234567891278-0", "1234567891278-1", "1234567891299-0"},
		ids(t, do(t, d, "XRANGE", "k", "1234567891245", "+")))
	require.Equal(t,
		[]string{"1234567891245-1", "1234567891278-0"},
		ids(t, do(t, d, "XRANGE", "k", "1234567891245-1", "1234567891278-0")))
	require.Equal(t,
		[]string{"1234567891234-0", "1234567891245-0"},
		ids(t, do(t, d, "XRANGE", "k", "-", "+", "COUNT", "2")))
	require.Equal(t,
		[]string{"1234567891299-0", "1234567891278-1"},
		ids(t, do(t, d, "XREVRANGE", "k", "+", "-", "COUNT", "2")))
	require.Equal(t, "ERR invalid identifier specified.", doErr(t, d, "XRANGE", "k", "X", "+"))
	require.Equal(t, "ERR syntax error", doErr(t, d, "XRANGE", "k", "-", "+", "LIMIT", "2"))
	require.Equal(t, "ERR value is not an integer or out of range", doErr(t, d, "XRANGE", "k", "-", "+", "COUNT", "two"))
}

func TestRangeMissingKeyStillValidates(t *testing.T) {
	d := newDispatcher(t)
	require.Equal(t, []any{}, do(t, d, "XRANGE", "nope", "-", "+"))
	require.Equal(t, "ERR invalid identifier specified.", doErr(t, d, "XRANGE", "nope", "bad", "+"))
}

func TestXTrim(t *testing.T) {
	d := newDispatcher(t)
	seed(t, d, "k")
	require.Equal(t, int64(4), do(t, d, "XTRIM", "k", "MAXLEN", "=", "2"))
	require.Equal(t, int64(0), do(t, d, "XTRIM", "k", "maxlen", "2"))
	require.Equal(t, int64(0), do(t, d, "XTRIM", "missing", "MAXLEN", "2"))
	require.Equal(t, "ERR syntax error", doErr(t, d, "XTRIM", "k", "MINID", "2"))
	require.Equal(t, "ERR syntax error", doErr(t, d, "XTRIM", "k", "MAXLEN", "2", "LIMIT"))
	require.Equal(t, int64(2), do(t, d, "XTRIM", "k", "MAXLEN", "0"))
	require.Equal(t, int64(1), do(t, d, "EXISTS", "k"), "an emptied stream keeps its key")
}

func TestXRead(t *testing.T) {
	d := newDispatcher(t)
	for _, v := range []string{"5-0", "7-0", "9-0"} {
		do(t, d, "XADD", "a", v, "f", "v")
	}
	do(t, d, "XADD", "b", "1-0", "f", "v")

	r := do(t, d, "XREAD", "COUNT", "1", "STREAMS", "a", "b", "7-0", "0")
	require.Equal(t, []any{
		[]any{"a", []any{[]any{"7-0", []any{"f", "v"}}}},
		[]any{"b", []any{[]any{"1-0", []any{"f", "v"}}}},
	}, r)

	require.Nil(t, do(t, d, "XREAD", "STREAMS", "a", "100-0"))
	require.Nil(t, do(t, d, "XREAD", "STREAMS", "a", "$"))
	require.Contains(t, doErr(t, d, "XREAD", "STREAMS", "a", "b", "0"), "Unbalanced")
	require.Equal(t, "ERR syntax error", doErr(t, d, "XREAD", "BLOCK", "0", "STREAMS", "a", "0"))
	require.Equal(t, "ERR invalid identifier specified.", doErr(t, d, "XREAD", "STREAMS", "a", "x"))
	require.Equal(t, "ERR invalid identifier specified.", doErr(t, d, "XREAD", "STREAMS", "a", "-"))
	require.Equal(t, "ERR invalid identifier specified.", doErr(t, d, "XREAD", "STREAMS", "missing", "+"))
}

func TestXInfoStream(t *testing.T) {
	d := newDispatcher(t)
	seed(t, d, "s")
	require.Equal(t, []any{
		"length", int64(6),
		"last-generated-id", "1234567891299-0",
		"first-entry", []any{"1234567891234-0", []any{"key1", "value1"}},
		"last-entry", []any{"1234567891299-0", []any{"key6", "value6"}},
	}, do(t, d, "XINFO", "STREAM", "s"))

	do(t, d, "XTRIM", "s", "MAXLEN", "0")
	require.Equal(t, []any{
		"length", int64(0),
		"last-generated-id", "1234567891299-0",
		"first-entry", nil,
		"last-entry", nil,
	}, do(t, d, "xinfo", "stream", "s"))

	require.Equal(t, "ERR no such key", doErr(t, d, "XINFO", "STREAM", "missing"))
	require.Equal(t, "ERR unknown subcommand 'GROUPS'. Try XINFO HELP.", doErr(t, d, "XINFO", "GROUPS", "s"))
	require.Equal(t, "ERR wrong number of arguments for 'xinfo' command", doErr(t, d, "XINFO", "STREAM"))
}

func TestKeyCommands(t *testing.T) {
	d := newDispatcher(t)
	do(t, d, "XADD", "b", "*", "f", "v")
	do(t, d, "XADD", "a", "*", "f", "v")
	require.Equal(t, []any{"a", "b"}, do(t, d, "KEYS", "*"))
	require.Equal(t, Status("stream"), do(t, d, "TYPE", "a"))
	require.Equal(t, Status("none"), do(t, d, "TYPE", "zz"))
	require.Equal(t, int64(2), do(t, d, "EXISTS", "a", "a", "zz"))
	require.Equal(t, int64(1), do(t, d, "DEL", "a", "zz"))
	require.Equal(t, []any{"b"}, do(t, d, "KEYS", "*"))
	require.Contains(t, doErr(t, d, "KEYS", "a*"), "pattern")
}

func TestErrorsUnwrapToSentinels(t *testing.T) {
	d := newDispatcher(t)
	_, err := d.Do(context.Background(), []string{"XRANGE", "k", "-", "+", "COUNT"})
	require.ErrorIs(t, err, streamlog.ErrOptionSyntax)
	_, err = d.Do(context.Background(), []string{"XADD", "k", "nope", "f", "v"})
	require.ErrorIs(t, err, id.ErrInvalidID)
}

func TestCancelledContext(t *testing.T) {
	d := newDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Do(ctx, []string{"PING"})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, IsReplyError(err))
}

type recordingTracer struct {
	noop.Tracer
	names *[]string
}

func (r recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	*r.names = append(*r.names, name)
	return r.Tracer.Start(ctx, name, opts...)
}

func TestSpansPerCommand(t *testing.T) {
	var names []string
	d := newDispatcher(t, WithTracer(recordingTracer{names: &names}))
	do(t, d, "PING")
	do(t, d, "XADD", "s", "*", "f", "v")
	doErr(t, d, "XLEN")
	require.Equal(t, []string{"command ping", "command xadd", "command xlen"}, names)
}
