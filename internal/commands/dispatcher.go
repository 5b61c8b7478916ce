package commands

import (
	"context"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rzbill/flostream/internal/keyspace"
	logpkg "github.com/rzbill/flostream/pkg/log"
)

const tracerName = "github.com/rzbill/flostream/internal/commands"

type handler func(ctx context.Context, args []string) (Reply, error)

// command describes one entry of the table. arity counts the command name;
// a negative arity is a minimum.
type command struct {
	arity int
	run   handler
}

// Dispatcher executes commands against a keyspace.
type Dispatcher struct {
	ks     *keyspace.Keyspace
	tracer trace.Tracer
	logger logpkg.Logger
	table  map[string]command
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option { return func(d *Dispatcher) { d.tracer = t } }

// WithLogger sets the logger used for internal failures.
func WithLogger(l logpkg.Logger) Option { return func(d *Dispatcher) { d.logger = l } }

// New returns a Dispatcher over ks.
func New(ks *keyspace.Keyspace, opts ...Option) *Dispatcher {
	d := &Dispatcher{ks: ks, tracer: otel.Tracer(tracerName)}
	for _, o := range opts {
		o(d)
	}
	if d.logger == nil {
		d.logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	d.logger = d.logger.With(logpkg.Component("commands"))
	d.table = map[string]command{
		"ping":      {-1, d.ping},
		"xadd":      {-5, d.xadd},
		"xrange":    {-4, d.xrange},
		"xrevrange": {-4, d.xrevrange},
		"xtrim":     {-4, d.xtrim},
		"xlen":      {2, d.xlen},
		"xread":     {-4, d.xread},
		"xinfo":     {-3, d.xinfo},
		"del":       {-2, d.del},
		"exists":    {-2, d.exists},
		"type":      {2, d.typeOf},
		"keys":      {2, d.keys},
	}
	return d
}

// Commands returns the supported command names.
func (d *Dispatcher) Commands() []string {
	out := make([]string, 0, len(d.table))
	for name := range d.table {
		out = append(out, name)
	}
	return out
}

// Do executes args[0] with args[1:]. Protocol failures are *Error values.
func (d *Dispatcher) Do(ctx context.Context, args []string) (Reply, error) {
	if len(args) == 0 {
		return nil, errorf("empty command")
	}
	name := strings.ToLower(args[0])
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "flostream"),
		attribute.String("db.operation", name),
	}
	switch {
	case name == "xinfo" && len(args) > 2:
		attrs = append(attrs, attribute.String("flostream.key", args[2]))
	case len(args) > 1 && name != "ping" && name != "xinfo":
		attrs = append(attrs, attribute.String("flostream.key", args[1]))
	}
	ctx, span := d.tracer.Start(ctx, "command "+name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	reply, err := d.dispatch(ctx, name, args)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !IsReplyError(err) {
			d.logger.Error("command failed", logpkg.Str("command", name), logpkg.Err(err))
		}
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return reply, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, args []string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cmd, ok := d.table[name]
	if !ok {
		return nil, errorf("unknown command '%s'", args[0])
	}
	if (cmd.arity > 0 && len(args) != cmd.arity) || (cmd.arity < 0 && len(args) < -cmd.arity) {
		return nil, errWrongArgs(name)
	}
	reply, err := cmd.run(ctx, args)
	return reply, translate(name, err)
}

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errNotInteger()
	}
	return n, nil
}
