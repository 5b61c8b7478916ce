package commands

import (
	"context"
	"strings"

	"github.com/rzbill/flostream/internal/streamlog"
	"github.com/rzbill/flostream/pkg/id"
)

// parseMaxLen reads "MAXLEN [=|~] n" starting at args[i] and returns the
// limit and the index after it. The "~" modifier trims exactly.
func parseMaxLen(args []string, i int) (int, int, error) {
	if i >= len(args) || !strings.EqualFold(args[i], "maxlen") {
		return 0, i, errSyntax()
	}
	i++
	if i < len(args) && (args[i] == "=" || args[i] == "~") {
		i++
	}
	if i >= len(args) {
		return 0, i, errSyntax()
	}
	n, err := parseInt(args[i])
	if err != nil {
		return 0, i, err
	}
	if n < 0 {
		return 0, i, errorf("The MAXLEN argument must be >= 0.")
	}
	return int(n), i + 1, nil
}

// XADD key [MAXLEN [=|~] n] <id|*> field value [field value ...]
func (d *Dispatcher) xadd(_ context.Context, args []string) (Reply, error) {
	key := args[1]
	i := 2
	maxLen := -1
	if strings.EqualFold(args[i], "maxlen") {
		n, next, err := parseMaxLen(args, i)
		if err != nil {
			return nil, err
		}
		maxLen, i = n, next
	}
	rest := args[i:]
	if len(rest) < 3 || len(rest)%2 == 0 {
		return nil, errWrongArgs("xadd")
	}
	fields := make([]any, 0, len(rest)-1)
	for _, f := range rest[1:] {
		fields = append(fields, f)
	}

	var added string
	_, err := d.ks.Update(key, true, func(l *streamlog.Log) error {
		v, err := l.Append(rest[0], fields...)
		if err != nil {
			return err
		}
		added = v
		if maxLen >= 0 {
			_, err = l.Trim(maxLen)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// XRANGE key start end [COUNT n]
func (d *Dispatcher) xrange(_ context.Context, args []string) (Reply, error) {
	return d.rangeReply(args[1], args[2], args[3], false, args[4:])
}

// XREVRANGE key end start [COUNT n]
func (d *Dispatcher) xrevrange(_ context.Context, args []string) (Reply, error) {
	return d.rangeReply(args[1], args[3], args[2], true, args[4:])
}

func (d *Dispatcher) rangeReply(key, start, end string, reversed bool, opts []string) (Reply, error) {
	var items []streamlog.Item
	ok, err := d.ks.View(key, func(l *streamlog.Log) error {
		var err error
		items, err = l.Range(start, end, reversed, opts...)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// a missing key still validates its arguments
		if items, err = streamlog.New().Range(start, end, reversed, opts...); err != nil {
			return nil, err
		}
	}
	return itemsReply(items), nil
}

// XTRIM key MAXLEN [=|~] n
func (d *Dispatcher) xtrim(_ context.Context, args []string) (Reply, error) {
	n, next, err := parseMaxLen(args, 2)
	if err != nil {
		return nil, err
	}
	if next != len(args) {
		return nil, errSyntax()
	}
	var removed int
	_, err = d.ks.Update(args[1], false, func(l *streamlog.Log) error {
		var err error
		removed, err = l.Trim(n)
		return err
	})
	if err != nil {
		return nil, err
	}
	return int64(removed), nil
}

// XLEN key
func (d *Dispatcher) xlen(_ context.Context, args []string) (Reply, error) {
	var n int
	if _, err := d.ks.View(args[1], func(l *streamlog.Log) error {
		n = l.Len()
		return nil
	}); err != nil {
		return nil, err
	}
	return int64(n), nil
}

// XREAD [COUNT n] STREAMS key [key ...] id [id ...]
//
// Reads never block. Each key yields entries with id >= the given one; "$"
// yields nothing since only entries added later would qualify.
func (d *Dispatcher) xread(_ context.Context, args []string) (Reply, error) {
	count := 0
	i := 1
	for ; i < len(args) && !strings.EqualFold(args[i], "streams"); i++ {
		if !strings.EqualFold(args[i], "count") || i+1 >= len(args) {
			return nil, errSyntax()
		}
		n, err := parseInt(args[i+1])
		if err != nil {
			return nil, err
		}
		if n > 0 {
			count = int(n)
		}
		i++
	}
	if i >= len(args) {
		return nil, errSyntax()
	}

	rest := args[i+1:]
	if len(rest) == 0 || len(rest)%2 != 0 {
		return nil, errorf("Unbalanced 'xread' list of streams: for each stream key an ID or '$' must be specified.")
	}
	half := len(rest) / 2
	keys, ids := rest[:half], rest[half:]
	for _, tok := range ids {
		if tok == "$" {
			continue
		}
		if _, err := id.Parse(tok, id.ModeRead, id.Min); err != nil {
			return nil, err
		}
	}

	var out []any
	for j, key := range keys {
		if ids[j] == "$" {
			continue
		}
		var items []streamlog.Item
		if _, err := d.ks.View(key, func(l *streamlog.Log) error {
			var err error
			items, err = l.Read(ids[j])
			return err
		}); err != nil {
			return nil, err
		}
		if count > 0 && len(items) > count {
			items = items[:count]
		}
		if len(items) == 0 {
			continue
		}
		out = append(out, []any{key, itemsReply(items)})
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// XINFO STREAM key
func (d *Dispatcher) xinfo(_ context.Context, args []string) (Reply, error) {
	if !strings.EqualFold(args[1], "stream") {
		return nil, errorf("unknown subcommand '%s'. Try XINFO HELP.", args[1])
	}
	if len(args) != 3 {
		return nil, errWrongArgs("xinfo|stream")
	}
	var out []any
	ok, err := d.ks.View(args[2], func(l *streamlog.Log) error {
		last := id.Min
		if v, ok := l.LastID(); ok {
			last = v
		}
		out = []any{
			"length", int64(l.Len()),
			"last-generated-id", last.String(),
			"first-entry", entryReply(l.First()),
			"last-entry", entryReply(l.Last()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorf("no such key")
	}
	return out, nil
}

func entryReply(e streamlog.Entry, ok bool) Reply {
	if !ok {
		return nil
	}
	return itemsReply([]streamlog.Item{e.Item()})[0]
}
