package commands

import (
	"errors"
	"fmt"

	"github.com/rzbill/flostream/internal/streamlog"
	"github.com/rzbill/flostream/pkg/id"
)

// Reply is one of: string, int64, nil, Status, []any.
type Reply = any

// Status is a simple string reply such as OK or PONG.
type Status string

// Error is a protocol error reply. Its text is sent to clients verbatim.
type Error struct {
	Text string
	err  error
}

func (e *Error) Error() string { return e.Text }

// Unwrap exposes the underlying sentinel, if any.
func (e *Error) Unwrap() error { return e.err }

func errorf(format string, args ...any) *Error {
	return &Error{Text: "ERR " + fmt.Sprintf(format, args...)}
}

func errSyntax() *Error { return &Error{Text: "ERR syntax error", err: streamlog.ErrOptionSyntax} }

func errNotInteger() *Error {
	return &Error{Text: "ERR value is not an integer or out of range", err: streamlog.ErrOptionValue}
}

func errWrongArgs(cmd string) *Error {
	return errorf("wrong number of arguments for '%s' command", cmd)
}

// IsReplyError reports whether err is a protocol error rather than an
// internal failure.
func IsReplyError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// translate maps core sentinels to protocol errors. Anything else is returned
// unchanged and treated as internal by transports.
func translate(cmd string, err error) error {
	switch {
	case err == nil:
		return nil
	case IsReplyError(err):
		return err
	case errors.Is(err, streamlog.ErrFieldCount):
		return &Error{Text: errWrongArgs(cmd).Text, err: err}
	case errors.Is(err, id.ErrInvalidID),
		errors.Is(err, id.ErrNotMonotonic),
		errors.Is(err, streamlog.ErrOptionSyntax),
		errors.Is(err, streamlog.ErrOptionValue):
		return &Error{Text: "ERR " + err.Error(), err: err}
	}
	return err
}

func itemsReply(items []streamlog.Item) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		fields := make([]any, 0, len(it.Fields))
		for _, f := range it.Fields {
			fields = append(fields, f)
		}
		out = append(out, []any{it.ID, fields})
	}
	return out
}
