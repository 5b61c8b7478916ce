// Package transports provides pluggable transport implementations for the CLI.
package transports

import (
	"context"
	"strconv"

	"google.golang.org/grpc"

	flostreamv1 "github.com/rzbill/flostream/api/flostream/v1"
)

// GrpcTransport implements StreamsTransport over the Commands service.
type GrpcTransport struct {
	dial func(ctx context.Context) (*grpc.ClientConn, error)
}

// NewGrpcTransport constructs a new GrpcTransport using the provided dialer.
func NewGrpcTransport(dial func(ctx context.Context) (*grpc.ClientConn, error)) *GrpcTransport {
	return &GrpcTransport{dial: dial}
}

func (t *GrpcTransport) withClient(ctx context.Context, fn func(cli flostreamv1.CommandsClient) error) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(flostreamv1.NewCommandsClient(conn))
}

// Exec sends a raw command and decodes the reply.
func (t *GrpcTransport) Exec(ctx context.Context, args ...string) (any, error) {
	var reply any
	err := t.withClient(ctx, func(cli flostreamv1.CommandsClient) error {
		out, err := cli.Do(ctx, flostreamv1.ArgsToList(args))
		if err != nil {
			return err
		}
		reply, err = flostreamv1.ValueToReply(out)
		return err
	})
	return reply, err
}

// Add appends an entry with XADD.
func (t *GrpcTransport) Add(ctx context.Context, req AddRequest) (string, error) {
	args := []string{"XADD", req.Key}
	if req.MaxLen >= 0 {
		args = append(args, "MAXLEN", strconv.Itoa(req.MaxLen))
	}
	id := req.ID
	if id == "" {
		id = "*"
	}
	args = append(args, id)
	args = append(args, req.Fields...)
	r, err := t.Exec(ctx, args...)
	if err != nil {
		return "", err
	}
	s, ok := r.(string)
	if !ok {
		return "", ErrUnexpectedReply
	}
	return s, nil
}

// Range queries with XRANGE, or XREVRANGE when reverse is set. count < 0
// means no limit.
func (t *GrpcTransport) Range(ctx context.Context, key, start, end string, count int, reverse bool) ([]Entry, error) {
	args := []string{"XRANGE", key, start, end}
	if reverse {
		args = []string{"XREVRANGE", key, end, start}
	}
	if count >= 0 {
		args = append(args, "COUNT", strconv.Itoa(count))
	}
	r, err := t.Exec(ctx, args...)
	if err != nil {
		return nil, err
	}
	return entriesFromReply(r)
}

// Trim caps the stream with XTRIM.
func (t *GrpcTransport) Trim(ctx context.Context, key string, maxLen int) (int64, error) {
	r, err := t.Exec(ctx, "XTRIM", key, "MAXLEN", strconv.Itoa(maxLen))
	if err != nil {
		return 0, err
	}
	return intFromReply(r)
}

// Len returns XLEN.
func (t *GrpcTransport) Len(ctx context.Context, key string) (int64, error) {
	r, err := t.Exec(ctx, "XLEN", key)
	if err != nil {
		return 0, err
	}
	return intFromReply(r)
}

// Read issues a single-key XREAD. count <= 0 means no limit.
func (t *GrpcTransport) Read(ctx context.Context, key, from string, count int) ([]Entry, error) {
	args := []string{"XREAD"}
	if count > 0 {
		args = append(args, "COUNT", strconv.Itoa(count))
	}
	args = append(args, "STREAMS", key, from)
	r, err := t.Exec(ctx, args...)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return []Entry{}, nil
	}
	streams, ok := r.([]any)
	if !ok || len(streams) != 1 {
		return nil, ErrUnexpectedReply
	}
	pair, ok := streams[0].([]any)
	if !ok || len(pair) != 2 {
		return nil, ErrUnexpectedReply
	}
	return entriesFromReply(pair[1])
}

// Info returns XINFO STREAM.
func (t *GrpcTransport) Info(ctx context.Context, key string) (StreamInfo, error) {
	r, err := t.Exec(ctx, "XINFO", "STREAM", key)
	if err != nil {
		return StreamInfo{}, err
	}
	return infoFromReply(r)
}
