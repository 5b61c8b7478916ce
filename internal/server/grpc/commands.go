package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	flostreamv1 "github.com/rzbill/flostream/api/flostream/v1"
	"github.com/rzbill/flostream/internal/commands"
	"github.com/rzbill/flostream/internal/runtime"
)

type commandsSvc struct {
	rt *runtime.Runtime
}

func commandStatus(r any) (string, bool) {
	s, ok := r.(commands.Status)
	return string(s), ok
}

func (c *commandsSvc) Do(ctx context.Context, in *structpb.ListValue) (*structpb.Value, error) {
	args, err := flostreamv1.ListToArgs(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	reply, err := c.rt.Commands().Do(ctx, args)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := flostreamv1.ReplyToValue(reply, commandStatus)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// toStatus maps reply errors to InvalidArgument with the reply text intact.
func toStatus(err error) error {
	switch {
	case commands.IsReplyError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
