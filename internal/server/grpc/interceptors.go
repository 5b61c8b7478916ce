package grpcserver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	logpkg "github.com/rzbill/flostream/pkg/log"
)

const requestIDHeader = "x-request-id"

// requestIDInterceptor takes x-request-id from incoming metadata or mints
// one, stores it on the context and echoes it in the response header.
func requestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		rid := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(requestIDHeader); len(vals) > 0 {
				rid = vals[0]
			}
		}
		if rid == "" {
			rid = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, rid))
		return handler(logpkg.WithRequestID(ctx, rid), req)
	}
}

// rateLimitInterceptor rejects calls beyond the limiter's budget. A nil
// limiter admits everything.
func rateLimitInterceptor(limiter *rate.Limiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if limiter != nil && !limiter.Allow() {
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}

func loggingInterceptor(logger logpkg.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		l := logger.WithContext(ctx)
		fields := []logpkg.Field{
			logpkg.Str("method", info.FullMethod),
			logpkg.Str("code", code.String()),
			logpkg.Dur("dur", time.Since(start)),
		}
		switch code {
		case codes.OK, codes.InvalidArgument, codes.NotFound, codes.Canceled:
			l.Debug("grpc request", fields...)
		default:
			l.Warn("grpc request", append(fields, logpkg.Err(err))...)
		}
		return resp, err
	}
}
