package grpcserver

import (
	"context"
	"net"
	"sync"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	flostreamv1 "github.com/rzbill/flostream/api/flostream/v1"
	"github.com/rzbill/flostream/internal/runtime"
	logpkg "github.com/rzbill/flostream/pkg/log"
)

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
	grpc   *grpc.Server
	lis    net.Listener
	mu     sync.Mutex
}

// New constructs a gRPC server and registers services. The rate limit comes
// from the runtime's server config; a zero limit disables it.
func New(rt *runtime.Runtime, logger logpkg.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	logger = logger.With(logpkg.Component("grpc"))

	var limiter *rate.Limiter
	if sc := rt.Config().Server; sc.MaxCommandsPerSecond > 0 {
		burst := sc.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(sc.MaxCommandsPerSecond), burst)
	}
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			requestIDInterceptor(),
			rateLimitInterceptor(limiter),
			loggingInterceptor(logger),
		),
	}, opts...)

	s := &Server{rt: rt, logger: logger, grpc: grpc.NewServer(opts...)}
	healthpb.RegisterHealthServer(s.grpc, &healthSvc{rt: rt})
	flostreamv1.RegisterCommandsServer(s.grpc, &commandsSvc{rt: rt})
	return s
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lis = l
	s.mu.Unlock()
	s.logger.Info("grpc listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the server and closes the listener.
func (s *Server) Close() {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		_ = s.lis.Close()
	}
}
