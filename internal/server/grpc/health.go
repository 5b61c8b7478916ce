package grpcserver

import (
	"context"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	flostreamv1 "github.com/rzbill/flostream/api/flostream/v1"
	"github.com/rzbill/flostream/internal/runtime"
)

// healthSvc answers the standard grpc.health.v1 protocol from the runtime's
// health check. Known services are "" and the Commands service.
type healthSvc struct {
	healthpb.UnimplementedHealthServer
	rt *runtime.Runtime
}

func (h *healthSvc) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", flostreamv1.CommandsServiceName:
	default:
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}
	if err := h.rt.CheckHealth(ctx); err != nil {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
