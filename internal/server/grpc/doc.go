// Package grpcserver hosts the gRPC server for flostream. It registers the
// flostream.v1.Commands service, which runs argument vectors through the
// runtime's dispatcher, and the standard grpc.health.v1 service.
//
// Every unary call passes through request-id, rate-limit and logging
// interceptors, in that order.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default()})
//	s := grpcserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":50051")
package grpcserver
