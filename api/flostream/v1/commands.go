// Package flostreamv1 declares the flostream.v1 gRPC surface. The Commands
// service carries argument vectors as google.protobuf.ListValue and replies
// as google.protobuf.Value, so the well-known types are the whole schema.
package flostreamv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	CommandsServiceName        = "flostream.v1.Commands"
	Commands_Do_FullMethodName = "/flostream.v1.Commands/Do"
)

// CommandsServer executes one command per call.
type CommandsServer interface {
	Do(context.Context, *structpb.ListValue) (*structpb.Value, error)
}

// RegisterCommandsServer registers srv on s.
func RegisterCommandsServer(s grpc.ServiceRegistrar, srv CommandsServer) {
	s.RegisterService(&Commands_ServiceDesc, srv)
}

func _Commands_Do_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.ListValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandsServer).Do(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Commands_Do_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommandsServer).Do(ctx, req.(*structpb.ListValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Commands_ServiceDesc is the grpc.ServiceDesc for the Commands service.
var Commands_ServiceDesc = grpc.ServiceDesc{
	ServiceName: CommandsServiceName,
	HandlerType: (*CommandsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Do",
			Handler:    _Commands_Do_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flostream/v1/commands.proto",
}

// CommandsClient is the client API for the Commands service.
type CommandsClient interface {
	Do(ctx context.Context, in *structpb.ListValue, opts ...grpc.CallOption) (*structpb.Value, error)
}

type commandsClient struct {
	cc grpc.ClientConnInterface
}

func NewCommandsClient(cc grpc.ClientConnInterface) CommandsClient {
	return &commandsClient{cc}
}

func (c *commandsClient) Do(ctx context.Context, in *structpb.ListValue, opts ...grpc.CallOption) (*structpb.Value, error) {
	out := new(structpb.Value)
	if err := c.cc.Invoke(ctx, Commands_Do_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
