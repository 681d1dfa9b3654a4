package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "daccore.v1.ActorService"

	updateMethod    = "/" + ServiceName + "/Update"
	txDisableMethod = "/" + ServiceName + "/TxDisable"
)

// ActorServiceServer carries actor envelopes and results as JSON strings.
type ActorServiceServer interface {
	Update(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	TxDisable(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

var ActorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ActorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Update",
			Handler:    updateHandler,
		},
		{
			MethodName: "TxDisable",
			Handler:    txDisableHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "daccore/v1/actor.proto",
}

func RegisterActorServiceServer(s grpc.ServiceRegistrar, srv ActorServiceServer) {
	s.RegisterService(&ActorServiceDesc, srv)
}

func updateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ActorServiceServer).Update(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: updateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ActorServiceServer).Update(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func txDisableHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ActorServiceServer).TxDisable(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: txDisableMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ActorServiceServer).TxDisable(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ActorServiceClient calls a remote ActorService.
type ActorServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewActorServiceClient(cc grpc.ClientConnInterface) *ActorServiceClient {
	return &ActorServiceClient{cc: cc}
}

func (c *ActorServiceClient) Update(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, updateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ActorServiceClient) TxDisable(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, txDisableMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
