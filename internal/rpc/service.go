package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "metalaw.v1.Synthesis"

const (
	methodPredict      = "/" + ServiceName + "/Predict"
	methodPredictBatch = "/" + ServiceName + "/PredictBatch"
	methodThresholds   = "/" + ServiceName + "/Thresholds"
)

// SynthesisServer is the server side of the Synthesis service. Messages are
// google.protobuf.Struct so clients in any language can call it without
// generated stubs.
type SynthesisServer interface {
	Predict(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PredictBatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Thresholds(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterSynthesisServer registers srv on s.
func RegisterSynthesisServer(s grpc.ServiceRegistrar, srv SynthesisServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the Synthesis service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SynthesisServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Predict", Handler: predictHandler},
		{MethodName: "PredictBatch", Handler: predictBatchHandler},
		{MethodName: "Thresholds", Handler: thresholdsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "metalaw/v1/synthesis.proto",
}

// #region handlers
func predictHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SynthesisServer).Predict(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPredict}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SynthesisServer).Predict(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func predictBatchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SynthesisServer).PredictBatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPredictBatch}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SynthesisServer).PredictBatch(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func thresholdsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SynthesisServer).Thresholds(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodThresholds}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SynthesisServer).Thresholds(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
// #endregion handlers
