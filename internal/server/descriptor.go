package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name. The messages are
// protobuf well-known types, so no generated code is needed.
const ServiceName = "marks.v1.ResultsService"

const (
	methodExtractReport = "/" + ServiceName + "/ExtractReport"
	methodSummarize     = "/" + ServiceName + "/Summarize"
)

// ResultsServiceServer is the server API for marks.v1.ResultsService.
type ResultsServiceServer interface {
	// ExtractReport takes PDF bytes and returns the XLSX report bytes.
	ExtractReport(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	// Summarize takes PDF bytes and returns the run summary.
	Summarize(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
}

func RegisterResultsServiceServer(s grpc.ServiceRegistrar, srv ResultsServiceServer) {
	s.RegisterService(&ResultsServiceDesc, srv)
}

func extractReportHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResultsServiceServer).ExtractReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodExtractReport}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ResultsServiceServer).ExtractReport(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func summarizeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResultsServiceServer).Summarize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSummarize}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ResultsServiceServer).Summarize(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ResultsServiceDesc is the grpc.ServiceDesc for marks.v1.ResultsService.
var ResultsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ResultsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ExtractReport", Handler: extractReportHandler},
		{MethodName: "Summarize", Handler: summarizeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marks/v1/results.proto",
}

// ResultsServiceClient calls marks.v1.ResultsService.
type ResultsServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewResultsServiceClient(cc grpc.ClientConnInterface) *ResultsServiceClient {
	return &ResultsServiceClient{cc: cc}
}

func (c *ResultsServiceClient) ExtractReport(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, methodExtractReport, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ResultsServiceClient) Summarize(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodSummarize, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
