// File: service.go
// Title: Evaluator Service Descriptor
// Description: gRPC service cstkit.v1.Evaluator declared by hand. Requests
//              and responses are google.protobuf.Struct messages, so the
//              service needs no generated stubs.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial service descriptor

package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service and method names
const (
	ServiceName       = "cstkit.v1.Evaluator"
	MethodEvaluate    = "/" + ServiceName + "/Evaluate"
	MethodTokenize    = "/" + ServiceName + "/Tokenize"
	MethodDescribe    = "/" + ServiceName + "/Describe"
	evaluateShortName = "Evaluate"
	tokenizeShortName = "Tokenize"
	describeShortName = "Describe"
)

// EvaluatorServer is the server API of cstkit.v1.Evaluator
type EvaluatorServer interface {
	// Evaluate runs the full pipeline. Request fields: text, entry_rule,
	// include_tree.
	Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// Tokenize runs the lexer only. Request fields: text.
	Tokenize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// Describe returns the grammar report
	Describe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterEvaluatorServer registers srv on s
func RegisterEvaluatorServer(s grpc.ServiceRegistrar, srv EvaluatorServer) {
	s.RegisterService(&evaluatorServiceDesc, srv)
}

var evaluatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EvaluatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: evaluateShortName, Handler: unaryHandler(MethodEvaluate, EvaluatorServer.Evaluate)},
		{MethodName: tokenizeShortName, Handler: unaryHandler(MethodTokenize, EvaluatorServer.Tokenize)},
		{MethodName: describeShortName, Handler: unaryHandler(MethodDescribe, EvaluatorServer.Describe)},
	},
	Streams: []grpc.StreamDesc{},
}

type unaryMethod func(EvaluatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a method expression to the descriptor's handler shape
func unaryHandler(fullMethod string, call unaryMethod) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EvaluatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(EvaluatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
