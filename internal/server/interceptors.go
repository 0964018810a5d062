package server

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	cklog "github.com/msto63/cstkit/pkg/core/log"
)

// Context keys for request metadata
type contextKey string

const (
	RequestIDKey    contextKey = "request_id"
	RequestIDHeader string     = "x-request-id"
)

// RecoveryInterceptor turns handler panics into Internal errors
func RecoveryInterceptor(logger *cklog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC panic recovered", cklog.Fields{
					"method": info.FullMethod,
					"panic":  r,
					"stack":  string(debug.Stack()),
				})
				err = status.Errorf(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

// LoggingInterceptor logs every request with its status and duration
func LoggingInterceptor(logger *cklog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		statusCode := codes.OK
		if err != nil {
			statusCode = status.Code(err)
		}
		fields := cklog.Fields{
			"request_id":  GetRequestID(ctx),
			"method":      info.FullMethod,
			"status":      statusCode.String(),
			"duration_ms": float64(time.Since(start).Nanoseconds()) / 1e6,
		}
		if err != nil {
			logger.Warn("gRPC request failed", fields)
		} else {
			logger.Info("gRPC request", fields)
		}
		return resp, err
	}
}

// RequestIDInterceptor takes the request ID from metadata or creates one
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := extractRequestID(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = context.WithValue(ctx, RequestIDKey, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))
		return handler(ctx, req)
	}
}

// ClientRequestIDInterceptor propagates the request ID to outgoing requests
func ClientRequestIDInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		requestID := GetRequestID(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, requestID)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return extractRequestID(ctx)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func extractRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(RequestIDHeader); len(values) > 0 {
		return values[0]
	}
	return ""
}
