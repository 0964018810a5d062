package server

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	ckconfig "github.com/msto63/cstkit/pkg/core/config"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
	cklog "github.com/msto63/cstkit/pkg/core/log"
)

// Config holds gRPC server configuration
type Config struct {
	Address           string
	MaxRecvMsgSize    int
	MaxSendMsgSize    int
	EnableReflection  bool
	KeepaliveInterval time.Duration
	KeepaliveTimeout  time.Duration
}

// ConfigFrom derives server settings from the server section
func ConfigFrom(cfg ckconfig.ServerConfig) Config {
	return Config{
		Address:           cfg.Address(),
		MaxRecvMsgSize:    1024 * 1024, // 1MB
		MaxSendMsgSize:    4 * 1024 * 1024,
		EnableReflection:  cfg.EnableReflection,
		KeepaliveInterval: 30 * time.Second,
		KeepaliveTimeout:  10 * time.Second,
	}
}

// Server wraps a gRPC server carrying the evaluator and health services
type Server struct {
	server   *grpc.Server
	health   *health.Server
	config   Config
	listener net.Listener
	logger   *cklog.Logger
}

// New creates a server with srv registered
func New(cfg Config, srv EvaluatorServer, logger *cklog.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = cklog.GetDefault()
	}
	logger = logger.WithField("component", "grpc-server")

	serverOpts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    cfg.KeepaliveInterval,
			Timeout: cfg.KeepaliveTimeout,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor(logger),
			RequestIDInterceptor(),
			LoggingInterceptor(logger),
		),
	}
	serverOpts = append(serverOpts, opts...)

	gs := grpc.NewServer(serverOpts...)
	RegisterEvaluatorServer(gs, srv)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)

	if cfg.EnableReflection {
		reflection.Register(gs)
	}

	return &Server{server: gs, health: hs, config: cfg, logger: logger}
}

// GRPCServer returns the underlying gRPC server
func (s *Server) GRPCServer() *grpc.Server {
	return s.server
}

// Start listens on the configured address and serves until stopped
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return ckerror.Wrapf(err, "failed to listen on %s", s.config.Address).WithCode(ckerror.CodeConfig)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener, such as a bufconn in tests
func (s *Server) Serve(listener net.Listener) error {
	s.listener = listener
	s.logger.Info("gRPC server listening", cklog.Fields{"address": listener.Addr().String()})
	return s.server.Serve(listener)
}

// Stop marks the service as not serving and stops gracefully
func (s *Server) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

// StopWithTimeout stops gracefully, forcing the stop when ctx ends first
func (s *Server) StopWithTimeout(ctx context.Context) {
	s.health.Shutdown()
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.server.Stop()
	}
}

// Address returns the listening address
func (s *Server) Address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Address
}
