package grpc

import (
	"context"
	"fmt"
	"net"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/logger"
)

// Server wraps a gRPC server with the scoring service and health checks registered
// Server 封装注册了评分服务与健康检查的 gRPC 服务器
type Server struct {
	gs     *grpclib.Server
	health *health.Server
	logger logger.Logger
}

// NewServer 创建并配置 gRPC 服务器
func NewServer(svc ScoringServiceServer, log logger.Logger, opts ...grpclib.ServerOption) *Server {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	chain := NewInterceptorChain(log.WithComponent("grpc"))
	gs := grpclib.NewServer(append([]grpclib.ServerOption{chain.ChainUnaryInterceptors()}, opts...)...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(ScoringServiceName, healthpb.HealthCheckResponse_SERVING)

	RegisterScoringServiceServer(gs, svc)

	return &Server{gs: gs, health: healthSrv, logger: log.WithComponent("grpc")}
}

// Listen opens a TCP listener on port and serves until Stop is called.
func (s *Server) Listen(port int) error {
	addr := fmt.Sprintf(":%d", port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// Serve 在给定监听器上提供服务
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info(context.Background(), "gRPC server listening", logger.Fields{
		"addr":    lis.Addr().String(),
		"service": constants.ServiceName,
	})
	if err := s.gs.Serve(lis); err != nil && err != grpclib.ErrServerStopped {
		return err
	}
	return nil
}

// Stop marks the service NOT_SERVING and drains in-flight calls until ctx expires.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info(ctx, "gRPC server shutting down")
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.gs.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.gs.Stop()
	}
}
