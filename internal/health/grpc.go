package health

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// GRPCServiceName is the service name answered besides the empty (whole server) name.
const GRPCServiceName = "nodehealth"

// GRPCServer exposes the verdict through the standard grpc.health.v1.Health service.
type GRPCServer struct {
	healthpb.UnimplementedHealthServer

	checker Checker
	port    int
	server  *grpc.Server
}

// NewGRPCServer creates a gRPC health server backed by checker.
func NewGRPCServer(checker Checker, port int) *GRPCServer {
	g := &GRPCServer{
		checker: checker,
		port:    port,
		server:  grpc.NewServer(),
	}
	healthpb.RegisterHealthServer(g.server, g)
	return g
}

// Check runs one evaluation: healthy is SERVING, anything else NOT_SERVING.
func (g *GRPCServer) Check(
	ctx context.Context,
	req *healthpb.HealthCheckRequest,
) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != GRPCServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}

	verdict := g.checker.Evaluate(ctx)
	if !verdict.Healthy {
		slog.Debug("gRPC health check not serving", "diagnostic", verdict.Diagnostic)
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}

// Start binds the configured port and serves in the background. A bind failure is
// returned; a later serve failure is sent on errs without blocking.
func (g *GRPCServer) Start(errs chan<- error) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", g.port))
	if err != nil {
		return fmt.Errorf("failed to listen on %d: %w", g.port, err)
	}

	go func() {
		if err := g.server.Serve(lis); err != nil {
			notify(errs, fmt.Errorf("gRPC health server: %w", err))
		}
	}()
	return nil
}

// Stop drains in-flight checks, forcing the stop when ctx expires.
func (g *GRPCServer) Stop(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		g.server.Stop()
	}
}
