// Package grpcapi serves the standard gRPC health checking protocol so
// orchestrators can probe the server without speaking HTTP.
package grpcapi

import (
	"context"
	"errors"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported alongside the overall "" status.
const ServiceName = "rollcall.v1.Attendance"

// DefaultProbeTimeout bounds a single probe run.
const DefaultProbeTimeout = 3 * time.Second

// HealthServer reflects store reachability into grpc.health.v1.
type HealthServer struct {
	// ProbeTimeout bounds each probe; a probe still running at the deadline
	// counts as NOT_SERVING.
	ProbeTimeout time.Duration

	grpcServer *grpc.Server
	health     *health.Server
	probe      func(context.Context) error
	logger     *zap.Logger
}

func NewHealthServer(probe func(context.Context) error, logger *zap.Logger) *HealthServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	gs := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	return &HealthServer{
		ProbeTimeout: DefaultProbeTimeout,
		grpcServer:   gs,
		health:       hs,
		probe:        probe,
		logger:       logger,
	}
}

// Check runs the probe once, bounded by ProbeTimeout, and publishes the result.
func (s *HealthServer) Check(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.probe != nil {
		timeout := s.ProbeTimeout
		if timeout <= 0 {
			timeout = DefaultProbeTimeout
		}
		pctx, cancel := context.WithTimeout(ctx, timeout)
		err := s.probe(pctx)
		cancel()
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			s.logger.Warn("health probe failed", zap.Error(err))
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve listens on lis and re-probes every interval until ctx ends.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener, interval time.Duration) error {
	s.Check(ctx)
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				s.health.Shutdown()
				s.grpcServer.GracefulStop()
				return
			case <-t.C:
				s.Check(ctx)
			}
		}
	}()
	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
