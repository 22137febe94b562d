package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BrandonDHaskell/rollcall/internal/app"
	"github.com/BrandonDHaskell/rollcall/internal/grpcapi"
	"github.com/BrandonDHaskell/rollcall/internal/httpapi"
	"github.com/BrandonDHaskell/rollcall/internal/mqttingest"
	"github.com/BrandonDHaskell/rollcall/internal/telemetry"
)

const (
	shutdownTimeout     = 5 * time.Second
	healthProbeInterval = 10 * time.Second
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the attendance server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context())
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	cfg, logger := c.cfg, c.logger

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:        logger,
		Addr:          cfg.HTTPAddr,
		ScanService:   a.Scans,
		SyncService:   a.Sync,
		ReportService: a.Reports,
		PersonService: a.Persons,
		Ready:         a.Ready,
	})

	var lis net.Listener
	if cfg.GRPCHealthAddr != "" {
		if lis, err = net.Listen("tcp", cfg.GRPCHealthAddr); err != nil {
			return fmt.Errorf("grpc health listen: %w", err)
		}
	}

	var mc *mqttingest.Client
	if cfg.MQTTBroker != "" {
		if mc, err = mqttingest.Dial(mqttingest.ClientConfig{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
		}); err != nil {
			if lis != nil {
				_ = lis.Close()
			}
			return err
		}
		defer mc.Disconnect()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if lis != nil {
		hs := grpcapi.NewHealthServer(a.Ready, logger)
		hs.ProbeTimeout = cfg.StoreTimeout
		g.Go(func() error {
			logger.Info("grpc health listening", zap.String("addr", cfg.GRPCHealthAddr))
			return hs.Serve(gctx, lis, healthProbeInterval)
		})
	}

	if mc != nil {
		ing := mqttingest.NewIngestor(a.Scans, cfg.MQTTTopicPrefix, mc, logger)
		g.Go(func() error { return ing.Run(gctx, mc) })
	}

	err = g.Wait()
	logger.Info("server stopped")
	return err
}
