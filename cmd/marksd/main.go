package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/marks-tracker/internal/app"
	"github.com/joseph-ayodele/marks-tracker/internal/common"
	"github.com/joseph-ayodele/marks-tracker/internal/core/async"
	repo "github.com/joseph-ayodele/marks-tracker/internal/repository"
	svc "github.com/joseph-ayodele/marks-tracker/internal/server"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file overlaid on environment defaults")
	flag.Parse()

	cfg, err := common.Load(*cfgPath)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	logger := common.NewLogger(os.Stdout, cfg.LogLevel)

	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if a.DB != nil {
		if err := repo.HealthCheck(ctx, a.DB, 5*time.Second, logger); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	// room for the payload plus protobuf framing
	grpcServer := grpc.NewServer(grpc.MaxRecvMsgSize(cfg.Server.MaxUploadBytes + 1<<10))

	queue := async.NewProcessorQueue(a.Processor, logger,
		async.WithWorkers(cfg.Server.Workers),
		async.WithQueueSize(cfg.Server.QueueSize),
		async.WithProcessTimeout(cfg.Server.ProcessTimeout),
	)
	svc.RegisterResultsServiceServer(grpcServer, svc.NewResultsServer(queue, cfg.Server.MaxUploadBytes, logger))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(svc.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(grpcServer)

	logger.Info("marksd listening", "addr", addr, "audit_store", a.DB != nil)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()
	grpcServer.GracefulStop()
	queue.Shutdown(context.Background())
}
