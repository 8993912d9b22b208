package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/blackhand-games/syndicate/internal/services/gang/catalog"
	"github.com/blackhand-games/syndicate/internal/services/gang/storage/sqlite"
	"github.com/blackhand-games/syndicate/internal/services/gang/worker"
)

// RuntimeConfig controls gangd startup, storage, and the income loop.
type RuntimeConfig struct {
	Port           int
	DBPath         string
	FoundingFee    int64
	StartingCash   int64
	AttackCooldown time.Duration
	IncomeInterval time.Duration
}

const (
	defaultGangPort = 8087
	defaultGangDB   = "data/gang.db"
)

// Run starts the gang service runtime: storage, catalog seed, health
// endpoint, and the territory income loop. It blocks until ctx is canceled.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultGangPort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultGangDB
	}
	rules := DefaultConfig()
	if cfg.FoundingFee > 0 {
		rules.FoundingFee = cfg.FoundingFee
	}
	if cfg.StartingCash > 0 {
		rules.StartingCash = cfg.StartingCash
	}
	if cfg.AttackCooldown > 0 {
		rules.AttackCooldown = cfg.AttackCooldown
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create gang storage dir: %w", err)
		}
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open gang sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close gang sqlite store: %v", closeErr)
		}
	}()

	content, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load game catalog: %w", err)
	}
	if err := catalog.Seed(ctx, store, content); err != nil {
		return fmt.Errorf("seed game catalog: %w", err)
	}

	service := New(store, rules)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on gang port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("gang.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	log.Printf("gang server listening at %v", listener.Addr())
	incomeLoop := worker.New(service, worker.Config{Interval: cfg.IncomeInterval})
	return incomeLoop.Run(ctx)
}
