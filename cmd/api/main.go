package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vehicle_finance/internal/config"
	"vehicle_finance/internal/handlers"
	"vehicle_finance/internal/logger"
	"vehicle_finance/internal/ports"
	"vehicle_finance/internal/repository/cache"
	"vehicle_finance/internal/repository/contracts"
	"vehicle_finance/internal/repository/credentials"
	"vehicle_finance/internal/server"
	"vehicle_finance/internal/services/auth"
	contractsvc "vehicle_finance/internal/services/contracts"
	"vehicle_finance/internal/services/seed"
)

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Init(setupCtx)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = lg.Sync() }()
	defer cfg.Close(context.Background())

	if err := cfg.CheckConnections(setupCtx); err != nil {
		lg.Fatal("[BOOT] connection check failed", zap.Error(err))
	}
	lg.Info("[BOOT] connections OK", zap.String("store", cfg.StoreDriver))

	var (
		store  ports.ContractStore
		users  ports.CredentialStore
		checks []handlers.HealthCheck
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		store = contracts.NewMemoryRepository(int(cfg.ListLimit))
		users = credentials.NewMemoryRepository()
	default:
		cr := contracts.NewMongoRepository(cfg.Mongo, cfg.ListLimit)
		ur := credentials.NewMongoRepository(cfg.Mongo)
		if err := cr.EnsureIndexes(setupCtx); err != nil {
			lg.Fatal("[BOOT] contract indexes", zap.Error(err))
		}
		if err := ur.EnsureIndexes(setupCtx); err != nil {
			lg.Fatal("[BOOT] user indexes", zap.Error(err))
		}
		store, users = cr, ur
		checks = append(checks, handlers.HealthCheck{Name: "mongo", Ping: func(ctx context.Context) error {
			return cfg.Mongo.Client.Ping(ctx, nil)
		}})
	}

	var reader ports.ContractReader = store
	if cfg.Redis != nil {
		reader = cache.NewContracts(store, cfg.Redis, cfg.CacheTTL, lg)
		checks = append(checks, handlers.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return cfg.Redis.Ping(ctx).Err()
		}})
	}

	authSvc, err := auth.NewService(users, cfg.JWTSecret, cfg.TokenTTL, lg)
	if err != nil {
		lg.Fatal("[BOOT] auth service", zap.Error(err))
	}

	h := handlers.New(
		authSvc,
		contractsvc.NewService(reader, lg),
		seed.NewSeeder(store, users, nil, auth.HashPassword, lg),
		checks,
		lg,
	)
	srv := server.NewServer(cfg.Port, h)

	lg.Info("[BOOT] listening", zap.String("port", cfg.Port))
	if err := srv.Run(runCtx); err != nil {
		lg.Fatal("[BOOT] server stopped", zap.Error(err))
	}
}
