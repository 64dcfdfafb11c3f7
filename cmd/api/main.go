// File: cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"meal-review-bot/internal/config"
	"meal-review-bot/internal/domain/ports/repository"
	"meal-review-bot/internal/infra/api"
	pg "meal-review-bot/internal/infra/db/postgres"
	"meal-review-bot/internal/infra/logging"
	"meal-review-bot/internal/infra/metrics"
	red "meal-review-bot/internal/infra/redis"
	"meal-review-bot/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIConfig()
	if err != nil {
		logging.Global.Fatal().Err(err).Msg("config")
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	pool, err := pg.Connect(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("postgres schema")
	}

	var repo repository.CatalogueRepository = pg.NewCatalogueRepo(pool)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		repo = pg.NewCatalogueRepoCacheDecorator(repo, redisClient, cfg.Redis.CacheTTL, logger)
	}
	catalogueUC := usecase.NewCatalogueUseCase(repo, pg.NewTxManager(pool), logger)

	srv := api.NewServer(cfg.HTTP, api.NewRouter(catalogueUC, pool.Ping, logger), logger)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("http server")
	}
	logger.Info().Msg("api stopped")
}
