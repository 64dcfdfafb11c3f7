// File: cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"meal-review-bot/internal/application"
	"meal-review-bot/internal/config"
	"meal-review-bot/internal/domain/ports/repository"
	tele "meal-review-bot/internal/infra/adapters/telegram"
	"meal-review-bot/internal/infra/api"
	pg "meal-review-bot/internal/infra/db/postgres"
	"meal-review-bot/internal/infra/i18n"
	"meal-review-bot/internal/infra/logging"
	"meal-review-bot/internal/infra/memory"
	"meal-review-bot/internal/infra/metrics"
	red "meal-review-bot/internal/infra/redis"
	"meal-review-bot/internal/infra/sched"
	"meal-review-bot/internal/infra/worker"
	"meal-review-bot/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Config & logging ----
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Global.Fatal().Err(err).Msg("config")
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Locale)
	if err != nil {
		logger.Fatal().Err(err).Str("locale", cfg.Locale).Msg("i18n")
	}

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("postgres schema")
	}

	var wg sync.WaitGroup
	goRun := func(fn func()) {
		wg.Add(1)
		go func() { defer wg.Done(); fn() }()
	}
	goRun(func() { pg.ReportPoolStats(ctx, pool, 15*time.Second, logger) })

	// ---- Sessions, cache & rate limiting ----
	var catalogueRepo repository.CatalogueRepository = pg.NewCatalogueRepo(pool)
	var sessions repository.SessionStore
	var limiter tele.RateLimiter

	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()

		sessions = red.NewSessionStore(
			red.NewStateRepo(redisClient, cfg.Conversation.IdleTimeout),
			red.NewLocker(redisClient, cfg.Conversation.LockWait),
			cfg.Conversation.LockTTL,
			logger,
		)
		catalogueRepo = pg.NewCatalogueRepoCacheDecorator(catalogueRepo, redisClient, cfg.Redis.CacheTTL, logger)
		limiter = red.NewRateLimiter(redisClient)
		logger.Info().Msg("sessions stored in redis")
	} else {
		mem := memory.NewSessionStore(cfg.Conversation.LockWait)
		sessions = mem
		sweeper := sched.NewSessionSweeper(cfg.Conversation.IdleTimeout, mem, logger)
		goRun(func() { _ = sweeper.Run(ctx) })
		logger.Info().Msg("sessions stored in process memory")
	}

	// ---- Use cases ----
	catalogueUC := usecase.NewCatalogueUseCase(catalogueRepo, pg.NewTxManager(pool), logger)
	engine := usecase.NewConversationUseCase(catalogueUC, translator, logger)

	// ---- Telegram ----
	botAPI, err := tele.NewBotAPI(&cfg.Bot)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	router := application.NewRouter(sessions, engine, tele.NewMessenger(botAPI), translator, logger, cfg.Runtime.Dev)
	bot, err := tele.NewBot(botAPI, &cfg.Bot, router,
		worker.NewPool(cfg.Bot.Workers, 64, logger),
		limiter, cfg.Conversation.RateLimit, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	if err := bot.RegisterCommands(); err != nil {
		logger.Warn().Err(err).Msg("could not register bot commands")
	}
	if cfg.Bot.Mode != "polling" {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
	}
	goRun(func() {
		if err := bot.StartPolling(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("telegram polling stopped")
			stop()
		}
	})

	// ---- Optional HTTP API ----
	if cfg.HTTP.Enabled {
		srv := api.NewServer(cfg.HTTP, api.NewRouter(catalogueUC, pool.Ping, logger), logger)
		goRun(func() {
			if err := srv.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("http server stopped")
			}
		})
	}

	logger.Info().Str("version", version).Msg("bot started")
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")
	waitOrTimeout(&wg, 10*time.Second, logger)
}

func waitOrTimeout(wg *sync.WaitGroup, d time.Duration, logger *zerolog.Logger) {
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(d):
		logger.Warn().Dur("after", d).Msg("shutdown timed out")
	}
}
