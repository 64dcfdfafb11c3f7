package telegram

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"meal-review-bot/internal/application"
	"meal-review-bot/internal/config"
	"meal-review-bot/internal/infra/logging"
	"meal-review-bot/internal/infra/metrics"
	red "meal-review-bot/internal/infra/redis"
	"meal-review-bot/internal/infra/worker"
)

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u application.Update) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Bot long-polls Telegram and hands each update to the worker owning its
// chat, so one chat's updates are handled in arrival order.
type Bot struct {
	api       botAPI
	handler   UpdateHandler
	pool      *worker.Pool
	limiter   RateLimiter
	rateLimit int
	timeout   int
	log       *zerolog.Logger
}

// NewBotAPI authenticates the token against Telegram.
func NewBotAPI(cfg *config.BotConfig) (*tgbotapi.BotAPI, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	return tgbotapi.NewBotAPI(cfg.Token)
}

// NewBot wires polling to handler. limiter may be nil; rateLimit is updates
// per chat per minute and zero disables limiting.
func NewBot(api botAPI, cfg *config.BotConfig, handler UpdateHandler, pool *worker.Pool, limiter RateLimiter, rateLimit int, logger *zerolog.Logger) (*Bot, error) {
	if api == nil {
		return nil, errors.New("bot api is nil")
	}
	if handler == nil {
		return nil, errors.New("update handler is nil")
	}
	if pool == nil {
		return nil, errors.New("worker pool is nil")
	}
	timeout := 60
	if cfg != nil && cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	botLog := logger.With().Str("component", "TelegramBot").Logger()
	return &Bot{
		api:       api,
		handler:   handler,
		pool:      pool,
		limiter:   limiter,
		rateLimit: rateLimit,
		timeout:   timeout,
		log:       &botLog,
	}, nil
}

// RegisterCommands publishes the command menu shown by Telegram clients.
func (b *Bot) RegisterCommands() error {
	_, err := b.api.Request(tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "help", Description: "Show usage"},
		tgbotapi.BotCommand{Command: "rest", Description: "Add, search or edit restaurants"},
		tgbotapi.BotCommand{Command: "dish", Description: "List or add dishes"},
		tgbotapi.BotCommand{Command: "review", Description: "Review a dish or show its reviews"},
		tgbotapi.BotCommand{Command: "cancel", Description: "Cancel the current step"},
	))
	return err
}

// StartPolling runs until ctx is cancelled, then waits for in-flight updates.
func (b *Bot) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.timeout
	updates := b.api.GetUpdatesChan(u)

	b.pool.Start(ctx)
	defer b.pool.Stop()

	b.log.Info().Int("workers", b.pool.Size()).Msg("polling telegram updates")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, up)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, up tgbotapi.Update) {
	if q := up.CallbackQuery; q != nil {
		// stop the client's spinner whatever happens to the press
		if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
			metrics.IncSendFailure("answer_callback")
			b.log.Warn().Err(err).Msg("failed to answer callback query")
		}
	}

	u, ok := toUpdate(up)
	if !ok {
		return
	}
	if !b.allow(ctx, u.ChatID) {
		return
	}

	err := b.pool.Submit(ctx, u.ChatID, func(ctx context.Context) error {
		if err := b.handler.HandleUpdate(ctx, u); err != nil {
			logging.With(logging.WithChatID(ctx, u.ChatID), b.log).
				Error().Err(err).Str("kind", string(u.Kind)).Msg("update handling failed")
		}
		return nil
	})
	if err != nil {
		b.log.Warn().Err(err).Int64("chat_id", u.ChatID).Msg("update dropped")
	}
}

// allow fails open when the limiter itself errors.
func (b *Bot) allow(ctx context.Context, chatID int64) bool {
	if b.limiter == nil || b.rateLimit <= 0 {
		return true
	}
	ok, err := b.limiter.Allow(ctx, red.ChatUpdateKey(chatID), b.rateLimit, time.Minute)
	if err != nil {
		b.log.Warn().Err(err).Msg("rate limit check failed")
		return true
	}
	if !ok {
		metrics.IncRateLimitTriggered()
		b.log.Info().Int64("chat_id", chatID).Msg("chat rate limited, update dropped")
	}
	return ok
}
