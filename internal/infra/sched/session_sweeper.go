package sched

import (
	"context"
	"time"

	"meal-review-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// IdleExpirer drops conversations untouched for longer than maxIdle.
type IdleExpirer interface {
	ExpireIdle(ctx context.Context, maxIdle time.Duration) (int, error)
}

// SessionSweeper periodically returns abandoned conversations to Idle.
type SessionSweeper struct {
	interval time.Duration
	maxIdle  time.Duration
	store    IdleExpirer
	log      *zerolog.Logger
}

// NewSessionSweeper checks every maxIdle/4, but never more often than once a second.
func NewSessionSweeper(maxIdle time.Duration, store IdleExpirer, logger *zerolog.Logger) *SessionSweeper {
	swLog := logger.With().Str("component", "SessionSweeper").Logger()
	interval := maxIdle / 4
	if interval < time.Second {
		interval = time.Second
	}
	return &SessionSweeper{
		interval: interval,
		maxIdle:  maxIdle,
		store:    store,
		log:      &swLog,
	}
}

func (w *SessionSweeper) Run(ctx context.Context) error {
	if w.maxIdle <= 0 {
		w.log.Info().Msg("idle timeout disabled, sweeper not started")
		return nil
	}
	w.log.Info().Dur("max_idle", w.maxIdle).Msg("Starting session sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping session sweeper")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SessionSweeper) sweep(ctx context.Context) {
	n, err := w.store.ExpireIdle(ctx, w.maxIdle)
	if err != nil {
		w.log.Error().Err(err).Msg("session sweeper error")
	}
	if n > 0 {
		metrics.IncSessionsExpired(n)
		w.log.Info().Int("count", n).Msg("idle conversations expired")
	}
}
