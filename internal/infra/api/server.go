package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"meal-review-bot/internal/config"
	"meal-review-bot/internal/infra/api/apiv1"
	"meal-review-bot/internal/usecase"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

// Server is the read-only HTTP surface: catalogue queries, health and metrics.
type Server struct {
	srv *http.Server
	log *zerolog.Logger
}

// NewRouter builds the handler tree. ping may be nil.
func NewRouter(catalogue usecase.CatalogueUseCase, ping Pinger, logger *zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", health(ping))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	apiv1.RegisterAPIV1(r, apiv1.NewServer(catalogue, logger))

	return Chain(r,
		TraceID(logger),
		Recover(logger),
		RequestLog(logger),
		Timeout(10*time.Second),
	)
}

func NewServer(cfg config.HTTPConfig, handler http.Handler, logger *zerolog.Logger) *Server {
	srvLog := logger.With().Str("component", "HTTPServer").Logger()
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: &srvLog,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func health(ping Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("UNAVAILABLE"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
