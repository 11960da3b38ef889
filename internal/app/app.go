package app

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/config"
	"github.com/chatrelay/chatrelay-server/internal/core"
	transporthttp "github.com/chatrelay/chatrelay-server/internal/transport/http"
)

// App wires together the shared state and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	state           *core.State
	log             *zerolog.Logger
}

// New constructs the application with provided configuration. The shared
// state (broadcast bus and view counter) is created here, once, and lives
// for the process lifetime.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	state := core.NewState(cfg.BusCapacity)
	server := transporthttp.NewServer(state, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		state:           state,
		log:             logger,
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().
			Uint64("views", a.state.Views()).
			Uint64("dropped", a.state.Bus.Dropped()).
			Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
