// Package app ties configuration, logging, and the engine into a runnable
// application with signal-driven graceful shutdown.
package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/AxewBoTX/browzer/config"
	"github.com/AxewBoTX/browzer/core"
)

// App is the application instance around a configured engine.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	engine *core.Engine
}

// New creates an application instance: logger from the environment name,
// engine limits from the config, and the static route when a directory is
// configured.
func New(cfg *config.Config) (*App, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}

	engine := core.NewEngine(logger)
	engine.ReadTimeout = cfg.ReadTimeout
	engine.WriteTimeout = cfg.WriteTimeout
	engine.IdleTimeout = cfg.IdleTimeout
	engine.MaxConnections = cfg.MaxConnections
	engine.MaxHeaderBytes = cfg.MaxHeaderBytes

	if cfg.StaticDir != "" {
		if err := engine.Static(cfg.StaticRoute, cfg.StaticDir); err != nil {
			return nil, err
		}
	}

	return &App{cfg: cfg, logger: logger, engine: engine}, nil
}

// Engine returns the underlying engine for route registration.
func (a *App) Engine() *core.Engine {
	return a.engine
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Run serves until SIGINT or SIGTERM, then drains in-flight connections
// within the configured grace period.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext serves until ctx is canceled.
func (a *App) RunContext(ctx context.Context) error {
	defer a.logger.Sync()

	if !a.cfg.HideBanner {
		a.logger.Info("browzer starting",
			zap.String("addr", a.cfg.Addr),
			zap.String("env", a.cfg.Env),
		)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.engine.Run(a.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		// Bind failure or a closed listener; nothing left to drain.
		if errors.Is(err, core.ErrEngineClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", zap.Duration("grace", a.cfg.ShutdownGrace))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownGrace)
	defer cancel()
	if err := a.engine.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("shutdown incomplete, connections closed forcibly", zap.Error(err))
	}
	<-errCh
	return nil
}

// newLogger builds a production logger for production environments and a
// development logger otherwise.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
