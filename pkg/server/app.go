package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"KryptoPulse/pkg/cache"
	"KryptoPulse/pkg/config"
	xhttp "KryptoPulse/pkg/http"
	applogger "KryptoPulse/pkg/logger"
)

// App encapsulates the application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	cache      cache.Service
}

// New creates an App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, c cache.Service) *App {
	return &App{
		cfg:        cfg,
		logger:     l,
		httpServer: srv,
		cache:      c,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("listening",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment),
		applogger.String("cache_backend", a.cfg.Cache.Backend),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
