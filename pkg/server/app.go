package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"PricePulse/pkg/config"
	xhttp "PricePulse/pkg/http"
	applogger "PricePulse/pkg/logger"
)

// Runner is a background component started alongside the HTTP server.
type Runner interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	handler    xhttp.Handler
	runners    []Runner
	closers    []io.Closer
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, logger *applogger.Logger, handler xhttp.Handler) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		handler: handler,
	}
}

// AddRunner registers a background component managed by the app lifecycle.
func (a *App) AddRunner(r Runner) {
	if r != nil {
		a.runners = append(a.runners, r)
	}
}

// AddCloser registers a resource closed during shutdown.
func (a *App) AddCloser(c io.Closer) {
	if c != nil {
		a.closers = append(a.closers, c)
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.cfg.Metrics.Path),
		xhttp.WithLogger(a.logger),
	)

	for _, r := range a.runners {
		r := r
		go func() {
			if err := r.Start(ctx); err != nil {
				a.logger.Error("background runner error", applogger.Error(err))
			}
		}()
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		applogger.String("host", a.cfg.Server.Host),
		applogger.Int("port", a.cfg.Server.Port),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	for _, r := range a.runners {
		if err := r.Stop(shutdownCtx); err != nil {
			a.logger.Warn("runner stop error", applogger.Error(err))
		}
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
