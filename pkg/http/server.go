package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"PricePulse/pkg/http/middleware"
	applogger "PricePulse/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerOption configures Server.
type ServerOption func(*ServerConfig)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORS            bool
	MetricsPath     string
	Logger          *applogger.Logger
}

// Server wraps Echo HTTP server.
type Server struct {
	echo   *echo.Echo
	config *ServerConfig
}

// NewServer creates a new HTTP server with Echo.
func NewServer(handler Handler, opts ...ServerOption) *Server {
	cfg := &ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		CORS:            true,
		MetricsPath:     "/metrics",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	e.Use(middleware.Recover(cfg.Logger))
	e.Use(middleware.RequestLogging(cfg.Logger))
	e.Use(middleware.Metrics())

	if cfg.CORS {
		e.Use(middleware.CORS(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodPut,
				http.MethodPatch,
				http.MethodDelete,
				http.MethodOptions,
			},
			AllowHeaders: []string{
				echo.HeaderOrigin,
				echo.HeaderContentType,
				echo.HeaderAccept,
				echo.HeaderAuthorization,
			},
		}))
	}

	if handler != nil {
		handler.RegisterRoutes(e)
	}

	// Expose Prometheus metrics endpoint for scraping
	e.GET(cfg.MetricsPath, echo.WrapHandler(promhttp.Handler()))

	return &Server{
		echo:   e,
		config: cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	go func() {
		s.logInfo("http server listening", applogger.String("addr", addr))
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logError("http server error", applogger.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.logInfo("http server stopped")
	return nil
}

func (s *Server) logInfo(msg string, fields ...applogger.Field) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, fields...)
	}
}

func (s *Server) logError(msg string, fields ...applogger.Field) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, fields...)
	}
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// WithHost sets server host.
func WithHost(host string) ServerOption {
	return func(c *ServerConfig) {
		c.Host = host
	}
}

// WithPort sets server port.
func WithPort(port int) ServerOption {
	return func(c *ServerConfig) {
		c.Port = port
	}
}

// WithTimeouts sets read/write timeouts.
func WithTimeouts(read, write, shutdown time.Duration) ServerOption {
	return func(c *ServerConfig) {
		c.ReadTimeout = read
		c.WriteTimeout = write
		c.ShutdownTimeout = shutdown
	}
}

// WithCORS enables/disables CORS.
func WithCORS(enabled bool) ServerOption {
	return func(c *ServerConfig) {
		c.CORS = enabled
	}
}

// WithMetricsPath sets the Prometheus scrape path.
func WithMetricsPath(path string) ServerOption {
	return func(c *ServerConfig) {
		c.MetricsPath = path
	}
}

// WithLogger routes server and middleware logs through the app logger.
func WithLogger(l *applogger.Logger) ServerOption {
	return func(c *ServerConfig) {
		c.Logger = l
	}
}
