package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	applogger "PricePulse/pkg/logger"
)

// RequestLogging logs one structured line per HTTP request.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			err := next(c)

			if l != nil {
				l.Info("request",
					applogger.String("method", req.Method),
					applogger.String("uri", req.RequestURI),
					applogger.String("remote", req.RemoteAddr),
					applogger.Int("status", res.Status),
					applogger.Duration("latency", time.Since(start)),
				)
			}

			return err
		}
	}
}
