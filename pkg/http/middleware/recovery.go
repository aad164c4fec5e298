package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	applogger "PricePulse/pkg/logger"
)

// Recover returns recovery middleware. Panics are logged with the stack
// and converted into a 500 response.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					if l != nil {
						l.Error("panic recovered",
							applogger.String("path", c.Request().RequestURI),
							applogger.Error(err),
							applogger.String("stack", string(debug.Stack())),
						)
					}
					_ = c.JSON(http.StatusInternalServerError, map[string]interface{}{
						"status":  http.StatusInternalServerError,
						"message": "Internal Server Error",
					})
				}
			}()
			return next(c)
		}
	}
}
