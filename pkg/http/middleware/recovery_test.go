package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "PricePulse/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return l
}

func TestRecoverConvertsPanicTo500(t *testing.T) {
	e := echo.New()
	e.Use(Recover(testLogger(t)))
	e.GET("/boom", func(echo.Context) error {
		panic("kaput")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestRecoverNilLogger(t *testing.T) {
	e := echo.New()
	e.Use(Recover(nil))
	e.GET("/boom", func(echo.Context) error {
		panic("kaput")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestLoggingPassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogging(testLogger(t)))
	e.GET("/ok", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
