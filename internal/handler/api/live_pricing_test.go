package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PricePulse/internal/domain/models"
	"PricePulse/internal/pricing"
	xrepo "PricePulse/internal/repository"
	"PricePulse/internal/service/marketplace"
	"PricePulse/internal/signals"
	"PricePulse/internal/usecase"
	"PricePulse/pkg/cache"
	"PricePulse/pkg/config"
	xlogger "PricePulse/pkg/logger"
)

func newTestHandler(t *testing.T) (*LivePricingHandler, *echo.Echo) {
	t.Helper()

	cfg := config.Default()
	cfg.Stream.PollInterval = 10 * time.Millisecond
	cfg.Stream.MaxDuration = 150 * time.Millisecond

	mem := cache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })

	logger, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)

	store := xrepo.NewCacheStateStore(mem, time.Minute)
	clock := pricing.NewClock(cfg.Pricing.TickQuantum)
	engine := pricing.NewEngine(cfg.Pricing)
	sim := pricing.NewSimulator(cfg.Pricing, clock, store, engine)
	catalog := xrepo.NewMockCatalog(cfg.Signals.Platforms, 30)
	agg := signals.NewAggregator(cfg.Signals,
		marketplace.NewClients(cfg.Signals.Platforms),
		xrepo.NewCacheSignalCache(mem, time.Minute),
	)
	uc := usecase.NewLivePricing(cfg, sim, engine, catalog, store, agg)

	h := NewLivePricingHandler(logger, uc, cfg, nil)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func doRequest(e *echo.Echo, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var envelope struct {
		Status int             `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, http.StatusOK, envelope.Status)
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func TestPollEndpointReturnsDelta(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doRequest(e, http.MethodGet, "/api/live-pricing/poll?since_tick=0&products=20", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.PollResponse
	decodeData(t, rec, &resp)
	assert.True(t, resp.HasUpdates)
	assert.NotEmpty(t, resp.Products)
	assert.Greater(t, resp.Tick, int64(0))
}

func TestPollEndpointNoOpAtCurrentTick(t *testing.T) {
	h, e := newTestHandler(t)

	current := h.uc.CurrentTick()
	rec := doRequest(e, http.MethodGet, "/api/live-pricing/poll?since_tick="+strconv.FormatInt(current, 10), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.PollResponse
	decodeData(t, rec, &resp)
	assert.False(t, resp.HasUpdates)
	assert.Empty(t, resp.Products)
}

func TestPollEndpointRejectsOversizedCap(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doRequest(e, http.MethodGet, "/api/live-pricing/poll?products=500", "")
	var envelope struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusBadRequest, envelope.Status)
}

func TestStatusEndpoint(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doRequest(e, http.MethodGet, "/api/live-pricing/status", "")
	var resp models.StatusResponse
	decodeData(t, rec, &resp)
	assert.True(t, resp.Enabled)
	assert.Equal(t, 3000, resp.TickQuantumMS)
}

func TestToggleEndpoint(t *testing.T) {
	h, e := newTestHandler(t)

	rec := doRequest(e, http.MethodPost, "/api/live-pricing/toggle", `{"enabled":false}`)
	var resp models.StatusResponse
	decodeData(t, rec, &resp)
	assert.False(t, resp.Enabled)
	assert.False(t, h.uc.Enabled())

	doRequest(e, http.MethodPost, "/api/live-pricing/toggle", `{"enabled":true}`)
	assert.True(t, h.uc.Enabled())
}

func TestToggleEndpointRequiresBody(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doRequest(e, http.MethodPost, "/api/live-pricing/toggle", `{}`)
	var envelope struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusBadRequest, envelope.Status)
}

func TestSignalsEndpoint(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doRequest(e, http.MethodGet, "/api/live-pricing/signals?q=usb+hub", "")
	var stats models.MarketStats
	decodeData(t, rec, &stats)
	assert.Equal(t, "usb hub", stats.Query)
	assert.Greater(t, stats.SampleSize, 0)
	assert.Len(t, stats.Platforms, 3)
}

func TestSignalsEndpointRequiresQuery(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doRequest(e, http.MethodGet, "/api/live-pricing/signals", "")
	var envelope struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusBadRequest, envelope.Status)
}

func TestExplainEndpoint(t *testing.T) {
	h, e := newTestHandler(t)

	products, err := xrepo.NewMockCatalog(h.cfg.Signals.Platforms, 30).
		Products(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "shopee", 1)
	require.NoError(t, err)

	rec := doRequest(e, http.MethodGet, "/api/live-pricing/explain/shopee/"+products[0].ID, "")
	var ex models.Explanation
	decodeData(t, rec, &ex)
	assert.Equal(t, products[0].ID, ex.ProductID)
	assert.NotEmpty(t, ex.Rationale)
	assert.GreaterOrEqual(t, ex.RecommendedPrice, ex.FloorPrice-1e-9)
}

func TestExplainEndpointUnknownProduct(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doRequest(e, http.MethodGet, "/api/live-pricing/explain/shopee/nope", "")
	var envelope struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusNotFound, envelope.Status)
}

func TestHealthzEndpoint(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doRequest(e, http.MethodGet, "/healthz", "")
	var health map[string]interface{}
	decodeData(t, rec, &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "ok", health["scorer"]) // no scorer configured, formula path is healthy
}

func TestStreamEmitsConnectedAndTimeout(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doRequest(e, http.MethodGet, "/api/live-pricing/stream?products=10", "")
	body := rec.Body.String()

	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/event-stream")
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, "event: timeout")
	assert.Contains(t, body, "retry: 3000")
}

func TestWSEmitsConnected(t *testing.T) {
	_, e := newTestHandler(t)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live-pricing/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev struct {
		Event string `json:"event"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "connected", ev.Event)
}
