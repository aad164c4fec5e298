package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"PricePulse/internal/domain/models"
	domrepo "PricePulse/internal/domain/repository"
	"PricePulse/internal/usecase"
	"PricePulse/pkg/config"
	xhttp "PricePulse/pkg/http"
	xlogger "PricePulse/pkg/logger"
)

// LivePricingHandler exposes the pricing engine over HTTP: a long-lived
// SSE stream, a stateless delta poll, market signals, explain, and the
// operator status/toggle surface.
type LivePricingHandler struct {
	logger  *xlogger.Logger
	uc      *usecase.LivePricing
	cfg     *config.Config
	metrics domrepo.Metrics
}

// NewLivePricingHandler creates the live pricing HTTP handler.
func NewLivePricingHandler(logger *xlogger.Logger, uc *usecase.LivePricing, cfg *config.Config, metrics domrepo.Metrics) *LivePricingHandler {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	return &LivePricingHandler{logger: logger, uc: uc, cfg: cfg, metrics: metrics}
}

func (h *LivePricingHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/live-pricing")
	g.GET("/stream", h.Stream)
	g.GET("/ws", h.WS)
	g.GET("/poll", h.Poll)
	g.GET("/signals", h.Signals)
	g.GET("/status", h.Status)
	g.POST("/toggle", h.Toggle)
	g.GET("/explain/:platform/:id", h.Explain)
	e.GET("/healthz", h.Healthz)
}

// Stream serves the push transport as server-sent events. One connection
// emits a price_update (when non-empty) plus a heartbeat per advanced
// tick, at a sub-tick check cadence, until the peer leaves or the max
// lifetime elapses.
func (h *LivePricingHandler) Stream(c echo.Context) error {
	req := &models.StreamRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	h.metrics.StreamOpened()
	defer h.metrics.StreamClosed()

	retry := h.cfg.Stream.RetryMS
	lastTick := h.uc.CurrentTick()
	h.writeEvent(res, retry, "connected", map[string]interface{}{
		"tick":      lastTick,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	res.Flush()

	ctx := c.Request().Context()
	ticker := time.NewTicker(h.cfg.Stream.PollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(h.cfg.Stream.MaxDuration)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			// peer disconnect ends the loop silently
			return nil
		case <-deadline.C:
			h.writeEvent(res, retry, "timeout", map[string]interface{}{
				"reason": "max stream duration reached, reconnect",
				"tick":   lastTick,
			})
			res.Flush()
			return nil
		case <-ticker.C:
			tick := h.uc.CurrentTick()
			if tick <= lastTick {
				continue
			}
			snap, err := h.uc.RunTick(ctx, req.Platform, req.Products, req.Demo, "stream")
			if err != nil {
				h.logger.Error("stream tick failed", xlogger.Error(err))
				continue
			}
			if len(snap.Updated) > 0 {
				h.writeEvent(res, retry, "price_update", snap)
			}
			h.writeEvent(res, retry, "heartbeat", map[string]interface{}{
				"tick":      snap.Tick,
				"timestamp": snap.Timestamp.Format(time.RFC3339),
			})
			res.Flush()
			lastTick = snap.Tick
		}
	}
}

// Poll serves the stateless pull transport.
func (h *LivePricingHandler) Poll(c echo.Context) error {
	req := &models.PollRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	resp, err := h.uc.Poll(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("poll failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, resp)
}

// Signals returns the aggregated market view for a query.
func (h *LivePricingHandler) Signals(c echo.Context) error {
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	stats, err := h.uc.Signals(c.Request().Context(), req.Query)
	if err != nil {
		h.logger.Error("signals failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, stats)
}

// Explain returns the recommendation breakdown for one product.
func (h *LivePricingHandler) Explain(c echo.Context) error {
	platform := c.Param("platform")
	id := c.Param("id")
	if platform == "" || id == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("platform and id are required"))
	}

	ex, err := h.uc.Explain(c.Request().Context(), platform, id)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, ex)
}

// Status reports the engine state for operators.
func (h *LivePricingHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.uc.Status())
}

// Toggle switches the simulation on or off.
func (h *LivePricingHandler) Toggle(c echo.Context) error {
	req := &models.ToggleRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	h.uc.SetEnabled(*req.Enabled)
	return xhttp.SuccessResponse(c, h.uc.Status())
}

// Healthz reports liveness. A failing remote scorer degrades the report
// but never fails it: the formula path keeps the engine serviceable.
func (h *LivePricingHandler) Healthz(c echo.Context) error {
	scorerState := "ok"
	if err := h.uc.ScorerHealth(c.Request().Context()); err != nil {
		scorerState = "degraded"
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status": "ok",
		"scorer": scorerState,
		"tick":   h.uc.CurrentTick(),
	})
}

func (h *LivePricingHandler) writeEvent(w io.Writer, retryMS int, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("event marshal failed", xlogger.Error(err))
		return
	}
	fmt.Fprintf(w, "retry: %d\nevent: %s\ndata: %s\n\n", retryMS, event, data)
}
