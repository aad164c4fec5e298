package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"PricePulse/internal/domain/models"
	xhttp "PricePulse/pkg/http"
	xlogger "PricePulse/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type wsEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// WS serves the push transport over a WebSocket for clients that cannot
// consume server-sent events. Event semantics mirror the SSE stream.
func (h *LivePricingHandler) WS(c echo.Context) error {
	req := &models.StreamRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	h.metrics.StreamOpened()
	defer h.metrics.StreamClosed()

	// drain reads so peer close surfaces promptly
	peerGone := make(chan struct{})
	go func() {
		defer close(peerGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	lastTick := h.uc.CurrentTick()
	if err := conn.WriteJSON(wsEvent{Event: "connected", Data: map[string]interface{}{
		"tick":      lastTick,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}}); err != nil {
		return nil
	}

	ctx := c.Request().Context()
	ticker := time.NewTicker(h.cfg.Stream.PollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(h.cfg.Stream.MaxDuration)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-peerGone:
			return nil
		case <-deadline.C:
			_ = conn.WriteJSON(wsEvent{Event: "timeout", Data: map[string]interface{}{
				"reason": "max stream duration reached, reconnect",
				"tick":   lastTick,
			}})
			return nil
		case <-ticker.C:
			tick := h.uc.CurrentTick()
			if tick <= lastTick {
				continue
			}
			snap, err := h.uc.RunTick(ctx, req.Platform, req.Products, req.Demo, "ws")
			if err != nil {
				h.logger.Error("ws tick failed", xlogger.Error(err))
				continue
			}
			if len(snap.Updated) > 0 {
				if err := conn.WriteJSON(wsEvent{Event: "price_update", Data: snap}); err != nil {
					return nil
				}
			}
			if err := conn.WriteJSON(wsEvent{Event: "heartbeat", Data: map[string]interface{}{
				"tick":      snap.Tick,
				"timestamp": snap.Timestamp.Format(time.RFC3339),
			}}); err != nil {
				return nil
			}
			lastTick = snap.Tick
		}
	}
}
