package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"KryptoPulse/internal/domain/models"
	xhttp "KryptoPulse/pkg/http"
	applogger "KryptoPulse/pkg/logger"
)

const (
	defaultPushInterval = 10 * time.Second
	minPushInterval     = 5 * time.Second
	streamWriteTimeout  = 10 * time.Second
)

// Origin policy is enforced by the CORS middleware for the REST routes; the
// upgrade itself accepts any origin.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Stream upgrades to a WebSocket and pushes price snapshots at a fixed
// interval until the client disconnects. Resolution goes through the same
// resolver and cache as the REST routes, so steady-state pushes are cache
// hits.
func (h *MarketHandler) Stream(c echo.Context) error {
	ids := xhttp.SplitCSV(c.QueryParam("ids"))
	if len(ids) == 0 {
		return xhttp.BadRequestResponse(c, "ids is required")
	}
	vs := quoteCurrency(c)

	interval := h.pushInterval
	if interval <= 0 {
		interval = defaultPushInterval
	}
	if sec := xhttp.ParseIntDefault(c.QueryParam("interval"), 0); sec > 0 {
		interval = time.Duration(sec) * time.Second
	}
	if interval < minPushInterval {
		interval = minPushInterval
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()
	h.logger.Info("stream opened",
		applogger.Strings("ids", ids),
		applogger.String("vs", vs),
		applogger.Duration("interval", interval),
	)

	// Reader goroutine only to observe the close frame.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		rate, err := h.fx.Rate(ctx, vs)
		if err != nil {
			h.logger.Warn("stream fx lookup failed", applogger.Error(err))
			rate = 0
		}

		snapshot := models.StreamSnapshot{
			TS:     time.Now().UnixMilli(),
			VS:     vs,
			Prices: make(map[string]interface{}, len(ids)),
		}
		for id, res := range h.resolver.ResolveSpotBatch(ctx, ids) {
			if res.Err != nil || rate == 0 {
				snapshot.Prices[id] = nil
				continue
			}
			snapshot.Prices[id] = res.Price * rate
		}

		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(snapshot); err != nil {
			h.logger.Info("stream closed", applogger.Error(err))
			return nil
		}

		select {
		case <-ticker.C:
		case <-done:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
