package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"antigravity/internal/bus"
	"antigravity/internal/engine"
	"antigravity/internal/repository"
)

// MonitorHandler serves the dashboard: the live event stream plus REST
// readouts over the engine and the sinks.
type MonitorHandler struct {
	Engine *engine.Engine
	Repo   repository.Repository
	Bus    *bus.Bus
	Logger *zap.Logger
}

func (h *MonitorHandler) Register(r *gin.Engine) {
	r.GET("/ws/monitor", h.stream)

	group := r.Group("/api/monitor")
	group.GET("/position", h.position)
	group.GET("/history", h.history)
	group.GET("/stats", h.stats)
	group.GET("/risk-events", h.riskEvents)
	group.GET("/strategy-log", h.strategyLog)
	group.GET("/candles", h.candles)
}

const (
	wsWriteTimeout  = 5 * time.Second
	maxMonitorLimit = 500
)

// stream upgrades to a websocket, sends one SNAPSHOT and then relays bus
// events until the client goes away. Subscribing before the snapshot is
// built means anything published in between is queued, not lost.
func (h *MonitorHandler) stream(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Debug("ws accept failed", zap.Error(err))
		}
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	id, events := h.Bus.Subscribe()
	defer h.Bus.Unsubscribe(id)

	snap := bus.Snapshot(map[string]any{
		"strategy": h.Engine.Strategy(),
		"position": h.Engine.Position(),
		"risk":     h.Engine.RiskState(),
		"stats":    h.Engine.Stats(),
	})

	ctx := conn.CloseRead(c.Request.Context())
	if err := writeEvent(ctx, conn, snap); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := writeEvent(ctx, conn, ev); err != nil {
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, ev bus.Event) error {
	wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, ev.Data)
}

func (h *MonitorHandler) position(c *gin.Context) {
	Ok(c, h.Engine.Position(), nil)
}

func (h *MonitorHandler) history(c *gin.Context) {
	limit := clampLimit(intQuery(c, "limit", 100))
	items, err := h.Repo.ListTradeRecords(c.Request.Context(), repository.ListTradeRecordsParams{
		Limit:  limit,
		Status: strings.TrimSpace(c.Query("status")),
		Symbol: strings.TrimSpace(c.Query("symbol")),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"limit": limit, "count": len(items)})
}

func (h *MonitorHandler) stats(c *gin.Context) {
	trades, err := h.Repo.TradeStats(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{
		"trades": trades,
		"engine": h.Engine.Stats(),
		"bus": gin.H{
			"subscribers":    h.Bus.Subscribers(),
			"events_dropped": h.Bus.Dropped(),
		},
	}, nil)
}

func (h *MonitorHandler) riskEvents(c *gin.Context) {
	limit := clampLimit(intQuery(c, "limit", 50))
	items, err := h.Repo.ListRiskEvents(c.Request.Context(), limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"limit": limit, "count": len(items)})
}

func (h *MonitorHandler) strategyLog(c *gin.Context) {
	limit := clampLimit(intQuery(c, "limit", 50))
	items, err := h.Repo.ListStrategyLog(c.Request.Context(), repository.ListStrategyLogParams{
		Limit:      limit,
		StrategyID: strings.TrimSpace(c.Query("strategy_id")),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"limit": limit, "count": len(items)})
}

func (h *MonitorHandler) candles(c *gin.Context) {
	limit := intQuery(c, "limit", 60)
	Ok(c, h.Engine.Candles(limit), nil)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > maxMonitorLimit {
		return maxMonitorLimit
	}
	return limit
}
