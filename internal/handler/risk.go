package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"antigravity/internal/config"
	"antigravity/internal/engine"
)

// RiskHandler exposes the governor: manual kill, rearm and the state
// readout the dashboard polls.
type RiskHandler struct {
	Engine *engine.Engine
	Limits config.RiskConfig
}

func (h *RiskHandler) Register(r *gin.Engine) {
	group := r.Group("/api/risk")
	group.POST("/kill", h.kill)
	group.POST("/rearm", h.rearm)
	group.GET("/status", h.status)
}

type killRequest struct {
	Reason string `json:"reason"`
}

func (h *RiskHandler) kill(c *gin.Context) {
	var req killRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		Error(c, http.StatusBadRequest, "invalid kill payload: "+err.Error(), nil)
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "manual"
	}

	Ok(c, h.Engine.Kill(c.Request.Context(), reason), nil)
}

func (h *RiskHandler) rearm(c *gin.Context) {
	Ok(c, h.Engine.Rearm(c.Request.Context()), nil)
}

func (h *RiskHandler) status(c *gin.Context) {
	Ok(c, gin.H{
		"state": h.Engine.RiskState(),
		"limits": gin.H{
			"max_trades_per_day":    h.Limits.MaxTradesPerDay,
			"max_consecutive_fails": h.Limits.MaxConsecutiveFails,
			"cooldown_secs":         h.Limits.CooldownSecs,
		},
	}, nil)
}
