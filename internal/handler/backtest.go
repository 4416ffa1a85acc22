package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"antigravity/internal/backtest"
)

// BacktestHandler replays recorded ticks through the confirmation filter
// without touching the live engine.
type BacktestHandler struct {
	Runner *backtest.Runner
}

func (h *BacktestHandler) Register(r *gin.Engine) {
	r.POST("/api/backtest/run", h.run)
}

func (h *BacktestHandler) run(c *gin.Context) {
	var req backtest.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid backtest payload: "+err.Error(), nil)
		return
	}

	res, err := h.Runner.Run(req)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	Ok(c, res, nil)
}
