package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"antigravity/internal/engine"
)

// PositionHandler ingests broker-side close reports. The terminal posts
// here when TP, SL or a manual action closed the ticket.
type PositionHandler struct {
	Engine *engine.Engine
}

func (h *PositionHandler) Register(r *gin.Engine) {
	r.POST("/api/position/close", h.close)
}

func (h *PositionHandler) close(c *gin.Context) {
	var n engine.CloseNotice
	if err := c.ShouldBindJSON(&n); err != nil {
		Error(c, http.StatusBadRequest, "invalid close payload: "+err.Error(), nil)
		return
	}
	if strings.TrimSpace(n.Symbol) == "" {
		Error(c, http.StatusBadRequest, "symbol is required", nil)
		return
	}

	matched := h.Engine.OnPositionClose(c.Request.Context(), n)
	Ok(c, gin.H{"matched": matched}, nil)
}
