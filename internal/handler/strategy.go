package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"antigravity/internal/engine"
	"antigravity/internal/models"
)

// StrategyHandler ingests plans from the decision layer and exposes the
// armed slot.
type StrategyHandler struct {
	Engine *engine.Engine
}

func (h *StrategyHandler) Register(r *gin.Engine) {
	group := r.Group("/api/brain")
	group.POST("/strategy", h.ingest)
	group.GET("/strategy", h.current)
	group.DELETE("/strategy", h.clear)
}

func (h *StrategyHandler) ingest(c *gin.Context) {
	var s models.ActiveStrategy
	if err := c.ShouldBindJSON(&s); err != nil {
		Error(c, http.StatusBadRequest, "invalid strategy payload: "+err.Error(), nil)
		return
	}
	if s.StrategyID == "" {
		s.StrategyID = uuid.NewString()
	}

	outcome, err := h.Engine.SetStrategy(c.Request.Context(), s)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	data := gin.H{"result": outcome, "strategy_id": s.StrategyID}
	if outcome == engine.ArmAccepted || outcome == engine.ArmReplaced {
		Created(c, data, nil)
		return
	}
	Ok(c, data, nil)
}

func (h *StrategyHandler) current(c *gin.Context) {
	s := h.Engine.Strategy()
	if s == nil {
		Error(c, http.StatusNotFound, "no strategy armed", nil)
		return
	}
	Ok(c, s, nil)
}

func (h *StrategyHandler) clear(c *gin.Context) {
	cleared := h.Engine.ClearStrategy(c.Request.Context())
	Ok(c, gin.H{"cleared": cleared}, nil)
}
