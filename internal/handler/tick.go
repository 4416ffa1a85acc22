package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"antigravity/internal/engine"
	"antigravity/internal/models"
)

// TickHandler is the bridge-facing surface. The terminal posts every
// quote to /tick and obeys the action in the reply.
type TickHandler struct {
	Engine *engine.Engine
}

func (h *TickHandler) Register(r *gin.Engine) {
	group := r.Group("/api/mt5")
	group.POST("/tick", h.ingest)
	group.GET("/health", h.health)
}

type tickResponse struct {
	Action       string              `json:"action"`
	Reason       string              `json:"reason,omitempty"`
	Fire         *engine.FireDetails `json:"fire,omitempty"`
	BrokerTicket int64               `json:"broker_ticket,omitempty"`
}

func (h *TickHandler) ingest(c *gin.Context) {
	var tick models.Tick
	if err := c.ShouldBindJSON(&tick); err != nil {
		Error(c, http.StatusBadRequest, "invalid tick payload: "+err.Error(), nil)
		return
	}
	if err := tick.Validate(); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if tick.Time.IsZero() {
		tick.Time = time.Now().UTC()
	}

	out := h.Engine.OnTick(c.Request.Context(), tick)
	Ok(c, tickResponse{
		Action:       out.Action,
		Reason:       out.Reason,
		Fire:         out.Fire,
		BrokerTicket: out.BrokerTicket,
	}, nil)
}

// health stays open so the terminal can poll it before authenticating.
func (h *TickHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"server_time": time.Now().UTC().Format(time.RFC3339),
	})
}
