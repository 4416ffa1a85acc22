package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler serves the process probes. Liveness is unconditional; the
// engine itself is in-memory and cannot go unhealthy, so readiness reduces
// to whether the trade sinks' database answers a ping.
type HealthHandler struct {
	DB *gorm.DB
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "antigravity"})
}

func (h *HealthHandler) ready(c *gin.Context) {
	if err := h.pingDB(c); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *HealthHandler) pingDB(c *gin.Context) error {
	if h.DB == nil {
		return errors.New("database handle not configured")
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(c.Request.Context())
}
