package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// openPaths are reachable without credentials: process probes and the
// terminal's liveness poll.
var openPaths = map[string]struct{}{
	"/healthz":        {},
	"/readyz":         {},
	"/api/mt5/health": {},
}

func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-API-Key")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// APIKeyAuth rejects requests whose X-API-Key does not match the
// configured key. An empty key disables the check.
func APIKeyAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		if _, open := openPaths[c.Request.URL.Path]; open {
			c.Next()
			return
		}
		if c.GetHeader("X-API-Key") != key {
			Error(c, http.StatusUnauthorized, "invalid api key", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
