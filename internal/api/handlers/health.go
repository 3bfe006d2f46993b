package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const healthPingTimeout = 2 * time.Second

// Pinger checks a backing service. database.RunStore implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	mcpURL string
}

func NewHealthHandler(db Pinger, mcpURL string) *HealthHandler {
	return &HealthHandler{db: db, mcpURL: strings.TrimSpace(mcpURL)}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	mcpStatus := "disabled"
	if h.mcpURL != "" {
		mcpStatus = "enabled"
	}

	status, code := "healthy", http.StatusOK
	database := gin.H{"status": "ok"}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
			database = gin.H{"status": "error", "error": err.Error()}
		}
	}

	c.JSON(code, gin.H{
		"status":   status,
		"database": database,
		"mcp_server": gin.H{
			"status": mcpStatus,
			"url":    h.mcpURL,
		},
	})
}
