package handlers

import (
	"net/http"
	"strings"

	"github.com/Conceptual-Machines/reel-director/internal/llm"
	"github.com/gin-gonic/gin"
)

// MCPStatus reports the MCP server the agents are given, if any
func MCPStatus(mcpURL string) gin.HandlerFunc {
	mcpURL = strings.TrimSpace(mcpURL)
	return func(c *gin.Context) {
		if mcpURL == "" {
			c.JSON(http.StatusOK, gin.H{
				"enabled": false,
				"url":     "",
				"label":   "",
				"status":  "disabled",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"enabled": true,
			"url":     mcpURL,
			"label":   llm.MCPLabel(mcpURL),
			"status":  "enabled",
		})
	}
}
