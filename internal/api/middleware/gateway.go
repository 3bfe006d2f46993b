package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ownerKey       = "user_id_str"
	anonymousOwner = "anonymous"
)

// GatewayAuth trusts user info from gateway headers (X-User-ID, X-User-Email, X-User-Role).
// The upstream gateway validates credentials; this service only records who owns each run.
//
// When AUTH_MODE=gateway, the API trusts these headers unconditionally.
// This should ONLY be used behind a gateway with proper network isolation.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Missing X-User-ID header from gateway",
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set(ownerKey, userID)
		c.Set("user_email", c.GetHeader("X-User-Email"))
		c.Set("user_role", c.GetHeader("X-User-Role"))

		c.Next()
	}
}

// Auth modes
const (
	AuthModeNone    = "none"
	AuthModeGateway = "gateway"
	AuthModeJWT     = "jwt"
)

// Auth picks the middleware for the configured auth mode. Unknown modes
// fall back to no auth.
func Auth(mode, jwtSecret string) gin.HandlerFunc {
	switch mode {
	case AuthModeGateway:
		return GatewayAuth()
	case AuthModeJWT:
		return JWTAuth(jwtSecret)
	default:
		return NoAuth()
	}
}

// Owner returns the caller identity stored on runs
func Owner(c *gin.Context) string {
	if owner := c.GetString(ownerKey); owner != "" {
		return owner
	}
	return anonymousOwner
}
