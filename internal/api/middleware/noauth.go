package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoAuth is a pass-through middleware for when AUTH_MODE=none.
// Every run is owned by the anonymous user.
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", anonymousOwner)
		c.Set(ownerKey, anonymousOwner)
		c.Next()
	}
}
