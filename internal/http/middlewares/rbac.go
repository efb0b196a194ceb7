package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole gates a route on the role baked into the verified token.
// Only "admin" exists today, but the check keeps token reuse from any
// future non-admin role out of the admin surface.
func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "No token provided",
			})
			return
		}
		if role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin role required",
			})
			return
		}
		c.Next()
	}
}
