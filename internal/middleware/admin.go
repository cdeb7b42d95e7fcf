package middleware

import (
	"net/http"

	"merit/internal/domain"

	"github.com/gin-gonic/gin"
)

// AdminOnly rejects requests whose token does not carry the admin role.
// Must run after Authenticated.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorRole(c) != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
