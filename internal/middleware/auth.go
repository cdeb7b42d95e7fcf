package middleware

import (
	"net/http"
	"strings"

	"merit/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "actor_id"
	ctxEmail  = "actor_email"
	ctxRole   = "actor_role"
)

// Authenticated verifies the bearer token and stores the actor's identity on
// the request context for downstream handlers.
func Authenticated(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := tokens.VerifyAccess(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}

// ActorID returns the authenticated user's id, or 0 when unauthenticated.
func ActorID(c *gin.Context) uint {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// ActorRole returns the authenticated user's role, or "".
func ActorRole(c *gin.Context) string {
	if v, ok := c.Get(ctxRole); ok {
		if r, ok := v.(string); ok {
			return r
		}
	}
	return ""
}
