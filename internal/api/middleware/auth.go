// Package middleware provides gin middleware for authentication and
// request throttling.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecocampus/eco-challenge/internal/auth"
	"github.com/ecocampus/eco-challenge/internal/models"
)

// Context keys populated by AuthRequired.
const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "role"
)

// AuthRequired ensures the request carries a valid bearer token and stores
// the caller's identity in the gin context.
func AuthRequired(manager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "authorization header missing")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := manager.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// AdminRequired gates a route group to admin accounts. Must run after
// AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRoleKey) != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"error":     "admin access required",
				"timestamp": time.Now().UTC(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user ID from the gin context.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
	c.Abort()
}
