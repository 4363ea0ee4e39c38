package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/session"
	"github.com/pothole-patrol/api-go/utils"
)

// AuthMiddleware restores the bearer token's session and rejects the request
// when there is none or it has been revoked.
func AuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authorization header is required"})
			return
		}

		token, ok := utils.BearerToken(authHeader)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token format"})
			return
		}

		store := sessions.NewStore()
		if err := store.Restore(c.Request.Context(), token); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token"})
			return
		}

		utils.SetSession(c, store)
		c.Next()
	}
}

// OptionalAuthMiddleware always attaches a store; it is signed in only when a
// valid bearer token was sent.
func OptionalAuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := sessions.NewStore()
		if token, ok := utils.BearerToken(c.GetHeader("Authorization")); ok {
			// an invalid token leaves the store signed out
			_ = store.Restore(c.Request.Context(), token)
		}
		utils.SetSession(c, store)
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := utils.GetUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not found in context"})
			return
		}
		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Admin access required"})
			return
		}
		c.Next()
	}
}
