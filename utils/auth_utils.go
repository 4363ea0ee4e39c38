package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/models"
	"github.com/pothole-patrol/api-go/session"
)

type contextKey string

const SessionContextKey contextKey = "session"

// SetSession attaches the request's session store to the gin context.
func SetSession(c *gin.Context, store *session.Store) {
	c.Set(string(SessionContextKey), store)
}

func GetSession(c *gin.Context) *session.Store {
	v, exists := c.Get(string(SessionContextKey))
	if !exists {
		return nil
	}
	if store, ok := v.(*session.Store); ok {
		return store
	}
	return nil
}

// GetUser returns the signed-in profile, or nil.
func GetUser(c *gin.Context) *models.Profile {
	store := GetSession(c)
	if store == nil {
		return nil
	}
	return store.User()
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
