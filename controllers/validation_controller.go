package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/session"
	"go.uber.org/zap"
)

type ValidationController struct {
	Sessions *session.Manager
	Log      *zap.Logger
}

func NewValidationController(sessions *session.Manager, log *zap.Logger) *ValidationController {
	return &ValidationController{Sessions: sessions, Log: log}
}

// ValidateEmail reports whether an account already uses the email.
func (vc *ValidationController) ValidateEmail(c *gin.Context) {
	email := c.Param("email")

	exists, err := vc.Sessions.EmailRegistered(c.Request.Context(), email)
	if err != nil {
		vc.Log.Error("email check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to check email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "exists": exists, "available": !exists})
}
