package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/backend"
	"github.com/pothole-patrol/api-go/config"
	"github.com/pothole-patrol/api-go/realtime"
	"github.com/pothole-patrol/api-go/reports"
	"github.com/pothole-patrol/api-go/session"
	"go.uber.org/zap"
)

// statusFor maps a domain error onto an HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	var locErr *reports.LocationError
	switch {
	case errors.As(err, &locErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, reports.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, reports.ErrMissingImageOrLocation),
		errors.Is(err, reports.ErrMissingDescription),
		errors.Is(err, reports.ErrInvalidSeverity),
		errors.Is(err, reports.ErrInvalidCoordinates),
		errors.Is(err, reports.ErrUnsupportedImage),
		errors.Is(err, reports.ErrInvalidFilter),
		errors.Is(err, session.ErrMissingCredentials),
		errors.Is(err, session.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrInvalidCredentials),
		errors.Is(err, session.ErrSessionExpired),
		errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, session.ErrNotSignedIn),
		errors.Is(err, config.ErrGoogleTokenRejected):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrGoogleEmailUnverified):
		return http.StatusForbidden
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrEmailTaken),
		errors.Is(err, backend.ErrConflict),
		errors.Is(err, reports.ErrInvalidTransition),
		errors.Is(err, backend.ErrStaleStatus),
		errors.Is(err, backend.ErrInsufficientPoints):
		return http.StatusConflict
	case errors.Is(err, session.ErrGoogleDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, realtime.ErrHubClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		msg = "internal server error"
	}
	_ = c.Error(err)
	c.JSON(status, StandardResponse{Success: false, Error: msg})
}
