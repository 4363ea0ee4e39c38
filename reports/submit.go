// Package reports holds the pothole report flows: submission, listing and
// the admin status lifecycle.
package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pothole-patrol/api-go/backend"
	"github.com/pothole-patrol/api-go/models"
	"github.com/pothole-patrol/api-go/session"
	"github.com/pothole-patrol/api-go/types"
	"go.uber.org/zap"
)

var (
	ErrMissingImageOrLocation = errors.New("Please provide both an image and location")
	ErrMissingDescription     = errors.New("description is required")
	ErrInvalidSeverity        = errors.New("severity must be one of low, medium, high")
	ErrInvalidCoordinates     = errors.New("coordinates are out of range")
	ErrUnsupportedImage       = errors.New("invalid file type. Only JPEG, PNG, WebP and HEIC images are allowed")
	ErrImageTooLarge          = errors.New("file size too large. Maximum size is 10MB")
)

// Upload is a photo attached to a submission.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Location struct {
	Latitude  float64
	Longitude float64
}

type SubmitInput struct {
	Description string
	Severity    models.Severity
	Image       *Upload
	Location    *Location
}

type SubmitResult struct {
	Report        *models.Report `json:"report"`
	PointsAwarded int64          `json:"points_awarded"`
	Balance       int64          `json:"balance"`
	Message       string         `json:"message"`
}

// Publisher receives report events once they are persisted.
type Publisher interface {
	Publish(ctx context.Context, eventType string, report *models.Report)
}

const (
	EventReportCreated       = "report.created"
	EventReportStatusChanged = "report.status_changed"
)

// Submitter turns a validated submission into a stored image, a report row
// and, for signed-in users, a point reward.
type Submitter struct {
	backend   *backend.Backend
	publisher Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewSubmitter(b *backend.Backend, publisher Publisher, log *zap.Logger) *Submitter {
	return &Submitter{backend: b, publisher: publisher, log: log, now: time.Now}
}

// Validate checks a submission without touching the backend.
func Validate(in SubmitInput) error {
	if in.Image == nil || in.Location == nil {
		return ErrMissingImageOrLocation
	}
	if strings.TrimSpace(in.Description) == "" {
		return ErrMissingDescription
	}
	if !in.Severity.Valid() {
		return ErrInvalidSeverity
	}
	if in.Location.Latitude < -90 || in.Location.Latitude > 90 ||
		in.Location.Longitude < -180 || in.Location.Longitude > 180 {
		return ErrInvalidCoordinates
	}
	if !types.IsAllowedImageType(in.Image.ContentType) {
		return ErrUnsupportedImage
	}
	if in.Image.Size > types.MAX_IMAGE_SIZE {
		return ErrImageTooLarge
	}
	return nil
}

// Submit stores the report on behalf of the user held by store, which may be
// nil or signed out. A failed step aborts the rest; an image uploaded before
// the failure stays in storage.
func (s *Submitter) Submit(ctx context.Context, store *session.Store, in SubmitInput) (*SubmitResult, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	key := ImageKey(s.now(), in.Image.Name)
	url, err := s.backend.Storage.Put(ctx, key, in.Image.ContentType, in.Image.Body, in.Image.Size)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	var user *models.Profile
	if store != nil {
		user = store.User()
	}

	report := &models.Report{
		Latitude:    in.Location.Latitude,
		Longitude:   in.Location.Longitude,
		Description: strings.TrimSpace(in.Description),
		Severity:    in.Severity,
		Status:      models.StatusReported,
		ImageURL:    url,
		ImageKey:    key,
	}
	if user != nil {
		id := user.ID
		report.UserID = &id
	}
	if err := s.backend.Reports.InsertReport(ctx, report); err != nil {
		s.log.Warn("orphaned report image", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("insert report: %w", err)
	}

	result := &SubmitResult{Report: report}
	if user != nil && !user.IsAnonymous() {
		balance, err := s.backend.Profiles.AddPoints(ctx, user.ID, types.REPORT_REWARD_POINTS)
		if err != nil {
			return nil, fmt.Errorf("award points: %w", err)
		}
		store.UpdateUser(session.ProfilePatch{Points: &balance})
		result.PointsAwarded = types.REPORT_REWARD_POINTS
		result.Balance = balance
		result.Message = fmt.Sprintf("Report Successfully Submitted! You now have %d points.", balance)
	} else {
		if user != nil {
			result.Balance = user.Points
		}
		result.Message = "Report Successfully Submitted! However, anonymous users don't earn points."
	}

	s.log.Info("report submitted",
		zap.String("report_id", report.ID),
		zap.String("severity", string(report.Severity)),
		zap.Int64("points_awarded", result.PointsAwarded),
	)
	if s.publisher != nil {
		s.publisher.Publish(ctx, EventReportCreated, report)
	}
	return result, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ImageKey names an upload "<unix millis>-<file name>" with the file name
// reduced to characters that are safe in a URL path.
func ImageKey(at time.Time, name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeKeyChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%d-%s", at.UnixMilli(), base)
}
