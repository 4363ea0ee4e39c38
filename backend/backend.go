// Package backend is the configured handle to everything the application
// persists: accounts, sessions, profiles, reports and uploaded images.
package backend

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/pothole-patrol/api-go/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
	// ErrStaleStatus is returned when a conditional status update finds the
	// report in a different status than the caller expected.
	ErrStaleStatus = errors.New("report status changed concurrently")
	// ErrInsufficientPoints is returned when a deduction would take a balance below zero.
	ErrInsufficientPoints = errors.New("insufficient points")
)

type AccountStore interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	AccountByID(ctx context.Context, id string) (*models.Account, error)
	AccountByEmail(ctx context.Context, email string) (*models.Account, error)
	AccountByGoogleID(ctx context.Context, googleID string) (*models.Account, error)
	LinkGoogleID(ctx context.Context, accountID, googleID string) error
}

type SessionStore interface {
	CreateSession(ctx context.Context, session *models.Session) error
	Session(ctx context.Context, id string) (*models.Session, error)
	RevokeSession(ctx context.Context, id string, at time.Time) error
	// DeleteExpiredSessions removes sessions that expired or were revoked
	// before the given time and returns how many were removed.
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

type ProfileStore interface {
	CreateProfile(ctx context.Context, profile *models.Profile) error
	Profile(ctx context.Context, id string) (*models.Profile, error)
	ProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	// AddPoints atomically adds delta to the balance and returns the new
	// balance. A negative delta fails with ErrInsufficientPoints instead of
	// going below zero.
	AddPoints(ctx context.Context, id string, delta int64) (int64, error)
	SetAdmin(ctx context.Context, id string, admin bool) error
}

// ListOptions narrows a report listing. The zero value lists everything.
type ListOptions struct {
	Status models.ReportStatus
	Limit  int
}

type ReportStore interface {
	InsertReport(ctx context.Context, report *models.Report) error
	Report(ctx context.Context, id string) (*models.Report, error)
	// ListReports returns reports newest first.
	ListReports(ctx context.Context, opts ListOptions) ([]models.Report, error)
	// TransitionStatus moves a report from one status to another only if it
	// is still in the from status; otherwise it returns ErrStaleStatus.
	TransitionStatus(ctx context.Context, id string, from, to models.ReportStatus) (*models.Report, error)
}

// ObjectStorage holds uploaded images behind public URLs. Put returns the
// public URL of the stored object.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	PublicURL(key string) string
}

type Backend struct {
	Accounts AccountStore
	Sessions SessionStore
	Profiles ProfileStore
	Reports  ReportStore
	Storage  ObjectStorage
}
