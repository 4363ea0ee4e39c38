// Package session authenticates clients and holds the signed-in profile for
// the duration of a client's interaction.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pothole-patrol/api-go/backend"
	"github.com/pothole-patrol/api-go/config"
	"github.com/pothole-patrol/api-go/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrEmailTaken         = errors.New("user already registered")
	ErrSessionExpired     = errors.New("session expired or signed out")
	ErrGoogleDisabled     = errors.New("google sign-in is not configured")
	ErrNotSignedIn        = errors.New("not signed in")
)

// ErrGoogleEmailUnverified is returned when a Google identity would be linked
// to an existing account through an email Google has not verified.
var ErrGoogleEmailUnverified = errors.New("google email is not verified")

const minPasswordLength = 6

// GoogleIdentifier resolves Google credentials into a Google account.
type GoogleIdentifier interface {
	Identify(ctx context.Context, cred config.GoogleCredential) (*config.GoogleUserInfo, error)
}

// Manager creates Stores and holds what they share: the backend, the token
// issuer and the session lifetime.
type Manager struct {
	backend    *backend.Backend
	tokens     *TokenIssuer
	ttl        time.Duration
	google     GoogleIdentifier
	log        *zap.Logger
	now        func() time.Time
	bcryptCost int
}

type Option func(*Manager)

func WithGoogle(g GoogleIdentifier) Option {
	return func(m *Manager) { m.google = g }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithBcryptCost(cost int) Option {
	return func(m *Manager) { m.bcryptCost = cost }
}

func NewManager(b *backend.Backend, tokens *TokenIssuer, ttl time.Duration, log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		backend:    b,
		tokens:     tokens,
		ttl:        ttl,
		log:        log,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewStore returns an empty, signed-out store.
func (m *Manager) NewStore() *Store {
	return &Store{mgr: m}
}

func (m *Manager) GoogleEnabled() bool {
	return m.google != nil
}

// startSession records a server-side session for the account and returns its
// ID and a signed token naming it.
func (m *Manager) startSession(ctx context.Context, accountID string) (string, string, error) {
	now := m.now()
	sess := &models.Session{
		ID:        uuid.NewString(),
		AccountID: accountID,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.backend.Sessions.CreateSession(ctx, sess); err != nil {
		return "", "", err
	}
	token, err := m.tokens.Issue(accountID, sess.ID, now, sess.ExpiresAt)
	if err != nil {
		return "", "", err
	}
	return sess.ID, token, nil
}

func (m *Manager) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), m.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// EmailRegistered reports whether an account already uses email.
func (m *Manager) EmailRegistered(ctx context.Context, email string) (bool, error) {
	_, err := m.backend.Accounts.AccountByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, backend.ErrNotFound):
		return false, nil
	}
	return false, err
}

// DeleteExpired removes sessions that ended before now.
func (m *Manager) DeleteExpired(ctx context.Context) (int64, error) {
	return m.backend.Sessions.DeleteExpiredSessions(ctx, m.now())
}
