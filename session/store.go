package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"sync"

	"github.com/pothole-patrol/api-go/backend"
	"github.com/pothole-patrol/api-go/config"
	"github.com/pothole-patrol/api-go/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	avatarBaseURL      = "https://avatar.iran.liara.run/public/boy?username="
	anonymousAvatar    = "/components/User.jpg"
	anonymousDomain    = "@example.com"
	anonymousPassChars = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// ProfilePatch lists the profile fields UpdateUser may overwrite. Nil fields
// are left alone.
type ProfilePatch struct {
	Email        *string
	Points       *int64
	IsAdmin      *bool
	ProfileImage *string
}

// Store is one client's view of its session: the signed-in profile, whether
// an operation is in flight and the last error. It is safe for concurrent
// use.
type Store struct {
	mgr *Manager

	mu        sync.Mutex
	user      *models.Profile
	sessionID string
	token     string
	loading   bool
	err       error
}

// User returns a copy of the cached profile, or nil when signed out.
func (s *Store) User() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// run marks the store as loading for the duration of fn and records its error.
func (s *Store) run(op string, fn func() error) error {
	s.mu.Lock()
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	err := fn()

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.err = err
	}
	s.mu.Unlock()

	if err != nil {
		s.mgr.log.Warn("auth error", zap.String("op", op), zap.Error(err))
	}
	return err
}

func (s *Store) publish(profile *models.Profile, sessionID, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = profile
	s.sessionID = sessionID
	s.token = token
}

func (s *Store) SignIn(ctx context.Context, email, password string) error {
	return s.run("sign_in", func() error {
		if email == "" || password == "" {
			return ErrMissingCredentials
		}

		account, err := s.mgr.backend.Accounts.AccountByEmail(ctx, email)
		if errors.Is(err, backend.ErrNotFound) {
			return ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		if account.PasswordHash == nil {
			return ErrInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(password)); err != nil {
			return ErrInvalidCredentials
		}

		return s.signInAccount(ctx, account.ID)
	})
}

func (s *Store) signInAccount(ctx context.Context, accountID string) error {
	sessionID, token, err := s.mgr.startSession(ctx, accountID)
	if err != nil {
		return err
	}
	profile, err := s.mgr.backend.Profiles.Profile(ctx, accountID)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	s.publish(profile, sessionID, token)
	return nil
}

func (s *Store) SignUp(ctx context.Context, email, password string) error {
	return s.run("sign_up", func() error {
		return s.signUp(ctx, email, password, models.ProviderEmail, avatarBaseURL+url.QueryEscape(email))
	})
}

func (s *Store) signUp(ctx context.Context, email, password, provider, avatar string) error {
	if email == "" || password == "" {
		return ErrMissingCredentials
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}

	hashed, err := s.mgr.hashPassword(password)
	if err != nil {
		return fmt.Errorf("could not hash password: %w", err)
	}
	account := &models.Account{
		Email:        email,
		PasswordHash: &hashed,
		Provider:     provider,
	}
	if err := s.mgr.backend.Accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, backend.ErrConflict) {
			return ErrEmailTaken
		}
		return err
	}

	return s.createProfileAndSignIn(ctx, account, avatar)
}

func (s *Store) createProfileAndSignIn(ctx context.Context, account *models.Account, avatar string) error {
	profile := &models.Profile{
		ID:           account.ID,
		Email:        account.Email,
		Points:       0,
		ProfileImage: avatar,
		CreatedAt:    s.mgr.now(),
	}
	if err := s.mgr.backend.Profiles.CreateProfile(ctx, profile); err != nil {
		return err
	}

	sessionID, token, err := s.mgr.startSession(ctx, account.ID)
	if err != nil {
		return err
	}
	s.publish(profile, sessionID, token)
	return nil
}

// SignInAnonymous signs out any current session and signs up a throwaway
// account. Anonymous accounts never earn points.
func (s *Store) SignInAnonymous(ctx context.Context) error {
	if s.SessionID() != "" {
		if err := s.SignOut(ctx); err != nil {
			return err
		}
	}

	return s.run("sign_in_anonymous", func() error {
		password, err := randomPassword(8)
		if err != nil {
			return err
		}
		email := fmt.Sprintf("%s%d%s", models.AnonymousEmailPrefix, s.mgr.now().UnixMilli(), anonymousDomain)
		return s.signUp(ctx, email, password, models.ProviderAnonymous, anonymousAvatar)
	})
}

func (s *Store) SignInWithGoogle(ctx context.Context, cred config.GoogleCredential) error {
	return s.run("sign_in_google", func() error {
		if s.mgr.google == nil {
			return ErrGoogleDisabled
		}
		info, err := s.mgr.google.Identify(ctx, cred)
		if err != nil {
			return err
		}

		account, err := s.mgr.backend.Accounts.AccountByGoogleID(ctx, info.ID)
		if err == nil {
			return s.signInAccount(ctx, account.ID)
		}
		if !errors.Is(err, backend.ErrNotFound) {
			return err
		}

		account, err = s.mgr.backend.Accounts.AccountByEmail(ctx, info.Email)
		if err == nil {
			if !info.VerifiedEmail {
				return ErrGoogleEmailUnverified
			}
			if err := s.mgr.backend.Accounts.LinkGoogleID(ctx, account.ID, info.ID); err != nil {
				return err
			}
			return s.signInAccount(ctx, account.ID)
		}
		if !errors.Is(err, backend.ErrNotFound) {
			return err
		}

		googleID := info.ID
		account = &models.Account{
			Email:    info.Email,
			Provider: models.ProviderGoogle,
			GoogleID: &googleID,
		}
		if err := s.mgr.backend.Accounts.CreateAccount(ctx, account); err != nil {
			return err
		}
		avatar := info.Picture
		if avatar == "" {
			avatar = avatarBaseURL + url.QueryEscape(info.Email)
		}
		return s.createProfileAndSignIn(ctx, account, avatar)
	})
}

// Restore rebuilds the store from a token issued by an earlier sign-in.
func (s *Store) Restore(ctx context.Context, token string) error {
	return s.run("restore", func() error {
		claims, err := s.mgr.tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			return err
		}
		sess, err := s.mgr.backend.Sessions.Session(ctx, claims.SessionID)
		if errors.Is(err, backend.ErrNotFound) {
			return ErrSessionExpired
		}
		if err != nil {
			return err
		}
		if sess.AccountID != claims.UserID || !sess.Active(s.mgr.now()) {
			return ErrSessionExpired
		}

		profile, err := s.mgr.backend.Profiles.Profile(ctx, claims.UserID)
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		s.publish(profile, sess.ID, token)
		return nil
	})
}

// SignOut revokes the server-side session and clears the cached profile.
func (s *Store) SignOut(ctx context.Context) error {
	return s.run("sign_out", func() error {
		sessionID := s.SessionID()
		if sessionID == "" {
			return ErrNotSignedIn
		}
		if err := s.mgr.backend.Sessions.RevokeSession(ctx, sessionID, s.mgr.now()); err != nil {
			return err
		}
		s.publish(nil, "", "")
		return nil
	})
}

// UpdateUser merges patch into the cached profile without touching the
// backend. It does nothing when signed out.
func (s *Store) UpdateUser(patch ProfilePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	u := *s.user
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Points != nil {
		u.Points = *patch.Points
	}
	if patch.IsAdmin != nil {
		u.IsAdmin = *patch.IsAdmin
	}
	if patch.ProfileImage != nil {
		u.ProfileImage = *patch.ProfileImage
	}
	s.user = &u
}

func randomPassword(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(anonymousPassChars)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		b[i] = anonymousPassChars[idx.Int64()]
	}
	return string(b), nil
}
