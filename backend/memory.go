package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pothole-patrol/api-go/models"
)

// MemoryObjectPrefix is the URL path under which memory storage objects are
// served.
const MemoryObjectPrefix = "/storage/v1/object/public/pothole-images/"

type memoryObject struct {
	data        []byte
	contentType string
}

// Memory keeps every store in process memory. It backs BACKEND_DRIVER=memory
// and the tests.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	sessions map[string]models.Session
	profiles map[string]models.Profile
	reports  map[string]models.Report
	objects  map[string]memoryObject
	now      func() time.Time

	// Calls counts every store call, including object storage.
	Calls int
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]models.Account),
		sessions: make(map[string]models.Session),
		profiles: make(map[string]models.Profile),
		reports:  make(map[string]models.Report),
		objects:  make(map[string]memoryObject),
		now:      time.Now,
	}
}

// NewMemoryBackend returns a Backend whose stores and storage all live in m.
func NewMemoryBackend(m *Memory) *Backend {
	return &Backend{
		Accounts: m,
		Sessions: m,
		Profiles: m,
		Reports:  m,
		Storage:  m,
	}
}

// SetClock replaces the time source used for created timestamps.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Object returns the stored bytes for key.
func (m *Memory) Object(key string) ([]byte, bool) {
	data, _, ok := m.ObjectWithType(key)
	return data, ok
}

// ObjectWithType returns the stored bytes for key and the content type they
// were uploaded with.
func (m *Memory) ObjectWithType(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj.data, obj.contentType, ok
}

func (m *Memory) CreateAccount(_ context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	for _, a := range m.accounts {
		if a.Email == account.Email {
			return fmt.Errorf("create account: %w", ErrConflict)
		}
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := m.now()
	account.CreatedAt, account.UpdatedAt = now, now
	m.accounts[account.ID] = *account
	return nil
}

func (m *Memory) AccountByID(_ context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *Memory) AccountByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	for _, a := range m.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) AccountByGoogleID(_ context.Context, googleID string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	for _, a := range m.accounts {
		if a.GoogleID != nil && *a.GoogleID == googleID {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) LinkGoogleID(_ context.Context, accountID, googleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	a, ok := m.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	a.GoogleID = &googleID
	m.accounts[accountID] = a
	return nil
}

func (m *Memory) CreateSession(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if _, ok := m.sessions[session.ID]; ok {
		return fmt.Errorf("create session: %w", ErrConflict)
	}
	session.CreatedAt = m.now()
	m.sessions[session.ID] = *session
	return nil
}

func (m *Memory) Session(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *Memory) RevokeSession(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	s, ok := m.sessions[id]
	if !ok || s.RevokedAt != nil {
		return nil
	}
	s.RevokedAt = &at
	m.sessions[id] = s
	return nil
}

func (m *Memory) DeleteExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	var n int64
	for id, s := range m.sessions {
		if s.ExpiresAt.Before(before) || (s.RevokedAt != nil && s.RevokedAt.Before(before)) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) CreateProfile(_ context.Context, profile *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if _, ok := m.profiles[profile.ID]; ok {
		return fmt.Errorf("create profile: %w", ErrConflict)
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = m.now()
	}
	m.profiles[profile.ID] = *profile
	return nil
}

func (m *Memory) Profile(_ context.Context, id string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) ProfileByEmail(_ context.Context, email string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	for _, p := range m.profiles {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) AddPoints(_ context.Context, id string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	p, ok := m.profiles[id]
	if !ok {
		return 0, ErrNotFound
	}
	if p.Points+delta < 0 {
		return 0, ErrInsufficientPoints
	}
	p.Points += delta
	m.profiles[id] = p
	return p.Points, nil
}

func (m *Memory) SetAdmin(_ context.Context, id string, admin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	p, ok := m.profiles[id]
	if !ok {
		return ErrNotFound
	}
	p.IsAdmin = admin
	m.profiles[id] = p
	return nil
}

func (m *Memory) InsertReport(_ context.Context, report *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if _, ok := m.reports[report.ID]; ok {
		return fmt.Errorf("insert report: %w", ErrConflict)
	}
	now := m.now()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now
	m.reports[report.ID] = *report
	return nil
}

func (m *Memory) Report(_ context.Context, id string) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	r, ok := m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *Memory) ListReports(_ context.Context, opts ListOptions) ([]models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	reports := []models.Report{}
	for _, r := range m.reports {
		if opts.Status != "" && r.Status != opts.Status {
			continue
		}
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	if opts.Limit > 0 && len(reports) > opts.Limit {
		reports = reports[:opts.Limit]
	}
	return reports, nil
}

func (m *Memory) TransitionStatus(_ context.Context, id string, from, to models.ReportStatus) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	r, ok := m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	if r.Status != from {
		return nil, ErrStaleStatus
	}
	r.Status = to
	r.UpdatedAt = m.now()
	m.reports[id] = r
	return &r, nil
}

func (m *Memory) Put(_ context.Context, key, contentType string, body io.Reader, _ int64) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	return m.PublicURL(key), nil
}

func (m *Memory) PublicURL(key string) string {
	return MemoryObjectPrefix + key
}
