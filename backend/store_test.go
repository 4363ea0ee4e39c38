package backend

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pothole-patrol/api-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Account{}, &models.Session{}, &models.Profile{},
		&models.Report{}, &models.Comment{}, &models.Redemption{},
	))
	return NewGormBackend(db, NewMemory())
}

func implementations(t *testing.T) map[string]func(*testing.T) *Backend {
	return map[string]func(*testing.T) *Backend{
		"memory": func(*testing.T) *Backend { return NewMemoryBackend(NewMemory()) },
		"gorm":   newSQLiteBackend,
	}
}

func TestAccounts(t *testing.T) {
	for name, newBackend := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			ctx := context.Background()

			hash := "hash"
			acc := &models.Account{Email: "a@example.org", PasswordHash: &hash, Provider: models.ProviderEmail}
			require.NoError(t, b.Accounts.CreateAccount(ctx, acc))
			assert.NotEmpty(t, acc.ID)

			err := b.Accounts.CreateAccount(ctx, &models.Account{Email: "a@example.org", Provider: models.ProviderEmail})
			assert.ErrorIs(t, err, ErrConflict)

			got, err := b.Accounts.AccountByEmail(ctx, "a@example.org")
			require.NoError(t, err)
			assert.Equal(t, acc.ID, got.ID)

			// Emails compare exactly, as the unique index does.
			upper := &models.Account{Email: "A@Example.org", Provider: models.ProviderEmail}
			require.NoError(t, b.Accounts.CreateAccount(ctx, upper))
			got, err = b.Accounts.AccountByEmail(ctx, "A@Example.org")
			require.NoError(t, err)
			assert.Equal(t, upper.ID, got.ID)

			_, err = b.Accounts.AccountByEmail(ctx, "missing@example.org")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.Accounts.LinkGoogleID(ctx, acc.ID, "g-1"))
			got, err = b.Accounts.AccountByGoogleID(ctx, "g-1")
			require.NoError(t, err)
			assert.Equal(t, acc.ID, got.ID)

			assert.ErrorIs(t, b.Accounts.LinkGoogleID(ctx, "nobody", "g-2"), ErrNotFound)

			got, err = b.Accounts.AccountByID(ctx, acc.ID)
			require.NoError(t, err)
			assert.Equal(t, "a@example.org", got.Email)
		})
	}
}

func TestSessions(t *testing.T) {
	for name, newBackend := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Second)

			live := &models.Session{ID: "live", AccountID: "acc", ExpiresAt: now.Add(time.Hour)}
			expired := &models.Session{ID: "expired", AccountID: "acc", ExpiresAt: now.Add(-time.Hour)}
			revoked := &models.Session{ID: "revoked", AccountID: "acc", ExpiresAt: now.Add(time.Hour)}
			for _, s := range []*models.Session{live, expired, revoked} {
				require.NoError(t, b.Sessions.CreateSession(ctx, s))
			}
			require.NoError(t, b.Sessions.RevokeSession(ctx, "revoked", now.Add(-time.Minute)))

			got, err := b.Sessions.Session(ctx, "revoked")
			require.NoError(t, err)
			assert.False(t, got.Active(now))

			got, err = b.Sessions.Session(ctx, "live")
			require.NoError(t, err)
			assert.True(t, got.Active(now))

			n, err := b.Sessions.DeleteExpiredSessions(ctx, now)
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)

			_, err = b.Sessions.Session(ctx, "expired")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = b.Sessions.Session(ctx, "live")
			assert.NoError(t, err)
		})
	}
}

func TestProfilePoints(t *testing.T) {
	for name, newBackend := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			ctx := context.Background()

			require.NoError(t, b.Profiles.CreateProfile(ctx, &models.Profile{ID: "p1", Email: "p@example.org"}))

			balance, err := b.Profiles.AddPoints(ctx, "p1", 5)
			require.NoError(t, err)
			assert.Equal(t, int64(5), balance)

			balance, err = b.Profiles.AddPoints(ctx, "p1", -3)
			require.NoError(t, err)
			assert.Equal(t, int64(2), balance)

			_, err = b.Profiles.AddPoints(ctx, "p1", -3)
			assert.ErrorIs(t, err, ErrInsufficientPoints)

			p, err := b.Profiles.Profile(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, int64(2), p.Points)

			_, err = b.Profiles.AddPoints(ctx, "missing", 1)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.Profiles.SetAdmin(ctx, "p1", true))
			p, err = b.Profiles.ProfileByEmail(ctx, "p@example.org")
			require.NoError(t, err)
			assert.True(t, p.IsAdmin)
			assert.ErrorIs(t, b.Profiles.SetAdmin(ctx, "missing", true), ErrNotFound)
		})
	}
}

func TestAddPointsConcurrent(t *testing.T) {
	for name, newBackend := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			ctx := context.Background()
			require.NoError(t, b.Profiles.CreateProfile(ctx, &models.Profile{ID: "p1", Email: "p@example.org"}))

			var wg sync.WaitGroup
			for i := 0; i < 25; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := b.Profiles.AddPoints(ctx, "p1", 1)
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			p, err := b.Profiles.Profile(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, int64(25), p.Points)
		})
	}
}

func TestReports(t *testing.T) {
	for name, newBackend := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			ctx := context.Background()
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

			statuses := []models.ReportStatus{models.StatusReported, models.StatusResolved, models.StatusReported, models.StatusInProgress}
			var ids []string
			for i, status := range statuses {
				r := &models.Report{
					Latitude:    12.97,
					Longitude:   77.59,
					Description: "crack",
					Severity:    models.SeverityLow,
					Status:      status,
					ImageURL:    "/img",
					CreatedAt:   base.Add(time.Duration(i) * time.Hour),
				}
				require.NoError(t, b.Reports.InsertReport(ctx, r))
				ids = append(ids, r.ID)
			}

			all, err := b.Reports.ListReports(ctx, ListOptions{})
			require.NoError(t, err)
			require.Len(t, all, 4)
			assert.Equal(t, ids[3], all[0].ID)
			assert.Equal(t, ids[0], all[3].ID)

			reported, err := b.Reports.ListReports(ctx, ListOptions{Status: models.StatusReported})
			require.NoError(t, err)
			assert.Len(t, reported, 2)

			limited, err := b.Reports.ListReports(ctx, ListOptions{Limit: 3})
			require.NoError(t, err)
			assert.Len(t, limited, 3)

			updated, err := b.Reports.TransitionStatus(ctx, ids[0], models.StatusReported, models.StatusInProgress)
			require.NoError(t, err)
			assert.Equal(t, models.StatusInProgress, updated.Status)

			_, err = b.Reports.TransitionStatus(ctx, ids[0], models.StatusReported, models.StatusInProgress)
			assert.ErrorIs(t, err, ErrStaleStatus)

			_, err = b.Reports.TransitionStatus(ctx, "missing", models.StatusReported, models.StatusInProgress)
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = b.Reports.Report(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemoryObjectStorage(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	url, err := m.Put(ctx, "1-a.jpg", "image/jpeg", bytes.NewReader([]byte("data")), 4)
	require.NoError(t, err)
	assert.Equal(t, "/storage/v1/object/public/pothole-images/1-a.jpg", url)

	data, ok := m.Object("1-a.jpg")
	require.True(t, ok)
	assert.Equal(t, "data", string(data))

	data, contentType, ok := m.ObjectWithType("1-a.jpg")
	require.True(t, ok)
	assert.Equal(t, "data", string(data))
	assert.Equal(t, "image/jpeg", contentType)

	_, ok = m.Object("missing.jpg")
	assert.False(t, ok)
}
