package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pothole-patrol/api-go/models"
	"gorm.io/gorm"
)

// GormStore implements the row stores on top of a GORM connection.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// NewGormBackend wires every row store to db and images to storage.
func NewGormBackend(db *gorm.DB, storage ObjectStorage) *Backend {
	store := NewGormStore(db)
	return &Backend{
		Accounts: store,
		Sessions: store,
		Profiles: store,
		Reports:  store,
		Storage:  storage,
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return ErrConflict
	}
	return err
}

// isUniqueViolation catches duplicate keys when the dialector does not
// translate errors into gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func (s *GormStore) CreateAccount(ctx context.Context, account *models.Account) error {
	if err := s.DB.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("create account: %w", translate(err))
	}
	return nil
}

func (s *GormStore) AccountByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := s.DB.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *GormStore) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *GormStore) AccountByGoogleID(ctx context.Context, googleID string) (*models.Account, error) {
	var account models.Account
	if err := s.DB.WithContext(ctx).Where("google_id = ?", googleID).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *GormStore) LinkGoogleID(ctx context.Context, accountID, googleID string) error {
	result := s.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("google_id", googleID)
	if result.Error != nil {
		return fmt.Errorf("link google account: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateSession(ctx context.Context, session *models.Session) error {
	if err := s.DB.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("create session: %w", translate(err))
	}
	return nil
}

func (s *GormStore) Session(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := s.DB.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

func (s *GormStore) RevokeSession(ctx context.Context, id string, at time.Time) error {
	result := s.DB.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at)
	if result.Error != nil {
		return fmt.Errorf("revoke session: %w", result.Error)
	}
	return nil
}

func (s *GormStore) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	result := s.DB.WithContext(ctx).
		Where("expires_at < ? OR revoked_at < ?", before, before).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	if err := s.DB.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("create profile: %w", translate(err))
	}
	return nil
}

func (s *GormStore) Profile(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.DB.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (s *GormStore) ProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (s *GormStore) AddPoints(ctx context.Context, id string, delta int64) (int64, error) {
	var balance int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.Profile{}).Where("id = ?", id)
		if delta < 0 {
			query = query.Where("points >= ?", -delta)
		}
		result := query.Update("points", gorm.Expr("points + ?", delta))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if _, err := s.profileIn(tx, id); err != nil {
				return err
			}
			return ErrInsufficientPoints
		}
		profile, err := s.profileIn(tx, id)
		if err != nil {
			return err
		}
		balance = profile.Points
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}
	return balance, nil
}

func (s *GormStore) profileIn(tx *gorm.DB, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := tx.First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *GormStore) SetAdmin(ctx context.Context, id string, admin bool) error {
	result := s.DB.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id).
		Update("is_admin", admin)
	if result.Error != nil {
		return fmt.Errorf("set admin: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) InsertReport(ctx context.Context, report *models.Report) error {
	if err := s.DB.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("insert report: %w", translate(err))
	}
	return nil
}

func (s *GormStore) Report(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	if err := s.DB.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &report, nil
}

func (s *GormStore) ListReports(ctx context.Context, opts ListOptions) ([]models.Report, error) {
	query := s.DB.WithContext(ctx).Model(&models.Report{}).Order("created_at DESC")
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	reports := []models.Report{}
	if err := query.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (s *GormStore) TransitionStatus(ctx context.Context, id string, from, to models.ReportStatus) (*models.Report, error) {
	var report models.Report
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", id, from).
			Updates(map[string]interface{}{
				"status":     to,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if err := tx.First(&report, "id = ?", id).Error; err != nil {
				return err
			}
			return ErrStaleStatus
		}
		return tx.First(&report, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &report, nil
}
