package models

import "time"

// Session is a server-side sign-in. The JWT handed to the client carries the
// session ID, so revoking the row signs the client out.
type Session struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AccountID string     `gorm:"type:varchar(36);not null;index" json:"account_id"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
