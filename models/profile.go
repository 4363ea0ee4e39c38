package models

import (
	"strings"
	"time"
)

// AnonymousEmailPrefix marks the synthetic accounts created by anonymous sign-in.
const AnonymousEmailPrefix = "anonymous_"

// Profile is the persisted identity and point balance of an account. Its ID
// is the ID of the Account it belongs to.
type Profile struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Points       int64     `gorm:"not null;default:0;check:points >= 0" json:"points"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	ProfileImage string    `json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
}

func (p *Profile) IsAnonymous() bool {
	return strings.HasPrefix(p.Email, AnonymousEmailPrefix)
}
