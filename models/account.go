package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProviderEmail     = "email"
	ProviderGoogle    = "google"
	ProviderAnonymous = "anonymous"
)

// Account is the authentication record. It is kept apart from Profile so
// that credentials never travel with the profile payload.
type Account struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash *string   `json:"-"`
	Provider     string    `gorm:"type:varchar(20);not null;default:'email'" json:"provider"`
	GoogleID     *string   `gorm:"uniqueIndex" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
