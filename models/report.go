package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// ReportStatus is the lifecycle stage of a report.
type ReportStatus string

const (
	StatusReported   ReportStatus = "reported"
	StatusInProgress ReportStatus = "in-progress"
	StatusResolved   ReportStatus = "resolved"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case StatusReported, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

type Report struct {
	ID          string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      *string      `gorm:"type:varchar(36);index" json:"user_id"` // nil for signed-out submissions
	Latitude    float64      `gorm:"not null;type:decimal(10,8)" json:"latitude"`
	Longitude   float64      `gorm:"not null;type:decimal(11,8)" json:"longitude"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Severity    Severity     `gorm:"type:varchar(10);not null" json:"severity"`
	Status      ReportStatus `gorm:"type:varchar(20);not null;default:'reported';index" json:"status"`
	ImageURL    string       `gorm:"not null" json:"image_url"`
	ImageKey    string       `json:"-"`
	Votes       int          `gorm:"not null;default:0" json:"votes"`
	Comments    []Comment    `gorm:"foreignKey:ReportID" json:"comments,omitempty"`
	CreatedAt   time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Report) TableName() string { return "pothole_reports" }

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
