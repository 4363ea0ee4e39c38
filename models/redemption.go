package models

import "time"

type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "pending"
	RedemptionCompleted RedemptionStatus = "completed"
)

// Redemption is a request to pay out points to a UPI handle. Nothing creates
// these yet; the table is kept so existing rows survive migrations.
type Redemption struct {
	ID             string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID         string           `gorm:"type:varchar(36);not null;index" json:"user_id"`
	PointsRedeemed int64            `gorm:"not null" json:"points_redeemed"`
	UPIID          string           `gorm:"column:upi_id;not null" json:"upi_id"`
	Status         RedemptionStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
}

func (Redemption) TableName() string { return "upi_rewards" }
