package models

import (
	"time"

	"gorm.io/gorm"
)

const TableSubscriptions = "subscriptions"

// SubscriptionModel represents the database persistence model for subscriptions
// This is the anti-corruption layer between domain and database
type SubscriptionModel struct {
	ID                 uint      `gorm:"primarykey"`
	UserID             uint      `gorm:"not null;index:idx_user_status,priority:1"`
	Plan               string    `gorm:"not null;size:32"`
	Status             string    `gorm:"not null;size:20;index:idx_user_status,priority:2"`
	StartedAt          time.Time `gorm:"not null"`
	TrialEndsAt        *time.Time
	ExpiresAt          *time.Time `gorm:"index:idx_expires_at"`
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	AutoRenew          bool `gorm:"not null;default:true"`
	CancelledAt        *time.Time
	CancelReason       *string `gorm:"size:500"`
	Version            int     `gorm:"not null;default:1"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return TableSubscriptions
}

// BeforeCreate hook for GORM
func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
