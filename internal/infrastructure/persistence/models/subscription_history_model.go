package models

import (
	"time"

	"gorm.io/gorm"
)

const TableSubscriptionHistories = "subscription_histories"

// SubscriptionHistoryModel represents the database persistence model for subscription history
// This is the anti-corruption layer between domain and database
type SubscriptionHistoryModel struct {
	ID             uint    `gorm:"primarykey"`
	SubscriptionID uint    `gorm:"not null;index:idx_subscription_history"`
	Action         string  `gorm:"not null;size:20;index:idx_action"` // created, activated, renewed, expired, cancelled, resumed
	OldStatus      *string `gorm:"size:20"`
	NewStatus      string  `gorm:"not null;size:20"`
	Reason         *string `gorm:"size:500"`
	CreatedAt      time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionHistoryModel) TableName() string {
	return TableSubscriptionHistories
}

// BeforeCreate hook for GORM
func (sh *SubscriptionHistoryModel) BeforeCreate(tx *gorm.DB) error {
	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = time.Now().UTC()
	}
	return nil
}
