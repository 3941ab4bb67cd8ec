package models

import (
	"time"

	"gorm.io/datatypes"
)

const TablePayments = "payments"

// PaymentModel is one row of the payment ledger. (source, external_id) is unique so that
// every provider event class owns at most one row per provider identifier.
type PaymentModel struct {
	ID             uint    `gorm:"primaryKey"`
	UserID         uint    `gorm:"not null;index"`
	SubscriptionID *uint   `gorm:"index:idx_subscription_status_created,priority:1"`
	Source         string  `gorm:"size:20;not null;uniqueIndex:uk_source_external_id,priority:1"`
	ExternalID     string  `gorm:"size:128;not null;uniqueIndex:uk_source_external_id,priority:2"`
	PlanExternalID *string `gorm:"size:128;index"`
	Status         string  `gorm:"size:20;not null;index:idx_subscription_status_created,priority:2"`
	Amount         int64   `gorm:"not null"`
	Currency       string  `gorm:"size:3;not null"`
	PaymentLink    *string `gorm:"type:text"`
	Description    *string `gorm:"size:500"`
	FailureReason  *string `gorm:"size:500"`
	PaidAt         *time.Time
	Metadata       datatypes.JSON
	Version        int       `gorm:"not null;default:1"`
	CreatedAt      time.Time `gorm:"index:idx_subscription_status_created,priority:3"`
	UpdatedAt      time.Time
}

func (PaymentModel) TableName() string {
	return TablePayments
}
