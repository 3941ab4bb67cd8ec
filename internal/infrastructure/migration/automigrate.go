package migration

import (
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists the models owned by the billing schema.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.SubscriptionModel{},
		&models.PaymentModel{},
		&models.SubscriptionHistoryModel{},
	}
}
