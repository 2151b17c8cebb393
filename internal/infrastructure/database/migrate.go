package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voicebank/payment-service/internal/domain/model"
)

// Migrate applies the schema for all payment tables.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(
		&model.Account{},
		&model.Beneficiary{},
		&model.PendingTransaction{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info("database schema migrated")
	return nil
}
