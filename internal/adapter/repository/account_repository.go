package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voicebank/payment-service/internal/domain/model"
	"github.com/voicebank/payment-service/internal/domain/repository"
)

// accountRepository implements the AccountRepository interface
type accountRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB, logger *zap.Logger) repository.AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var account model.Account

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Error("failed to get account by id",
			zap.String("account_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}

func (r *accountRepository) GetByNumber(ctx context.Context, number string) (*model.Account, error) {
	var account model.Account

	err := r.db.WithContext(ctx).
		Where("number = ?", number).
		First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Error("failed to get account by number",
			zap.String("account_number", number),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}
