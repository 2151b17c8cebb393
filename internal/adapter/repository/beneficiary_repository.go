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

// beneficiaryRepository implements the BeneficiaryRepository interface
type beneficiaryRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewBeneficiaryRepository creates a new beneficiary repository
func NewBeneficiaryRepository(db *gorm.DB, logger *zap.Logger) repository.BeneficiaryRepository {
	return &beneficiaryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *beneficiaryRepository) GetByIDForUser(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*model.Beneficiary, error) {
	var beneficiary model.Beneficiary

	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&beneficiary).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Error("failed to get beneficiary by id",
			zap.String("beneficiary_id", id.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get beneficiary: %w", err)
	}

	return &beneficiary, nil
}

func (r *beneficiaryRepository) GetByNicknameForUser(ctx context.Context, nickname string, userID uuid.UUID) (*model.Beneficiary, error) {
	var beneficiary model.Beneficiary

	err := r.db.WithContext(ctx).
		Where("nickname = ? AND user_id = ?", nickname, userID).
		First(&beneficiary).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Error("failed to get beneficiary by nickname",
			zap.String("nickname", nickname),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get beneficiary: %w", err)
	}

	return &beneficiary, nil
}
