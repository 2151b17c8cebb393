package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/voicebank/payment-service/internal/domain/model"
)

// BeneficiaryRepository resolves saved payment destinations. Lookups are
// scoped to the owning user; a beneficiary of another user is not visible.
type BeneficiaryRepository interface {
	// GetByIDForUser returns the beneficiary or (nil, nil) when it does not
	// exist or belongs to a different user.
	GetByIDForUser(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*model.Beneficiary, error)

	// GetByNicknameForUser returns the beneficiary or (nil, nil) when it does
	// not exist or belongs to a different user.
	GetByNicknameForUser(ctx context.Context, nickname string, userID uuid.UUID) (*model.Beneficiary, error)
}
