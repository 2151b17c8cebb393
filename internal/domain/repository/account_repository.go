package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/voicebank/payment-service/internal/domain/model"
)

// AccountRepository provides read access to the account directory. Balance
// mutation happens only inside TransactionRepository.FinalizeTransfer.
type AccountRepository interface {
	// GetByID returns the account or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)

	// GetByNumber returns the account or (nil, nil) when it does not exist.
	GetByNumber(ctx context.Context, number string) (*model.Account, error)
}
