package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/voicebank/payment-service/internal/domain/model"
)

// TransactionRepository persists pending transactions and performs the
// atomic settlement of a confirmed payment.
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.PendingTransaction) error

	// GetByID returns the transaction or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.PendingTransaction, error)

	// UpdateStatus transitions the transaction from one status to another.
	// Returns false when the row was not in the expected status, which makes
	// cancel/expire signals idempotent.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.TransactionStatus, reason *string) (bool, error)

	// MarkExpiredBefore settles pending rows whose expiry window passed
	// before the cutoff. Returns the number of rows transitioned.
	MarkExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// FinalizeTransfer runs the whole settlement in one database
	// transaction: locks the pending row and the involved accounts, guards
	// against replays, re-checks the source balance, moves funds and stamps
	// the reference number. Error codes: ALREADY_PROCESSED when the row is
	// no longer pending, INSUFFICIENT_FUNDS when the authoritative balance
	// check fails (the row is marked failed), NOT_FOUND for missing rows.
	FinalizeTransfer(ctx context.Context, id uuid.UUID, referenceNumber string) (*model.PendingTransaction, error)
}
