package repository

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/voicebank/payment-service/pkg/errors"

	"github.com/voicebank/payment-service/internal/domain/model"
	"github.com/voicebank/payment-service/internal/domain/repository"
)

// transactionRepository implements the TransactionRepository interface
type transactionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTransactionRepository creates a new pending transaction repository
func NewTransactionRepository(db *gorm.DB, logger *zap.Logger) repository.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *transactionRepository) Create(ctx context.Context, tx *model.PendingTransaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		r.logger.Error("failed to create pending transaction",
			zap.String("user_id", tx.UserID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to create pending transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PendingTransaction, error) {
	var tx model.PendingTransaction

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&tx).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Error("failed to get pending transaction",
			zap.String("transaction_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get pending transaction: %w", err)
	}

	return &tx, nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.TransactionStatus, reason *string) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if reason != nil {
		updates["failure_reason"] = *reason
	}

	result := r.db.WithContext(ctx).
		Model(&model.PendingTransaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		r.logger.Error("failed to update transaction status",
			zap.String("transaction_id", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to update transaction status: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *transactionRepository) MarkExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.PendingTransaction{}).
		Where("status = ? AND expires_at < ?", model.TransactionStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":     model.TransactionStatusExpired,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		r.logger.Error("failed to expire overdue transactions", zap.Error(result.Error))
		return 0, fmt.Errorf("failed to expire overdue transactions: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// accountLockOrder returns the account ids to lock, sorted so every
// settlement acquires its row locks in the same global order.
func accountLockOrder(fromID uuid.UUID, destID *uuid.UUID) []uuid.UUID {
	if destID == nil || *destID == fromID {
		return []uuid.UUID{fromID}
	}
	if bytes.Compare(destID[:], fromID[:]) < 0 {
		return []uuid.UUID{*destID, fromID}
	}
	return []uuid.UUID{fromID, *destID}
}

// FinalizeTransfer settles a confirmed payment. The pending row and the
// involved account rows are locked FOR UPDATE so concurrent confirms for the
// same session serialize on the row lock; only the first one still sees
// status=pending.
func (r *transactionRepository) FinalizeTransfer(ctx context.Context, id uuid.UUID, referenceNumber string) (*model.PendingTransaction, error) {
	var finalized model.PendingTransaction

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending model.PendingTransaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&pending).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewAppError(apperrors.ErrNotFound, "pending transaction not found", nil)
			}
			return fmt.Errorf("failed to lock pending transaction: %w", err)
		}

		if pending.Status != model.TransactionStatusPending {
			return apperrors.NewAppError(apperrors.ErrAlreadyProcessed, "transaction already processed", nil)
		}

		var destID *uuid.UUID
		if pending.DestinationType == model.DestinationTypeInternal && pending.DestinationAccountID != nil {
			destID = pending.DestinationAccountID
		}

		// Account rows are locked in a global id order, not payment order:
		// two opposite-direction transfers would otherwise deadlock on each
		// other's locks.
		locked := make(map[uuid.UUID]*model.Account, 2)
		for _, id := range accountLockOrder(pending.FromAccountID, destID) {
			var account model.Account
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", id).
				First(&account).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					if id == pending.FromAccountID {
						return apperrors.NewAppError(apperrors.ErrNotFound, "source account not found", nil)
					}
					return apperrors.NewAppError(apperrors.ErrNotFound, "destination account not found", nil)
				}
				return fmt.Errorf("failed to lock account: %w", err)
			}
			locked[id] = &account
		}
		from := locked[pending.FromAccountID]

		// Authoritative balance check. The advisory check at initiation may
		// have gone stale while the user typed the OTP.
		if from.AvailableBalance().LessThan(pending.Amount) {
			return apperrors.NewAppError(apperrors.ErrInsufficientFunds, "insufficient funds", nil)
		}

		newBalance := from.Balance.Sub(pending.Amount)
		if from.Type == model.AccountTypeCredit {
			// Drawing on a credit account increases the amount owed.
			newBalance = from.Balance.Add(pending.Amount)
		}
		if err := tx.Model(&model.Account{}).
			Where("id = ?", from.ID).
			Updates(map[string]interface{}{
				"balance":    newBalance,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to debit source account: %w", err)
		}

		if destID != nil {
			dest := locked[*destID]
			if err := tx.Model(&model.Account{}).
				Where("id = ?", dest.ID).
				Updates(map[string]interface{}{
					"balance":    dest.Balance.Add(pending.Amount),
					"updated_at": time.Now(),
				}).Error; err != nil {
				return fmt.Errorf("failed to credit destination account: %w", err)
			}
		}
		// External destinations carry the payment address on the row itself;
		// settlement with the outside network happens downstream.

		if err := tx.Model(&model.PendingTransaction{}).
			Where("id = ?", pending.ID).
			Updates(map[string]interface{}{
				"status":           model.TransactionStatusCompleted,
				"reference_number": referenceNumber,
				"updated_at":       time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to complete transaction: %w", err)
		}

		if err := tx.Where("id = ?", pending.ID).First(&finalized).Error; err != nil {
			return fmt.Errorf("failed to reload transaction: %w", err)
		}

		return nil
	})
	if err != nil {
		// The settlement transaction rolled back; record the definitive
		// failure outside of it so the row does not stay pending.
		if apperrors.IsCode(err, apperrors.ErrInsufficientFunds) {
			reason := "insufficient funds at confirmation"
			if _, markErr := r.UpdateStatus(ctx, id, model.TransactionStatusPending, model.TransactionStatusFailed, &reason); markErr != nil {
				r.logger.Error("failed to mark transaction failed",
					zap.String("transaction_id", id.String()),
					zap.Error(markErr))
			}
		}
		return nil, err
	}

	return &finalized, nil
}
