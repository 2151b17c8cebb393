package usecase

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/voicebank/payment-service/pkg/errors"

	"github.com/voicebank/payment-service/internal/domain/model"
	"github.com/voicebank/payment-service/internal/domain/repository"
	"github.com/voicebank/payment-service/internal/usecase/constants"
)

// PaymentConfirmer validates the OTP for a suspended payment and drives the
// atomic settlement.
type PaymentConfirmer struct {
	transactionRepo repository.TransactionRepository
	cacheRepo       repository.CacheRepository
	logger          *zap.Logger
}

// NewPaymentConfirmer creates a payment confirmer.
func NewPaymentConfirmer(repos *repository.Repositories, logger *zap.Logger) *PaymentConfirmer {
	return &PaymentConfirmer{
		transactionRepo: repos.Transaction,
		cacheRepo:       repos.Cache,
		logger:          logger,
	}
}

// Confirm settles the payment behind the session after verifying the OTP.
//
// Ordering matters: session lookup, replay guard, expiry, then OTP. A wrong
// OTP leaves everything in place so the user can retry within the window; the
// OTP entry is consumed only after a successful settlement. Concurrent
// confirms for the same session serialize on the database row lock inside
// FinalizeTransfer, so at most one settles.
func (u *PaymentConfirmer) Confirm(ctx context.Context, userID uuid.UUID, sessionID, otpCode string) (*model.PendingTransaction, error) {
	session, err := u.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// A session of another user is indistinguishable from a missing one.
	if session.UserID != userID {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "session not found or expired", nil)
	}

	tx, err := u.transactionRepo.GetByID(ctx, session.PendingTransactionID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load pending transaction")
	}
	if tx == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "pending transaction not found", nil)
	}
	if tx.IsTerminal() {
		if tx.Status == model.TransactionStatusExpired {
			return nil, apperrors.NewAppError(apperrors.ErrExpired, "payment session expired", nil)
		}
		return nil, apperrors.NewAppError(apperrors.ErrAlreadyProcessed, "transaction already processed", nil)
	}

	if session.IsExpired(time.Now()) {
		u.expireSession(ctx, session)
		return nil, apperrors.NewAppError(apperrors.ErrExpired, "payment session expired", nil)
	}

	stored, err := u.cacheRepo.Get(ctx, constants.OTPPrefix+sessionID)
	if err != nil {
		if u.cacheRepo.IsNotFound(err) {
			// The entry may have just been consumed by a concurrent confirm
			// that won the race; report that rather than a bad code.
			if current, lerr := u.transactionRepo.GetByID(ctx, session.PendingTransactionID); lerr == nil && current != nil && current.IsTerminal() {
				return nil, apperrors.NewAppError(apperrors.ErrAlreadyProcessed, "transaction already processed", nil)
			}
			return nil, apperrors.NewAppError(apperrors.ErrInvalidOTP, "invalid otp", nil)
		}
		return nil, apperrors.Wrap(err, "failed to load otp entry")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(otpCode)) != 1 {
		u.logger.Info("otp mismatch",
			zap.String("user_id", userID.String()),
			zap.String("transaction_id", tx.ID.String()))
		return nil, apperrors.NewAppError(apperrors.ErrInvalidOTP, "invalid otp", nil)
	}

	reference, err := GenerateReferenceNumber()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to issue reference number")
	}

	finalized, err := u.transactionRepo.FinalizeTransfer(ctx, session.PendingTransactionID, reference)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrInsufficientFunds) {
			// Terminal failure; the window is over for this session.
			u.consumeOTP(ctx, sessionID)
		}
		return nil, err
	}

	// Consume the code so it cannot be replayed. The session itself stays
	// until its TTL; a replayed confirm then reads the terminal transaction
	// status and reports ALREADY_PROCESSED instead of a bare NOT_FOUND.
	u.consumeOTP(ctx, sessionID)

	u.logger.Info("payment confirmed",
		zap.String("user_id", userID.String()),
		zap.String("transaction_id", finalized.ID.String()),
		zap.Stringp("reference_number", finalized.ReferenceNumber))

	return finalized, nil
}

func (u *PaymentConfirmer) loadSession(ctx context.Context, sessionID string) (*model.PaymentSession, error) {
	raw, err := u.cacheRepo.Get(ctx, constants.SessionPrefix+sessionID)
	if err != nil {
		if u.cacheRepo.IsNotFound(err) {
			return nil, apperrors.NewAppError(apperrors.ErrNotFound, "session not found or expired", nil)
		}
		return nil, apperrors.Wrap(err, "failed to load session")
	}

	var session model.PaymentSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode session")
	}
	return &session, nil
}

// expireSession settles an overdue session found lazily, ahead of the sweeper.
func (u *PaymentConfirmer) expireSession(ctx context.Context, session *model.PaymentSession) {
	if _, err := u.transactionRepo.UpdateStatus(ctx, session.PendingTransactionID, model.TransactionStatusPending, model.TransactionStatusExpired, nil); err != nil {
		u.logger.Error("failed to expire overdue transaction",
			zap.String("transaction_id", session.PendingTransactionID.String()),
			zap.Error(err))
	}
	u.consumeOTP(ctx, session.SessionID)
}

func (u *PaymentConfirmer) consumeOTP(ctx context.Context, sessionID string) {
	// GetDel keeps the consume atomic against a concurrent confirm. Failure
	// here is not fatal; the entry ages out via TTL and the status guard in
	// FinalizeTransfer blocks any replay regardless.
	if _, err := u.cacheRepo.GetDel(ctx, constants.OTPPrefix+sessionID); err != nil && !u.cacheRepo.IsNotFound(err) {
		u.logger.Warn("failed to consume otp entry", zap.Error(err))
	}
}
