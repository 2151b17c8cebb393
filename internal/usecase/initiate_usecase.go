package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/voicebank/payment-service/pkg/errors"

	"github.com/voicebank/payment-service/internal/domain/dto"
	"github.com/voicebank/payment-service/internal/domain/model"
	"github.com/voicebank/payment-service/internal/domain/repository"
	"github.com/voicebank/payment-service/internal/usecase/constants"
)

// PaymentInitiator validates a payment request, creates the pending
// transaction and issues the OTP and session pair that guards confirmation.
type PaymentInitiator struct {
	accountRepo     repository.AccountRepository
	beneficiaryRepo repository.BeneficiaryRepository
	transactionRepo repository.TransactionRepository
	cacheRepo       repository.CacheRepository
	notifier        repository.NotificationPublisher
	sessionTTL      time.Duration
	exposeOTP       bool
	logger          *zap.Logger
}

// NewPaymentInitiator creates a payment initiator. exposeOTP puts the code in
// the Initiate response for non-production test clients.
func NewPaymentInitiator(
	repos *repository.Repositories,
	notifier repository.NotificationPublisher,
	sessionTTL time.Duration,
	exposeOTP bool,
	logger *zap.Logger,
) *PaymentInitiator {
	return &PaymentInitiator{
		accountRepo:     repos.Account,
		beneficiaryRepo: repos.Beneficiary,
		transactionRepo: repos.Transaction,
		cacheRepo:       repos.Cache,
		notifier:        notifier,
		sessionTTL:      sessionTTL,
		exposeOTP:       exposeOTP,
		logger:          logger,
	}
}

// resolvedDestination is the outcome of destination resolution.
type resolvedDestination struct {
	destType  model.DestinationType
	accountID *uuid.UUID
	address   *string
	// display is the unmasked label used for notifications and prompts.
	display string
}

// Initiate validates the request, persists a pending transaction and stores
// the OTP entry and payment session under one TTL window. The OTP is
// delivered out of band; delivery failure does not fail initiation.
func (u *PaymentInitiator) Initiate(ctx context.Context, userID uuid.UUID, req *dto.InitiatePaymentRequest) (*dto.InitiatePaymentResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.NewAppError(apperrors.ErrValidation, "amount must be positive", nil)
	}
	if req.DestinationFieldCount() != 1 {
		return nil, apperrors.NewAppError(apperrors.ErrValidation, "exactly one destination must be provided", nil)
	}

	from, err := u.resolveSourceAccount(ctx, userID, req.FromAccount)
	if err != nil {
		return nil, err
	}

	dest, err := u.resolveDestination(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	if dest.accountID != nil && *dest.accountID == from.ID {
		return nil, apperrors.NewAppError(apperrors.ErrValidation, "source and destination account are the same", nil)
	}

	// Advisory check only; the authoritative one happens at settlement.
	if from.AvailableBalance().LessThan(req.Amount) {
		return nil, apperrors.NewAppError(apperrors.ErrInsufficientFunds, "insufficient funds", nil)
	}

	otp, err := GenerateOTP()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to issue otp")
	}
	sessionID, err := GenerateSessionID()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to issue session")
	}

	now := time.Now()
	tx := &model.PendingTransaction{
		ID:                   uuid.New(),
		UserID:               userID,
		FromAccountID:        from.ID,
		DestinationType:      dest.destType,
		DestinationAccountID: dest.accountID,
		DestinationAddress:   dest.address,
		Amount:               req.Amount,
		Description:          req.Description,
		Status:               model.TransactionStatusPending,
		CreatedAt:            now,
		ExpiresAt:            now.Add(u.sessionTTL),
		UpdatedAt:            now,
	}
	if err := u.transactionRepo.Create(ctx, tx); err != nil {
		return nil, apperrors.Wrap(err, "failed to create pending transaction")
	}

	session := &model.PaymentSession{
		SessionID:            sessionID,
		PendingTransactionID: tx.ID,
		UserID:               userID,
		CreatedAt:            now,
		ExpiresAt:            tx.ExpiresAt,
	}
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode session")
	}

	// One pipeline so the OTP entry and the session appear (and expire)
	// together.
	err = u.cacheRepo.SetMulti(ctx, map[string]string{
		constants.OTPPrefix + sessionID:     otp,
		constants.SessionPrefix + sessionID: string(sessionJSON),
	}, u.sessionTTL)
	if err != nil {
		reason := "failed to store confirmation session"
		if _, markErr := u.transactionRepo.UpdateStatus(ctx, tx.ID, model.TransactionStatusPending, model.TransactionStatusFailed, &reason); markErr != nil {
			u.logger.Error("failed to mark orphaned transaction failed",
				zap.String("transaction_id", tx.ID.String()),
				zap.Error(markErr))
		}
		return nil, apperrors.Wrap(err, "failed to store confirmation session")
	}

	if err := u.notifier.PublishOTP(ctx, userID, sessionID, otp); err != nil {
		u.logger.Warn("otp notification delivery failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}

	u.logger.Info("payment initiated",
		zap.String("user_id", userID.String()),
		zap.String("transaction_id", tx.ID.String()),
		zap.String("destination_type", string(dest.destType)),
		zap.String("amount", req.Amount.String()))

	resp := &dto.InitiatePaymentResponse{
		Transaction: tx,
		SessionID:   sessionID,
		ExpiresIn:   int(u.sessionTTL.Seconds()),
	}
	if u.exposeOTP {
		resp.OTPCode = otp
	}
	return resp, nil
}

func (u *PaymentInitiator) resolveSourceAccount(ctx context.Context, userID uuid.UUID, number string) (*model.Account, error) {
	account, err := u.accountRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to look up source account")
	}
	if account == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "source account not found", nil)
	}
	if account.UserID != userID {
		return nil, apperrors.NewAppError(apperrors.ErrUnauthorized, "source account belongs to a different user", nil)
	}
	return account, nil
}

func (u *PaymentInitiator) resolveDestination(ctx context.Context, userID uuid.UUID, req *dto.InitiatePaymentRequest) (*resolvedDestination, error) {
	switch {
	case req.BeneficiaryID != "":
		id, err := uuid.Parse(req.BeneficiaryID)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrValidation, "invalid beneficiary id", nil)
		}
		ben, err := u.beneficiaryRepo.GetByIDForUser(ctx, id, userID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to look up beneficiary")
		}
		return u.fromBeneficiary(ctx, ben)

	case req.BeneficiaryNickname != "":
		ben, err := u.beneficiaryRepo.GetByNicknameForUser(ctx, req.BeneficiaryNickname, userID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to look up beneficiary")
		}
		return u.fromBeneficiary(ctx, ben)

	case req.ToAccountNumber != "":
		account, err := u.accountRepo.GetByNumber(ctx, req.ToAccountNumber)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to look up destination account")
		}
		if account == nil {
			return nil, apperrors.NewAppError(apperrors.ErrNotFound, "destination account not found", nil)
		}
		return &resolvedDestination{
			destType:  model.DestinationTypeInternal,
			accountID: &account.ID,
			display:   account.Number,
		}, nil

	default:
		address := req.PaymentAddress
		return &resolvedDestination{
			destType: model.DestinationTypeExternal,
			address:  &address,
			display:  address,
		}, nil
	}
}

// fromBeneficiary maps a resolved beneficiary to a destination. A nil
// beneficiary means it does not exist or belongs to someone else; both look
// the same to the caller.
func (u *PaymentInitiator) fromBeneficiary(ctx context.Context, ben *model.Beneficiary) (*resolvedDestination, error) {
	if ben == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "beneficiary not found", nil)
	}

	if ben.AccountNumber != nil {
		account, err := u.accountRepo.GetByNumber(ctx, *ben.AccountNumber)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to look up beneficiary account")
		}
		if account == nil {
			return nil, apperrors.NewAppError(apperrors.ErrNotFound, "beneficiary account not found", nil)
		}
		return &resolvedDestination{
			destType:  model.DestinationTypeInternal,
			accountID: &account.ID,
			display:   account.Number,
		}, nil
	}

	if ben.PaymentAddress == nil {
		return nil, fmt.Errorf("beneficiary %s has no destination", ben.ID)
	}
	return &resolvedDestination{
		destType: model.DestinationTypeExternal,
		address:  ben.PaymentAddress,
		display:  *ben.PaymentAddress,
	}, nil
}
