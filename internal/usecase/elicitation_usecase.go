package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/voicebank/payment-service/pkg/errors"

	"github.com/voicebank/payment-service/internal/domain/dto"
	"github.com/voicebank/payment-service/internal/domain/model"
	"github.com/voicebank/payment-service/internal/domain/repository"
	"github.com/voicebank/payment-service/internal/usecase/constants"
)

// ElicitationRouter manages the client round trip that collects the user's
// confirmation input for a suspended payment. It owns the elicitation state
// machine: created -> awaiting_response -> responded | cancelled | expired.
type ElicitationRouter struct {
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	cacheRepo       repository.CacheRepository
	confirmer       *PaymentConfirmer
	publisher       repository.ElicitationPublisher
	policy          TypePolicy
	validate        *validator.Validate
	defaultTimeout  time.Duration
	logger          *zap.Logger
}

// NewElicitationRouter creates an elicitation router.
func NewElicitationRouter(
	repos *repository.Repositories,
	confirmer *PaymentConfirmer,
	publisher repository.ElicitationPublisher,
	policy TypePolicy,
	defaultTimeout time.Duration,
	logger *zap.Logger,
) *ElicitationRouter {
	return &ElicitationRouter{
		accountRepo:     repos.Account,
		transactionRepo: repos.Transaction,
		cacheRepo:       repos.Cache,
		confirmer:       confirmer,
		publisher:       publisher,
		policy:          policy,
		validate:        validator.New(),
		defaultTimeout:  defaultTimeout,
		logger:          logger,
	}
}

// Create opens an elicitation for the payment behind the session. The type
// is selected by policy, the prompt is pushed to the user's client channel
// and the state moves to awaiting_response.
func (u *ElicitationRouter) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateElicitationRequest) (*model.ElicitationRequest, error) {
	session, err := u.confirmer.loadSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
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
		return nil, apperrors.NewAppError(apperrors.ErrAlreadyProcessed, "transaction already processed", nil)
	}

	elicitationType := u.policy.Select(tx.Amount, req.RequiresSupervisor)

	timeout := u.defaultTimeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}

	now := time.Now()
	state := &model.ElicitationState{
		ElicitationID:        uuid.New().String(),
		UserID:               userID,
		SessionID:            req.SessionID,
		PendingTransactionID: tx.ID,
		Type:                 elicitationType,
		Status:               model.ElicitationStatusCreated,
		CreatedAt:            now,
		ExpiresAt:            now.Add(timeout),
	}
	state.Request = model.ElicitationRequest{
		ElicitationID:  state.ElicitationID,
		Type:           elicitationType,
		Fields:         fieldsForType(elicitationType),
		Context:        u.buildContext(ctx, tx),
		TimeoutSeconds: int(timeout.Seconds()),
	}

	// Non-otp types never show the user the code; it rides along server-side
	// and is handed to the confirmer on approval.
	if elicitationType != model.ElicitationTypeOTP {
		code, err := u.cacheRepo.Get(ctx, constants.OTPPrefix+req.SessionID)
		if err != nil {
			if u.cacheRepo.IsNotFound(err) {
				return nil, apperrors.NewAppError(apperrors.ErrExpired, "confirmation window closed", nil)
			}
			return nil, apperrors.Wrap(err, "failed to load otp entry")
		}
		state.Code = code
	}

	if err := u.storeState(ctx, state); err != nil {
		return nil, err
	}

	if err := u.publisher.PublishRequest(ctx, userID, &state.Request); err != nil {
		// Leave the state in created; the client can re-request delivery or
		// let the TTL reclaim it.
		u.logger.Error("failed to publish elicitation request",
			zap.String("elicitation_id", state.ElicitationID),
			zap.Error(err))
		return nil, apperrors.Wrap(err, "failed to deliver elicitation")
	}

	state.Status = model.ElicitationStatusAwaitingResponse
	if err := u.storeState(ctx, state); err != nil {
		return nil, err
	}

	u.logger.Info("elicitation created",
		zap.String("elicitation_id", state.ElicitationID),
		zap.String("user_id", userID.String()),
		zap.String("type", string(elicitationType)))

	return &state.Request, nil
}

// SubmitResponse applies a client response to an awaiting elicitation. The
// payload shape must match the elicitation's declared type; a mismatch is a
// validation error and leaves the state untouched so the client can resubmit.
func (u *ElicitationRouter) SubmitResponse(ctx context.Context, userID uuid.UUID, elicitationID string, payload json.RawMessage) (*dto.ElicitationResult, error) {
	state, err := u.loadState(ctx, elicitationID)
	if err != nil {
		return nil, err
	}
	if state.UserID != userID {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "elicitation not found", nil)
	}
	if state.Status.IsTerminal() {
		return nil, apperrors.NewAppError(apperrors.ErrAlreadyProcessed, "elicitation already settled", nil)
	}

	if time.Now().After(state.ExpiresAt) {
		u.transitionExpired(ctx, state)
		return nil, apperrors.NewAppError(apperrors.ErrExpired, "elicitation expired", nil)
	}

	code, declined, err := u.extractCode(state, payload)
	if err != nil {
		return nil, err
	}
	if declined {
		u.settleCancelled(ctx, state, "declined by user")
		return &dto.ElicitationResult{
			ElicitationID: state.ElicitationID,
			Status:        model.ElicitationStatusCancelled,
		}, nil
	}

	tx, err := u.confirmer.Confirm(ctx, userID, state.SessionID, code)
	if err != nil {
		switch apperrors.CodeOf(err) {
		case apperrors.ErrInvalidOTP:
			// Wrong code: stay in awaiting_response for a retry.
			return nil, err
		case apperrors.ErrExpired:
			u.transitionExpired(ctx, state)
			return nil, err
		default:
			return nil, err
		}
	}

	state.Status = model.ElicitationStatusResponded
	if err := u.storeState(ctx, state); err != nil {
		u.logger.Warn("failed to record responded state",
			zap.String("elicitation_id", state.ElicitationID),
			zap.Error(err))
	}

	u.logger.Info("elicitation responded",
		zap.String("elicitation_id", state.ElicitationID),
		zap.String("transaction_id", tx.ID.String()))

	return &dto.ElicitationResult{
		ElicitationID: state.ElicitationID,
		Status:        model.ElicitationStatusResponded,
		Transaction:   tx,
	}, nil
}

// Cancel aborts an in-flight elicitation and fails the underlying payment.
// Cancelling an already terminal elicitation is a no-op.
func (u *ElicitationRouter) Cancel(ctx context.Context, userID uuid.UUID, elicitationID, reason string) error {
	state, err := u.loadState(ctx, elicitationID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if state.UserID != userID {
		return apperrors.NewAppError(apperrors.ErrNotFound, "elicitation not found", nil)
	}
	if state.Status.IsTerminal() {
		return nil
	}

	if reason == "" {
		reason = "cancelled by user"
	}
	u.settleCancelled(ctx, state, reason)
	return nil
}

// extractCode validates the payload against the declared type and returns
// the OTP to hand to the confirmer. declined is true when a confirmation
// elicitation was answered with confirmed=false.
func (u *ElicitationRouter) extractCode(state *model.ElicitationState, payload json.RawMessage) (code string, declined bool, err error) {
	switch state.Type {
	case model.ElicitationTypeOTP:
		var p dto.OTPResponsePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return "", false, apperrors.NewAppError(apperrors.ErrValidation, "malformed otp payload", err)
		}
		if err := u.validate.Struct(&p); err != nil {
			return "", false, apperrors.NewAppError(apperrors.ErrValidation, "otp payload does not match elicitation type", err)
		}
		return p.OTPCode, false, nil

	case model.ElicitationTypeConfirmation:
		var p dto.ConfirmationResponsePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return "", false, apperrors.NewAppError(apperrors.ErrValidation, "malformed confirmation payload", err)
		}
		if err := u.validate.Struct(&p); err != nil {
			return "", false, apperrors.NewAppError(apperrors.ErrValidation, "confirmation payload does not match elicitation type", err)
		}
		if !*p.Confirmed {
			return "", true, nil
		}
		return state.Code, false, nil

	case model.ElicitationTypeSupervisorApproval:
		var p dto.SupervisorApprovalPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return "", false, apperrors.NewAppError(apperrors.ErrValidation, "malformed approval payload", err)
		}
		if err := u.validate.Struct(&p); err != nil {
			return "", false, apperrors.NewAppError(apperrors.ErrValidation, "approval payload does not match elicitation type", err)
		}
		return state.Code, false, nil

	default:
		return "", false, apperrors.NewAppError(apperrors.ErrInternal, "unknown elicitation type", nil)
	}
}

// settleCancelled marks the elicitation cancelled, fails the pending
// transaction and tears down the session keys.
func (u *ElicitationRouter) settleCancelled(ctx context.Context, state *model.ElicitationState, reason string) {
	if _, err := u.transactionRepo.UpdateStatus(ctx, state.PendingTransactionID, model.TransactionStatusPending, model.TransactionStatusFailed, &reason); err != nil {
		u.logger.Error("failed to fail cancelled transaction",
			zap.String("transaction_id", state.PendingTransactionID.String()),
			zap.Error(err))
	}
	u.teardown(ctx, state, model.ElicitationStatusCancelled)

	u.logger.Info("elicitation cancelled",
		zap.String("elicitation_id", state.ElicitationID),
		zap.String("reason", reason))
}

// transitionExpired marks the elicitation expired and the transaction with it.
func (u *ElicitationRouter) transitionExpired(ctx context.Context, state *model.ElicitationState) {
	if _, err := u.transactionRepo.UpdateStatus(ctx, state.PendingTransactionID, model.TransactionStatusPending, model.TransactionStatusExpired, nil); err != nil {
		u.logger.Error("failed to expire transaction",
			zap.String("transaction_id", state.PendingTransactionID.String()),
			zap.Error(err))
	}
	u.teardown(ctx, state, model.ElicitationStatusExpired)
}

func (u *ElicitationRouter) teardown(ctx context.Context, state *model.ElicitationState, status model.ElicitationStatus) {
	if err := u.cacheRepo.DeleteMulti(ctx, []string{
		constants.OTPPrefix + state.SessionID,
		constants.SessionPrefix + state.SessionID,
	}); err != nil {
		u.logger.Warn("failed to delete session keys",
			zap.String("session_id", state.SessionID),
			zap.Error(err))
	}

	state.Status = status
	if err := u.storeState(ctx, state); err != nil {
		u.logger.Warn("failed to record terminal elicitation state",
			zap.String("elicitation_id", state.ElicitationID),
			zap.Error(err))
	}
}

func (u *ElicitationRouter) storeState(ctx context.Context, state *model.ElicitationState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode elicitation state")
	}

	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := u.cacheRepo.Set(ctx, constants.ElicitationPrefix+state.ElicitationID, string(raw), ttl); err != nil {
		return apperrors.Wrap(err, "failed to store elicitation state")
	}
	return nil
}

func (u *ElicitationRouter) loadState(ctx context.Context, elicitationID string) (*model.ElicitationState, error) {
	raw, err := u.cacheRepo.Get(ctx, constants.ElicitationPrefix+elicitationID)
	if err != nil {
		if u.cacheRepo.IsNotFound(err) {
			return nil, apperrors.NewAppError(apperrors.ErrNotFound, "elicitation not found", nil)
		}
		return nil, apperrors.Wrap(err, "failed to load elicitation state")
	}

	var state model.ElicitationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode elicitation state")
	}
	return &state, nil
}

// buildContext assembles the masked payment summary shown to the user.
func (u *ElicitationRouter) buildContext(ctx context.Context, tx *model.PendingTransaction) model.ElicitationContext {
	payee := "Unknown"
	if tx.DestinationAddress != nil {
		payee = MaskPayee(*tx.DestinationAddress)
	} else if tx.DestinationAccountID != nil {
		if dest, err := u.accountRepo.GetByID(ctx, *tx.DestinationAccountID); err == nil && dest != nil {
			payee = MaskAccountNumber(dest.Number)
		}
	}

	account := "Unknown"
	if from, err := u.accountRepo.GetByID(ctx, tx.FromAccountID); err == nil && from != nil {
		account = MaskAccountNumber(from.Number)
	}

	return model.ElicitationContext{
		Amount:      FormatAmount(tx.Amount),
		Payee:       payee,
		Account:     account,
		Description: tx.Description,
	}
}

// fieldsForType declares the inputs the client must collect for each
// elicitation type.
func fieldsForType(t model.ElicitationType) []model.ElicitationField {
	switch t {
	case model.ElicitationTypeOTP:
		return []model.ElicitationField{{
			Name:      "otp_code",
			Label:     "One-time password",
			FieldType: "string",
			Required:  true,
			MinLength: 6,
			MaxLength: 6,
			Pattern:   `^\d{6}$`,
			HelpText:  "Enter the 6-digit code sent to your registered device",
		}}
	case model.ElicitationTypeConfirmation:
		return []model.ElicitationField{{
			Name:      "confirmed",
			Label:     "Approve this payment?",
			FieldType: "boolean",
			Required:  true,
		}}
	case model.ElicitationTypeSupervisorApproval:
		return []model.ElicitationField{
			{
				Name:      "supervisor_id",
				Label:     "Supervisor ID",
				FieldType: "string",
				Required:  true,
			},
			{
				Name:      "approval_code",
				Label:     "Approval code",
				FieldType: "string",
				Required:  true,
			},
		}
	default:
		return nil
	}
}
