package usecase_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	apperrors "github.com/voicebank/payment-service/pkg/errors"

	"github.com/voicebank/payment-service/internal/domain/model"
	"github.com/voicebank/payment-service/internal/domain/repository"
	"github.com/voicebank/payment-service/internal/usecase"
	"github.com/voicebank/payment-service/internal/usecase/constants"
)

// seedSession stores a session and OTP entry the way Initiate would.
func seedSession(t *testing.T, cache *fakeCache, userID uuid.UUID, txID uuid.UUID, sessionID, otp string, ttl time.Duration) {
	t.Helper()
	now := time.Now()
	session := &model.PaymentSession{
		SessionID:            sessionID,
		PendingTransactionID: txID,
		UserID:               userID,
		CreatedAt:            now,
		ExpiresAt:            now.Add(ttl),
	}
	raw, err := json.Marshal(session)
	assert.NoError(t, err)

	// Store with a generous cache TTL; session.ExpiresAt drives expiry in
	// the tests.
	assert.NoError(t, cache.SetMulti(context.Background(), map[string]string{
		constants.OTPPrefix + sessionID:     otp,
		constants.SessionPrefix + sessionID: string(raw),
	}, time.Hour))
}

func pendingTx(userID uuid.UUID) *model.PendingTransaction {
	return &model.PendingTransaction{
		ID:            uuid.New(),
		UserID:        userID,
		FromAccountID: uuid.New(),
		Amount:        decimal.NewFromInt(1500),
		Status:        model.TransactionStatusPending,
		ExpiresAt:     time.Now().Add(5 * time.Minute),
	}
}

func TestPaymentConfirmer_Confirm(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	userID := uuid.New()
	sessionID := "a1b2c3d4"

	t.Run("successful confirmation settles the payment", func(t *testing.T) {
		mockTx := new(MockTransactionRepository)
		cache := newFakeCache()

		tx := pendingTx(userID)
		seedSession(t, cache, userID, tx.ID, sessionID, "123456", 5*time.Minute)

		reference := "PAY-20260830-ABCDEF0123"
		completed := *tx
		completed.Status = model.TransactionStatusCompleted
		completed.ReferenceNumber = &reference

		mockTx.On("GetByID", ctx, tx.ID).Return(tx, nil)
		mockTx.On("FinalizeTransfer", ctx, tx.ID, mock.AnythingOfType("string")).Return(&completed, nil)

		confirmer := usecase.NewPaymentConfirmer(newRepos(new(MockAccountRepository), new(MockBeneficiaryRepository), mockTx, cache), logger)

		result, err := confirmer.Confirm(ctx, userID, sessionID, "123456")

		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStatusCompleted, result.Status)
		assert.NotNil(t, result.ReferenceNumber)

		// The OTP is consumed; the session stays until TTL so replays get a
		// definite answer.
		assert.False(t, cache.has(constants.OTPPrefix+sessionID))
		assert.True(t, cache.has(constants.SessionPrefix+sessionID))

		mockTx.AssertExpectations(t)
	})

	t.Run("replayed confirm reports already processed", func(t *testing.T) {
		mockTx := new(MockTransactionRepository)
		cache := newFakeCache()

		tx := pendingTx(userID)
		tx.Status = model.TransactionStatusCompleted
		seedSession(t, cache, userID, tx.ID, sessionID, "123456", 5*time.Minute)

		mockTx.On("GetByID", ctx, tx.ID).Return(tx, nil)

		confirmer := usecase.NewPaymentConfirmer(newRepos(new(MockAccountRepository), new(MockBeneficiaryRepository), mockTx, cache), logger)

		_, err := confirmer.Confirm(ctx, userID, sessionID, "123456")

		assert.True(t, apperrors.IsCode(err, apperrors.ErrAlreadyProcessed))
		mockTx.AssertNotCalled(t, "FinalizeTransfer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong otp leaves the entry for a retry", func(t *testing.T) {
		mockTx := new(MockTransactionRepository)
		cache := newFakeCache()

		tx := pendingTx(userID)
		seedSession(t, cache, userID, tx.ID, sessionID, "123456", 5*time.Minute)
		mockTx.On("GetByID", ctx, tx.ID).Return(tx, nil)

		confirmer := usecase.NewPaymentConfirmer(newRepos(new(MockAccountRepository), new(MockBeneficiaryRepository), mockTx, cache), logger)

		_, err := confirmer.Confirm(ctx, userID, sessionID, "654321")

		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidOTP))
		assert.True(t, cache.has(constants.OTPPrefix+sessionID))
		assert.True(t, cache.has(constants.SessionPrefix+sessionID))
		mockTx.AssertNotCalled(t, "FinalizeTransfer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown session", func(t *testing.T) {
		confirmer := usecase.NewPaymentConfirmer(newRepos(new(MockAccountRepository), new(MockBeneficiaryRepository), new(MockTransactionRepository), newFakeCache()), logger)

		_, err := confirmer.Confirm(ctx, userID, "missing", "123456")

		assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
	})

	t.Run("session of another user looks missing", func(t *testing.T) {
		cache := newFakeCache()
		tx := pendingTx(uuid.New())
		seedSession(t, cache, tx.UserID, tx.ID, sessionID, "123456", 5*time.Minute)

		confirmer := usecase.NewPaymentConfirmer(newRepos(new(MockAccountRepository), new(MockBeneficiaryRepository), new(MockTransactionRepository), cache), logger)

		_, err := confirmer.Confirm(ctx, userID, sessionID, "123456")

		assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
	})

	t.Run("expired session window", func(t *testing.T) {
		mockTx := new(MockTransactionRepository)
		cache := newFakeCache()

		tx := pendingTx(userID)
		seedSession(t, cache, userID, tx.ID, sessionID, "123456", -time.Minute)
		mockTx.On("GetByID", ctx, tx.ID).Return(tx, nil)
		mockTx.On("UpdateStatus", ctx, tx.ID, model.TransactionStatusPending, model.TransactionStatusExpired, (*string)(nil)).Return(true, nil)

		confirmer := usecase.NewPaymentConfirmer(newRepos(new(MockAccountRepository), new(MockBeneficiaryRepository), mockTx, cache), logger)

		_, err := confirmer.Confirm(ctx, userID, sessionID, "123456")

		assert.True(t, apperrors.IsCode(err, apperrors.ErrExpired))
		assert.False(t, cache.has(constants.OTPPrefix+sessionID))
		mockTx.AssertExpectations(t)
	})

	t.Run("insufficient funds at settlement", func(t *testing.T) {
		mockTx := new(MockTransactionRepository)
		cache := newFakeCache()

		tx := pendingTx(userID)
		seedSession(t, cache, userID, tx.ID, sessionID, "123456", 5*time.Minute)
		mockTx.On("GetByID", ctx, tx.ID).Return(tx, nil)
		mockTx.On("FinalizeTransfer", ctx, tx.ID, mock.Anything).
			Return(nil, apperrors.NewAppError(apperrors.ErrInsufficientFunds, "insufficient funds", nil))

		confirmer := usecase.NewPaymentConfirmer(newRepos(new(MockAccountRepository), new(MockBeneficiaryRepository), mockTx, cache), logger)

		_, err := confirmer.Confirm(ctx, userID, sessionID, "123456")

		assert.True(t, apperrors.IsCode(err, apperrors.ErrInsufficientFunds))
		// Terminal failure consumes the code.
		assert.False(t, cache.has(constants.OTPPrefix+sessionID))
	})
}

// racingTransactionRepo mirrors the row-lock semantics of the real
// repository: the first FinalizeTransfer sees status=pending and settles,
// every later caller sees the terminal row.
type racingTransactionRepo struct {
	mu sync.Mutex
	tx model.PendingTransaction
}

func (r *racingTransactionRepo) Create(_ context.Context, _ *model.PendingTransaction) error {
	return nil
}

func (r *racingTransactionRepo) GetByID(_ context.Context, id uuid.UUID) (*model.PendingTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tx.ID != id {
		return nil, nil
	}
	snapshot := r.tx
	return &snapshot, nil
}

func (r *racingTransactionRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.TransactionStatus, reason *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tx.ID != id || r.tx.Status != from {
		return false, nil
	}
	r.tx.Status = to
	if reason != nil {
		r.tx.FailureReason = reason
	}
	return true, nil
}

func (r *racingTransactionRepo) MarkExpiredBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *racingTransactionRepo) FinalizeTransfer(_ context.Context, id uuid.UUID, referenceNumber string) (*model.PendingTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tx.ID != id {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "pending transaction not found", nil)
	}
	if r.tx.Status != model.TransactionStatusPending {
		return nil, apperrors.NewAppError(apperrors.ErrAlreadyProcessed, "transaction already processed", nil)
	}
	r.tx.Status = model.TransactionStatusCompleted
	r.tx.ReferenceNumber = &referenceNumber
	snapshot := r.tx
	return &snapshot, nil
}

func TestPaymentConfirmer_ConcurrentConfirms(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	sessionID := "a1b2c3d4"

	tx := pendingTx(userID)
	repo := &racingTransactionRepo{tx: *tx}
	cache := newFakeCache()
	seedSession(t, cache, userID, tx.ID, sessionID, "123456", 5*time.Minute)

	confirmer := usecase.NewPaymentConfirmer(
		repository.NewRepositories(new(MockAccountRepository), new(MockBeneficiaryRepository), repo, cache),
		zap.NewNop(),
	)

	const workers = 16
	start := make(chan struct{})
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := confirmer.Confirm(ctx, userID, sessionID, "123456")
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		// Losers get a definite answer, never a double settlement.
		code := apperrors.CodeOf(err)
		assert.Contains(t, []string{apperrors.ErrAlreadyProcessed, apperrors.ErrNotFound}, code)
	}
	assert.Equal(t, 1, successes)

	// The OTP entry was consumed exactly once and the transaction settled
	// exactly once.
	assert.Equal(t, 1, cache.consumedCount())
	assert.False(t, cache.has(constants.OTPPrefix+sessionID))

	final, err := repo.GetByID(ctx, tx.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.TransactionStatusCompleted, final.Status)
	assert.NotNil(t, final.ReferenceNumber)
}
