package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/voicebank/payment-service/internal/domain/model"
	"github.com/voicebank/payment-service/internal/domain/repository"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByNumber(ctx context.Context, number string) (*model.Account, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

// MockBeneficiaryRepository is a mock implementation of BeneficiaryRepository
type MockBeneficiaryRepository struct {
	mock.Mock
}

func (m *MockBeneficiaryRepository) GetByIDForUser(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*model.Beneficiary, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Beneficiary), args.Error(1)
}

func (m *MockBeneficiaryRepository) GetByNicknameForUser(ctx context.Context, nickname string, userID uuid.UUID) (*model.Beneficiary, error) {
	args := m.Called(ctx, nickname, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Beneficiary), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *model.PendingTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PendingTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PendingTransaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.TransactionStatus, reason *string) (bool, error) {
	args := m.Called(ctx, id, from, to, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) MarkExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) FinalizeTransfer(ctx context.Context, id uuid.UUID, referenceNumber string) (*model.PendingTransaction, error) {
	args := m.Called(ctx, id, referenceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PendingTransaction), args.Error(1)
}

// MockElicitationPublisher is a mock implementation of ElicitationPublisher
type MockElicitationPublisher struct {
	mock.Mock
}

func (m *MockElicitationPublisher) PublishRequest(ctx context.Context, userID uuid.UUID, request *model.ElicitationRequest) error {
	args := m.Called(ctx, userID, request)
	return args.Error(0)
}

// MockNotificationPublisher is a mock implementation of NotificationPublisher
type MockNotificationPublisher struct {
	mock.Mock
}

func (m *MockNotificationPublisher) PublishOTP(ctx context.Context, userID uuid.UUID, sessionID string, code string) error {
	args := m.Called(ctx, userID, sessionID, code)
	return args.Error(0)
}

var errCacheMiss = errors.New("cache miss")

// fakeCache is an in-memory CacheRepository with real TTL semantics, close
// enough to Redis for usecase tests.
type fakeCache struct {
	mu         sync.Mutex
	items      map[string]fakeCacheItem
	getDelHits int
}

type fakeCacheItem struct {
	value     string
	expiresAt time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]fakeCacheItem{}}
}

func (f *fakeCache) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = fakeCacheItem{value: value, expiresAt: time.Now().Add(expiration)}
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(key)
}

func (f *fakeCache) GetDel(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, err := f.get(key)
	if err != nil {
		return "", err
	}
	delete(f.items, key)
	f.getDelHits++
	return value, nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
	return nil
}

func (f *fakeCache) SetMulti(_ context.Context, items map[string]string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, value := range items {
		f.items[key] = fakeCacheItem{value: value, expiresAt: time.Now().Add(expiration)}
	}
	return nil
}

func (f *fakeCache) DeleteMulti(_ context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.items, key)
	}
	return nil
}

func (f *fakeCache) IsNotFound(err error) bool {
	return errors.Is(err, errCacheMiss)
}

func (f *fakeCache) get(key string) (string, error) {
	item, ok := f.items[key]
	if !ok || time.Now().After(item.expiresAt) {
		delete(f.items, key)
		return "", errCacheMiss
	}
	return item.value, nil
}

// consumedCount returns how many GetDel calls actually removed a key.
func (f *fakeCache) consumedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getDelHits
}

// has reports whether the key currently exists, for assertions.
func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.get(key)
	return err == nil
}

func newRepos(account *MockAccountRepository, beneficiary *MockBeneficiaryRepository, tx *MockTransactionRepository, cache *fakeCache) *repository.Repositories {
	return repository.NewRepositories(account, beneficiary, tx, cache)
}
