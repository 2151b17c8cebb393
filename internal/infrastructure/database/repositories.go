package database

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	adapterrepo "github.com/voicebank/payment-service/internal/adapter/repository"
	domainrepo "github.com/voicebank/payment-service/internal/domain/repository"
)

// NewRepositories wires the concrete repository implementations.
func NewRepositories(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *domainrepo.Repositories {
	return domainrepo.NewRepositories(
		adapterrepo.NewAccountRepository(db, logger),
		adapterrepo.NewBeneficiaryRepository(db, logger),
		adapterrepo.NewTransactionRepository(db, logger),
		adapterrepo.NewRedisRepository(redisClient, logger),
	)
}
