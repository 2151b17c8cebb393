package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/voicebank/payment-service/internal/domain/repository"
)

// ExpirySweeper periodically settles pending transactions whose confirmation
// window has closed. Redis reclaims the OTP and session keys on its own via
// TTL; the sweeper keeps the database rows in step.
type ExpirySweeper struct {
	transactionRepo repository.TransactionRepository
	interval        time.Duration
	logger          *zap.Logger
}

// NewExpirySweeper creates an expiry sweeper.
func NewExpirySweeper(transactionRepo repository.TransactionRepository, interval time.Duration, logger *zap.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		transactionRepo: transactionRepo,
		interval:        interval,
		logger:          logger,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled. The conditional
// status update makes each sweep idempotent and safe to run alongside lazy
// expiry in the confirm path.
func (w *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("expiry sweeper started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpirySweeper) sweep(ctx context.Context) {
	count, err := w.transactionRepo.MarkExpiredBefore(ctx, time.Now())
	if err != nil {
		w.logger.Error("sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		w.logger.Info("expired overdue transactions", zap.Int64("count", count))
	}
}
