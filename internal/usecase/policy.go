package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/voicebank/payment-service/internal/domain/model"
)

// TypePolicy decides which elicitation type a payment requires.
type TypePolicy interface {
	Select(amount decimal.Decimal, requiresSupervisor bool) model.ElicitationType
}

// AmountThresholdPolicy picks supervisor_approval for flagged transactions,
// otp at or above the threshold and confirmation below it.
type AmountThresholdPolicy struct {
	threshold decimal.Decimal
}

// NewAmountThresholdPolicy parses the configured threshold amount.
func NewAmountThresholdPolicy(threshold string) (*AmountThresholdPolicy, error) {
	t, err := decimal.NewFromString(threshold)
	if err != nil {
		return nil, fmt.Errorf("invalid otp threshold %q: %w", threshold, err)
	}
	return &AmountThresholdPolicy{threshold: t}, nil
}

func (p *AmountThresholdPolicy) Select(amount decimal.Decimal, requiresSupervisor bool) model.ElicitationType {
	if requiresSupervisor {
		return model.ElicitationTypeSupervisorApproval
	}
	if amount.GreaterThanOrEqual(p.threshold) {
		return model.ElicitationTypeOTP
	}
	return model.ElicitationTypeConfirmation
}
