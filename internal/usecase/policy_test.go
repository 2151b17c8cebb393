package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/voicebank/payment-service/internal/domain/model"
	"github.com/voicebank/payment-service/internal/usecase"
)

func TestAmountThresholdPolicy(t *testing.T) {
	policy, err := usecase.NewAmountThresholdPolicy("1000")
	assert.NoError(t, err)

	t.Run("below threshold is a confirmation", func(t *testing.T) {
		assert.Equal(t, model.ElicitationTypeConfirmation, policy.Select(decimal.NewFromFloat(999.99), false))
	})

	t.Run("at threshold is an otp", func(t *testing.T) {
		assert.Equal(t, model.ElicitationTypeOTP, policy.Select(decimal.NewFromInt(1000), false))
	})

	t.Run("above threshold is an otp", func(t *testing.T) {
		assert.Equal(t, model.ElicitationTypeOTP, policy.Select(decimal.NewFromInt(25000), false))
	})

	t.Run("supervisor flag overrides the amount", func(t *testing.T) {
		assert.Equal(t, model.ElicitationTypeSupervisorApproval, policy.Select(decimal.NewFromInt(1), true))
		assert.Equal(t, model.ElicitationTypeSupervisorApproval, policy.Select(decimal.NewFromInt(100000), true))
	})

	t.Run("invalid threshold is rejected", func(t *testing.T) {
		_, err := usecase.NewAmountThresholdPolicy("not-a-number")
		assert.Error(t, err)
	})
}
