package dto

import (
	"github.com/shopspring/decimal"

	"github.com/voicebank/payment-service/internal/domain/model"
)

// InitiatePaymentRequest starts the two-step payment flow. Exactly one
// destination field must be set.
type InitiatePaymentRequest struct {
	FromAccount         string          `json:"from_account" validate:"required"`
	BeneficiaryID       string          `json:"beneficiary_id,omitempty"`
	BeneficiaryNickname string          `json:"beneficiary_nickname,omitempty"`
	ToAccountNumber     string          `json:"to_account_number,omitempty"`
	PaymentAddress      string          `json:"payment_address,omitempty"`
	Amount              decimal.Decimal `json:"amount" validate:"required"`
	Description         string          `json:"description,omitempty" validate:"max=255"`
}

// DestinationFieldCount returns how many destination fields are set.
func (r *InitiatePaymentRequest) DestinationFieldCount() int {
	count := 0
	for _, v := range []string{r.BeneficiaryID, r.BeneficiaryNickname, r.ToAccountNumber, r.PaymentAddress} {
		if v != "" {
			count++
		}
	}
	return count
}

// InitiatePaymentResponse carries the session handle back to the client.
// OTPCode is only populated outside production.
type InitiatePaymentResponse struct {
	Transaction *model.PendingTransaction `json:"transaction"`
	SessionID   string                    `json:"session_id"`
	ExpiresIn   int                       `json:"expires_in_seconds"`
	OTPCode     string                    `json:"otp_code,omitempty"`
}

// ConfirmPaymentRequest finalizes a previously initiated payment.
type ConfirmPaymentRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	OTPCode   string `json:"otp_code" validate:"required,len=6,numeric"`
}
