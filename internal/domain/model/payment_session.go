package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentSession is the suspended state between Initiate and Confirm. It
// lives in Redis under the opaque session id with the same TTL as the OTP.
type PaymentSession struct {
	SessionID            string    `json:"session_id"`
	PendingTransactionID uuid.UUID `json:"pending_transaction_id"`
	UserID               uuid.UUID `json:"user_id"`
	CreatedAt            time.Time `json:"created_at"`
	ExpiresAt            time.Time `json:"expires_at"`
}

// IsExpired reports whether the session window has closed.
func (s *PaymentSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
