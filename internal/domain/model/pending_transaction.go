package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusExpired   TransactionStatus = "expired"
)

type DestinationType string

const (
	DestinationTypeInternal DestinationType = "internal"
	DestinationTypeExternal DestinationType = "external"
)

// PendingTransaction is a payment awaiting confirmation. Amount and
// destination are immutable after creation; only the status (and the
// reference number on completion) changes.
type PendingTransaction struct {
	ID                   uuid.UUID         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID               uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	FromAccountID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"from_account_id"`
	DestinationType      DestinationType   `gorm:"size:20;not null" json:"destination_type"`
	DestinationAccountID *uuid.UUID        `gorm:"type:uuid" json:"destination_account_id,omitempty"`
	DestinationAddress   *string           `gorm:"size:100" json:"destination_address,omitempty"`
	Amount               decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Description          string            `gorm:"size:255" json:"description"`
	Status               TransactionStatus `gorm:"size:20;not null;index" json:"status"`
	ReferenceNumber      *string           `gorm:"size:40;uniqueIndex" json:"reference_number,omitempty"`
	FailureReason        *string           `gorm:"size:255" json:"failure_reason,omitempty"`
	CreatedAt            time.Time         `gorm:"default:now()" json:"created_at"`
	ExpiresAt            time.Time         `gorm:"not null;index" json:"expires_at"`
	UpdatedAt            time.Time         `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PendingTransaction) TableName() string {
	return "pending_transactions"
}

// IsTerminal reports whether the transaction can no longer be confirmed.
func (t *PendingTransaction) IsTerminal() bool {
	return t.Status != TransactionStatusPending
}
