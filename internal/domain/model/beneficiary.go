package model

import (
	"time"

	"github.com/google/uuid"
)

// Beneficiary is a saved payment destination belonging to a user. Either
// AccountNumber (on-platform) or PaymentAddress (off-platform) is set.
type Beneficiary struct {
	ID             uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index:idx_beneficiaries_user_nickname,unique" json:"user_id"`
	Nickname       string    `gorm:"size:100;not null;index:idx_beneficiaries_user_nickname,unique" json:"nickname"`
	AccountNumber  *string   `gorm:"size:34" json:"account_number,omitempty"`
	PaymentAddress *string   `gorm:"size:100" json:"payment_address,omitempty"`
	CreatedAt      time.Time `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Beneficiary) TableName() string {
	return "beneficiaries"
}
