package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCredit   AccountType = "credit"
)

// Account represents a user-owned account in the directory.
type Account struct {
	ID          uuid.UUID       `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Number      string          `gorm:"size:34;uniqueIndex;not null" json:"number"`
	Type        AccountType     `gorm:"size:20;not null" json:"type"`
	Balance     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"credit_limit"`
	Currency    string          `gorm:"size:3;default:'INR'" json:"currency"`
	CreatedAt   time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// AvailableBalance returns the spendable amount. For credit accounts the
// balance column tracks the amount drawn, so headroom is limit minus balance.
func (a *Account) AvailableBalance() decimal.Decimal {
	if a.Type == AccountTypeCredit {
		return a.CreditLimit.Sub(a.Balance)
	}
	return a.Balance
}
