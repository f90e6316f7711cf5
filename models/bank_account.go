package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType дискриминатор варианта счета
type AccountType string

const (
	AccountTypeCurrent AccountType = "CA"
	AccountTypeSaving  AccountType = "SA"
)

// BankAccount хранит оба варианта счета в одной таблице;
// OverDraft заполнен только у текущих счетов, InterestRate только у сберегательных
type BankAccount struct {
	ID             string             `gorm:"primaryKey;size:36"`
	Type           AccountType        `gorm:"column:type;size:2;not null;index"`
	Balance        decimal.Decimal    `gorm:"column:balance;type:decimal(20,2);not null"`
	OpeningBalance decimal.Decimal    `gorm:"column:opening_balance;type:decimal(20,2);not null"`
	OverDraft      decimal.Decimal    `gorm:"column:over_draft;type:decimal(20,2);not null"`
	InterestRate   float64            `gorm:"column:interest_rate;not null"`
	CustomerID     uint               `gorm:"column:customer_id;not null;index"`
	Customer       Customer           `gorm:"foreignKey:CustomerID;references:ID"`
	Operations     []AccountOperation `gorm:"foreignKey:BankAccountID"`
	CreatedAt      time.Time          `gorm:"column:created_at"`
	UpdatedAt      time.Time          `gorm:"column:updated_at"`
}

func (BankAccount) TableName() string {
	return "bank_accounts"
}

// IsCurrent сообщает, является ли счет текущим
func (a *BankAccount) IsCurrent() bool {
	return a.Type == AccountTypeCurrent
}

// IsSaving сообщает, является ли счет сберегательным
func (a *BankAccount) IsSaving() bool {
	return a.Type == AccountTypeSaving
}
