package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType представляет тип операции по счету
type OperationType string

const (
	OperationTypeDebit  OperationType = "DEBIT"
	OperationTypeCredit OperationType = "CREDIT"
)

// AccountOperation запись журнала операций; после создания не изменяется
type AccountOperation struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"`
	Type          OperationType   `gorm:"column:type;size:10;not null"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null"`
	Description   string          `gorm:"column:description;size:255"`
	OperationDate time.Time       `gorm:"column:operation_date;not null;index"`
	BankAccountID string          `gorm:"column:bank_account_id;size:36;not null;index"`
}

func (AccountOperation) TableName() string {
	return "account_operations"
}
