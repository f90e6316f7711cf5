package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Customer представляет клиента банка
type Customer struct {
	ID           uint          `gorm:"primaryKey;autoIncrement"`
	Name         string        `gorm:"column:name;not null;size:100"`
	Email        string        `gorm:"column:email;size:100;index"`
	BankAccounts []BankAccount `gorm:"foreignKey:CustomerID"`
	CreatedAt    time.Time     `gorm:"column:created_at"`
	UpdatedAt    time.Time     `gorm:"column:updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// BeforeSave хук для проверки перед созданием и обновлением
func (c *Customer) BeforeSave(tx *gorm.DB) error {
	if len(c.Name) > 100 {
		return errors.New("customer name must be at most 100 characters")
	}
	if len(c.Email) > 100 {
		return errors.New("customer email must be at most 100 characters")
	}
	return nil
}
