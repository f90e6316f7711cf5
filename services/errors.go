package services

import "errors"

// Доменные ошибки сервиса; контроллеры сопоставляют их с HTTP-статусами через errors.Is
var (
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrBankAccountNotFound  = errors.New("bank account not found")
	ErrBalanceNotSufficient = errors.New("balance not sufficient")
	ErrCustomerHasAccounts  = errors.New("customer still owns bank accounts")
	ErrInvalidPageRequest   = errors.New("invalid page request")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidAmount        = errors.New("invalid amount")
)
