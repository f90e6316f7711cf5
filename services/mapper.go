package services

import (
	"ebanking/models"
)

// BankAccountMapper преобразует сущности в DTO и обратно; без побочных эффектов
type BankAccountMapper struct{}

func (BankAccountMapper) FromCustomer(customer *models.Customer) CustomerDTO {
	return CustomerDTO{
		ID:    customer.ID,
		Name:  customer.Name,
		Email: customer.Email,
	}
}

// FromCustomerDTO используется и при создании, и при обновлении клиента
func (BankAccountMapper) FromCustomerDTO(dto CustomerDTO) *models.Customer {
	return &models.Customer{
		ID:    dto.ID,
		Name:  dto.Name,
		Email: dto.Email,
	}
}

func (m BankAccountMapper) FromCurrentBankAccount(account *models.BankAccount) *CurrentBankAccountDTO {
	return &CurrentBankAccountDTO{
		Type:        CurrentAccountType,
		ID:          account.ID,
		Balance:     account.Balance.InexactFloat64(),
		CreatedAt:   account.CreatedAt,
		CustomerDTO: m.FromCustomer(&account.Customer),
		OverDraft:   account.OverDraft.InexactFloat64(),
	}
}

func (m BankAccountMapper) FromSavingBankAccount(account *models.BankAccount) *SavingBankAccountDTO {
	return &SavingBankAccountDTO{
		Type:         SavingAccountType,
		ID:           account.ID,
		Balance:      account.Balance.InexactFloat64(),
		CreatedAt:    account.CreatedAt,
		CustomerDTO:  m.FromCustomer(&account.Customer),
		InterestRate: account.InterestRate,
	}
}

// FromBankAccount выбирает вид по дискриминатору счета
func (m BankAccountMapper) FromBankAccount(account *models.BankAccount) BankAccountDTO {
	if account.IsSaving() {
		return m.FromSavingBankAccount(account)
	}
	return m.FromCurrentBankAccount(account)
}

func (BankAccountMapper) FromAccountOperation(operation *models.AccountOperation) AccountOperationDTO {
	return AccountOperationDTO{
		ID:            operation.ID,
		OperationDate: operation.OperationDate,
		Amount:        operation.Amount.InexactFloat64(),
		Type:          string(operation.Type),
		Description:   operation.Description,
	}
}
