package services

import "time"

// CustomerDTO представляет данные клиента
type CustomerDTO struct {
	ID    uint   `json:"id"`
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"omitempty,email,max=100"`
}

// BankAccountDTO общий вид счета; конкретный вариант определяется полем Type
type BankAccountDTO interface {
	AccountID() string
	AccountType() string
}

// CurrentBankAccountDTO представляет текущий счет
type CurrentBankAccountDTO struct {
	Type        string      `json:"type"`
	ID          string      `json:"id"`
	Balance     float64     `json:"balance"`
	CreatedAt   time.Time   `json:"createdAt"`
	CustomerDTO CustomerDTO `json:"customerDTO"`
	OverDraft   float64     `json:"overDraft"`
}

func (d *CurrentBankAccountDTO) AccountID() string   { return d.ID }
func (d *CurrentBankAccountDTO) AccountType() string { return d.Type }

// SavingBankAccountDTO представляет сберегательный счет
type SavingBankAccountDTO struct {
	Type         string      `json:"type"`
	ID           string      `json:"id"`
	Balance      float64     `json:"balance"`
	CreatedAt    time.Time   `json:"createdAt"`
	CustomerDTO  CustomerDTO `json:"customerDTO"`
	InterestRate float64     `json:"interestRate"`
}

func (d *SavingBankAccountDTO) AccountID() string   { return d.ID }
func (d *SavingBankAccountDTO) AccountType() string { return d.Type }

const (
	CurrentAccountType = "CurrentAccount"
	SavingAccountType  = "SavingAccount"
)

// AccountOperationDTO представляет операцию по счету
type AccountOperationDTO struct {
	ID            uint      `json:"id"`
	OperationDate time.Time `json:"operationDate"`
	Amount        float64   `json:"amount"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
}

// AccountHistoryDTO страница истории операций счета
type AccountHistoryDTO struct {
	AccountID   string                `json:"accountId"`
	Balance     float64               `json:"balance"`
	CurrentPage int                   `json:"currentPage"`
	TotalPages  int                   `json:"totalPages"`
	PageSize    int                   `json:"pageSize"`
	Operations  []AccountOperationDTO `json:"accountOperationDTOS"`
}

// ReconciliationDTO результат сверки сохраненного баланса с журналом операций
type ReconciliationDTO struct {
	AccountID      string  `json:"accountId"`
	StoredBalance  float64 `json:"storedBalance"`
	LedgerBalance  float64 `json:"ledgerBalance"`
	OpeningBalance float64 `json:"openingBalance"`
	TotalCredit    float64 `json:"totalCredit"`
	TotalDebit     float64 `json:"totalDebit"`
	Consistent     bool    `json:"consistent"`
}

// CreateCurrentAccountRequest данные для открытия текущего счета
type CreateCurrentAccountRequest struct {
	InitialBalance float64 `json:"initialBalance" validate:"gte=0"`
	OverDraft      float64 `json:"overDraft" validate:"gte=0"`
	CustomerID     uint    `json:"customerId" validate:"required"`
}

// CreateSavingAccountRequest данные для открытия сберегательного счета
type CreateSavingAccountRequest struct {
	InitialBalance float64 `json:"initialBalance" validate:"gte=0"`
	InterestRate   float64 `json:"interestRate" validate:"gte=0"`
	CustomerID     uint    `json:"customerId" validate:"required"`
}

// DebitRequest данные для списания
type DebitRequest struct {
	AccountID   string  `json:"accountId" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=255"`
}

// CreditRequest данные для зачисления
type CreditRequest struct {
	AccountID   string  `json:"accountId" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=255"`
}

// TransferRequest данные для перевода между счетами
type TransferRequest struct {
	AccountSource      string  `json:"accountSource" validate:"required"`
	AccountDestination string  `json:"accountDestination" validate:"required"`
	Amount             float64 `json:"amount" validate:"required,gt=0"`
}
