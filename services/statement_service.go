package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ebanking/repositories"

	"github.com/beevik/etree"
	"gorm.io/gorm"
)

// StatementService формирует XML-выписку по счету
type StatementService struct {
	store  *repositories.Store
	mapper BankAccountMapper
	clock  func() time.Time
}

// NewStatementService создает новый экземпляр StatementService
func NewStatementService(db *gorm.DB) *StatementService {
	return &StatementService{
		store: repositories.NewStore(db),
		clock: time.Now,
	}
}

// ExportStatement возвращает выписку со всеми операциями счета, новые первыми
func (s *StatementService) ExportStatement(ctx context.Context, accountID string) ([]byte, error) {
	account, err := s.store.Accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBankAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("load bank account: %w", err)
	}

	operations, err := s.store.Operations.FindNewestFirstByBankAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account operations: %w", err)
	}

	view := s.mapper.FromBankAccount(account)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	statement := doc.CreateElement("statement")
	statement.CreateAttr("accountId", account.ID)
	statement.CreateAttr("type", view.AccountType())
	statement.CreateAttr("generatedAt", s.clock().UTC().Format(time.RFC3339))

	customer := statement.CreateElement("customer")
	customer.CreateAttr("id", strconv.FormatUint(uint64(account.Customer.ID), 10))
	customer.CreateAttr("name", account.Customer.Name)
	customer.CreateAttr("email", account.Customer.Email)

	statement.CreateElement("openedAt").SetText(account.CreatedAt.UTC().Format(time.RFC3339))
	statement.CreateElement("balance").SetText(account.Balance.StringFixed(2))
	if account.IsCurrent() {
		statement.CreateElement("overDraft").SetText(account.OverDraft.StringFixed(2))
	} else {
		statement.CreateElement("interestRate").SetText(strconv.FormatFloat(account.InterestRate, 'f', -1, 64))
	}

	list := statement.CreateElement("operations")
	list.CreateAttr("count", strconv.Itoa(len(operations)))
	for _, op := range operations {
		el := list.CreateElement("operation")
		el.CreateAttr("id", strconv.FormatUint(uint64(op.ID), 10))
		el.CreateAttr("type", string(op.Type))
		el.CreateAttr("date", op.OperationDate.UTC().Format(time.RFC3339))
		el.CreateElement("amount").SetText(op.Amount.StringFixed(2))
		el.CreateElement("description").SetText(op.Description)
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}
