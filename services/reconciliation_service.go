package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ebanking/models"
	"ebanking/repositories"
	"ebanking/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReconciliationService сверяет сохраненный баланс счета с журналом операций:
// balance == opening_balance + сумма CREDIT - сумма DEBIT
type ReconciliationService struct {
	store    *repositories.Store
	interval time.Duration
}

// NewReconciliationService создает сервис сверки; interval 0 отключает периодический запуск
func NewReconciliationService(db *gorm.DB, interval time.Duration) *ReconciliationService {
	return &ReconciliationService{
		store:    repositories.NewStore(db),
		interval: interval,
	}
}

// ReconcileAccount сверяет один счет
func (s *ReconciliationService) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationDTO, error) {
	account, err := s.store.Accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBankAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("load bank account: %w", err)
	}
	return s.reconcile(ctx, account)
}

// ReconcileAll сверяет все счета и возвращает только расхождения
func (s *ReconciliationService) ReconcileAll(ctx context.Context) ([]ReconciliationDTO, error) {
	accounts, err := s.store.Accounts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}

	drifted := []ReconciliationDTO{}
	for i := range accounts {
		report, err := s.reconcile(ctx, &accounts[i])
		if err != nil {
			return nil, err
		}
		if !report.Consistent {
			utils.Log.WithFields(logrus.Fields{
				"account_id":     report.AccountID,
				"stored_balance": report.StoredBalance,
				"ledger_balance": report.LedgerBalance,
			}).Warn("balance drift detected")
			drifted = append(drifted, *report)
		}
	}
	return drifted, nil
}

func (s *ReconciliationService) reconcile(ctx context.Context, account *models.BankAccount) (*ReconciliationDTO, error) {
	operations, err := s.store.Operations.FindByBankAccountID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("load account operations: %w", err)
	}

	credit, debit := decimal.Zero, decimal.Zero
	for _, op := range operations {
		switch op.Type {
		case models.OperationTypeCredit:
			credit = credit.Add(op.Amount)
		case models.OperationTypeDebit:
			debit = debit.Add(op.Amount)
		}
	}
	ledger := account.OpeningBalance.Add(credit).Sub(debit)

	return &ReconciliationDTO{
		AccountID:      account.ID,
		StoredBalance:  account.Balance.InexactFloat64(),
		LedgerBalance:  ledger.InexactFloat64(),
		OpeningBalance: account.OpeningBalance.InexactFloat64(),
		TotalCredit:    credit.InexactFloat64(),
		TotalDebit:     debit.InexactFloat64(),
		Consistent:     ledger.Equal(account.Balance),
	}, nil
}

// Start запускает периодическую сверку до отмены ctx
func (s *ReconciliationService) Start(ctx context.Context) {
	if s.interval <= 0 {
		utils.LogInfo("periodic reconciliation disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				drifted, err := s.ReconcileAll(ctx)
				utils.LogOperation("reconcile", start, err)
				if err == nil && len(drifted) > 0 {
					utils.LogError("reconciliation found %d drifted account(s)", len(drifted))
				}
			}
		}
	}()
}
