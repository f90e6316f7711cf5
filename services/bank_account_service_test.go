package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"ebanking/database/databasetest"
	"ebanking/events"
	"ebanking/models"
	"ebanking/utils"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// fakeClock сдвигается на минуту при каждом обращении
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OperationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.OperationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) recorded() []events.OperationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.OperationEvent(nil), p.events...)
}

type BankAccountServiceSuite struct {
	suite.Suite
	ctx       context.Context
	db        *gorm.DB
	publisher *recordingPublisher
	metrics   *utils.Metrics
	service   *BankAccountService
}

func TestBankAccountService(t *testing.T) {
	suite.Run(t, new(BankAccountServiceSuite))
}

func (s *BankAccountServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = databasetest.Open(s.T())
	s.publisher = &recordingPublisher{}
	s.metrics = utils.NewMetrics()
	s.service = NewBankAccountService(s.db,
		WithClock(newFakeClock().Now),
		WithPublisher(s.publisher),
		WithMetrics(s.metrics),
	)
}

func (s *BankAccountServiceSuite) newCustomer(name string) *CustomerDTO {
	customer, err := s.service.SaveCustomer(s.ctx, CustomerDTO{Name: name, Email: name + "@mail.test"})
	s.Require().NoError(err)
	return customer
}

func (s *BankAccountServiceSuite) newCurrentAccount(balance float64) *CurrentBankAccountDTO {
	customer := s.newCustomer("owner")
	account, err := s.service.SaveCurrentBankAccount(s.ctx, balance, 500, customer.ID)
	s.Require().NoError(err)
	return account
}

func (s *BankAccountServiceSuite) balance(accountID string) float64 {
	view, err := s.service.GetBankAccount(s.ctx, accountID)
	s.Require().NoError(err)
	switch v := view.(type) {
	case *CurrentBankAccountDTO:
		return v.Balance
	case *SavingBankAccountDTO:
		return v.Balance
	}
	s.FailNow("unexpected account view")
	return 0
}

func (s *BankAccountServiceSuite) TestCustomerLifecycle() {
	hassan := s.newCustomer("Hassan")
	s.newCustomer("Imane")
	s.newCustomer("hasna")
	s.NotZero(hassan.ID)

	got, err := s.service.GetCustomer(s.ctx, hassan.ID)
	s.Require().NoError(err)
	s.Equal("Hassan", got.Name)
	s.Equal("Hassan@mail.test", got.Email)

	all, err := s.service.ListCustomers(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 3)

	found, err := s.service.SearchCustomers(s.ctx, "has")
	s.Require().NoError(err)
	s.Len(found, 2)

	updated, err := s.service.UpdateCustomer(s.ctx, CustomerDTO{ID: hassan.ID, Name: "Hassan A.", Email: "hassan@bank.test"})
	s.Require().NoError(err)
	s.Equal(hassan.ID, updated.ID)
	s.Equal("Hassan A.", updated.Name)

	got, err = s.service.GetCustomer(s.ctx, hassan.ID)
	s.Require().NoError(err)
	s.Equal("hassan@bank.test", got.Email)

	s.Require().NoError(s.service.DeleteCustomer(s.ctx, hassan.ID))
	_, err = s.service.GetCustomer(s.ctx, hassan.ID)
	s.ErrorIs(err, ErrCustomerNotFound)

	// удаление отсутствующего клиента не ошибка
	s.NoError(s.service.DeleteCustomer(s.ctx, 9999))
}

func (s *BankAccountServiceSuite) TestSaveCustomerIgnoresID() {
	first := s.newCustomer("first")
	second, err := s.service.SaveCustomer(s.ctx, CustomerDTO{ID: first.ID, Name: "second"})
	s.Require().NoError(err)
	s.NotEqual(first.ID, second.ID)

	got, err := s.service.GetCustomer(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal("first", got.Name)
}

func (s *BankAccountServiceSuite) TestUpdateUnknownCustomer() {
	_, err := s.service.UpdateCustomer(s.ctx, CustomerDTO{ID: 42, Name: "ghost"})
	s.ErrorIs(err, ErrCustomerNotFound)

	all, err := s.service.ListCustomers(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *BankAccountServiceSuite) TestDeleteCustomerWithAccounts() {
	account := s.newCurrentAccount(10)
	err := s.service.DeleteCustomer(s.ctx, account.CustomerDTO.ID)
	s.ErrorIs(err, ErrCustomerHasAccounts)

	_, err = s.service.GetCustomer(s.ctx, account.CustomerDTO.ID)
	s.NoError(err)
}

func (s *BankAccountServiceSuite) TestOpenAccountsRoundTrip() {
	customer := s.newCustomer("Aicha")

	current, err := s.service.SaveCurrentBankAccount(s.ctx, 1000, 500, customer.ID)
	s.Require().NoError(err)
	saving, err := s.service.SaveSavingBankAccount(s.ctx, 2500.5, 3.2, customer.ID)
	s.Require().NoError(err)
	s.NotEqual(current.ID, saving.ID)
	s.Len(current.ID, 36)

	view, err := s.service.GetBankAccount(s.ctx, current.ID)
	s.Require().NoError(err)
	gotCurrent, ok := view.(*CurrentBankAccountDTO)
	s.Require().True(ok)
	s.Equal(CurrentAccountType, gotCurrent.Type)
	s.Equal(current.ID, gotCurrent.ID)
	s.Equal(1000.0, gotCurrent.Balance)
	s.Equal(500.0, gotCurrent.OverDraft)
	s.Equal(customer.ID, gotCurrent.CustomerDTO.ID)

	view, err = s.service.GetBankAccount(s.ctx, saving.ID)
	s.Require().NoError(err)
	gotSaving, ok := view.(*SavingBankAccountDTO)
	s.Require().True(ok)
	s.Equal(SavingAccountType, gotSaving.AccountType())
	s.Equal(2500.5, gotSaving.Balance)
	s.Equal(3.2, gotSaving.InterestRate)

	list, err := s.service.BankAccountList(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 2)

	owned, err := s.service.CustomerAccounts(s.ctx, customer.ID)
	s.Require().NoError(err)
	s.Len(owned, 2)

	_, err = s.service.CustomerAccounts(s.ctx, 777)
	s.ErrorIs(err, ErrCustomerNotFound)
}

func (s *BankAccountServiceSuite) TestOpenAccountUnknownCustomer() {
	_, err := s.service.SaveCurrentBankAccount(s.ctx, 100, 0, 404)
	s.ErrorIs(err, ErrCustomerNotFound)
	_, err = s.service.SaveSavingBankAccount(s.ctx, 100, 1, 404)
	s.ErrorIs(err, ErrCustomerNotFound)

	list, err := s.service.BankAccountList(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *BankAccountServiceSuite) TestGetUnknownAccount() {
	_, err := s.service.GetBankAccount(s.ctx, "missing")
	s.ErrorIs(err, ErrBankAccountNotFound)
}

func (s *BankAccountServiceSuite) TestDebitWholeBalanceThenOverdraw() {
	account := s.newCurrentAccount(1000)

	s.Require().NoError(s.service.Debit(s.ctx, account.ID, 1000, "withdraw"))
	s.Equal(0.0, s.balance(account.ID))

	err := s.service.Debit(s.ctx, account.ID, 1, "over")
	s.ErrorIs(err, ErrBalanceNotSufficient)
	s.Equal(0.0, s.balance(account.ID))

	history, err := s.service.AccountHistory(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal("DEBIT", history[0].Type)
	s.Equal(1000.0, history[0].Amount)
	s.Equal("withdraw", history[0].Description)
}

func (s *BankAccountServiceSuite) TestDebitUnknownAccount() {
	err := s.service.Debit(s.ctx, "missing", 1, "x")
	s.ErrorIs(err, ErrBankAccountNotFound)
	err = s.service.Credit(s.ctx, "missing", 1, "x")
	s.ErrorIs(err, ErrBankAccountNotFound)
}

func (s *BankAccountServiceSuite) TestCreditAcceptsAnyAmount() {
	account := s.newCurrentAccount(100)

	s.Require().NoError(s.service.Credit(s.ctx, account.ID, 50.25, "deposit"))
	s.Equal(150.25, s.balance(account.ID))

	s.Require().NoError(s.service.Credit(s.ctx, account.ID, -20.25, "correction"))
	s.Equal(130.0, s.balance(account.ID))

	history, err := s.service.AccountHistory(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Len(history, 2)
}

func (s *BankAccountServiceSuite) TestTransfer() {
	a := s.newCurrentAccount(300)
	b := s.newCurrentAccount(20)

	s.Require().NoError(s.service.Transfer(s.ctx, a.ID, b.ID, 120))
	s.Equal(180.0, s.balance(a.ID))
	s.Equal(140.0, s.balance(b.ID))

	source, err := s.service.AccountHistory(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Require().Len(source, 1)
	s.Equal("DEBIT", source[0].Type)
	s.Equal(120.0, source[0].Amount)
	s.Equal("Transfer to "+b.ID, source[0].Description)

	dest, err := s.service.AccountHistory(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Require().Len(dest, 1)
	s.Equal("CREDIT", dest[0].Type)
	s.Equal(120.0, dest[0].Amount)
	s.Equal("Transfer from "+a.ID, dest[0].Description)

	published := s.publisher.recorded()
	s.Require().Len(published, 2)
	s.Equal(a.ID, published[0].AccountID)
	s.Equal(180.0, published[0].Balance)
	s.Equal(b.ID, published[1].AccountID)
	s.Equal("owner@mail.test", published[1].CustomerEmail)
}

func (s *BankAccountServiceSuite) TestTransferInsufficientLeavesBothUntouched() {
	a := s.newCurrentAccount(50)
	b := s.newCurrentAccount(10)

	err := s.service.Transfer(s.ctx, a.ID, b.ID, 51)
	s.ErrorIs(err, ErrBalanceNotSufficient)
	s.Equal(50.0, s.balance(a.ID))
	s.Equal(10.0, s.balance(b.ID))

	dest, err := s.service.AccountHistory(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Empty(dest)
	s.Empty(s.publisher.recorded())
}

func (s *BankAccountServiceSuite) TestTransferToUnknownAccountRollsBack() {
	a := s.newCurrentAccount(50)

	err := s.service.Transfer(s.ctx, a.ID, "missing", 20)
	s.ErrorIs(err, ErrBankAccountNotFound)
	s.Equal(50.0, s.balance(a.ID))

	source, err := s.service.AccountHistory(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Empty(source)
}

func (s *BankAccountServiceSuite) TestTransferToSameAccount() {
	a := s.newCurrentAccount(50)

	s.Require().NoError(s.service.Transfer(s.ctx, a.ID, a.ID, 20))
	s.Equal(50.0, s.balance(a.ID))

	history, err := s.service.AccountHistory(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Len(history, 2)
}

func (s *BankAccountServiceSuite) TestAccountHistoryPages() {
	account := s.newCurrentAccount(0)
	for i := 1; i <= 7; i++ {
		s.Require().NoError(s.service.Credit(s.ctx, account.ID, float64(i), "credit"))
	}

	page, err := s.service.GetAccountHistory(s.ctx, account.ID, 0, 3)
	s.Require().NoError(err)
	s.Equal(account.ID, page.AccountID)
	s.Equal(28.0, page.Balance)
	s.Equal(0, page.CurrentPage)
	s.Equal(3, page.PageSize)
	s.Equal(3, page.TotalPages)
	s.Require().Len(page.Operations, 3)
	s.Equal(7.0, page.Operations[0].Amount)
	for i := 1; i < len(page.Operations); i++ {
		s.True(page.Operations[i-1].OperationDate.After(page.Operations[i].OperationDate))
	}

	page, err = s.service.GetAccountHistory(s.ctx, account.ID, 2, 3)
	s.Require().NoError(err)
	s.Require().Len(page.Operations, 1)
	s.Equal(1.0, page.Operations[0].Amount)

	page, err = s.service.GetAccountHistory(s.ctx, account.ID, 10, 3)
	s.Require().NoError(err)
	s.Empty(page.Operations)
	s.NotNil(page.Operations)
	s.Equal(3, page.TotalPages)
	s.Equal(10, page.CurrentPage)

	page, err = s.service.GetAccountHistory(s.ctx, account.ID, 0, 7)
	s.Require().NoError(err)
	s.Equal(1, page.TotalPages)
}

func (s *BankAccountServiceSuite) TestAccountHistoryEmptyAndInvalid() {
	account := s.newCurrentAccount(5)

	page, err := s.service.GetAccountHistory(s.ctx, account.ID, 0, 5)
	s.Require().NoError(err)
	s.Equal(0, page.TotalPages)
	s.Empty(page.Operations)
	s.Equal(5.0, page.Balance)

	_, err = s.service.GetAccountHistory(s.ctx, "missing", 0, 5)
	s.ErrorIs(err, ErrBankAccountNotFound)

	_, err = s.service.GetAccountHistory(s.ctx, account.ID, 0, 0)
	s.ErrorIs(err, ErrInvalidPageRequest)
	_, err = s.service.GetAccountHistory(s.ctx, account.ID, -1, 5)
	s.ErrorIs(err, ErrInvalidPageRequest)
}

func (s *BankAccountServiceSuite) TestConcurrentDebitsDoNotLoseUpdates() {
	account := s.newCurrentAccount(200)

	const workers = 25
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.service.Debit(s.ctx, account.ID, 10, "parallel")
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, insufficient := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrBalanceNotSufficient):
			insufficient++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(20, succeeded)
	s.Equal(5, insufficient)
	s.Equal(0.0, s.balance(account.ID))

	history, err := s.service.AccountHistory(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Len(history, 20)
}

func (s *BankAccountServiceSuite) TestPublishFailureDoesNotFailOperation() {
	account := s.newCurrentAccount(10)
	s.publisher.err = errors.New("broker down")

	s.NoError(s.service.Credit(s.ctx, account.ID, 5, "deposit"))
	s.Equal(15.0, s.balance(account.ID))
	s.Len(s.publisher.recorded(), 1)
}

func (s *BankAccountServiceSuite) TestMetricsRecorded() {
	account := s.newCurrentAccount(10)
	s.Require().NoError(s.service.Credit(s.ctx, account.ID, 5, "deposit"))
	s.Error(s.service.Debit(s.ctx, account.ID, 100, "too much"))

	snapshot := s.metrics.GetMetricsSnapshot()
	s.Equal(map[string]int64{"credit": 1, "debit": 1}, snapshot["operations"])
	s.Equal(map[string]int64{"debit": 1}, snapshot["failed_operations"])
}

func (s *BankAccountServiceSuite) TestStoredAccountKeepsOpeningBalance() {
	account := s.newCurrentAccount(75)
	s.Require().NoError(s.service.Debit(s.ctx, account.ID, 25, "x"))

	var stored models.BankAccount
	s.Require().NoError(s.db.First(&stored, "id = ?", account.ID).Error)
	s.Equal("75", stored.OpeningBalance.String())
	s.Equal("50", stored.Balance.String())
	s.Equal(models.AccountTypeCurrent, stored.Type)
}

func (s *BankAccountServiceSuite) TestSubCentAmountsRoundToColumnScale() {
	account := s.newCurrentAccount(0.01)

	s.Require().NoError(s.service.Debit(s.ctx, account.ID, 0.005, "half a cent"))
	s.Equal(0.0, s.balance(account.ID))

	s.Require().NoError(s.service.Credit(s.ctx, account.ID, 0.333, "third"))
	s.Equal(0.33, s.balance(account.ID))

	history, err := s.service.AccountHistory(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(0.01, history[0].Amount)
	s.Equal(0.33, history[1].Amount)

	report, err := NewReconciliationService(s.db, 0).ReconcileAccount(s.ctx, account.ID)
	s.Require().NoError(err)
	s.True(report.Consistent)

	customer := s.newCustomer("rounding")
	opened, err := s.service.SaveCurrentBankAccount(s.ctx, 10.005, 0.125, customer.ID)
	s.Require().NoError(err)
	s.Equal(10.01, opened.Balance)
	s.Equal(0.13, opened.OverDraft)
	s.Equal(10.01, s.balance(opened.ID))

	var stored models.BankAccount
	s.Require().NoError(s.db.First(&stored, "id = ?", opened.ID).Error)
	s.Equal("10.01", stored.OpeningBalance.String())
}

func (s *BankAccountServiceSuite) TestNonFiniteAmountsRejected() {
	account := s.newCurrentAccount(100)
	other := s.newCurrentAccount(100)

	s.ErrorIs(s.service.Credit(s.ctx, account.ID, math.NaN(), "nan"), ErrInvalidAmount)
	s.ErrorIs(s.service.Debit(s.ctx, account.ID, math.Inf(1), "inf"), ErrInvalidAmount)
	s.ErrorIs(s.service.Transfer(s.ctx, account.ID, other.ID, math.Inf(-1)), ErrInvalidAmount)
	s.Equal(100.0, s.balance(account.ID))
	s.Equal(100.0, s.balance(other.ID))

	customer := s.newCustomer("nonfinite")
	_, err := s.service.SaveCurrentBankAccount(s.ctx, math.Inf(1), 0, customer.ID)
	s.ErrorIs(err, ErrInvalidAmount)
	_, err = s.service.SaveCurrentBankAccount(s.ctx, 10, math.NaN(), customer.ID)
	s.ErrorIs(err, ErrInvalidAmount)
	_, err = s.service.SaveSavingBankAccount(s.ctx, math.NaN(), 1, customer.ID)
	s.ErrorIs(err, ErrInvalidAmount)
	_, err = s.service.SaveSavingBankAccount(s.ctx, 10, math.Inf(1), customer.ID)
	s.ErrorIs(err, ErrInvalidAmount)

	owned, err := s.service.CustomerAccounts(s.ctx, customer.ID)
	s.Require().NoError(err)
	s.Empty(owned)
	s.Empty(s.publisher.recorded())
}

func (s *BankAccountServiceSuite) TestCancelledWhileWaitingForLock() {
	account := s.newCurrentAccount(40)

	unlock := s.service.locks.Lock(account.ID)
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() {
		done <- s.service.Credit(ctx, account.ID, 5, "late")
	}()
	cancel()
	unlock()

	s.ErrorIs(<-done, context.Canceled)
	s.Equal(40.0, s.balance(account.ID))

	history, err := s.service.AccountHistory(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Empty(history)
	s.Empty(s.publisher.recorded())
}
