package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ebanking/events"
	"ebanking/models"
	"ebanking/repositories"
	"ebanking/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BankAccountService предоставляет операции над клиентами, счетами и журналом операций.
// Каждый публичный метод выполняется в одной транзакции базы данных.
type BankAccountService struct {
	store     *repositories.Store
	mapper    BankAccountMapper
	locks     *accountLocks
	publisher events.Publisher
	notifier  OperationNotifier
	metrics   *utils.Metrics
	clock     func() time.Time
}

// Option настраивает BankAccountService
type Option func(*BankAccountService)

// WithPublisher задает издателя событий операций
func WithPublisher(p events.Publisher) Option {
	return func(s *BankAccountService) { s.publisher = p }
}

// WithNotifier задает способ уведомления клиентов
func WithNotifier(n OperationNotifier) Option {
	return func(s *BankAccountService) { s.notifier = n }
}

// WithMetrics задает сборщик метрик
func WithMetrics(m *utils.Metrics) Option {
	return func(s *BankAccountService) { s.metrics = m }
}

// WithClock задает источник текущего времени
func WithClock(clock func() time.Time) Option {
	return func(s *BankAccountService) { s.clock = clock }
}

// NewBankAccountService создает новый экземпляр BankAccountService
func NewBankAccountService(db *gorm.DB, opts ...Option) *BankAccountService {
	s := &BankAccountService{
		store:     repositories.NewStore(db),
		locks:     newAccountLocks(),
		publisher: events.NopPublisher{},
		notifier:  NopNotifier{},
		metrics:   utils.GetMetrics(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveCustomer создает нового клиента; переданный ID игнорируется
func (s *BankAccountService) SaveCustomer(ctx context.Context, dto CustomerDTO) (*CustomerDTO, error) {
	utils.Log.WithField("name", dto.Name).Info("saving new customer")

	customer := s.mapper.FromCustomerDTO(dto)
	customer.ID = 0
	if err := s.store.Customers.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("save customer: %w", err)
	}

	saved := s.mapper.FromCustomer(customer)
	return &saved, nil
}

// UpdateCustomer обновляет имя и email существующего клиента
func (s *BankAccountService) UpdateCustomer(ctx context.Context, dto CustomerDTO) (*CustomerDTO, error) {
	utils.Log.WithField("customer_id", dto.ID).Info("updating customer")

	var updated CustomerDTO
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		customer, err := s.findCustomer(ctx, tx, dto.ID)
		if err != nil {
			return err
		}

		incoming := s.mapper.FromCustomerDTO(dto)
		customer.Name = incoming.Name
		customer.Email = incoming.Email
		if err := tx.Customers.Save(ctx, customer); err != nil {
			return fmt.Errorf("update customer: %w", err)
		}

		updated = s.mapper.FromCustomer(customer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListCustomers возвращает всех клиентов
func (s *BankAccountService) ListCustomers(ctx context.Context) ([]CustomerDTO, error) {
	customers, err := s.store.Customers.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return s.customerDTOs(customers), nil
}

// SearchCustomers ищет клиентов по подстроке имени без учета регистра
func (s *BankAccountService) SearchCustomers(ctx context.Context, keyword string) ([]CustomerDTO, error) {
	customers, err := s.store.Customers.SearchByName(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return s.customerDTOs(customers), nil
}

// GetCustomer возвращает клиента по ID
func (s *BankAccountService) GetCustomer(ctx context.Context, customerID uint) (*CustomerDTO, error) {
	customer, err := s.findCustomer(ctx, s.store, customerID)
	if err != nil {
		return nil, err
	}
	dto := s.mapper.FromCustomer(customer)
	return &dto, nil
}

// DeleteCustomer удаляет клиента по ID. Отсутствующий клиент не считается ошибкой,
// клиент с открытыми счетами не удаляется.
func (s *BankAccountService) DeleteCustomer(ctx context.Context, customerID uint) error {
	utils.Log.WithField("customer_id", customerID).Info("deleting customer")

	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		count, err := tx.Accounts.CountByCustomerID(ctx, customerID)
		if err != nil {
			return fmt.Errorf("count customer accounts: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: customer %d has %d account(s)", ErrCustomerHasAccounts, customerID, count)
		}
		if err := tx.Customers.DeleteByID(ctx, customerID); err != nil {
			return fmt.Errorf("delete customer: %w", err)
		}
		return nil
	})
}

// CustomerAccounts возвращает счета клиента
func (s *BankAccountService) CustomerAccounts(ctx context.Context, customerID uint) ([]BankAccountDTO, error) {
	if _, err := s.findCustomer(ctx, s.store, customerID); err != nil {
		return nil, err
	}
	accounts, err := s.store.Accounts.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer accounts: %w", err)
	}
	return s.accountDTOs(accounts), nil
}

// SaveCurrentBankAccount открывает текущий счет клиента
func (s *BankAccountService) SaveCurrentBankAccount(ctx context.Context, initialBalance, overDraft float64, customerID uint) (*CurrentBankAccountDTO, error) {
	balance, err := toMoney(initialBalance)
	if err != nil {
		return nil, err
	}
	limit, err := toMoney(overDraft)
	if err != nil {
		return nil, err
	}

	account, err := s.openAccount(ctx, customerID, func(account *models.BankAccount) {
		account.Type = models.AccountTypeCurrent
		account.Balance = balance
		account.OverDraft = limit
	})
	if err != nil {
		return nil, err
	}
	return s.mapper.FromCurrentBankAccount(account), nil
}

// SaveSavingBankAccount открывает сберегательный счет клиента
func (s *BankAccountService) SaveSavingBankAccount(ctx context.Context, initialBalance, interestRate float64, customerID uint) (*SavingBankAccountDTO, error) {
	balance, err := toMoney(initialBalance)
	if err != nil {
		return nil, err
	}
	if err := checkRate(interestRate); err != nil {
		return nil, err
	}

	account, err := s.openAccount(ctx, customerID, func(account *models.BankAccount) {
		account.Type = models.AccountTypeSaving
		account.Balance = balance
		account.InterestRate = interestRate
	})
	if err != nil {
		return nil, err
	}
	return s.mapper.FromSavingBankAccount(account), nil
}

func (s *BankAccountService) openAccount(ctx context.Context, customerID uint, fill func(*models.BankAccount)) (*models.BankAccount, error) {
	var account *models.BankAccount
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		customer, err := s.findCustomer(ctx, tx, customerID)
		if err != nil {
			return err
		}

		account = &models.BankAccount{
			ID:         uuid.NewString(),
			CreatedAt:  s.clock(),
			CustomerID: customer.ID,
		}
		fill(account)
		account.OpeningBalance = account.Balance

		if err := tx.Accounts.Create(ctx, account); err != nil {
			return fmt.Errorf("save bank account: %w", err)
		}
		account.Customer = *customer
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.Log.WithFields(logrus.Fields{
		"account_id":  account.ID,
		"type":        account.Type,
		"customer_id": customerID,
	}).Info("bank account opened")
	return account, nil
}

// GetBankAccount возвращает счет в виде, соответствующем его варианту
func (s *BankAccountService) GetBankAccount(ctx context.Context, accountID string) (BankAccountDTO, error) {
	account, err := s.findAccount(ctx, s.store, accountID)
	if err != nil {
		return nil, err
	}
	return s.mapper.FromBankAccount(account), nil
}

// BankAccountList возвращает все счета
func (s *BankAccountService) BankAccountList(ctx context.Context) ([]BankAccountDTO, error) {
	accounts, err := s.store.Accounts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	return s.accountDTOs(accounts), nil
}

// Debit списывает amount со счета и записывает операцию DEBIT.
// Списание всего баланса допускается, превышение баланса нет.
func (s *BankAccountService) Debit(ctx context.Context, accountID string, amount float64, description string) error {
	return s.execute(ctx, "debit", amount, []string{accountID}, func(tx *repositories.Store, value decimal.Decimal) ([]events.OperationEvent, error) {
		event, err := s.apply(ctx, tx, accountID, models.OperationTypeDebit, value, description)
		if err != nil {
			return nil, err
		}
		return []events.OperationEvent{event}, nil
	})
}

// Credit зачисляет amount на счет и записывает операцию CREDIT
func (s *BankAccountService) Credit(ctx context.Context, accountID string, amount float64, description string) error {
	return s.execute(ctx, "credit", amount, []string{accountID}, func(tx *repositories.Store, value decimal.Decimal) ([]events.OperationEvent, error) {
		event, err := s.apply(ctx, tx, accountID, models.OperationTypeCredit, value, description)
		if err != nil {
			return nil, err
		}
		return []events.OperationEvent{event}, nil
	})
}

// Transfer списывает amount с источника и зачисляет на получателя в одной транзакции;
// при любой ошибке ни один из счетов не меняется
func (s *BankAccountService) Transfer(ctx context.Context, sourceID, destinationID string, amount float64) error {
	return s.execute(ctx, "transfer", amount, []string{sourceID, destinationID}, func(tx *repositories.Store, value decimal.Decimal) ([]events.OperationEvent, error) {
		debit, err := s.apply(ctx, tx, sourceID, models.OperationTypeDebit, value, "Transfer to "+destinationID)
		if err != nil {
			return nil, err
		}
		credit, err := s.apply(ctx, tx, destinationID, models.OperationTypeCredit, value, "Transfer from "+sourceID)
		if err != nil {
			return nil, err
		}
		return []events.OperationEvent{debit, credit}, nil
	})
}

// execute захватывает блокировки счетов и выполняет fn в одной транзакции.
// Запрос, отмененный пока ждал блокировку, транзакцию не открывает.
func (s *BankAccountService) execute(
	ctx context.Context,
	operation string,
	amount float64,
	accountIDs []string,
	fn func(tx *repositories.Store, value decimal.Decimal) ([]events.OperationEvent, error),
) error {
	start := time.Now()

	value, err := toMoney(amount)
	if err != nil {
		s.finish(ctx, operation, start, err, nil)
		return err
	}

	unlock := s.locks.Lock(accountIDs...)
	var recorded []events.OperationEvent
	if err = ctx.Err(); err == nil {
		err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
			var txErr error
			recorded, txErr = fn(tx, value)
			return txErr
		})
	}
	unlock()

	s.finish(ctx, operation, start, err, recorded)
	return err
}

// apply записывает операцию и меняет баланс счета внутри транзакции tx
func (s *BankAccountService) apply(ctx context.Context, tx *repositories.Store, accountID string, opType models.OperationType, amount decimal.Decimal, description string) (events.OperationEvent, error) {
	account, err := tx.Accounts.FindByIDForUpdate(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return events.OperationEvent{}, fmt.Errorf("%w: %s", ErrBankAccountNotFound, accountID)
		}
		return events.OperationEvent{}, fmt.Errorf("load bank account: %w", err)
	}

	balance := account.Balance.Add(amount)
	if opType == models.OperationTypeDebit {
		if account.Balance.LessThan(amount) {
			return events.OperationEvent{}, fmt.Errorf("%w: account %s", ErrBalanceNotSufficient, accountID)
		}
		balance = account.Balance.Sub(amount)
	}

	operation := &models.AccountOperation{
		Type:          opType,
		Amount:        amount,
		Description:   description,
		OperationDate: s.clock(),
		BankAccountID: account.ID,
	}
	if err := tx.Operations.Create(ctx, operation); err != nil {
		return events.OperationEvent{}, fmt.Errorf("save account operation: %w", err)
	}
	if err := tx.Accounts.UpdateBalance(ctx, account.ID, balance); err != nil {
		return events.OperationEvent{}, fmt.Errorf("update balance: %w", err)
	}

	return events.OperationEvent{
		OperationID:   operation.ID,
		AccountID:     account.ID,
		CustomerID:    account.CustomerID,
		CustomerName:  account.Customer.Name,
		CustomerEmail: account.Customer.Email,
		Type:          string(opType),
		Amount:        amount.InexactFloat64(),
		Balance:       balance.InexactFloat64(),
		Description:   description,
		OperationDate: operation.OperationDate,
	}, nil
}

// finish фиксирует метрики и после коммита рассылает события операций;
// ошибки доставки только логируются
func (s *BankAccountService) finish(ctx context.Context, operation string, start time.Time, err error, recorded []events.OperationEvent) {
	utils.LogOperation(operation, start, err)
	s.metrics.RecordOperation(operation, err)
	if err != nil {
		return
	}

	for _, event := range recorded {
		entry := utils.Log.WithFields(logrus.Fields{
			"account_id":   event.AccountID,
			"operation_id": event.OperationID,
			"type":         event.Type,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			entry.WithError(err).Warn("failed to publish operation event")
		}
		if err := s.notifier.NotifyOperation(ctx, event); err != nil {
			entry.WithError(err).Warn("failed to notify customer")
		}
	}
}

// AccountHistory возвращает все операции счета в порядке добавления
func (s *BankAccountService) AccountHistory(ctx context.Context, accountID string) ([]AccountOperationDTO, error) {
	operations, err := s.store.Operations.FindByBankAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account history: %w", err)
	}
	return s.operationDTOs(operations), nil
}

// GetAccountHistory возвращает страницу операций счета, новые первыми
func (s *BankAccountService) GetAccountHistory(ctx context.Context, accountID string, page, size int) (*AccountHistoryDTO, error) {
	if page < 0 || size <= 0 {
		return nil, fmt.Errorf("%w: page=%d size=%d", ErrInvalidPageRequest, page, size)
	}

	account, err := s.findAccount(ctx, s.store, accountID)
	if err != nil {
		return nil, err
	}

	operations, total, err := s.store.Operations.FindPageByBankAccountID(ctx, accountID, page, size)
	if err != nil {
		return nil, fmt.Errorf("load account history page: %w", err)
	}

	return &AccountHistoryDTO{
		AccountID:   account.ID,
		Balance:     account.Balance.InexactFloat64(),
		CurrentPage: page,
		PageSize:    size,
		TotalPages:  int((total + int64(size) - 1) / int64(size)),
		Operations:  s.operationDTOs(operations),
	}, nil
}

func (s *BankAccountService) findCustomer(ctx context.Context, store *repositories.Store, customerID uint) (*models.Customer, error) {
	customer, err := store.Customers.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrCustomerNotFound, customerID)
		}
		return nil, fmt.Errorf("load customer: %w", err)
	}
	return customer, nil
}

func (s *BankAccountService) findAccount(ctx context.Context, store *repositories.Store, accountID string) (*models.BankAccount, error) {
	account, err := store.Accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBankAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("load bank account: %w", err)
	}
	return account, nil
}

func (s *BankAccountService) customerDTOs(customers []models.Customer) []CustomerDTO {
	out := make([]CustomerDTO, 0, len(customers))
	for i := range customers {
		out = append(out, s.mapper.FromCustomer(&customers[i]))
	}
	return out
}

func (s *BankAccountService) accountDTOs(accounts []models.BankAccount) []BankAccountDTO {
	out := make([]BankAccountDTO, 0, len(accounts))
	for i := range accounts {
		out = append(out, s.mapper.FromBankAccount(&accounts[i]))
	}
	return out
}

func (s *BankAccountService) operationDTOs(operations []models.AccountOperation) []AccountOperationDTO {
	out := make([]AccountOperationDTO, 0, len(operations))
	for i := range operations {
		out = append(out, s.mapper.FromAccountOperation(&operations[i]))
	}
	return out
}
