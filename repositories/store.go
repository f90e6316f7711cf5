package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound возвращается, когда запись не найдена
var ErrNotFound = errors.New("record not found")

// Store объединяет репозитории, работающие с одним подключением или транзакцией
type Store struct {
	db         *gorm.DB
	Customers  CustomerRepository
	Accounts   BankAccountRepository
	Operations AccountOperationRepository
}

// NewStore создает набор репозиториев поверх подключения GORM
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Customers:  NewCustomerRepository(db),
		Accounts:   NewBankAccountRepository(db),
		Operations: NewAccountOperationRepository(db),
	}
}

// DB возвращает подключение, с которым работает Store
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction выполняет fn в одной транзакции базы данных;
// любая ошибка из fn откатывает все изменения
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
