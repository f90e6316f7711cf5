package repositories

import (
	"context"

	"ebanking/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BankAccountRepository доступ к счетам обоих вариантов
type BankAccountRepository interface {
	Create(ctx context.Context, account *models.BankAccount) error
	FindByID(ctx context.Context, id string) (*models.BankAccount, error)
	FindByIDForUpdate(ctx context.Context, id string) (*models.BankAccount, error)
	FindAll(ctx context.Context) ([]models.BankAccount, error)
	FindByCustomerID(ctx context.Context, customerID uint) ([]models.BankAccount, error)
	CountByCustomerID(ctx context.Context, customerID uint) (int64, error)
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error
}

type bankAccountRepository struct {
	db *gorm.DB
}

// NewBankAccountRepository создает репозиторий счетов
func NewBankAccountRepository(db *gorm.DB) BankAccountRepository {
	return &bankAccountRepository{db: db}
}

func (r *bankAccountRepository) Create(ctx context.Context, account *models.BankAccount) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(account).Error
}

func (r *bankAccountRepository) FindByID(ctx context.Context, id string) (*models.BankAccount, error) {
	var account models.BankAccount
	if err := r.db.WithContext(ctx).Preload("Customer").First(&account, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// FindByIDForUpdate читает счет с блокировкой строки до конца транзакции
func (r *bankAccountRepository) FindByIDForUpdate(ctx context.Context, id string) (*models.BankAccount, error) {
	var account models.BankAccount
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Customer").
		First(&account, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *bankAccountRepository) FindAll(ctx context.Context) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	if err := r.db.WithContext(ctx).Preload("Customer").Order("created_at, id").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *bankAccountRepository) FindByCustomerID(ctx context.Context, customerID uint) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("customer_id = ?", customerID).
		Order("created_at, id").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *bankAccountRepository) CountByCustomerID(ctx context.Context, customerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BankAccount{}).Where("customer_id = ?", customerID).Count(&count).Error
	return count, err
}

func (r *bankAccountRepository) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.BankAccount{}).Where("id = ?", id).Update("balance", balance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
