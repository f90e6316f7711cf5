package repositories

import (
	"context"

	"ebanking/models"

	"gorm.io/gorm"
)

// AccountOperationRepository журнал операций; записи только добавляются
type AccountOperationRepository interface {
	Create(ctx context.Context, operation *models.AccountOperation) error
	FindByBankAccountID(ctx context.Context, accountID string) ([]models.AccountOperation, error)
	FindNewestFirstByBankAccountID(ctx context.Context, accountID string) ([]models.AccountOperation, error)
	FindPageByBankAccountID(ctx context.Context, accountID string, page, size int) ([]models.AccountOperation, int64, error)
}

// newestFirst порядок истории: по дате операции, при равной дате по ID
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("operation_date DESC").Order("id DESC")
}

type accountOperationRepository struct {
	db *gorm.DB
}

// NewAccountOperationRepository создает репозиторий операций
func NewAccountOperationRepository(db *gorm.DB) AccountOperationRepository {
	return &accountOperationRepository{db: db}
}

func (r *accountOperationRepository) Create(ctx context.Context, operation *models.AccountOperation) error {
	return r.db.WithContext(ctx).Create(operation).Error
}

// FindByBankAccountID возвращает все операции счета в порядке добавления
func (r *accountOperationRepository) FindByBankAccountID(ctx context.Context, accountID string) ([]models.AccountOperation, error) {
	var operations []models.AccountOperation
	err := r.db.WithContext(ctx).
		Where("bank_account_id = ?", accountID).
		Order("id").
		Find(&operations).Error
	if err != nil {
		return nil, err
	}
	return operations, nil
}

// FindNewestFirstByBankAccountID возвращает все операции счета, новые первыми
func (r *accountOperationRepository) FindNewestFirstByBankAccountID(ctx context.Context, accountID string) ([]models.AccountOperation, error) {
	var operations []models.AccountOperation
	err := r.db.WithContext(ctx).
		Where("bank_account_id = ?", accountID).
		Scopes(newestFirst).
		Find(&operations).Error
	if err != nil {
		return nil, err
	}
	return operations, nil
}

// FindPageByBankAccountID возвращает страницу операций, новые первыми,
// и общее число операций счета
func (r *accountOperationRepository) FindPageByBankAccountID(ctx context.Context, accountID string, page, size int) ([]models.AccountOperation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AccountOperation{}).Where("bank_account_id = ?", accountID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	operations := []models.AccountOperation{}
	if int64(page)*int64(size) >= total {
		return operations, total, nil
	}

	err := query.
		Scopes(newestFirst).
		Offset(page * size).
		Limit(size).
		Find(&operations).Error
	if err != nil {
		return nil, 0, err
	}
	return operations, total, nil
}
