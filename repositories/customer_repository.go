package repositories

import (
	"context"
	"strings"

	"ebanking/models"

	"gorm.io/gorm"
)

// CustomerRepository доступ к клиентам
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	Save(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id uint) (*models.Customer, error)
	FindAll(ctx context.Context) ([]models.Customer, error)
	SearchByName(ctx context.Context, keyword string) ([]models.Customer, error)
	DeleteByID(ctx context.Context, id uint) error
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository создает репозиторий клиентов
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Omit("BankAccounts").Create(customer).Error
}

// Save вставляет клиента без ID и обновляет существующего
func (r *customerRepository) Save(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Omit("BankAccounts").Save(customer).Error
}

func (r *customerRepository) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

func (r *customerRepository) FindAll(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.db.WithContext(ctx).Order("id").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// SearchByName ищет клиентов, чье имя содержит keyword без учета регистра
func (r *customerRepository) SearchByName(ctx context.Context, keyword string) ([]models.Customer, error) {
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"

	var customers []models.Customer
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '\\'", pattern).
		Order("id").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *customerRepository) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Customer{}, id).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
