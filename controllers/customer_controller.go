package controllers

import (
	"net/http"

	"ebanking/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CustomerController обрабатывает запросы, связанные с клиентами
type CustomerController struct {
	service   *services.BankAccountService
	validator *validator.Validate
}

// NewCustomerController создает новый экземпляр CustomerController
func NewCustomerController(service *services.BankAccountService) *CustomerController {
	return &CustomerController{
		service:   service,
		validator: newValidator(),
	}
}

// List возвращает всех клиентов
func (ctl *CustomerController) List(c *gin.Context) {
	customers, err := ctl.service.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// Search ищет клиентов по подстроке имени
func (ctl *CustomerController) Search(c *gin.Context) {
	customers, err := ctl.service.SearchCustomers(c.Request.Context(), c.DefaultQuery("keyword", ""))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// Get возвращает клиента по ID
func (ctl *CustomerController) Get(c *gin.Context) {
	id, ok := customerIDParam(c)
	if !ok {
		return
	}
	customer, err := ctl.service.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Accounts возвращает счета клиента
func (ctl *CustomerController) Accounts(c *gin.Context) {
	id, ok := customerIDParam(c)
	if !ok {
		return
	}
	accounts, err := ctl.service.CustomerAccounts(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// Create создает нового клиента
func (ctl *CustomerController) Create(c *gin.Context) {
	var dto services.CustomerDTO
	if !bindRequest(c, ctl.validator, &dto) {
		return
	}
	customer, err := ctl.service.SaveCustomer(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// Update обновляет клиента; ID берется из пути
func (ctl *CustomerController) Update(c *gin.Context) {
	id, ok := customerIDParam(c)
	if !ok {
		return
	}
	var dto services.CustomerDTO
	if !bindRequest(c, ctl.validator, &dto) {
		return
	}
	dto.ID = id

	customer, err := ctl.service.UpdateCustomer(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Delete удаляет клиента
func (ctl *CustomerController) Delete(c *gin.Context) {
	id, ok := customerIDParam(c)
	if !ok {
		return
	}
	if err := ctl.service.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
