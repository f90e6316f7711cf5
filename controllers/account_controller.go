package controllers

import (
	"net/http"

	"ebanking/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	defaultPage     = "0"
	defaultPageSize = "5"
)

// AccountController обрабатывает запросы, связанные со счетами и операциями
type AccountController struct {
	accounts   *services.BankAccountService
	statements *services.StatementService
	reconciler *services.ReconciliationService
	validator  *validator.Validate
}

// NewAccountController создает новый экземпляр AccountController
func NewAccountController(
	accounts *services.BankAccountService,
	statements *services.StatementService,
	reconciler *services.ReconciliationService,
) *AccountController {
	return &AccountController{
		accounts:   accounts,
		statements: statements,
		reconciler: reconciler,
		validator:  newValidator(),
	}
}

// CreateCurrent открывает текущий счет
func (ctl *AccountController) CreateCurrent(c *gin.Context) {
	var req services.CreateCurrentAccountRequest
	if !bindRequest(c, ctl.validator, &req) {
		return
	}
	account, err := ctl.accounts.SaveCurrentBankAccount(c.Request.Context(), req.InitialBalance, req.OverDraft, req.CustomerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// CreateSaving открывает сберегательный счет
func (ctl *AccountController) CreateSaving(c *gin.Context) {
	var req services.CreateSavingAccountRequest
	if !bindRequest(c, ctl.validator, &req) {
		return
	}
	account, err := ctl.accounts.SaveSavingBankAccount(c.Request.Context(), req.InitialBalance, req.InterestRate, req.CustomerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// List возвращает все счета
func (ctl *AccountController) List(c *gin.Context) {
	accounts, err := ctl.accounts.BankAccountList(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// Get возвращает счет по ID
func (ctl *AccountController) Get(c *gin.Context) {
	account, err := ctl.accounts.GetBankAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// Operations возвращает все операции счета
func (ctl *AccountController) Operations(c *gin.Context) {
	operations, err := ctl.accounts.AccountHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, operations)
}

// PageOperations возвращает страницу истории операций счета
func (ctl *AccountController) PageOperations(c *gin.Context) {
	page, ok := intQuery(c, "page", defaultPage)
	if !ok {
		return
	}
	size, ok := intQuery(c, "size", defaultPageSize)
	if !ok {
		return
	}

	history, err := ctl.accounts.GetAccountHistory(c.Request.Context(), c.Param("id"), page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// Statement отдает XML-выписку по счету
func (ctl *AccountController) Statement(c *gin.Context) {
	data, err := ctl.statements.ExportStatement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", data)
}

// Reconciliation сверяет баланс счета с журналом операций
func (ctl *AccountController) Reconciliation(c *gin.Context) {
	report, err := ctl.reconciler.ReconcileAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Debit обрабатывает запрос на списание
func (ctl *AccountController) Debit(c *gin.Context) {
	var req services.DebitRequest
	if !bindRequest(c, ctl.validator, &req) {
		return
	}
	if err := ctl.accounts.Debit(c.Request.Context(), req.AccountID, req.Amount, req.Description); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// Credit обрабатывает запрос на зачисление
func (ctl *AccountController) Credit(c *gin.Context) {
	var req services.CreditRequest
	if !bindRequest(c, ctl.validator, &req) {
		return
	}
	if err := ctl.accounts.Credit(c.Request.Context(), req.AccountID, req.Amount, req.Description); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// Transfer обрабатывает запрос на перевод между счетами
func (ctl *AccountController) Transfer(c *gin.Context) {
	var req services.TransferRequest
	if !bindRequest(c, ctl.validator, &req) {
		return
	}
	if err := ctl.accounts.Transfer(c.Request.Context(), req.AccountSource, req.AccountDestination, req.Amount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
