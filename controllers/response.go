package controllers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"ebanking/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// newValidator создает валидатор, который называет поля по их json-именам
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// validateRequest валидирует DTO и возвращает ошибки валидации
func validateRequest(v *validator.Validate, dto interface{}) error {
	err := v.Struct(dto)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var messages []string
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, "field "+e.Field()+" is required")
		case "gt":
			messages = append(messages, "field "+e.Field()+" must be greater than "+e.Param())
		case "gte":
			messages = append(messages, "field "+e.Field()+" must not be less than "+e.Param())
		case "min":
			messages = append(messages, "field "+e.Field()+" must be at least "+e.Param()+" characters")
		case "max":
			messages = append(messages, "field "+e.Field()+" must be at most "+e.Param()+" characters")
		case "email":
			messages = append(messages, "field "+e.Field()+" must be a valid email")
		default:
			messages = append(messages, "field "+e.Field()+" is invalid")
		}
	}
	return errors.New(strings.Join(messages, "; "))
}

// bindRequest читает JSON-тело в dto и валидирует его; при ошибке ответ уже отправлен
func bindRequest(c *gin.Context, v *validator.Validate, dto interface{}) bool {
	if err := c.ShouldBindJSON(dto); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := validateRequest(v, dto); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// statusFor сопоставляет доменную ошибку с HTTP-статусом
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, services.ErrBankAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrBalanceNotSufficient):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrCustomerHasAccounts):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidPageRequest),
		errors.Is(err, services.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError отправляет ошибку клиенту; внутренние ошибки не раскрываются
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// customerIDParam читает числовой :id из пути
func customerIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return 0, false
	}
	return uint(id), true
}

// intQuery читает целый query-параметр со значением по умолчанию
func intQuery(c *gin.Context, name, fallback string) (int, bool) {
	value, err := strconv.Atoi(c.DefaultQuery(name, fallback))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid query parameter " + name})
		return 0, false
	}
	return value, true
}
