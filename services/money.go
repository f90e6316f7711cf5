package services

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// moneyScale совпадает с масштабом колонок decimal(20,2)
const moneyScale = 2

// toMoney переводит сумму в decimal с точностью колонки, чтобы проверка баланса
// и записанные значения совпадали с тем, что сохранит база
func toMoney(value float64) (decimal.Decimal, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, value)
	}
	return decimal.NewFromFloat(value).Round(moneyScale), nil
}

// checkRate отклоняет NaN и бесконечность в процентной ставке
func checkRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: interest rate %v", ErrInvalidAmount, rate)
	}
	return nil
}
