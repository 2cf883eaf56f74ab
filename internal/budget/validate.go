package budget

import (
	"fmt"
	"math"
	"strings"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/budgettabs/budgettabs/internal/money"
	"github.com/shopspring/decimal"
)

// requiredText trims raw and rejects an empty result.
func requiredText(field, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperr.Validation(field, field+" is required")
	}
	return trimmed, nil
}

// optionalText trims raw; blank values become nil.
func optionalText(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func checkCurrency(code string) error {
	if !money.ValidCurrency(code) {
		return apperr.Validation("currency_code", "currency_code must be three uppercase letters")
	}
	return nil
}

func checkAllocation(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperr.Validation("amount_allocated", "amount_allocated must not be negative")
	}
	if !money.FitsColumn(amount) {
		return apperr.Validation("amount_allocated", "amount_allocated must have at most two decimal places and be less than 10000000000")
	}
	return nil
}

func checkExpenseAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.Validation("amount", "amount must be greater than zero")
	}
	if !money.FitsColumn(amount) {
		return apperr.Validation("amount", "amount must have at most two decimal places and be less than 10000000000")
	}
	return nil
}

// maxPosition is the largest value the integer position column holds.
const maxPosition = math.MaxInt32

func checkPosition(position int) error {
	if position < 0 {
		return apperr.Validation("position", "position must not be negative")
	}
	if position > maxPosition {
		return apperr.Validation("position", fmt.Sprintf("position must be at most %d", maxPosition))
	}
	return nil
}
