// Package money validates currency codes and amounts and renders display strings.
package money

import (
	"regexp"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MaxFractionDigits is the number of decimal places stored for amounts.
const MaxFractionDigits = 2

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

	// amountLimit bounds amounts to what numeric(12,2) can hold.
	amountLimit = decimal.New(1, 10)
)

// ValidCurrency reports whether code is three uppercase ASCII letters.
func ValidCurrency(code string) bool {
	return currencyPattern.MatchString(code)
}

// FitsColumn reports whether amount has at most two fractional digits and fits numeric(12,2).
func FitsColumn(amount decimal.Decimal) bool {
	if amount.Exponent() < -MaxFractionDigits && !amount.Equal(amount.Round(MaxFractionDigits)) {
		return false
	}
	return amount.Abs().LessThan(amountLimit)
}

// Display renders amount in currency, e.g. "$380.00". Currencies unknown to
// go-money fall back to "380.00 ABC".
func Display(amount decimal.Decimal, currency string) string {
	cur := gomoney.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(MaxFractionDigits) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return gomoney.New(minor.IntPart(), cur.Code).Display()
}

// Percent returns part/whole*100 rounded to two decimals, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2)
}
