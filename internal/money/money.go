// Package money provides exact decimal arithmetic for monetary values.
//
// All aggregation happens on exact decimals. Rounding to the currency's
// minor unit is applied only when a value is displayed or finalized, never
// between intermediate steps.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DisplayScale is the minor-unit precision for EUR amounts.
const DisplayScale = 2

// Zero is decimal zero
var Zero = decimal.Zero

// InvalidQuantityError is returned for a quantity that is not greater than zero.
type InvalidQuantityError struct {
	Quantity decimal.Decimal
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %s: must be greater than zero", e.Quantity)
}

// InvalidRateError is returned for a negative tax rate.
type InvalidRateError struct {
	Rate decimal.Decimal
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("invalid tax rate %s: must not be negative", e.Rate)
}

// LineTotal returns quantity * unitPrice as an exact decimal.
func LineTotal(quantity, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, &InvalidQuantityError{Quantity: quantity}
	}
	return quantity.Mul(unitPrice), nil
}

// TaxAmount returns net * ratePercent/100 as an exact decimal.
// The division by 100 is an exponent shift, so no precision is lost.
func TaxAmount(net, ratePercent decimal.Decimal) (decimal.Decimal, error) {
	if ratePercent.IsNegative() {
		return decimal.Decimal{}, &InvalidRateError{Rate: ratePercent}
	}
	return net.Mul(ratePercent).Shift(-2), nil
}

// RoundDisplay rounds to the currency minor unit, half up.
func RoundDisplay(d decimal.Decimal) decimal.Decimal {
	return d.Round(DisplayScale)
}

// FromString parses a decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses a decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}
