// Package types provides common value types shared across the domain.
package types

import (
	"github.com/shopspring/decimal"

	"partsledger/internal/core/apperror"
)

// Quantity precision: two decimal places, matching NUMERIC(10,2) storage.
const (
	QuantityScale int32 = 2
)

// MinQuantity is the smallest quantity an invoice item may carry (0.01).
var MinQuantity = decimal.New(1, -QuantityScale)

// Quantity is a spare-part amount with at most two decimal places.
// decimal.Decimal keeps arithmetic exact; float64 is never used for
// quantities.
type Quantity = decimal.Decimal

// NewQuantityFromString parses a quantity string ("3.50").
func NewQuantityFromString(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperror.NewValidation("invalid quantity").
			WithDetail("value", s).
			WithCause(err)
	}
	return d, nil
}

// MustQuantity parses a quantity string, panics on error.
// Use only for constants and tests.
func MustQuantity(s string) Quantity {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ValidateQuantity checks the invoice-item quantity invariant:
// at least 0.01 and no more than two decimal places.
func ValidateQuantity(q Quantity) error {
	if q.LessThan(MinQuantity) {
		return apperror.NewValidation("quantity must be at least 0.01").
			WithDetail("field", "quantity").
			WithDetail("value", q.String())
	}
	if q.Exponent() < -QuantityScale && !q.Equal(q.Round(QuantityScale)) {
		return apperror.NewValidation("quantity must have at most two decimal places").
			WithDetail("field", "quantity").
			WithDetail("value", q.String())
	}
	return nil
}
