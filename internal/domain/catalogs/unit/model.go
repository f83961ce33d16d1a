// Package unit provides the measurement unit catalog.
// Units are referenced by spare parts and invoice items; workbook ingestion
// resolves free-form unit labels against symbols and aliases.
package unit

import (
	"context"
	"strings"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/entity"
)

// Unit represents a measurement unit.
type Unit struct {
	entity.Catalog

	// Symbol is the short printable form (e.g. "pcs", "kg", "m")
	Symbol string `db:"symbol" json:"symbol"`

	// Aliases are alternative spellings accepted during workbook parsing
	// (e.g. "pc", "piece", "шт"). Matching is case-insensitive.
	Aliases []string `db:"aliases" json:"aliases,omitempty"`
}

// NewUnit creates a new Unit with required fields.
func NewUnit(code, name, symbol string) *Unit {
	return &Unit{
		Catalog: entity.NewCatalog(code, name),
		Symbol:  symbol,
	}
}

// Validate implements entity.Validatable.
func (u *Unit) Validate(ctx context.Context) error {
	if err := u.Catalog.Validate(ctx); err != nil {
		return err
	}

	if u.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}
	if len(u.Symbol) > entity.MaxSymbolLength {
		return apperror.NewValidation("symbol is too long").
			WithDetail("field", "symbol").
			WithDetail("max_length", entity.MaxSymbolLength)
	}

	seen := make(map[string]struct{}, len(u.Aliases)+1)
	seen[normalizeLabel(u.Symbol)] = struct{}{}
	for _, alias := range u.Aliases {
		if strings.TrimSpace(alias) == "" {
			return apperror.NewValidation("alias must not be blank").
				WithDetail("field", "aliases")
		}
		key := normalizeLabel(alias)
		if _, dup := seen[key]; dup {
			return apperror.NewValidation("duplicate alias").
				WithDetail("field", "aliases").
				WithDetail("value", alias)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Matches reports whether the label refers to this unit via name, symbol
// or any alias. Comparison is case-insensitive and trims whitespace.
func (u *Unit) Matches(label string) bool {
	key := normalizeLabel(label)
	if key == "" {
		return false
	}
	if normalizeLabel(u.Symbol) == key || normalizeLabel(u.Name) == key {
		return true
	}
	for _, alias := range u.Aliases {
		if normalizeLabel(alias) == key {
			return true
		}
	}
	return false
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
