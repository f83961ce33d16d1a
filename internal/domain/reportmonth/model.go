// Package reportmonth provides the report month, the period ledger lock.
// Invoices and write-off facts always belong to exactly one report month;
// closing the month freezes its financial data.
package reportmonth

import (
	"context"
	"fmt"
	"time"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/entity"
)

// Bounds for report month fields.
const (
	MinYear  = 2000
	MinMonth = 1
	MaxMonth = 12
)

// ReportMonth represents a calendar-month reporting period.
type ReportMonth struct {
	entity.BaseDocument

	// Year of the period (>= 2000)
	Year int `db:"year" json:"year"`

	// Month of the period (1..12)
	Month int `db:"month" json:"month"`

	// IsClosed freezes the period: no invoice or version mutations allowed
	IsClosed bool `db:"is_closed" json:"isClosed"`

	// ClosedAt is stamped on the first close, cleared on reopen
	ClosedAt *time.Time `db:"closed_at" json:"closedAt,omitempty"`
}

// New creates an open report month.
func New(year, month int) *ReportMonth {
	return &ReportMonth{
		BaseDocument: entity.NewBaseDocument(),
		Year:         year,
		Month:        month,
	}
}

// Validate implements entity.Validatable.
func (m *ReportMonth) Validate(ctx context.Context) error {
	if m.Year < MinYear {
		return apperror.NewValidation(fmt.Sprintf("year must be at least %d", MinYear)).
			WithDetail("field", "year").
			WithDetail("value", m.Year)
	}
	if m.Month < MinMonth || m.Month > MaxMonth {
		return apperror.NewValidation("month must be between 1 and 12").
			WithDetail("field", "month").
			WithDetail("value", m.Month)
	}
	return nil
}

// Close closes the month. Idempotent: a second call is a no-op and leaves
// ClosedAt from the first call unchanged.
func (m *ReportMonth) Close(now time.Time) bool {
	if m.IsClosed {
		return false
	}
	m.IsClosed = true
	closedAt := now.UTC()
	m.ClosedAt = &closedAt
	m.Touch()
	return true
}

// Reopen reopens the month. Idempotent inverse of Close.
func (m *ReportMonth) Reopen() bool {
	if !m.IsClosed {
		return false
	}
	m.IsClosed = false
	m.ClosedAt = nil
	m.Touch()
	return true
}

// Contains reports whether the date falls inside this period.
func (m *ReportMonth) Contains(date time.Time) bool {
	return date.Year() == m.Year && int(date.Month()) == m.Month
}

// Period returns the "YYYY-MM" label used in errors and logs.
func (m *ReportMonth) Period() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// Before reports whether this period is strictly before (year, month).
func (m *ReportMonth) Before(year, month int) bool {
	return m.Year < year || (m.Year == year && m.Month < month)
}

func (m *ReportMonth) String() string {
	if m.IsClosed {
		return m.Period() + " (closed)"
	}
	return m.Period()
}
