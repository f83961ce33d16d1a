package reportmonth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportMonth_Validate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		year    int
		month   int
		wantErr bool
	}{
		{"valid", 2026, 6, false},
		{"min year", 2000, 1, false},
		{"december", 2026, 12, false},
		{"year below minimum", 1999, 6, true},
		{"month zero", 2026, 0, true},
		{"month thirteen", 2026, 13, true},
		{"negative month", 2026, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.year, tt.month).Validate(ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReportMonth_CloseIdempotent(t *testing.T) {
	m := New(2026, 6)
	first := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	require.True(t, m.Close(first))
	require.True(t, m.IsClosed)
	require.NotNil(t, m.ClosedAt)
	stamped := *m.ClosedAt

	// second close is a no-op and keeps the original timestamp
	require.False(t, m.Close(second))
	assert.True(t, m.IsClosed)
	assert.Equal(t, stamped, *m.ClosedAt)
}

func TestReportMonth_Reopen(t *testing.T) {
	m := New(2026, 6)

	// reopen on an open month changes nothing
	require.False(t, m.Reopen())

	m.Close(time.Now())
	require.True(t, m.Reopen())
	assert.False(t, m.IsClosed)
	assert.Nil(t, m.ClosedAt)

	require.False(t, m.Reopen())
}

func TestReportMonth_Contains(t *testing.T) {
	m := New(2026, 6)

	assert.True(t, m.Contains(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, m.Contains(time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC)))
	assert.False(t, m.Contains(time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, m.Contains(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, m.Contains(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)))
}

func TestReportMonth_Period(t *testing.T) {
	assert.Equal(t, "2026-06", New(2026, 6).Period())
	assert.Equal(t, "2000-12", New(2000, 12).Period())
}

func TestReportMonth_Before(t *testing.T) {
	m := New(2026, 6)

	assert.True(t, m.Before(2026, 7))
	assert.True(t, m.Before(2027, 1))
	assert.False(t, m.Before(2026, 6))
	assert.False(t, m.Before(2026, 5))
	assert.False(t, m.Before(2025, 12))
}
