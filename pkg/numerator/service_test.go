package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences UPSERT per key.
type mockQuerier struct {
	mu   sync.Mutex
	vals map[string]int64
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vals == nil {
		m.vals = make(map[string]int64)
	}
	key, _ := args[0].(string)
	m.vals[key]++
	return &mockRow{val: m.vals[key]}
}

func TestGetNextNumber_Sequential(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("EQ")
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, cfg, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "EQ-2026-00001" {
		t.Errorf("expected EQ-2026-00001, got %s", num)
	}

	num, err = svc.GetNextNumber(ctx, cfg, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "EQ-2026-00002" {
		t.Errorf("expected EQ-2026-00002, got %s", num)
	}
}

func TestGetNextNumber_ResetPeriods(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()

	cfg := DefaultConfig("SP")
	cfg.ResetPeriod = "month"
	cfg.IncludeYear = false

	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	first, _ := svc.GetNextNumber(ctx, cfg, jan)
	second, _ := svc.GetNextNumber(ctx, cfg, feb)

	// Different months use independent counters
	if first != "SP-00001" || second != "SP-00001" {
		t.Errorf("expected independent monthly counters, got %s and %s", first, second)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"EQ-2026-00014", 14},
		{"SP-00001", 1},
		{"garbage", -1},
	}

	for _, tt := range tests {
		if got := ParseNumber(tt.in); got != tt.want {
			t.Errorf("ParseNumber(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
