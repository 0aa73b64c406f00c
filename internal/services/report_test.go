package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dompet/internal/core"
)

func TestPeriodBounds(t *testing.T) {
	tests := []struct {
		name      string
		kind      ReportKind
		ref       time.Time
		wantStart time.Time
	}{
		{"weekly tuesday", Weekly, time.Date(2024, 3, 5, 12, 0, 0, 0, wib), time.Date(2024, 3, 4, 0, 0, 0, 0, wib)},
		{"weekly monday", Weekly, time.Date(2024, 3, 4, 0, 0, 0, 0, wib), time.Date(2024, 3, 4, 0, 0, 0, 0, wib)},
		{"weekly sunday", Weekly, time.Date(2024, 3, 10, 23, 0, 0, 0, wib), time.Date(2024, 3, 4, 0, 0, 0, 0, wib)},
		{"weekly across month", Weekly, time.Date(2024, 3, 1, 9, 0, 0, 0, wib), time.Date(2024, 2, 26, 0, 0, 0, 0, wib)},
		{"monthly", Monthly, time.Date(2024, 3, 15, 10, 0, 0, 0, wib), time.Date(2024, 3, 1, 0, 0, 0, 0, wib)},
		{"monthly first day", Monthly, time.Date(2024, 3, 1, 0, 0, 1, 0, wib), time.Date(2024, 3, 1, 0, 0, 0, 0, wib)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := PeriodBounds(tt.kind, tt.ref)
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			y, m, d := tt.ref.Date()
			wantEnd := time.Date(y, m, d, 23, 59, 59, 999999999, wib)
			if !end.Equal(wantEnd) {
				t.Errorf("end = %v, want %v", end, wantEnd)
			}
		})
	}
}

func TestGroupByDate(t *testing.T) {
	at := func(d, h int) time.Time { return time.Date(2024, 3, d, h, 0, 0, 0, wib) }
	exp := func(id int64, amount int64, when time.Time) core.Expense {
		return core.Expense{ID: id, Amount: decimal.NewFromInt(amount), Description: "x", CreatedAt: when.UTC()}
	}

	// Input is most recent first, as the store returns it
	expenses := []core.Expense{
		exp(4, 3_000, at(6, 20)),
		exp(3, 2_000, at(6, 1)), // 18:00 UTC on the 5th
		exp(2, 1_000, at(5, 9)),
		exp(1, 4_000, at(4, 9)),
	}

	days := GroupByDate(expenses, wib)
	if len(days) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(days))
	}

	wantDays := []int{6, 5, 4}
	wantSubtotals := []int64{5_000, 1_000, 4_000}
	for i, d := range days {
		if d.Date.Day() != wantDays[i] {
			t.Errorf("Group %d date = %v, want day %d", i, d.Date, wantDays[i])
		}
		if !d.Subtotal.Equal(decimal.NewFromInt(wantSubtotals[i])) {
			t.Errorf("Group %d subtotal = %s, want %d", i, d.Subtotal, wantSubtotals[i])
		}
	}
	if days[0].Entries[0].ID != 4 || days[0].Entries[1].ID != 3 {
		t.Errorf("Entries lost input order: %+v", days[0].Entries)
	}
	if days[0].Entries[0].CreatedAt.Location() != wib {
		t.Error("Expected entries converted to the report location")
	}

	if got := GroupByDate(nil, wib); len(got) != 0 {
		t.Errorf("Expected no groups for no expenses, got %d", len(got))
	}
}
