package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"dompet/internal/core"
)

type ReportKind string

const (
	Weekly  ReportKind = "weekly"
	Monthly ReportKind = "monthly"
)

type (
	// DayGroup holds one calendar date's expenses, most recent first.
	DayGroup struct {
		Date     time.Time
		Entries  []core.Expense
		Subtotal decimal.Decimal
	}

	Report struct {
		Kind  ReportKind
		Start time.Time
		End   time.Time
		Days  []DayGroup
		Total decimal.Decimal
	}
)

// Empty reports whether the period had no expenses.
func (r Report) Empty() bool {
	return len(r.Days) == 0
}

// Count returns the number of expenses in the report.
func (r Report) Count() int {
	n := 0
	for _, d := range r.Days {
		n += len(d.Entries)
	}
	return n
}

// PeriodBounds returns the inclusive window a report of the given kind covers.
func PeriodBounds(kind ReportKind, ref time.Time) (time.Time, time.Time) {
	y, m, d := ref.Date()
	loc := ref.Location()
	end := time.Date(y, m, d, 23, 59, 59, 999999999, loc)

	switch kind {
	case Monthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), end
	default:
		// ISO weeks start on Monday
		offset := (int(ref.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc), end
	}
}

func (s *ExpenseService) report(ctx context.Context, kind ReportKind, ref time.Time) (Report, error) {
	start, end := PeriodBounds(kind, ref)

	expenses, err := s.store.ExpensesInRange(ctx, start, end)
	if err != nil {
		return Report{}, fmt.Errorf("read %s expenses: %w", kind, err)
	}

	total, err := s.store.ExpenseTotalInRange(ctx, start, end)
	if err != nil {
		return Report{}, fmt.Errorf("read %s total: %w", kind, err)
	}

	return Report{
		Kind:  kind,
		Start: start,
		End:   end,
		Days:  GroupByDate(expenses, ref.Location()),
		Total: total,
	}, nil
}

// GroupByDate groups expenses by calendar date in loc. Dates are ordered most
// recent first; entries keep their input order within a date.
func GroupByDate(expenses []core.Expense, loc *time.Location) []DayGroup {
	index := make(map[string]int)
	var days []DayGroup

	for _, e := range expenses {
		e.CreatedAt = e.CreatedAt.In(loc)
		y, m, d := e.CreatedAt.Date()
		key := e.CreatedAt.Format("2006-01-02")

		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, DayGroup{
				Date:     time.Date(y, m, d, 0, 0, 0, 0, loc),
				Subtotal: decimal.Zero,
			})
		}
		days[i].Entries = append(days[i].Entries, e)
		days[i].Subtotal = days[i].Subtotal.Add(e.Amount)
	}

	sort.SliceStable(days, func(a, b int) bool {
		return days[a].Date.After(days[b].Date)
	})
	return days
}
