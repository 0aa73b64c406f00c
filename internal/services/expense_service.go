package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/core"
)

// ExpenseService records expenses and builds period reports
type ExpenseService struct {
	store     ExpenseStore
	publisher EventPublisher
	now       Clock
}

func NewExpenseService(store ExpenseStore, publisher EventPublisher, now Clock) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		now:       clockOrDefault(now),
	}
}

// RecordExpense saves an expense locally and publishes an event
func (s *ExpenseService) RecordExpense(ctx context.Context, amountText, description string) (core.Expense, error) {
	amount, err := parseAmount(amountText)
	if err != nil {
		return core.Expense{}, err
	}

	description = strings.TrimSpace(description)
	if err := core.ValidateDescription(description); err != nil {
		return core.Expense{}, err
	}

	now := s.now()
	id, err := s.store.RecordExpense(ctx, amount, description, now)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	expense, err := s.store.GetExpense(ctx, id)
	if err != nil {
		// The row is committed; fall back to what was written.
		slog.ErrorContext(ctx, "Failed to read back expense", "id", id, "error", err)
		expense = core.Expense{ID: id, Amount: amount, Description: description, CreatedAt: now}
	}
	expense.CreatedAt = expense.CreatedAt.In(now.Location())

	publish(ctx, s.publisher, amqp.NewExpenseEvent(id, amount))

	return expense, nil
}

// WeeklyReport covers Monday 00:00 of ref's week through the end of ref's day.
// A zero ref means now.
func (s *ExpenseService) WeeklyReport(ctx context.Context, ref time.Time) (Report, error) {
	return s.report(ctx, Weekly, s.reference(ref))
}

// MonthlyReport covers the first of ref's month through the end of ref's day.
// A zero ref means now.
func (s *ExpenseService) MonthlyReport(ctx context.Context, ref time.Time) (Report, error) {
	return s.report(ctx, Monthly, s.reference(ref))
}

func (s *ExpenseService) reference(ref time.Time) time.Time {
	if ref.IsZero() {
		return s.now()
	}
	return ref
}
