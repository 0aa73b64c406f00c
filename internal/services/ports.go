package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"dompet/internal/amqp"
	"dompet/internal/core"
)

// Ports implemented by storage.SQLiteRepository and amqp.Client.
type (
	SavingsStore interface {
		Deposit(ctx context.Context, amount decimal.Decimal, at time.Time) (decimal.Decimal, error)
		Withdraw(ctx context.Context, amount decimal.Decimal, at time.Time) (bool, decimal.Decimal, error)
		SavingsBalance(ctx context.Context) (decimal.Decimal, error)
		SavingsHistory(ctx context.Context, limit int) ([]core.SavingsTransaction, error)
	}

	ExpenseStore interface {
		RecordExpense(ctx context.Context, amount decimal.Decimal, description string, at time.Time) (int64, error)
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
		ExpensesInRange(ctx context.Context, start, end time.Time) ([]core.Expense, error)
		ExpenseTotalInRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
	}

	NoteStore interface {
		UpsertNote(ctx context.Context, title, content string, at time.Time) (created bool, err error)
		ListNotes(ctx context.Context) ([]core.NoteSummary, error)
		GetNote(ctx context.Context, title string) (core.Note, error)
		DeleteNote(ctx context.Context, title string) (bool, error)
	}

	// EventPublisher receives an event after the change it describes is committed.
	EventPublisher interface {
		Publish(ctx context.Context, event *amqp.LedgerEvent) error
	}

	// Clock returns the current time in the owner's time zone.
	Clock func() time.Time
)

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// publish never fails the caller: the ledger row is already committed.
func publish(ctx context.Context, p EventPublisher, event *amqp.LedgerEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", event.Type, "error", err)
	}
}

// parseAmount parses and validates a user supplied amount.
func parseAmount(text string) (decimal.Decimal, error) {
	amount, err := core.ParseAmount(text)
	if err != nil {
		return decimal.Zero, err
	}
	if err := core.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}
