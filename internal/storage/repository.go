package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"dompet/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so lexical order on created_at matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// One writer at a time; read-then-write operations also run in a transaction.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ==================== SAVINGS ====================

// RecordSavingsTransaction appends a ledger row. Withdrawals are stored negated.
// No balance validation happens here.
func (r *SQLiteRepository) RecordSavingsTransaction(ctx context.Context, amount decimal.Decimal, kind core.TransactionKind, at time.Time) error {
	if !kind.Valid() {
		return fmt.Errorf("record savings transaction: unknown kind %q", kind)
	}
	return insertSavings(ctx, r.db, amount, kind, at)
}

// Deposit records a deposit and returns the balance after it.
func (r *SQLiteRepository) Deposit(ctx context.Context, amount decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin deposit: %w", err)
	}
	defer tx.Rollback()

	if err := insertSavings(ctx, tx, amount, core.Deposit, at); err != nil {
		return decimal.Zero, err
	}

	balance, err := savingsBalance(ctx, tx)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("commit deposit: %w", err)
	}

	slog.InfoContext(ctx, "Savings deposit recorded", "amount", amount.String(), "balance", balance.String())
	return balance, nil
}

// Withdraw checks the balance and records the withdrawal in one transaction.
// It returns ok=false and the unchanged balance when funds are insufficient.
func (r *SQLiteRepository) Withdraw(ctx context.Context, amount decimal.Decimal, at time.Time) (bool, decimal.Decimal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("begin withdraw: %w", err)
	}
	defer tx.Rollback()

	balance, err := savingsBalance(ctx, tx)
	if err != nil {
		return false, decimal.Zero, err
	}

	if amount.GreaterThan(balance) {
		return false, balance, nil
	}

	if err := insertSavings(ctx, tx, amount, core.Withdraw, at); err != nil {
		return false, decimal.Zero, err
	}

	after, err := savingsBalance(ctx, tx)
	if err != nil {
		return false, decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return false, decimal.Zero, fmt.Errorf("commit withdraw: %w", err)
	}

	slog.InfoContext(ctx, "Savings withdrawal recorded", "amount", amount.String(), "balance", after.String())
	return true, after, nil
}

// SavingsBalance is the live sum of all ledger rows, zero when empty.
func (r *SQLiteRepository) SavingsBalance(ctx context.Context) (decimal.Decimal, error) {
	return savingsBalance(ctx, r.db)
}

// SavingsHistory returns at most limit transactions, most recent first.
func (r *SQLiteRepository) SavingsHistory(ctx context.Context, limit int) ([]core.SavingsTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, transaction_type, created_at FROM savings
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get savings history: %w", err)
	}
	defer rows.Close()

	var history []core.SavingsTransaction
	for rows.Next() {
		var (
			tx        core.SavingsTransaction
			amount    int64
			kind      string
			createdAt string
		)
		if err := rows.Scan(&tx.ID, &amount, &kind, &createdAt); err != nil {
			return nil, fmt.Errorf("scan savings transaction: %w", err)
		}
		if tx.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		tx.Amount = decimal.NewFromInt(amount)
		tx.Kind = core.TransactionKind(kind)
		history = append(history, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate savings history: %w", err)
	}

	return history, nil
}

func insertSavings(ctx context.Context, q querier, amount decimal.Decimal, kind core.TransactionKind, at time.Time) error {
	signed := amount.Abs()
	if kind == core.Withdraw {
		signed = signed.Neg()
	}

	_, err := q.ExecContext(ctx,
		"INSERT INTO savings (amount, transaction_type, created_at) VALUES (?, ?, ?)",
		signed.IntPart(), string(kind), formatTime(at),
	)
	if err != nil {
		return fmt.Errorf("insert savings transaction: %w", err)
	}
	return nil
}

func savingsBalance(ctx context.Context, q querier) (decimal.Decimal, error) {
	var balance int64
	if err := q.QueryRowContext(ctx, "SELECT COALESCE(SUM(amount), 0) FROM savings").Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("get savings balance: %w", err)
	}
	return decimal.NewFromInt(balance), nil
}

// ==================== EXPENSES ====================

// RecordExpense appends an expense and returns its id.
func (r *SQLiteRepository) RecordExpense(ctx context.Context, amount decimal.Decimal, description string, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO expenses (amount, description, created_at) VALUES (?, ?, ?)",
		amount.IntPart(), description, formatTime(at),
	)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get expense id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"description", description,
		"amount", amount.String())

	return id, nil
}

// GetExpense retrieves a single expense by id.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, amount, description, created_at FROM expenses WHERE id = ?", id)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return e, nil
}

// ExpensesInRange returns expenses with start <= created_at <= end, most recent first.
func (r *SQLiteRepository) ExpensesInRange(ctx context.Context, start, end time.Time) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, description, created_at FROM expenses
		 WHERE created_at >= ? AND created_at <= ?
		 ORDER BY created_at DESC, id DESC`,
		formatTime(start), formatTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("get expenses by period: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return expenses, nil
}

// ExpenseTotalInRange sums expenses with start <= created_at <= end, zero when empty.
func (r *SQLiteRepository) ExpenseTotalInRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses
		 WHERE created_at >= ? AND created_at <= ?`,
		formatTime(start), formatTime(end),
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get total expenses by period: %w", err)
	}
	return decimal.NewFromInt(total), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(s rowScanner) (core.Expense, error) {
	var (
		e         core.Expense
		amount    int64
		createdAt string
	)
	if err := s.Scan(&e.ID, &amount, &e.Description, &createdAt); err != nil {
		return core.Expense{}, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return core.Expense{}, err
	}
	e.Amount = decimal.NewFromInt(amount)
	e.CreatedAt = t
	return e, nil
}

// ==================== NOTES ====================

// UpsertNote inserts a note or replaces the content of an existing one.
// created reports which path was taken. Updates keep created_at.
func (r *SQLiteRepository) UpsertNote(ctx context.Context, title, content string, at time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin save note: %w", err)
	}
	defer tx.Rollback()

	now := formatTime(at)

	var id int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM notes WHERE title = ?", title).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			"INSERT INTO notes (title, content, created_at, updated_at) VALUES (?, ?, ?, ?)",
			title, content, now, now,
		)
		if err != nil {
			return false, fmt.Errorf("insert note: %w", err)
		}
	case err != nil:
		return false, fmt.Errorf("check note existence: %w", err)
	default:
		_, err = tx.ExecContext(ctx,
			"UPDATE notes SET content = ?, updated_at = ? WHERE id = ?",
			content, now, id,
		)
		if err != nil {
			return false, fmt.Errorf("update note: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit save note: %w", err)
	}

	created := id == 0
	slog.DebugContext(ctx, "Note saved", "title", title, "created", created)
	return created, nil
}

// ListNotes returns note summaries without content, most recently updated first.
func (r *SQLiteRepository) ListNotes(ctx context.Context) ([]core.NoteSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT title, created_at, updated_at FROM notes ORDER BY updated_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []core.NoteSummary
	for rows.Next() {
		var (
			n                    core.NoteSummary
			createdAt, updatedAt string
		)
		if err := rows.Scan(&n.Title, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}

// GetNote returns the note with the given title or core.ErrNotFound.
func (r *SQLiteRepository) GetNote(ctx context.Context, title string) (core.Note, error) {
	var (
		n                    core.Note
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, content, created_at, updated_at FROM notes WHERE title = ?",
		title,
	).Scan(&n.ID, &n.Title, &n.Content, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Note{}, fmt.Errorf("note %q: %w", title, core.ErrNotFound)
	}
	if err != nil {
		return core.Note{}, fmt.Errorf("get note: %w", err)
	}

	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Note{}, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Note{}, err
	}
	return n, nil
}

// DeleteNote removes the note with the given title. It reports false when
// there was nothing to delete.
func (r *SQLiteRepository) DeleteNote(ctx context.Context, title string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE title = ?", title)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete note rows affected: %w", err)
	}
	return n > 0, nil
}

// CountNotes returns the number of stored notes.
func (r *SQLiteRepository) CountNotes(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes").Scan(&n); err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
