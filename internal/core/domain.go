package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Deposit  TransactionKind = "deposit"
	Withdraw TransactionKind = "withdraw"
)

const MaxDescriptionLength = 200

type (
	TransactionKind string

	// SavingsTransaction is one signed row of the savings ledger.
	// Deposits carry a positive amount, withdrawals a negative one.
	SavingsTransaction struct {
		ID        int64
		Amount    decimal.Decimal
		Kind      TransactionKind
		CreatedAt time.Time
	}

	Expense struct {
		ID          int64
		Amount      decimal.Decimal
		Description string
		CreatedAt   time.Time
	}

	Note struct {
		ID        int64
		Title     string
		Content   string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// NoteSummary is a note without its content.
	NoteSummary struct {
		Title     string
		CreatedAt time.Time
		UpdatedAt time.Time
	}
)

var (
	ErrInvalidFormat       = errors.New("invalid amount format")
	ErrInvalidValue        = errors.New("invalid value")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotFound            = errors.New("not found")

	// Refinements of ErrInvalidValue; errors.Is matches both.
	ErrAmountTooLarge     = errors.New("amount too large")
	ErrDescriptionTooLong = errors.New("description too long")
)

// Valid reports whether k is a known transaction kind.
func (k TransactionKind) Valid() bool {
	switch k {
	case Deposit, Withdraw:
		return true
	default:
		return false
	}
}

// Abs returns the unsigned amount moved by the transaction.
func (t SavingsTransaction) Abs() decimal.Decimal {
	return t.Amount.Abs()
}

// NormalizeTitle lowercases and trims a note title; titles are compared in this form.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

func ValidateDescription(desc string) error {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidValue)
	}
	if len([]rune(desc)) > MaxDescriptionLength {
		return fmt.Errorf("%w: %w (max %d characters)", ErrInvalidValue, ErrDescriptionTooLong, MaxDescriptionLength)
	}
	return nil
}

func (e Expense) Validate() error {
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	return ValidateDescription(e.Description)
}

func (n Note) Validate() error {
	if NormalizeTitle(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidValue)
	}
	if strings.TrimSpace(n.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidValue)
	}
	return nil
}
