package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeTitle(t *testing.T) {
	cases := map[string]string{
		"Gmail":    "gmail",
		"  WiFi  ": "wifi",
		"":         "",
	}
	for in, want := range cases {
		if got := NormalizeTitle(in); got != want {
			t.Fatalf("NormalizeTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{Amount: decimal.NewFromInt(10_000), Description: "jajan"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Amount: decimal.Zero, Description: "jajan"},
		{Amount: decimal.NewFromInt(1), Description: "   "},
		{Amount: decimal.NewFromInt(1), Description: strings.Repeat("x", 201)},
	}
	for i, e := range bads {
		if err := e.Validate(); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("case %d expected ErrInvalidValue, got %v", i, err)
		}
	}
}

func TestNoteValidate(t *testing.T) {
	if err := (Note{Title: "gmail", Content: "pass123"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Note{Title: " ", Content: "x"}).Validate(); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected error for empty title, got %v", err)
	}
	if err := (Note{Title: "x", Content: ""}).Validate(); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected error for empty content, got %v", err)
	}
}

func TestTransactionKind(t *testing.T) {
	if !Deposit.Valid() || !Withdraw.Valid() {
		t.Fatal("expected known kinds to be valid")
	}
	if TransactionKind("transfer").Valid() {
		t.Fatal("expected unknown kind to be invalid")
	}
	tx := SavingsTransaction{Amount: decimal.NewFromInt(-2500), Kind: Withdraw}
	if !tx.Abs().Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("Abs() = %s", tx.Abs())
	}
}
