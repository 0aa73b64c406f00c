package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"dompet/internal/amqp"
	"dompet/internal/core"
)

const DefaultHistoryLimit = 5

type (
	DepositResult struct {
		Amount  decimal.Decimal
		Balance decimal.Decimal
	}

	// WithdrawResult reports a refused withdrawal as Success=false rather than an error.
	WithdrawResult struct {
		Success bool
		Amount  decimal.Decimal
		Balance decimal.Decimal
		Message string
	}

	SavingsStatus struct {
		Balance decimal.Decimal
		Recent  []core.SavingsTransaction
	}
)

// Err returns core.ErrInsufficientBalance for a refused withdrawal.
func (r WithdrawResult) Err() error {
	if r.Success {
		return nil
	}
	return fmt.Errorf("%w: balance %s", core.ErrInsufficientBalance, r.Balance)
}

// SavingsService handles deposits, withdrawals and the balance report.
type SavingsService struct {
	store        SavingsStore
	publisher    EventPublisher
	now          Clock
	historyLimit int
}

func NewSavingsService(store SavingsStore, publisher EventPublisher, now Clock, historyLimit int) *SavingsService {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &SavingsService{
		store:        store,
		publisher:    publisher,
		now:          clockOrDefault(now),
		historyLimit: historyLimit,
	}
}

// Deposit adds a positive amount to savings and returns the new balance.
func (s *SavingsService) Deposit(ctx context.Context, amountText string) (DepositResult, error) {
	amount, err := parseAmount(amountText)
	if err != nil {
		return DepositResult{}, err
	}

	balance, err := s.store.Deposit(ctx, amount, s.now())
	if err != nil {
		return DepositResult{}, fmt.Errorf("save deposit: %w", err)
	}

	publish(ctx, s.publisher, amqp.NewSavingsEvent(amqp.EventSavingsDeposit, amount, balance))

	return DepositResult{Amount: amount, Balance: balance}, nil
}

// Withdraw takes money out of savings unless it exceeds the current balance,
// in which case nothing is recorded and Success is false.
func (s *SavingsService) Withdraw(ctx context.Context, amountText string) (WithdrawResult, error) {
	amount, err := parseAmount(amountText)
	if err != nil {
		return WithdrawResult{}, err
	}

	ok, balance, err := s.store.Withdraw(ctx, amount, s.now())
	if err != nil {
		return WithdrawResult{}, fmt.Errorf("save withdrawal: %w", err)
	}

	if !ok {
		return WithdrawResult{
			Success: false,
			Amount:  amount,
			Balance: balance,
			Message: fmt.Sprintf("Saldo tidak cukup. Saldo saat ini: %s", core.FormatRupiah(balance)),
		}, nil
	}

	publish(ctx, s.publisher, amqp.NewSavingsEvent(amqp.EventSavingsWithdraw, amount, balance))

	return WithdrawResult{
		Success: true,
		Amount:  amount,
		Balance: balance,
		Message: fmt.Sprintf("Berhasil mengambil %s. Saldo sekarang: %s", core.FormatRupiah(amount), core.FormatRupiah(balance)),
	}, nil
}

// Status returns the balance and the most recent transactions.
func (s *SavingsService) Status(ctx context.Context) (SavingsStatus, error) {
	balance, err := s.store.SavingsBalance(ctx)
	if err != nil {
		return SavingsStatus{}, fmt.Errorf("read balance: %w", err)
	}

	recent, err := s.store.SavingsHistory(ctx, s.historyLimit)
	if err != nil {
		return SavingsStatus{}, fmt.Errorf("read history: %w", err)
	}

	loc := s.now().Location()
	for i := range recent {
		recent[i].CreatedAt = recent[i].CreatedAt.In(loc)
	}

	return SavingsStatus{Balance: balance, Recent: recent}, nil
}
