package memory

import (
	"context"
	"sync"

	"till/internal/core"
	"till/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

// Store keeps the ledger in process memory. It backs tests and the memory
// data backend; nothing survives a restart.
type Store struct {
	mu       sync.Mutex
	clock    core.Clock
	sales    []core.Sale
	expenses []core.Expense
}

func New(clock core.Clock) *Store {
	return &Store{clock: clock}
}

func (s *Store) RecordSale(_ context.Context, item string, price core.Money, method string) (core.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale := core.Sale{
		ID:            int64(len(s.sales) + 1),
		Item:          item,
		Price:         price,
		Timestamp:     s.clock.Now(),
		PaymentMethod: core.NormalizePaymentMethod(method),
	}
	s.sales = append(s.sales, sale)
	return sale, nil
}

func (s *Store) RecordExpense(_ context.Context, description string, amount core.Money) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expense := core.Expense{
		ID:          int64(len(s.expenses) + 1),
		Description: description,
		Amount:      amount,
		Timestamp:   s.clock.Now(),
	}
	s.expenses = append(s.expenses, expense)
	return expense, nil
}

func (s *Store) TotalsByPayment(_ context.Context) (core.PaymentTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := core.NewPaymentTotals()
	for _, sale := range s.sales {
		if _, err := totals.Add(sale.PaymentMethod, sale.Price); err != nil {
			return nil, &core.StorageError{Op: "totals by payment", Err: err}
		}
	}
	return totals, nil
}

func (s *Store) TotalExpenses(_ context.Context) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total core.Money
	for _, e := range s.expenses {
		var err error
		if total, err = total.Add(e.Amount); err != nil {
			return core.Money{}, &core.StorageError{Op: "total expenses", Err: err}
		}
	}
	return total, nil
}

func (s *Store) CashInHand(ctx context.Context) (core.Money, error) {
	totals, err := s.TotalsByPayment(ctx)
	if err != nil {
		return core.Money{}, err
	}
	expenses, err := s.TotalExpenses(ctx)
	if err != nil {
		return core.Money{}, err
	}
	cash, err := totals[core.Cash].Sub(expenses)
	if err != nil {
		return core.Money{}, &core.StorageError{Op: "cash in hand", Err: err}
	}
	return cash, nil
}

func (s *Store) SalesToday(_ context.Context) ([]core.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	out := make([]core.Sale, 0)
	for _, sale := range s.sales {
		if core.SameDay(now, sale.Timestamp) {
			out = append(out, sale)
		}
	}
	return out, nil
}

func (s *Store) ExpensesToday(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	out := make([]core.Expense, 0)
	for _, e := range s.expenses {
		if core.SameDay(now, e.Timestamp) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Close is a no-op; it lets the store stand in wherever a closable store is expected.
func (s *Store) Close() error {
	return nil
}
