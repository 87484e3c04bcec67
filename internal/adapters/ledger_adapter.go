package adapters

import (
	"context"

	"till/internal/core"
	"till/internal/ledger"
	"till/internal/services"
)

var _ ledger.Store = (*LedgerAdapter)(nil)

// LedgerAdapter routes writes through LedgerService and reads straight to
// the store, so shells see one ledger.Store whichever backend is wired.
type LedgerAdapter struct {
	reader  ledger.Reader
	service *services.LedgerService
}

func NewLedgerAdapter(reader ledger.Reader, service *services.LedgerService) *LedgerAdapter {
	return &LedgerAdapter{
		reader:  reader,
		service: service,
	}
}

// RecordSale implements ledger.SaleRecorder
func (a *LedgerAdapter) RecordSale(ctx context.Context, item string, price core.Money, method string) (core.Sale, error) {
	return a.service.RecordSale(ctx, item, price, method)
}

// RecordExpense implements ledger.ExpenseRecorder
func (a *LedgerAdapter) RecordExpense(ctx context.Context, description string, amount core.Money) (core.Expense, error) {
	return a.service.RecordExpense(ctx, description, amount)
}

// TotalsByPayment implements ledger.Aggregator
func (a *LedgerAdapter) TotalsByPayment(ctx context.Context) (core.PaymentTotals, error) {
	return a.reader.TotalsByPayment(ctx)
}

// TotalExpenses implements ledger.Aggregator
func (a *LedgerAdapter) TotalExpenses(ctx context.Context) (core.Money, error) {
	return a.reader.TotalExpenses(ctx)
}

// CashInHand implements ledger.Aggregator
func (a *LedgerAdapter) CashInHand(ctx context.Context) (core.Money, error) {
	return a.reader.CashInHand(ctx)
}

// SalesToday implements ledger.DailyLister
func (a *LedgerAdapter) SalesToday(ctx context.Context) ([]core.Sale, error) {
	return a.reader.SalesToday(ctx)
}

// ExpensesToday implements ledger.DailyLister
func (a *LedgerAdapter) ExpensesToday(ctx context.Context) ([]core.Expense, error) {
	return a.reader.ExpensesToday(ctx)
}
