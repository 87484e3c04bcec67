// Package ledger declares the ports shared by ledger stores, the reporting
// engine and presentation shells.
package ledger

import (
	"context"

	"till/internal/core"
)

type (
	SaleRecorder interface {
		RecordSale(ctx context.Context, item string, price core.Money, method string) (core.Sale, error)
	}

	ExpenseRecorder interface {
		RecordExpense(ctx context.Context, description string, amount core.Money) (core.Expense, error)
	}

	// Aggregator answers whole-ledger aggregate queries.
	Aggregator interface {
		// TotalsByPayment always returns every bucketed method, zero when unused.
		TotalsByPayment(ctx context.Context) (core.PaymentTotals, error)
		// TotalExpenses returns zero when no expense exists.
		TotalExpenses(ctx context.Context) (core.Money, error)
		// CashInHand is cash sales minus total expenses; it can be negative.
		CashInHand(ctx context.Context) (core.Money, error)
	}

	// DailyLister returns the records stamped with the current calendar date.
	DailyLister interface {
		SalesToday(ctx context.Context) ([]core.Sale, error)
		ExpensesToday(ctx context.Context) ([]core.Expense, error)
	}

	Reader interface {
		Aggregator
		DailyLister
	}

	Store interface {
		SaleRecorder
		ExpenseRecorder
		Reader
	}
)
