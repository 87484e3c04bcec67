package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"till/internal/core"
	"till/internal/ledger"

	_ "modernc.org/sqlite"
)

var _ ledger.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	clock   core.Clock
	loc     *time.Location
}

// Option customizes a SQLiteRepository.
type Option func(*SQLiteRepository)

// WithClock replaces the wall clock used to stamp records and resolve "today".
func WithClock(c core.Clock) Option {
	return func(r *SQLiteRepository) { r.clock = c }
}

// WithLocation sets the time zone timestamps are stored and compared in.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(r *SQLiteRepository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, &core.StorageError{Op: "open", Err: fmt.Errorf("create db directory: %w", err)}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &core.StorageError{Op: "open", Err: fmt.Errorf("open sqlite database: %w", err)}
	}
	// Single writer: one connection serializes every statement.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &core.StorageError{Op: "open", Err: fmt.Errorf("ping database: %w", err)}
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, &core.StorageError{Op: "open", Err: fmt.Errorf("run migrations: %w", err)}
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(repo)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) now() time.Time {
	return r.clock.Now().In(r.loc)
}

// RecordSale implements ledger.SaleRecorder
func (r *SQLiteRepository) RecordSale(ctx context.Context, item string, price core.Money, method string) (core.Sale, error) {
	row, err := r.queries.CreateSale(ctx, CreateSaleParams{
		Item:          item,
		PriceCents:    price.Cents,
		Timestamp:     r.now().Format(core.TimestampLayout),
		PaymentMethod: string(core.NormalizePaymentMethod(method)),
	})
	if err != nil {
		return core.Sale{}, &core.StorageError{Op: "record sale", Err: err}
	}

	slog.InfoContext(ctx, "Sale saved to SQLite",
		"id", row.ID,
		"item", row.Item,
		"price_cents", row.PriceCents,
		"payment_method", row.PaymentMethod,
		"timestamp", row.Timestamp)

	return r.toSale(row)
}

// RecordExpense implements ledger.ExpenseRecorder
func (r *SQLiteRepository) RecordExpense(ctx context.Context, description string, amount core.Money) (core.Expense, error) {
	row, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		Description: description,
		AmountCents: amount.Cents,
		Timestamp:   r.now().Format(core.TimestampLayout),
	})
	if err != nil {
		return core.Expense{}, &core.StorageError{Op: "record expense", Err: err}
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", row.ID,
		"description", row.Description,
		"amount_cents", row.AmountCents,
		"timestamp", row.Timestamp)

	return r.toExpense(row)
}

// TotalsByPayment implements ledger.Aggregator
func (r *SQLiteRepository) TotalsByPayment(ctx context.Context) (core.PaymentTotals, error) {
	sums, err := r.queries.GetPaymentMethodSums(ctx)
	if err != nil {
		return nil, &core.StorageError{Op: "totals by payment", Err: err}
	}

	totals := core.NewPaymentTotals()
	for _, s := range sums {
		bucketed, err := totals.Add(core.PaymentMethod(s.PaymentMethod), core.Money{Cents: s.TotalCents})
		if err != nil {
			return nil, &core.StorageError{Op: "totals by payment", Err: err}
		}
		if !bucketed {
			slog.DebugContext(ctx, "Payment method not bucketed",
				"payment_method", s.PaymentMethod,
				"total_cents", s.TotalCents)
		}
	}
	return totals, nil
}

// TotalExpenses implements ledger.Aggregator
func (r *SQLiteRepository) TotalExpenses(ctx context.Context) (core.Money, error) {
	total, err := r.queries.GetExpensesTotal(ctx)
	if err != nil {
		return core.Money{}, &core.StorageError{Op: "total expenses", Err: err}
	}
	return core.Money{Cents: total}, nil
}

// CashInHand implements ledger.Aggregator
func (r *SQLiteRepository) CashInHand(ctx context.Context) (core.Money, error) {
	totals, err := r.TotalsByPayment(ctx)
	if err != nil {
		return core.Money{}, err
	}
	expenses, err := r.TotalExpenses(ctx)
	if err != nil {
		return core.Money{}, err
	}
	cash, err := totals[core.Cash].Sub(expenses)
	if err != nil {
		return core.Money{}, &core.StorageError{Op: "cash in hand", Err: err}
	}
	return cash, nil
}

// SalesToday implements ledger.DailyLister
func (r *SQLiteRepository) SalesToday(ctx context.Context) ([]core.Sale, error) {
	rows, err := r.queries.GetSalesByDate(ctx, r.now().Format(core.DateLayout))
	if err != nil {
		return nil, &core.StorageError{Op: "sales today", Err: err}
	}

	sales := make([]core.Sale, 0, len(rows))
	for _, row := range rows {
		s, err := r.toSale(row)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, nil
}

// ExpensesToday implements ledger.DailyLister
func (r *SQLiteRepository) ExpensesToday(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.queries.GetExpensesByDate(ctx, r.now().Format(core.DateLayout))
	if err != nil {
		return nil, &core.StorageError{Op: "expenses today", Err: err}
	}

	expenses := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := r.toExpense(row)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

func (r *SQLiteRepository) parseTimestamp(op, s string) (time.Time, error) {
	ts, err := time.ParseInLocation(core.TimestampLayout, s, r.loc)
	if err != nil {
		return time.Time{}, &core.StorageError{Op: op, Err: fmt.Errorf("parse timestamp %q: %w", s, err)}
	}
	return ts, nil
}

func (r *SQLiteRepository) toSale(row Sale) (core.Sale, error) {
	ts, err := r.parseTimestamp("read sale", row.Timestamp)
	if err != nil {
		return core.Sale{}, err
	}
	return core.Sale{
		ID:            row.ID,
		Item:          row.Item,
		Price:         core.Money{Cents: row.PriceCents},
		Timestamp:     ts,
		PaymentMethod: core.PaymentMethod(row.PaymentMethod),
	}, nil
}

func (r *SQLiteRepository) toExpense(row Expense) (core.Expense, error) {
	ts, err := r.parseTimestamp("read expense", row.Timestamp)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		ID:          row.ID,
		Description: row.Description,
		Amount:      core.Money{Cents: row.AmountCents},
		Timestamp:   ts,
	}, nil
}
