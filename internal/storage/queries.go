package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Sale struct {
	ID            int64
	Item          string
	PriceCents    int64
	Timestamp     string
	PaymentMethod string
}

type Expense struct {
	ID          int64
	Description string
	AmountCents int64
	Timestamp   string
}

type CreateSaleParams struct {
	Item          string
	PriceCents    int64
	Timestamp     string
	PaymentMethod string
}

const createSale = `INSERT INTO sales (item, price_cents, timestamp, payment_method)
VALUES (?, ?, ?, ?)
RETURNING id, item, price_cents, timestamp, payment_method`

func (q *Queries) CreateSale(ctx context.Context, arg CreateSaleParams) (Sale, error) {
	row := q.db.QueryRowContext(ctx, createSale, arg.Item, arg.PriceCents, arg.Timestamp, arg.PaymentMethod)
	var i Sale
	err := row.Scan(&i.ID, &i.Item, &i.PriceCents, &i.Timestamp, &i.PaymentMethod)
	return i, err
}

type CreateExpenseParams struct {
	Description string
	AmountCents int64
	Timestamp   string
}

const createExpense = `INSERT INTO expenses (description, amount_cents, timestamp)
VALUES (?, ?, ?)
RETURNING id, description, amount_cents, timestamp`

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense, arg.Description, arg.AmountCents, arg.Timestamp)
	var i Expense
	err := row.Scan(&i.ID, &i.Description, &i.AmountCents, &i.Timestamp)
	return i, err
}

type PaymentMethodSum struct {
	PaymentMethod string
	TotalCents    int64
}

const getPaymentMethodSums = `SELECT payment_method, COALESCE(SUM(price_cents), 0)
FROM sales
GROUP BY payment_method`

func (q *Queries) GetPaymentMethodSums(ctx context.Context) ([]PaymentMethodSum, error) {
	rows, err := q.db.QueryContext(ctx, getPaymentMethodSums)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PaymentMethodSum
	for rows.Next() {
		var i PaymentMethodSum
		if err := rows.Scan(&i.PaymentMethod, &i.TotalCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getExpensesTotal = `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses`

func (q *Queries) GetExpensesTotal(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, getExpensesTotal)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const getSalesByDate = `SELECT id, item, price_cents, timestamp, payment_method
FROM sales
WHERE date(timestamp) = date(?)
ORDER BY id`

func (q *Queries) GetSalesByDate(ctx context.Context, day string) ([]Sale, error) {
	rows, err := q.db.QueryContext(ctx, getSalesByDate, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Sale
	for rows.Next() {
		var i Sale
		if err := rows.Scan(&i.ID, &i.Item, &i.PriceCents, &i.Timestamp, &i.PaymentMethod); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getExpensesByDate = `SELECT id, description, amount_cents, timestamp
FROM expenses
WHERE date(timestamp) = date(?)
ORDER BY id`

func (q *Queries) GetExpensesByDate(ctx context.Context, day string) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, getExpensesByDate, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(&i.ID, &i.Description, &i.AmountCents, &i.Timestamp); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
