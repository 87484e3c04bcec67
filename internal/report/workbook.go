package report

import (
	"context"
	"fmt"

	"till/internal/core"
)

// Sheet and header names are shared with spreadsheets produced by earlier
// versions of the till; keep them byte-for-byte.
const (
	SheetSummary       = "Summary"
	SheetSalesToday    = "Sales Today"
	SheetExpensesToday = "Expenses Today"
)

var (
	SalesHeader    = []any{"Item", "Price", "Date", "Payment Type"}
	ExpensesHeader = []any{"Description", "Amount", "Date"}
)

// Workbook is a writer-independent spreadsheet: named sheets of rows.
// A nil or empty row is a blank line.
type Workbook struct {
	Sheets []Sheet
}

type Sheet struct {
	Name string
	Rows [][]any
}

// Sheet returns the sheet called name, if present.
func (wb Workbook) Sheet(name string) (Sheet, bool) {
	for _, s := range wb.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

// Workbook assembles the Summary, Sales Today and Expenses Today sheets.
func (e *Engine) Workbook(ctx context.Context) (Workbook, error) {
	summary, err := e.Summary(ctx)
	if err != nil {
		return Workbook{}, err
	}
	sales, err := e.ledger.SalesToday(ctx)
	if err != nil {
		return Workbook{}, fmt.Errorf("sales today: %w", err)
	}
	expenses, err := e.ledger.ExpensesToday(ctx)
	if err != nil {
		return Workbook{}, fmt.Errorf("expenses today: %w", err)
	}
	return BuildWorkbook(summary, sales, expenses), nil
}

func BuildWorkbook(summary core.DailySummary, sales []core.Sale, expenses []core.Expense) Workbook {
	return Workbook{Sheets: []Sheet{
		summarySheet(summary),
		salesSheet(sales),
		expensesSheet(expenses),
	}}
}

func summarySheet(s core.DailySummary) Sheet {
	rows := [][]any{
		{"Restaurant Daily Summary"},
		nil,
		{"Sales by Payment Type"},
	}
	for _, mt := range s.Totals.Ordered() {
		rows = append(rows, []any{mt.Method.String(), mt.Total.Float64()})
	}
	rows = append(rows,
		nil,
		[]any{"Total Expenses", s.TotalExpenses.Float64()},
		[]any{"Cash in Hand (cash-expenses)", s.CashInHand.Float64()},
	)
	return Sheet{Name: SheetSummary, Rows: rows}
}

func salesSheet(sales []core.Sale) Sheet {
	rows := make([][]any, 0, len(sales)+1)
	rows = append(rows, SalesHeader)
	for _, s := range sales {
		rows = append(rows, []any{
			s.Item,
			s.Price.Float64(),
			s.Timestamp.Format(core.TimestampLayout),
			s.PaymentMethod.String(),
		})
	}
	return Sheet{Name: SheetSalesToday, Rows: rows}
}

func expensesSheet(expenses []core.Expense) Sheet {
	rows := make([][]any, 0, len(expenses)+1)
	rows = append(rows, ExpensesHeader)
	for _, e := range expenses {
		rows = append(rows, []any{
			e.Description,
			e.Amount.Float64(),
			e.Timestamp.Format(core.TimestampLayout),
		})
	}
	return Sheet{Name: SheetExpensesToday, Rows: rows}
}
