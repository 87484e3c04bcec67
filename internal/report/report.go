// Package report derives the daily summary, its text rendering and the
// exportable workbook from a ledger. It never writes to the ledger.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"till/internal/core"
	"till/internal/ledger"
)

// DefaultExportPath is used when ExportSummary is given no destination.
const DefaultExportPath = "daily_summary.xlsx"

// Writer persists a workbook to a destination and returns where it went.
type Writer interface {
	WriteWorkbook(ctx context.Context, dest string, wb Workbook) (string, error)
}

type Engine struct {
	ledger ledger.Reader
	writer Writer
}

func NewEngine(l ledger.Reader, w Writer) *Engine {
	return &Engine{ledger: l, writer: w}
}

// Summary computes the daily figures from the ledger at call time.
func (e *Engine) Summary(ctx context.Context) (core.DailySummary, error) {
	totals, err := e.ledger.TotalsByPayment(ctx)
	if err != nil {
		return core.DailySummary{}, fmt.Errorf("totals by payment: %w", err)
	}
	expenses, err := e.ledger.TotalExpenses(ctx)
	if err != nil {
		return core.DailySummary{}, fmt.Errorf("total expenses: %w", err)
	}
	cash, err := e.ledger.CashInHand(ctx)
	if err != nil {
		return core.DailySummary{}, fmt.Errorf("cash in hand: %w", err)
	}
	return core.DailySummary{
		Totals:        totals,
		TotalExpenses: expenses,
		CashInHand:    cash,
	}, nil
}

// SummaryText renders the summary as the fixed multi-line block shown to
// the till operator.
func (e *Engine) SummaryText(ctx context.Context) (string, error) {
	s, err := e.Summary(ctx)
	if err != nil {
		return "", err
	}
	return FormatSummary(s), nil
}

func FormatSummary(s core.DailySummary) string {
	lines := []string{"=== Daily Summary ===", "Sales by Payment Type:"}
	for _, mt := range s.Totals.Ordered() {
		lines = append(lines, fmt.Sprintf("  %s: %s", mt.Method, mt.Total))
	}
	lines = append(lines,
		fmt.Sprintf("Total Expenses: %s", s.TotalExpenses),
		fmt.Sprintf("Cash in Hand (cash sales - expenses): %s", s.CashInHand),
	)
	return strings.Join(lines, "\n")
}

// ExportSummary builds the workbook and hands it to the engine's writer.
// Ledger failures come back as *core.StorageError, writer failures as
// *core.ExportError.
func (e *Engine) ExportSummary(ctx context.Context, dest string) (string, error) {
	if dest == "" {
		dest = DefaultExportPath
	}
	wb, err := e.Workbook(ctx)
	if err != nil {
		return "", err
	}
	return e.Write(ctx, e.writer, dest, wb)
}

// Write sends wb to w, wrapping failures as *core.ExportError.
func (e *Engine) Write(ctx context.Context, w Writer, dest string, wb Workbook) (string, error) {
	if w == nil {
		return "", &core.ExportError{Destination: dest, Err: fmt.Errorf("no workbook writer configured")}
	}
	out, err := w.WriteWorkbook(ctx, dest, wb)
	if err != nil {
		return "", &core.ExportError{Destination: dest, Err: err}
	}
	slog.InfoContext(ctx, "Daily summary exported",
		"destination", out,
		"sheets", len(wb.Sheets))
	return out, nil
}
