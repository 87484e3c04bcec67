package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"till/internal/adapters"
	"till/internal/core"
	"till/internal/export/xlsx"
	"till/internal/ledger/memory"
	"till/internal/report"
	"till/internal/services"
)

type stubWriter struct {
	dest string
	wb   report.Workbook
}

func (w *stubWriter) WriteWorkbook(_ context.Context, dest string, wb report.Workbook) (string, error) {
	w.dest = dest
	w.wb = wb
	return "https://docs.google.com/spreadsheets/d/stub", nil
}

type harness struct {
	app    *App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.New(func() time.Time { return time.Date(2025, 6, 1, 12, 30, 0, 0, time.Local) })
	ledger := adapters.NewLedgerAdapter(store, services.NewLedgerService(store, nil, nil))
	h := &harness{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	h.app = &App{
		Ledger:     ledger,
		Reports:    report.NewEngine(ledger, xlsx.NewWriter()),
		ExportPath: filepath.Join(t.TempDir(), "daily_summary.xlsx"),
		Stdout:     h.stdout,
		Stderr:     h.stderr,
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet("till", flag.ContinueOnError)
	cdr := subcommands.NewCommander(fs, "till")
	for _, c := range Commands(h.app) {
		cdr.Register(c, "")
	}
	require.NoError(t, fs.Parse(args))
	return cdr.Execute(context.Background())
}

func TestCommands_SaleAndSummary(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, subcommands.ExitSuccess, h.run(t, "sale", "-item", "Burger", "-price", "25,50", "-method", "Cash"))
	assert.Equal(t, "Sale recorded: Burger 25.50 (cash)\n", h.stdout.String())

	h.stdout.Reset()
	assert.Equal(t, subcommands.ExitSuccess, h.run(t, "expense", "-description", "Ice", "-amount", "2"))
	assert.Equal(t, "Expense recorded: Ice 2.00\n", h.stdout.String())

	h.stdout.Reset()
	assert.Equal(t, subcommands.ExitSuccess, h.run(t, "summary"))
	assert.Equal(t, "=== Daily Summary ===\n"+
		"Sales by Payment Type:\n"+
		"  cash: 25.50\n"+
		"  ewallet: 0.00\n"+
		"  orangemoney: 0.00\n"+
		"  smega: 0.00\n"+
		"  myzaka: 0.00\n"+
		"Total Expenses: 2.00\n"+
		"Cash in Hand (cash sales - expenses): 23.50\n", h.stdout.String())
}

func TestCommands_InvalidInputIsUsageError(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad price", []string{"sale", "-item", "Burger", "-price", "abc", "-method", "cash"}, "invalid price"},
		{"negative price", []string{"sale", "-item", "Burger", "-price", "-5", "-method", "cash"}, "invalid price"},
		{"price above ceiling", []string{"sale", "-item", "Burger", "-price", "10000000000.01", "-method", "cash"}, "amount too large"},
		{"missing item", []string{"sale", "-price", "5", "-method", "cash"}, "invalid item"},
		{"missing method", []string{"sale", "-item", "Tea", "-price", "5"}, "invalid payment_method"},
		{"bad amount", []string{"expense", "-description", "Ice", "-amount", "1.2.3"}, "invalid amount"},
		{"missing description", []string{"expense", "-amount", "3"}, "invalid description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			assert.Equal(t, subcommands.ExitUsageError, h.run(t, tt.args...))
			assert.Contains(t, h.stderr.String(), tt.want)
			assert.Empty(t, h.stdout.String())
		})
	}
}

func TestCommands_Today(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, subcommands.ExitSuccess, h.run(t, "sale", "-item", "Burger", "-price", "25.5", "-method", "cash"))
	require.Equal(t, subcommands.ExitSuccess, h.run(t, "expense", "-description", "Ice", "-amount", "2"))
	h.stdout.Reset()

	assert.Equal(t, subcommands.ExitSuccess, h.run(t, "today"))
	out := h.stdout.String()
	assert.Contains(t, out, "Sales Today\n")
	assert.Contains(t, out, "Burger  25.50  2025-06-01 12:30:00  cash")
	assert.Contains(t, out, "Expenses Today\n")
	assert.Contains(t, out, "Ice          2.00    2025-06-01 12:30:00")
	assert.True(t, strings.HasSuffix(out, "\n=== Daily Summary ===\n"+
		"Sales by Payment Type:\n"+
		"  cash: 25.50\n"+
		"  ewallet: 0.00\n"+
		"  orangemoney: 0.00\n"+
		"  smega: 0.00\n"+
		"  myzaka: 0.00\n"+
		"Total Expenses: 2.00\n"+
		"Cash in Hand (cash sales - expenses): 23.50\n"), "summary follows the records:\n%s", out)
	assert.Less(t, strings.Index(out, "Expenses Today"), strings.Index(out, "=== Daily Summary ==="))
}

func TestCommands_SaleTrimsMethod(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, subcommands.ExitSuccess, h.run(t, "sale", "-item", "Soda", "-price", "1", "-method", " Cash "))
	assert.Equal(t, "Sale recorded: Soda 1.00 (cash)\n", h.stdout.String())

	totals, err := h.app.Ledger.TotalsByPayment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), totals[core.Cash].Cents)
}

func TestCommands_Export(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, subcommands.ExitSuccess, h.run(t, "sale", "-item", "Soda", "-price", "5", "-method", "cash"))
	h.stdout.Reset()

	t.Run("default path", func(t *testing.T) {
		assert.Equal(t, subcommands.ExitSuccess, h.run(t, "export"))
		assert.Contains(t, h.stdout.String(), h.app.ExportPath)

		f, err := excelize.OpenFile(h.app.ExportPath)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{"Summary", "Sales Today", "Expenses Today"}, f.GetSheetList())
	})

	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.xlsx")
		assert.Equal(t, subcommands.ExitSuccess, h.run(t, "export", "-o", path))
		assert.FileExists(t, path)
	})

	t.Run("unwritable path is a failure", func(t *testing.T) {
		h.stderr.Reset()
		path := filepath.Join(t.TempDir(), "missing", "dir", "out.xlsx")
		assert.Equal(t, subcommands.ExitFailure, h.run(t, "export", "-o", path))
		assert.Contains(t, h.stderr.String(), "export to")
	})
}

func TestCommands_ExportGoogle(t *testing.T) {
	h := newHarness(t)

	t.Run("not configured", func(t *testing.T) {
		assert.Equal(t, subcommands.ExitFailure, h.run(t, "export", "-google"))
		assert.Contains(t, h.stderr.String(), "no Google spreadsheet configured")
	})

	t.Run("mirror init failure", func(t *testing.T) {
		h.app.Mirror = func(context.Context) (report.Writer, error) { return nil, errors.New("bad credentials") }
		assert.Equal(t, subcommands.ExitFailure, h.run(t, "export", "-google"))
		assert.Contains(t, h.stderr.String(), "bad credentials")
	})

	t.Run("configured", func(t *testing.T) {
		stub := &stubWriter{}
		h.app.Mirror = func(context.Context) (report.Writer, error) { return stub, nil }
		h.stdout.Reset()

		assert.Equal(t, subcommands.ExitSuccess, h.run(t, "export", "-google"))
		assert.Equal(t, "Summary exported to https://docs.google.com/spreadsheets/d/stub\n", h.stdout.String())
		assert.Empty(t, stub.dest)
		assert.Len(t, stub.wb.Sheets, 3)
	})
}
