package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"till/internal/core"
	"till/internal/ledger"
	"till/internal/report"
)

// App is what every till subcommand operates on.
type App struct {
	Ledger  ledger.Store
	Reports *report.Engine
	// Mirror returns the Google Sheets writer. Nil disables export -google.
	Mirror     func(ctx context.Context) (report.Writer, error)
	ExportPath string
	Stdout     io.Writer
	Stderr     io.Writer
}

// Commands returns the till subcommands bound to app.
func Commands(app *App) []subcommands.Command {
	return []subcommands.Command{
		&saleCmd{app: app},
		&expenseCmd{app: app},
		&summaryCmd{app: app},
		&todayCmd{app: app},
		&exportCmd{app: app},
	}
}

// fail reports err on stderr and maps it to an exit status: bad input is a
// usage error, everything else a failure.
func (a *App) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(a.Stderr, "Error: %v\n", err)
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

func parseAmount(field, s string) (core.Money, error) {
	m, err := core.ParseMoney(s)
	if err != nil {
		return core.Money{}, &core.ValidationError{Field: field, Err: fmt.Errorf("%q: %w", s, err)}
	}
	return m, nil
}

type saleCmd struct {
	app    *App
	item   string
	price  string
	method string
}

func (*saleCmd) Name() string     { return "sale" }
func (*saleCmd) Synopsis() string { return "record a sale" }
func (*saleCmd) Usage() string {
	return `sale -item <text> -price <amount> -method <payment method>

  Records one sale stamped with the current time. Amounts accept a dot or a
  comma as decimal separator (12.50 or 12,50). Known payment methods are
  cash, ewallet, orangemoney, smega and myzaka; others are stored but not
  counted in the summary.
`
}

func (c *saleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.item, "item", "", "Item sold (required)")
	f.StringVar(&c.price, "price", "", "Sale price (required)")
	f.StringVar(&c.method, "method", "", "Payment method (required)")
}

func (c *saleCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	price, err := parseAmount("price", c.price)
	if err != nil {
		return c.app.fail(err)
	}
	sale, err := c.app.Ledger.RecordSale(ctx, c.item, price, strings.TrimSpace(c.method))
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Stdout, "Sale recorded: %s %s (%s)\n", sale.Item, sale.Price, sale.PaymentMethod)
	return subcommands.ExitSuccess
}

type expenseCmd struct {
	app         *App
	description string
	amount      string
}

func (*expenseCmd) Name() string     { return "expense" }
func (*expenseCmd) Synopsis() string { return "record an expense" }
func (*expenseCmd) Usage() string {
	return `expense -description <text> -amount <amount>

  Records one expense stamped with the current time. Expenses are paid out of
  the cash drawer and reduce cash in hand.
`
}

func (c *expenseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.description, "description", "", "What the money was spent on (required)")
	f.StringVar(&c.amount, "amount", "", "Amount spent (required)")
}

func (c *expenseCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := parseAmount("amount", c.amount)
	if err != nil {
		return c.app.fail(err)
	}
	expense, err := c.app.Ledger.RecordExpense(ctx, c.description, amount)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Stdout, "Expense recorded: %s %s\n", expense.Description, expense.Amount)
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	app *App
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print sales by payment method, expenses and cash in hand" }
func (*summaryCmd) Usage() string {
	return `summary

  Prints the totals over the whole ledger.
`
}

func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	text, err := c.app.Reports.SummaryText(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintln(c.app.Stdout, text)
	return subcommands.ExitSuccess
}

type todayCmd struct {
	app *App
}

func (*todayCmd) Name() string     { return "today" }
func (*todayCmd) Synopsis() string { return "list today's sales and expenses with the summary" }
func (*todayCmd) Usage() string {
	return `today

  Lists the sales and expenses recorded on the current calendar date,
  followed by the summary.
`
}

func (*todayCmd) SetFlags(*flag.FlagSet) {}

func (c *todayCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sales, err := c.app.Ledger.SalesToday(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	expenses, err := c.app.Ledger.ExpensesToday(ctx)
	if err != nil {
		return c.app.fail(err)
	}

	w := tabwriter.NewWriter(c.app.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, report.SheetSalesToday)
	fmt.Fprintln(w, "Item\tPrice\tDate\tPayment Type")
	for _, s := range sales {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Item, s.Price, s.Timestamp.Format(core.TimestampLayout), s.PaymentMethod)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, report.SheetExpensesToday)
	fmt.Fprintln(w, "Description\tAmount\tDate")
	for _, e := range expenses {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Description, e.Amount, e.Timestamp.Format(core.TimestampLayout))
	}
	if err := w.Flush(); err != nil {
		return c.app.fail(err)
	}

	text, err := c.app.Reports.SummaryText(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Stdout, "\n%s\n", text)
	return subcommands.ExitSuccess
}

type exportCmd struct {
	app    *App
	output string
	google bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the daily summary workbook" }
func (*exportCmd) Usage() string {
	return `export [-o <path>] [-google]

  Writes the Summary, Sales Today and Expenses Today sheets to an .xlsx file,
  or with -google to the configured Google spreadsheet.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output .xlsx path (defaults to EXPORT_PATH), or a spreadsheet ID with -google")
	f.BoolVar(&c.google, "google", false, "Mirror to the configured Google spreadsheet instead of a file")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var (
		out string
		err error
	)
	if c.google {
		out, err = c.exportGoogle(ctx)
	} else {
		dest := c.output
		if dest == "" {
			dest = c.app.ExportPath
		}
		out, err = c.app.Reports.ExportSummary(ctx, dest)
	}
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Stdout, "Summary exported to %s\n", out)
	return subcommands.ExitSuccess
}

func (c *exportCmd) exportGoogle(ctx context.Context) (string, error) {
	if c.app.Mirror == nil {
		return "", &core.ExportError{Destination: "google", Err: errors.New("no Google spreadsheet configured")}
	}
	w, err := c.app.Mirror(ctx)
	if err != nil {
		return "", &core.ExportError{Destination: "google", Err: err}
	}
	wb, err := c.app.Reports.Workbook(ctx)
	if err != nil {
		return "", err
	}
	return c.app.Reports.Write(ctx, w, c.output, wb)
}
