package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"till/internal/report"
)

// Client mirrors report workbooks into a Google spreadsheet, one tab per sheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ report.Writer = (*Client)(nil)

// Credentials selects the service account used to reach the Sheets API.
// JSON wins over File; with neither, GOOGLE_APPLICATION_CREDENTIALS is read.
type Credentials struct {
	JSON string
	File string
}

// New creates a Sheets client for spreadsheetID using service account credentials.
func New(ctx context.Context, spreadsheetID string, creds Credentials) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// NewWithService wraps an existing service; tests point it at a fake endpoint.
func NewWithService(svc *gsheet.Service, spreadsheetID string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID}
}

func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(creds.JSON)
	serviceAccountFile := strings.TrimSpace(creds.File)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteWorkbook replaces the content of one tab per workbook sheet, creating
// tabs that do not exist yet. dest overrides the client's spreadsheet id when
// non-empty. It returns the spreadsheet URL.
func (c *Client) WriteWorkbook(ctx context.Context, dest string, wb report.Workbook) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	id := c.spreadsheetID
	if strings.TrimSpace(dest) != "" {
		id = strings.TrimSpace(dest)
	}
	if id == "" {
		return "", errors.New("missing spreadsheet id")
	}

	if err := c.ensureTabs(ctx, id, wb); err != nil {
		return "", err
	}

	ranges := make([]string, 0, len(wb.Sheets))
	data := make([]*gsheet.ValueRange, 0, len(wb.Sheets))
	for _, sheet := range wb.Sheets {
		ranges = append(ranges, quoteSheet(sheet.Name))
		data = append(data, &gsheet.ValueRange{
			Range:  quoteSheet(sheet.Name) + "!A1",
			Values: toValues(sheet.Rows),
		})
	}

	_, err := c.svc.Spreadsheets.Values.BatchClear(id, &gsheet.BatchClearValuesRequest{Ranges: ranges}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear sheets in %s: %w", id, err)
	}

	_, err = c.svc.Spreadsheets.Values.BatchUpdate(id, &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update sheets in %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Workbook mirrored to Google Sheets",
		"spreadsheet_id", id,
		"sheets", len(wb.Sheets))

	return SpreadsheetURL(id), nil
}

func (c *Client) ensureTabs(ctx context.Context, id string, wb report.Workbook) error {
	ss, err := c.svc.Spreadsheets.Get(id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", id, err)
	}
	existing := map[string]struct{}{}
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			existing[s.Properties.Title] = struct{}{}
		}
	}

	var requests []*gsheet.Request
	for _, sheet := range wb.Sheets {
		if _, ok := existing[sheet.Name]; ok {
			continue
		}
		requests = append(requests, &gsheet.Request{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: sheet.Name},
			},
		})
	}
	if len(requests) == 0 {
		return nil
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(id, &gsheet.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheets to %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Added missing sheets", "spreadsheet_id", id, "count", len(requests))
	return nil
}

// SpreadsheetURL returns the browser URL of a spreadsheet.
func SpreadsheetURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id
}

// quoteSheet quotes a sheet title for A1 notation ("Sales Today" -> "'Sales Today'").
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toValues(rows [][]any) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		if row == nil {
			out[i] = []interface{}{}
			continue
		}
		out[i] = row
	}
	return out
}
