// Package xlsx writes report workbooks to local Excel files.
package xlsx

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"till/internal/report"
)

// defaultSheet is the sheet excelize creates with every new file.
const defaultSheet = "Sheet1"

var _ report.Writer = (*Writer)(nil)

type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// WriteWorkbook saves wb to dest. The parent directory must already exist.
func (w *Writer) WriteWorkbook(ctx context.Context, dest string, wb report.Workbook) (string, error) {
	if len(wb.Sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range wb.Sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return "", fmt.Errorf("rename sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return "", fmt.Errorf("create sheet %q: %w", sheet.Name, err)
		}
		if err := writeRows(f, sheet); err != nil {
			return "", err
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(dest); err != nil {
		return "", fmt.Errorf("save %s: %w", dest, err)
	}
	return dest, nil
}

func writeRows(f *excelize.File, sheet report.Sheet) error {
	for i, row := range sheet.Rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return fmt.Errorf("write %s!%s: %w", sheet.Name, cell, err)
		}
	}
	return nil
}
