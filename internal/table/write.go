package table

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/mailscan/replylag/internal/correlate"
)

// WriteResults writes one row per query result as a flat table, CSV or XLSX
// by extension. Non-applicable fields render as the N/A marker, never empty.
func WriteResults(path string, results []correlate.Result) error {
	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, correlate.Header)
	for _, r := range results {
		rows = append(rows, r.Cells())
	}
	return writeRows(path, rows)
}

// WriteRows writes an arbitrary table (header included by the caller),
// CSV or XLSX by extension.
func WriteRows(path string, rows [][]string) error {
	return writeRows(path, rows)
}

func writeRows(path string, rows [][]string) error {
	if isXLSX(path) {
		return writeXLSX(path, rows)
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("table: create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("table: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("table: close %s: %w", path, err)
	}
	return nil
}

func writeXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		start, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("table: cell coordinates: %w", err)
		}
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(sheet, start, &cells); err != nil {
			return fmt.Errorf("table: set row %d: %w", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("table: save %s: %w", path, err)
	}
	return nil
}
