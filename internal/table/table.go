// Package table loads the flat (filename, timestamp) tables the analyzer
// consumes and writes the result tables it produces. CSV and XLSX are
// supported, dispatched on the file extension.
package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mailscan/replylag/internal/record"
)

// ColumnAliases lists the accepted header keywords per logical column role.
// Matching is case-insensitive containment: a header containing any keyword
// takes the role.
type ColumnAliases struct {
	Filename []string
	Time     []string
}

// DefaultAliases covers the header variants seen in real exports, including
// the Chinese and Japanese column names of the source mail system.
func DefaultAliases() ColumnAliases {
	return ColumnAliases{
		Filename: []string{"文件名", "file", "filename", "邮件名", "标题", "subject", "name"},
		Time:     []string{"日本时间", "时间", "time", "jst", "日期", "date", "发送时间", "timestamp"},
	}
}

// Table is one loaded input table: raw rows plus the column resolution that
// produced them.
type Table struct {
	Rows []record.Row

	// FilenameColumn and TimeColumn are the resolved header names.
	FilenameColumn string
	TimeColumn     string

	// ByPosition is true when no header keyword matched and the
	// fallback-by-position policy was applied (column 0 = filename,
	// column 1 = timestamp).
	ByPosition bool
}

// Load reads a table from a .csv or .xlsx file. The first row is the header;
// column identity is resolved once, by alias keywords with positional
// fallback.
func Load(path string, aliases ColumnAliases) (*Table, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("table: %s is empty", path)
	}

	header := rows[0]
	t := &Table{}
	fileCol := findColumn(header, aliases.Filename)
	timeCol := findColumn(header, aliases.Time)

	// Fallback-by-position policy: first column is the filename, second is
	// the timestamp (first again for single-column tables).
	if fileCol < 0 {
		fileCol = 0
		t.ByPosition = true
	}
	if timeCol < 0 {
		timeCol = 0
		if len(header) > 1 {
			timeCol = 1
		}
		t.ByPosition = true
	}
	t.FilenameColumn = cell(header, fileCol)
	t.TimeColumn = cell(header, timeCol)

	for i, row := range rows[1:] {
		t.Rows = append(t.Rows, record.Row{
			// 1-based, counting the header, so numbers match what a
			// spreadsheet shows.
			Number:   i + 2,
			Filename: cell(row, fileCol),
			RawTime:  cell(row, timeCol),
		})
	}
	return t, nil
}

// LoadRecords loads a table and normalizes it into records in one step.
func LoadRecords(path string, aliases ColumnAliases) ([]record.Record, record.SkipStats, error) {
	t, err := Load(path, aliases)
	if err != nil {
		return nil, record.SkipStats{}, err
	}
	records, stats := record.NormalizeAll(t.Rows)
	return records, stats, nil
}

func readRows(path string) ([][]string, error) {
	if isXLSX(path) {
		return readXLSX(path)
	}
	return readCSV(path)
}

func isXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are normal in these exports
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("table: read %s: %w", path, err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("table: open %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("table: read sheet %q of %s: %w", sheet, path, err)
	}
	return rows, nil
}

// findColumn returns the index of the first header cell containing any of
// the keywords (case-insensitive), or -1.
func findColumn(header []string, keywords []string) int {
	for i, col := range header {
		low := strings.ToLower(col)
		for _, kw := range keywords {
			if strings.Contains(low, strings.ToLower(kw)) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
