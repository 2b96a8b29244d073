// Package record normalizes raw table rows into immutable email records.
package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/mailscan/replylag/internal/extract"
)

// Record is one normalized email entry. Records are immutable once
// constructed; the thread index owns the record set for a query session.
type Record struct {
	// RowNumber is the origin row in the source table (1-based, counting
	// the header). Diagnostic only.
	RowNumber int

	// Filename is the original text, trimmed and non-blank.
	Filename string

	// Timestamp is timezone-naive; rows without a parseable timestamp
	// never become records.
	Timestamp time.Time

	// EmailID is the display-only short code, or a synthetic ID_<row>
	// placeholder when the filename yields none.
	EmailID string

	// ThreadID is a canonical 4-character code, an INC-prefixed number,
	// or extract.UnknownThread.
	ThreadID string

	// SearchID is the opaque namespace:digits query key, or "".
	SearchID string

	// IsReply is true when the filename carries a reply marker.
	IsReply bool
}

// timeLayouts are the accepted timestamp formats, most common first.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006-01-02T15:04:05",
}

// ParseTime parses a raw timestamp cell under the accepted layouts.
// The result is timezone-naive (parsed without a location).
func ParseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize converts one raw (filename, timestamp) pair into a Record.
// Returns false when the row must be skipped: blank filename or a timestamp
// that parses under none of the accepted formats. A skip is silent by
// contract — one malformed row never aborts a batch.
func Normalize(rowNum int, filename, rawTime string) (Record, bool) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return Record{}, false
	}

	ts, ok := ParseTime(rawTime)
	if !ok {
		return Record{}, false
	}

	ids := extract.Extract(filename)
	if ids.EmailID == "" {
		ids.EmailID = fmt.Sprintf("ID_%d", rowNum)
	}

	return Record{
		RowNumber: rowNum,
		Filename:  filename,
		Timestamp: ts,
		EmailID:   ids.EmailID,
		ThreadID:  ids.ThreadID,
		SearchID:  ids.SearchID,
		IsReply:   ids.IsReply,
	}, true
}

// SkipStats counts how a table normalization went. Reported to the caller,
// never raised.
type SkipStats struct {
	Total   int
	Kept    int
	Skipped int
}

// Row is one raw table row handed over by the loader stage.
type Row struct {
	Number   int // origin row number in the source table
	Filename string
	RawTime  string
}

// NormalizeAll folds a whole table of raw rows into records, silently
// dropping the malformed ones.
func NormalizeAll(rows []Row) ([]Record, SkipStats) {
	records := make([]Record, 0, len(rows))
	stats := SkipStats{Total: len(rows)}
	for _, row := range rows {
		rec, ok := Normalize(row.Number, row.Filename, row.RawTime)
		if !ok {
			stats.Skipped++
			continue
		}
		records = append(records, rec)
	}
	stats.Kept = len(records)
	return records, stats
}
