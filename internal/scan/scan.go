// Package scan implements the producer stage: walking a directory of
// exported .eml files and extracting a Japan-time timestamp from each
// message, emitting the (filename, timestamp) table the analyzer consumes.
package scan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mailscan/replylag/internal/textutil"
)

// DefaultReadLimit bounds how much of each message is read. Timestamps live
// in the headers or the forwarded preamble, so a prefix is enough.
const DefaultReadLimit = 5000

// Row is one scanned message: the bare filename and its timestamp in JST
// formatted as 2006-01-02 15:04:05, or an empty string when no timestamp
// could be extracted.
type Row struct {
	Filename string
	JSTTime  string
}

// Header is the header row of the emitted table. The column names are the
// ones the loader's default aliases recognize.
var Header = []string{"文件名", "日本时间(JST)"}

// Stats summarizes one directory scan.
type Stats struct {
	Files   int // .eml files seen
	Found   int // timestamps extracted
	Missing int // files with no recognizable timestamp
}

// Scanner scans .eml exports. The zero value is not usable; call New.
type Scanner struct {
	readLimit int
	logger    *slog.Logger
}

// New creates a scanner. readLimit <= 0 selects DefaultReadLimit; a nil
// logger disables progress logging.
func New(readLimit int, logger *slog.Logger) *Scanner {
	if readLimit <= 0 {
		readLimit = DefaultReadLimit
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scanner{readLimit: readLimit, logger: logger}
}

// ScanDir scans every .eml file directly under dir, in directory order.
// Files that yield no timestamp are kept in the output with an empty time
// cell so the loader's skip accounting sees them.
func (s *Scanner) ScanDir(ctx context.Context, dir string) ([]Row, Stats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("scan: read dir %s: %w", dir, err)
	}

	var rows []Row
	var stats Stats
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, Stats{}, err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".eml") {
			continue
		}
		stats.Files++

		content, err := s.readPrefix(filepath.Join(dir, entry.Name()))
		if err != nil {
			s.logger.Warn("unreadable message", "file", entry.Name(), "error", err)
			rows = append(rows, Row{Filename: entry.Name()})
			stats.Missing++
			continue
		}

		jst, ok := ExtractJSTTime(content)
		if !ok {
			rows = append(rows, Row{Filename: entry.Name()})
			stats.Missing++
			continue
		}
		rows = append(rows, Row{Filename: entry.Name(), JSTTime: jst})
		stats.Found++

		if stats.Files%100 == 0 {
			s.logger.Debug("scan progress", "files", stats.Files)
		}
	}
	return rows, stats, nil
}

// readPrefix reads up to readLimit bytes of a file and decodes them to
// UTF-8, with encoding fallback for the Shift_JIS / EUC-JP exports.
func (s *Scanner) readPrefix(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(s.readLimit)))
	if err != nil {
		return "", err
	}
	return textutil.DecodeUTF8(data), nil
}

// isoTimeRe matches a literal YYYY-MM-DD HH:MM:SS anywhere in the content.
// The export pipeline stamps messages with this form already in JST, so a
// hit is returned verbatim.
var isoTimeRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}`)

// dateHeaderRe captures the value of a Date: header line.
var dateHeaderRe = regexp.MustCompile(`(?i)Date:\s*([^\r\n]+)`)

// dateLayouts are the RFC 5322 Date forms seen in the wild, with and without
// the leading weekday.
var dateLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
}

// jstOffset converts UTC to Japan Standard Time; JST has no DST.
const jstOffset = 9 * time.Hour

// ExtractJSTTime extracts a JST timestamp from decoded message content.
// A literal ISO timestamp wins; otherwise the Date: header is parsed, the
// zone offset applied, and the instant shifted to JST.
func ExtractJSTTime(content string) (string, bool) {
	if m := isoTimeRe.FindString(content); m != "" {
		// Normalize any run of whitespace between date and time.
		return strings.Join(strings.Fields(m), " "), true
	}

	m := dateHeaderRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	value := strings.TrimSpace(m[1])

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		jst := t.UTC().Add(jstOffset)
		return jst.Format("2006-01-02 15:04:05"), true
	}
	return "", false
}

// Rows converts scan output to a writable table, header included.
func Rows(rows []Row) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, Header)
	for _, r := range rows {
		out = append(out, []string{r.Filename, r.JSTTime})
	}
	return out
}
