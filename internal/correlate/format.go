package correlate

import (
	"encoding/json"
	"strconv"
	"time"
)

// NotApplicable is the literal marker rendered for fields a terminal status
// leaves unset. The output contract wants it instead of empty cells.
const NotApplicable = "N/A"

// timeLayout is the display format for timestamps in tabular output.
const timeLayout = "2006-01-02 15:04:05"

// Header is the column order of the flat result table.
var Header = []string{
	"search_id",
	"target_thread_id",
	"target_time",
	"response_time",
	"response_email_id",
	"interval",
	"interval_hours",
	"response_type",
	"thread_message_count",
	"messages_after_target",
	"status",
}

// Cells renders the result as display strings in Header order.
func (r Result) Cells() []string {
	cells := []string{
		r.SearchID,
		naString(r.TargetThreadID),
		naTime(r.TargetTime),
		naTime(r.ResponseTime),
		naString(r.ResponseEmailID),
		NotApplicable,
		NotApplicable,
		naString(string(r.ResponseType)),
		strconv.Itoa(r.ThreadMessageCount),
		strconv.Itoa(r.MessagesAfterTarget),
		string(r.Status),
	}
	if r.Status == StatusSuccess {
		cells[5] = r.Interval.String()
		cells[6] = strconv.FormatFloat(r.IntervalHours, 'f', 2, 64)
	}
	return cells
}

// MarshalJSON renders the result with the same field names and N/A policy as
// the tabular output, keeping the numeric fields numeric.
func (r Result) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"search_id":             r.SearchID,
		"target_thread_id":      naString(r.TargetThreadID),
		"target_time":           naTime(r.TargetTime),
		"response_time":         naTime(r.ResponseTime),
		"response_email_id":     naString(r.ResponseEmailID),
		"interval":              NotApplicable,
		"interval_hours":        NotApplicable,
		"response_type":         naString(string(r.ResponseType)),
		"thread_message_count":  r.ThreadMessageCount,
		"messages_after_target": r.MessagesAfterTarget,
		"status":                string(r.Status),
	}
	if r.Status == StatusSuccess {
		out["interval"] = r.Interval.String()
		out["interval_hours"] = r.IntervalHours
	}
	return json.Marshal(out)
}

func naString(s string) string {
	if s == "" {
		return NotApplicable
	}
	return s
}

func naTime(t time.Time) string {
	if t.IsZero() {
		return NotApplicable
	}
	return t.Format(timeLayout)
}
