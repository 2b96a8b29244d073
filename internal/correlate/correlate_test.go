package correlate

import (
	"math"
	"testing"
	"time"

	"github.com/mailscan/replylag/internal/index"
	"github.com/mailscan/replylag/internal/record"
)

func at(day, h, m, s int) time.Time {
	return time.Date(2026, 1, day, h, m, s, 0, time.UTC)
}

func newEngine(records ...record.Record) *Engine {
	return NewEngine(index.Build(records), nil)
}

func TestResolveSuccess(t *testing.T) {
	// Scenario from the original reporting tool: a non-reply successor is
	// chronologically closer, but a reply exists and must win.
	target := record.Record{
		RowNumber: 2,
		Filename:  "[mdmswitch_help:06061] 問い合わせが入りました_C088.eml",
		Timestamp: at(20, 6, 13, 9),
		EmailID:   "06061",
		ThreadID:  "C088",
		SearchID:  "mdmswitch_help:06061",
	}
	nonReply := record.Record{
		RowNumber: 3,
		Filename:  "自動通知_C088_追加.txt",
		Timestamp: at(20, 6, 20, 0),
		EmailID:   "ID_3",
		ThreadID:  "C088",
	}
	reply := record.Record{
		RowNumber: 4,
		Filename:  "Re: 問い合わせが入りました_C088.eml",
		Timestamp: at(20, 7, 0, 0),
		EmailID:   "ID_4",
		ThreadID:  "C088",
		IsReply:   true,
	}

	got := newEngine(target, nonReply, reply).Resolve("mdmswitch_help:06061")

	if got.Status != StatusSuccess {
		t.Fatalf("Status = %s, want SUCCESS", got.Status)
	}
	if got.ResponseType != ResponseReply {
		t.Errorf("ResponseType = %s, want REPLY (reply preferred over closer non-reply)", got.ResponseType)
	}
	if !got.ResponseTime.Equal(at(20, 7, 0, 0)) {
		t.Errorf("ResponseTime = %v, want 07:00:00", got.ResponseTime)
	}
	if got.ResponseEmailID != "ID_4" {
		t.Errorf("ResponseEmailID = %q, want ID_4", got.ResponseEmailID)
	}
	if want := (Interval{Days: 0, Hours: 0, Minutes: 46}); got.Interval != want {
		t.Errorf("Interval = %+v, want %+v", got.Interval, want)
	}
	if got.IntervalHours != 0.78 {
		t.Errorf("IntervalHours = %v, want 0.78", got.IntervalHours)
	}
	if got.ThreadMessageCount != 3 {
		t.Errorf("ThreadMessageCount = %d, want 3", got.ThreadMessageCount)
	}
	if got.MessagesAfterTarget != 2 {
		t.Errorf("MessagesAfterTarget = %d, want 2", got.MessagesAfterTarget)
	}
}

func TestResolveNonReplyFallback(t *testing.T) {
	target := record.Record{
		RowNumber: 2,
		Filename:  "[help:00001] 問い合わせ_A123.eml",
		Timestamp: at(20, 9, 0, 0),
		ThreadID:  "A123",
		SearchID:  "help:00001",
	}
	later := record.Record{
		RowNumber: 3,
		Filename:  "自動通知_A123_追加.txt",
		Timestamp: at(20, 9, 30, 0),
		EmailID:   "ID_3",
		ThreadID:  "A123",
	}

	got := newEngine(target, later).Resolve("help:00001")

	if got.Status != StatusSuccess {
		t.Fatalf("Status = %s, want SUCCESS", got.Status)
	}
	if got.ResponseType != ResponseNonReply {
		t.Errorf("ResponseType = %s, want NON_REPLY", got.ResponseType)
	}
	if got.ResponseEmailID != "ID_3" {
		t.Errorf("ResponseEmailID = %q, want ID_3", got.ResponseEmailID)
	}
}

func TestResolveStrictSuccessor(t *testing.T) {
	// A message sharing the exact target timestamp is not a response.
	same := at(20, 9, 0, 0)
	target := record.Record{
		RowNumber: 2,
		Filename:  "[help:00001] 問い合わせ_A123.eml",
		Timestamp: same,
		ThreadID:  "A123",
		SearchID:  "help:00001",
	}
	twin := record.Record{
		RowNumber: 3,
		Filename:  "Re: 問い合わせ_A123.eml",
		Timestamp: same,
		ThreadID:  "A123",
		IsReply:   true,
	}

	got := newEngine(target, twin).Resolve("help:00001")

	if got.Status != StatusNoReply {
		t.Errorf("Status = %s, want NO_REPLY (equal timestamp is not a successor)", got.Status)
	}
	if got.ThreadMessageCount != 2 {
		t.Errorf("ThreadMessageCount = %d, want 2", got.ThreadMessageCount)
	}
}

func TestResolveTieBreakOnEqualTimestamps(t *testing.T) {
	target := record.Record{
		RowNumber: 2,
		Filename:  "[help:00001] 問い合わせ_A123.eml",
		Timestamp: at(20, 9, 0, 0),
		ThreadID:  "A123",
		SearchID:  "help:00001",
	}
	sameTime := at(20, 10, 0, 0)
	first := record.Record{
		RowNumber: 3,
		Filename:  "Re: 問い合わせ_A123 (1).eml",
		Timestamp: sameTime,
		EmailID:   "ID_3",
		ThreadID:  "A123",
		IsReply:   true,
	}
	second := record.Record{
		RowNumber: 4,
		Filename:  "Re: 問い合わせ_A123 (2).eml",
		Timestamp: sameTime,
		EmailID:   "ID_4",
		ThreadID:  "A123",
		IsReply:   true,
	}

	got := newEngine(target, first, second).Resolve("help:00001")

	if got.Status != StatusSuccess {
		t.Fatalf("Status = %s, want SUCCESS", got.Status)
	}
	if got.ResponseEmailID != "ID_3" {
		t.Errorf("tie-break picked %q, want first-in-input-order ID_3", got.ResponseEmailID)
	}
}

func TestResolveSearchIDNotFound(t *testing.T) {
	rec := record.Record{
		RowNumber: 2,
		Filename:  "[help:00001] 問い合わせ_A123.eml",
		Timestamp: at(20, 9, 0, 0),
		ThreadID:  "A123",
		SearchID:  "help:00001",
	}

	got := newEngine(rec).Resolve("missing:99999")

	if got.Status != StatusSearchIDNotFound {
		t.Fatalf("Status = %s, want SEARCH_ID_NOT_FOUND", got.Status)
	}
	if got.SearchID != "missing:99999" {
		t.Errorf("SearchID = %q, want the original query echoed back", got.SearchID)
	}
	if !got.TargetTime.IsZero() {
		t.Errorf("TargetTime = %v, want zero", got.TargetTime)
	}
}

func TestResolveSubstringFallback(t *testing.T) {
	target := record.Record{
		RowNumber: 2,
		Filename:  "[mdmswitch_help:01218] 問い合わせ_A553.eml",
		Timestamp: at(20, 9, 0, 0),
		ThreadID:  "A553",
		SearchID:  "mdmswitch_help:01218",
	}
	reply := record.Record{
		RowNumber: 3,
		Filename:  "Re: 問い合わせ_A553.eml",
		Timestamp: at(20, 10, 0, 0),
		ThreadID:  "A553",
		IsReply:   true,
	}

	got := newEngine(target, reply).Resolve("HELP:01218")

	if got.Status != StatusSuccess {
		t.Fatalf("Status = %s, want SUCCESS via substring fallback", got.Status)
	}
	if got.SearchID != "mdmswitch_help:01218" {
		t.Errorf("SearchID = %q, want the resolved full id", got.SearchID)
	}
}

func TestResolveSalvagesThreadID(t *testing.T) {
	// The long C-number forced the thread id to UNKNOWN, but the filename
	// still carries a canonical code that is a live thread key.
	target := record.Record{
		RowNumber: 2,
		Filename:  "[help:00002] 確認_C29497931_A553.eml",
		Timestamp: at(20, 9, 0, 0),
		ThreadID:  "UNKNOWN",
		SearchID:  "help:00002",
	}
	other := record.Record{
		RowNumber: 3,
		Filename:  "問い合わせ_A553.eml",
		Timestamp: at(20, 8, 0, 0),
		ThreadID:  "A553",
	}
	reply := record.Record{
		RowNumber: 4,
		Filename:  "Re: 問い合わせ_A553.eml",
		Timestamp: at(20, 11, 30, 0),
		EmailID:   "ID_4",
		ThreadID:  "A553",
		IsReply:   true,
	}

	got := newEngine(target, other, reply).Resolve("help:00002")

	if got.Status != StatusSuccess {
		t.Fatalf("Status = %s, want SUCCESS via salvaged thread id", got.Status)
	}
	if got.TargetThreadID != "A553" {
		t.Errorf("TargetThreadID = %q, want salvaged A553", got.TargetThreadID)
	}
	if got.ResponseEmailID != "ID_4" {
		t.Errorf("ResponseEmailID = %q, want ID_4", got.ResponseEmailID)
	}
}

func TestResolveNoOtherThreadMessages(t *testing.T) {
	target := record.Record{
		RowNumber: 2,
		Filename:  "[help:00003] 年末のご挨拶.eml",
		Timestamp: at(20, 9, 0, 0),
		ThreadID:  "UNKNOWN",
		SearchID:  "help:00003",
	}

	got := newEngine(target).Resolve("help:00003")

	if got.Status != StatusNoOtherThreadMessages {
		t.Fatalf("Status = %s, want NO_OTHER_THREAD_MESSAGES", got.Status)
	}
	if got.ThreadMessageCount != 1 {
		t.Errorf("ThreadMessageCount = %d, want 1", got.ThreadMessageCount)
	}
	if got.MessagesAfterTarget != 0 {
		t.Errorf("MessagesAfterTarget = %d, want 0", got.MessagesAfterTarget)
	}
}

func TestResolveNoReply(t *testing.T) {
	target := record.Record{
		RowNumber: 3,
		Filename:  "[help:00004] 問い合わせ_B394.eml",
		Timestamp: at(20, 12, 0, 0),
		ThreadID:  "B394",
		SearchID:  "help:00004",
	}
	earlier := record.Record{
		RowNumber: 2,
		Filename:  "問い合わせ_B394.eml",
		Timestamp: at(20, 8, 0, 0),
		ThreadID:  "B394",
	}

	got := newEngine(target, earlier).Resolve("help:00004")

	if got.Status != StatusNoReply {
		t.Fatalf("Status = %s, want NO_REPLY", got.Status)
	}
	if got.ThreadMessageCount != 2 {
		t.Errorf("ThreadMessageCount = %d, want 2", got.ThreadMessageCount)
	}
}

func TestResolveEmptyIndex(t *testing.T) {
	got := newEngine().Resolve("help:00001")
	if got.Status != StatusSearchIDNotFound {
		t.Errorf("Status = %s, want SEARCH_ID_NOT_FOUND on empty index", got.Status)
	}
}

func TestResolveBatchKeepsOrder(t *testing.T) {
	target := record.Record{
		RowNumber: 2,
		Filename:  "[help:00001] 問い合わせ_A123.eml",
		Timestamp: at(20, 9, 0, 0),
		ThreadID:  "A123",
		SearchID:  "help:00001",
	}

	results := newEngine(target).ResolveBatch([]string{"missing:1", "help:00001", "missing:2"})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	wantStatuses := []Status{StatusSearchIDNotFound, StatusNoReply, StatusSearchIDNotFound}
	for i, want := range wantStatuses {
		if results[i].Status != want {
			t.Errorf("results[%d].Status = %s, want %s", i, results[i].Status, want)
		}
	}
}

func TestIntervalBreakdownRoundTrip(t *testing.T) {
	target := record.Record{
		RowNumber: 2,
		Filename:  "[help:00001] 問い合わせ_A123.eml",
		Timestamp: at(20, 6, 13, 9),
		ThreadID:  "A123",
		SearchID:  "help:00001",
	}
	reply := record.Record{
		RowNumber: 3,
		Filename:  "Re: 問い合わせ_A123.eml",
		Timestamp: at(22, 10, 0, 0),
		ThreadID:  "A123",
		IsReply:   true,
	}

	got := newEngine(target, reply).Resolve("help:00001")

	if want := (Interval{Days: 2, Hours: 3, Minutes: 46}); got.Interval != want {
		t.Fatalf("Interval = %+v, want %+v", got.Interval, want)
	}

	recon := float64(got.Interval.Days)*24 + float64(got.Interval.Hours) + float64(got.Interval.Minutes)/60
	// The breakdown drops seconds and IntervalHours is rounded, so the two
	// agree only up to one minute plus rounding slack.
	if math.Abs(recon-got.IntervalHours) > 1.0/60+0.005 {
		t.Errorf("breakdown %v does not reconstruct IntervalHours %v", recon, got.IntervalHours)
	}
}

func TestIntervalString(t *testing.T) {
	tests := []struct {
		iv   Interval
		want string
	}{
		{Interval{Minutes: 46}, "46分钟"},
		{Interval{Hours: 3, Minutes: 5}, "3小时5分钟"},
		{Interval{Days: 2, Hours: 0, Minutes: 15}, "2天0小时15分钟"},
		{Interval{}, "0分钟"},
	}
	for _, tt := range tests {
		if got := tt.iv.String(); got != tt.want {
			t.Errorf("Interval%+v.String() = %q, want %q", tt.iv, got, tt.want)
		}
	}
}
