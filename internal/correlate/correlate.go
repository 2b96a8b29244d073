// Package correlate implements reply-latency queries over a thread index:
// resolve a search id to its record, recover the conversation thread, and
// find the nearest qualifying successor message.
package correlate

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/mailscan/replylag/internal/extract"
	"github.com/mailscan/replylag/internal/index"
	"github.com/mailscan/replylag/internal/record"
)

// Status is the terminal outcome of one query. Lookup misses are statuses,
// not errors — callers branch on Status, nothing in a query can fail.
type Status string

const (
	StatusSuccess               Status = "SUCCESS"
	StatusSearchIDNotFound      Status = "SEARCH_ID_NOT_FOUND"
	StatusNoOtherThreadMessages Status = "NO_OTHER_THREAD_MESSAGES"
	StatusNoReply               Status = "NO_REPLY"
)

// ResponseType says whether the selected successor was a reply-flagged
// message or merely the nearest thread message.
type ResponseType string

const (
	ResponseReply    ResponseType = "REPLY"
	ResponseNonReply ResponseType = "NON_REPLY"
)

// Interval is the day/hour/minute breakdown of a response latency.
// Seconds are discarded from the display breakdown.
type Interval struct {
	Days    int
	Hours   int
	Minutes int
}

// String renders the interval the way the reporting tool displays it:
// 天/小时/分钟, with leading zero units omitted.
func (iv Interval) String() string {
	switch {
	case iv.Days > 0:
		return fmt.Sprintf("%d天%d小时%d分钟", iv.Days, iv.Hours, iv.Minutes)
	case iv.Hours > 0:
		return fmt.Sprintf("%d小时%d分钟", iv.Hours, iv.Minutes)
	default:
		return fmt.Sprintf("%d分钟", iv.Minutes)
	}
}

// breakdown splits a non-negative duration into whole days, remaining whole
// hours, and remaining whole minutes.
func breakdown(d time.Duration) Interval {
	return Interval{
		Days:    int(d / (24 * time.Hour)),
		Hours:   int(d % (24 * time.Hour) / time.Hour),
		Minutes: int(d % time.Hour / time.Minute),
	}
}

// Result is the output of one correlation query. Created fresh per query and
// never mutated after construction.
type Result struct {
	SearchID       string
	TargetThreadID string
	TargetTime     time.Time
	Status         Status

	// The remaining fields are meaningful only on StatusSuccess
	// (ThreadMessageCount is also set on NO_REPLY / NO_OTHER_THREAD_MESSAGES).
	ResponseTime        time.Time
	ResponseEmailID     string
	Interval            Interval
	IntervalHours       float64
	ResponseType        ResponseType
	ThreadMessageCount  int
	MessagesAfterTarget int
}

// Engine runs correlation queries against an immutable index. Queries are
// independent and safely reorderable; the engine holds no mutable state.
type Engine struct {
	index  *index.Index
	logger *slog.Logger
}

// NewEngine creates an engine over a built index. A nil logger disables
// audit logging.
func NewEngine(ix *index.Index, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{index: ix, logger: logger}
}

// Resolve runs the correlation state machine for one search id.
//
// Lookup is exact first, then a case-insensitive substring fallback over the
// known search ids in row order. An unresolved thread id goes through a
// salvage re-scan of the target filename before the query gives up. Among
// successors strictly after the target, reply-flagged messages win over
// chronologically closer non-replies.
func (e *Engine) Resolve(searchID string) Result {
	target, resolvedID, ok := e.lookupTarget(searchID)
	if !ok {
		return Result{SearchID: searchID, Status: StatusSearchIDNotFound}
	}

	threadID, ok := e.resolveThread(target)
	if !ok {
		return Result{
			SearchID:           resolvedID,
			TargetThreadID:     target.ThreadID,
			TargetTime:         target.Timestamp,
			Status:             StatusNoOtherThreadMessages,
			ThreadMessageCount: 1,
		}
	}

	thread := e.index.Thread(threadID)

	// Strict greater-than: a message sharing the exact target timestamp is
	// not a response. The thread is already time-sorted, so the first
	// element of any filtered subset is the nearest successor and equal
	// timestamps tie-break on input order.
	var successors []record.Record
	for _, rec := range thread {
		if rec.Timestamp.After(target.Timestamp) {
			successors = append(successors, rec)
		}
	}

	if len(successors) == 0 {
		return Result{
			SearchID:           resolvedID,
			TargetThreadID:     threadID,
			TargetTime:         target.Timestamp,
			Status:             StatusNoReply,
			ThreadMessageCount: len(thread),
		}
	}

	nearest := successors[0]
	responseType := ResponseNonReply
	for _, rec := range successors {
		if rec.IsReply {
			nearest = rec
			responseType = ResponseReply
			break
		}
	}

	delta := nearest.Timestamp.Sub(target.Timestamp)
	return Result{
		SearchID:            resolvedID,
		TargetThreadID:      threadID,
		TargetTime:          target.Timestamp,
		Status:              StatusSuccess,
		ResponseTime:        nearest.Timestamp,
		ResponseEmailID:     nearest.EmailID,
		Interval:            breakdown(delta),
		IntervalHours:       math.Round(delta.Hours()*100) / 100,
		ResponseType:        responseType,
		ThreadMessageCount:  len(thread),
		MessagesAfterTarget: len(successors),
	}
}

// ResolveBatch runs queries strictly sequentially and collects the results
// in input order.
func (e *Engine) ResolveBatch(searchIDs []string) []Result {
	results := make([]Result, 0, len(searchIDs))
	for _, sid := range searchIDs {
		results = append(results, e.Resolve(sid))
	}
	return results
}

// lookupTarget finds the target record for a queried search id, falling back
// to the first case-insensitive substring match in row order.
func (e *Engine) lookupTarget(searchID string) (record.Record, string, bool) {
	if rec, ok := e.index.Lookup(searchID); ok {
		return rec, searchID, true
	}
	match, ok := e.index.MatchSearchID(searchID)
	if !ok {
		return record.Record{}, "", false
	}
	e.logger.Debug("search id matched by substring", "query", searchID, "matched", match)
	rec, _ := e.index.Lookup(match)
	return rec, match, true
}

// resolveThread returns the working thread id for a target record. When the
// recorded thread id is unknown or has no index entry, the target filename
// is re-scanned for an alternate code that is a live index key; the first
// candidate in salvage-rule order wins.
func (e *Engine) resolveThread(target record.Record) (string, bool) {
	if target.ThreadID != extract.UnknownThread && e.index.HasThread(target.ThreadID) {
		return target.ThreadID, true
	}
	for _, cand := range extract.AlternateThreadIDs(target.Filename) {
		if cand != target.ThreadID && e.index.HasThread(cand) {
			e.logger.Debug("salvaged thread id",
				"search_id", target.SearchID,
				"recorded", target.ThreadID,
				"salvaged", cand)
			return cand, true
		}
	}
	return "", false
}
