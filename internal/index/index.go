// Package index builds the read-only lookup structures the correlation
// engine queries: records by search id and records grouped per thread in
// time order.
package index

import (
	"sort"
	"strings"

	"github.com/mailscan/replylag/internal/extract"
	"github.com/mailscan/replylag/internal/record"
)

// Index is an immutable view over a normalized record set. Build it once per
// loaded dataset; all methods are safe for concurrent reads.
type Index struct {
	records []record.Record

	bySearchID map[string]record.Record
	// searchIDs holds first-seen insertion order so scans over the key set
	// are deterministic (map iteration order is not).
	searchIDs []string

	byThreadID map[string][]record.Record
}

// Build constructs the index from a record set in O(n log n) (grouping is
// linear, per-thread ordering is a stable sort).
//
// Duplicate search ids overwrite: last row wins, matching the source data's
// export semantics. Records with an unknown thread id are indexed by search
// id but never grouped.
func Build(records []record.Record) *Index {
	ix := &Index{
		records:    make([]record.Record, len(records)),
		bySearchID: make(map[string]record.Record),
		byThreadID: make(map[string][]record.Record),
	}
	copy(ix.records, records)

	for _, rec := range ix.records {
		if rec.SearchID != "" {
			if _, seen := ix.bySearchID[rec.SearchID]; !seen {
				ix.searchIDs = append(ix.searchIDs, rec.SearchID)
			}
			ix.bySearchID[rec.SearchID] = rec
		}
		if rec.ThreadID != "" && rec.ThreadID != extract.UnknownThread {
			ix.byThreadID[rec.ThreadID] = append(ix.byThreadID[rec.ThreadID], rec)
		}
	}

	// Stable: equal timestamps keep input order, which fixes the
	// nearest-successor tie-break downstream.
	for _, thread := range ix.byThreadID {
		sort.SliceStable(thread, func(i, j int) bool {
			return thread[i].Timestamp.Before(thread[j].Timestamp)
		})
	}
	sort.SliceStable(ix.records, func(i, j int) bool {
		return ix.records[i].Timestamp.Before(ix.records[j].Timestamp)
	})

	return ix
}

// Lookup returns the record for an exact search id.
func (ix *Index) Lookup(searchID string) (record.Record, bool) {
	rec, ok := ix.bySearchID[searchID]
	return rec, ok
}

// MatchSearchID finds the first known search id containing the query as a
// case-insensitive substring. "First" is first-seen row order.
func (ix *Index) MatchSearchID(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, sid := range ix.searchIDs {
		if strings.Contains(strings.ToLower(sid), q) {
			return sid, true
		}
	}
	return "", false
}

// Thread returns the time-ascending record sequence for a thread id.
// The returned slice must not be mutated.
func (ix *Index) Thread(threadID string) []record.Record {
	return ix.byThreadID[threadID]
}

// HasThread reports whether a thread id is a live grouping key.
func (ix *Index) HasThread(threadID string) bool {
	_, ok := ix.byThreadID[threadID]
	return ok
}

// Records returns all indexed records in time-ascending order.
// The returned slice must not be mutated.
func (ix *Index) Records() []record.Record {
	return ix.records
}

// SearchIDs returns all known search ids in first-seen row order.
func (ix *Index) SearchIDs() []string {
	return ix.searchIDs
}

// Len returns the number of indexed records.
func (ix *Index) Len() int { return len(ix.records) }

// ThreadCount returns the number of distinct grouped threads.
func (ix *Index) ThreadCount() int { return len(ix.byThreadID) }

// SearchIDCount returns the number of distinct search ids.
func (ix *Index) SearchIDCount() int { return len(ix.searchIDs) }

// ThreadTypeStats breaks the grouped thread ids down by shape: the canonical
// A/B/C formats, INC ticket numbers, and anything else.
func (ix *Index) ThreadTypeStats() map[string]int {
	stats := make(map[string]int)
	for tid := range ix.byThreadID {
		switch {
		case len(tid) == 4 && (tid[0] == 'A' || tid[0] == 'B' || tid[0] == 'C'):
			stats[tid[:1]]++
		case strings.HasPrefix(tid, "INC"):
			stats["INC"]++
		default:
			stats["other"]++
		}
	}
	return stats
}
