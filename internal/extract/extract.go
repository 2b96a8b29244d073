// Package extract derives structured identifiers from archived email
// filenames: a conversation thread id, an opaque search id, a display-only
// email id, and a reply flag.
//
// Filenames are free text produced by an external mail system, so every
// extractor is an ordered rule chain evaluated first-match-wins. Rules are
// ordered most-specific-first so that long numeric ticket codes are never
// misread as short thread codes.
package extract

import (
	"regexp"
	"strings"
)

// UnknownThread is the sentinel returned when no thread id can be resolved.
const UnknownThread = "UNKNOWN"

// Identifiers holds everything extracted from one filename.
type Identifiers struct {
	ThreadID string
	SearchID string
	EmailID  string
	IsReply  bool
}

// Extract runs all extractors over a single filename. It never fails; absent
// identifiers come back as empty strings (or UnknownThread for the thread id).
func Extract(filename string) Identifiers {
	return Identifiers{
		ThreadID: ThreadID(filename),
		SearchID: SearchID(filename),
		EmailID:  EmailID(filename),
		IsReply:  IsReply(filename),
	}
}

// threadLeadLetters are the permitted first characters of a canonical
// 4-character thread code.
const threadLeadLetters = "ABC"

// longCodeRe matches long numeric ticket codes like C29497931 (a C followed
// by 8+ digits, bounded by non-letters). Filenames carrying one never have a
// canonical thread id, even if a short code also appears somewhere.
var longCodeRe = regexp.MustCompile(`[^A-Za-z]C\d{8,}[^A-Za-z]`)

// threadRule is one candidate-producing pattern in the ordered chain. Each
// pattern captures a letter-plus-3-digits candidate; candidates still have to
// pass validThreadCode before they are accepted.
type threadRule struct {
	name string
	re   *regexp.Regexp
}

// threadRules is evaluated in order; each rule contributes at most its
// leftmost match, and a rejected candidate moves evaluation to the next rule.
var threadRules = []threadRule{
	// _C088.eml and friends
	{"underscore-eml", regexp.MustCompile(`(?i)_([A-Z]\d{3})\.eml`)},
	// bounded on both sides, not followed by dot, letter, or digit
	{"bounded", regexp.MustCompile(`(?i)[^A-Z]([A-Z]\d{3})[^.A-Z0-9]`)},
	// looser: a trailing digit is tolerated (catches C123 inside C1234)
	{"bounded-loose", regexp.MustCompile(`(?i)[^A-Z]([A-Z]\d{3})[^.A-Z]`)},
	// last resort: only require that the code is not followed by a letter
	// or digit (RE2 has no lookahead, so the boundary is matched explicitly)
	{"terminal", regexp.MustCompile(`(?i)([A-Z]\d{3})(?:[^A-Z0-9]|$)`)},
}

// incRules match INC-prefixed ticket numbers; the numeric part must have at
// least incMinDigits digits to guard against short false positives.
var incRules = []*regexp.Regexp{
	regexp.MustCompile(`\[INC(\d+)\]`),
	regexp.MustCompile(`INC(\d+)`),
	regexp.MustCompile(`【INC(\d+)】`),
}

const incMinDigits = 5

// ThreadID resolves the conversation thread id for a filename.
//
// Resolution order: the long-code guard first (long C-numbers mean no thread
// id at all), then the canonical letter+3-digit rules, then INC ticket
// numbers. Returns UnknownThread when nothing matches.
func ThreadID(filename string) string {
	if longCodeRe.MatchString(filename) {
		return UnknownThread
	}

	for _, rule := range threadRules {
		m := rule.re.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		if code := strings.ToUpper(m[1]); validThreadCode(code) {
			return code
		}
	}

	for _, re := range incRules {
		m := re.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		if len(m[1]) >= incMinDigits {
			return "INC" + m[1]
		}
	}

	return UnknownThread
}

// validThreadCode reports whether an uppercased candidate is a canonical
// thread code: permitted lead letter, total length 4, digits after the first.
func validThreadCode(code string) bool {
	if len(code) != 4 || !strings.ContainsRune(threadLeadLetters, rune(code[0])) {
		return false
	}
	for _, r := range code[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// salvageRules is the reduced rule set used when a record's primary thread id
// did not resolve: re-scan the filename for alternate canonical codes.
var salvageRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[^A-Z]([A-Z]\d{3})[^.A-Z]`),
	regexp.MustCompile(`(?i)_([A-Z]\d{3})\.eml`),
}

// AlternateThreadIDs returns canonical thread-code candidates found by the
// salvage rules, in rule order (at most one per rule, leftmost match). The
// caller decides which, if any, is usable.
func AlternateThreadIDs(filename string) []string {
	var out []string
	for _, re := range salvageRules {
		m := re.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		if code := strings.ToUpper(m[1]); validThreadCode(code) {
			out = append(out, code)
		}
	}
	return out
}

// searchRules match the opaque namespace:digits token used as the external
// query key. The bracketed form wins over a bare token.
var searchRules = []*regexp.Regexp{
	regexp.MustCompile(`\[(\w+:\d+)\]`),
	regexp.MustCompile(`(\w+:\d+)`),
}

// SearchID extracts the search id from a filename, or "" when absent.
// Many filenames legitimately lack one; absence is not an error.
func SearchID(filename string) string {
	for _, re := range searchRules {
		if m := re.FindStringSubmatch(filename); m != nil {
			return m[1]
		}
	}
	return ""
}

// replyMarkers are matched case-insensitively as substrings. The non-Latin
// entries are the Japanese and Chinese reply prefixes the source mail system
// produces.
var replyMarkers = []string{"re:", "返信", "回复", "答复"}

// IsReply reports whether the filename carries any reply marker.
func IsReply(filename string) bool {
	lower := strings.ToLower(filename)
	for _, marker := range replyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// emailIDRules extract a short numeric code for display. Best effort only;
// the result never participates in correlation decisions.
var emailIDRules = []*regexp.Regexp{
	regexp.MustCompile(`\[.*?:(\d{5})\]`),
	regexp.MustCompile(`_(\d{5})\.eml`),
	regexp.MustCompile(`(\d{5})\.eml`),
	regexp.MustCompile(`\[INC(\d{8})\]`),
	regexp.MustCompile(`INC(\d{8})`),
	regexp.MustCompile(`(\d{5})_`),
	regexp.MustCompile(`_(\d{5})_`),
}

// EmailID extracts the display email id from a filename, or "" when absent.
func EmailID(filename string) string {
	for _, re := range emailIDRules {
		if m := re.FindStringSubmatch(filename); m != nil {
			return m[1]
		}
	}
	return ""
}
