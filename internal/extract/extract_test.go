package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestThreadID(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		// Canonical letter+3-digit codes
		{
			name:     "underscore eml form",
			filename: "問い合わせが入りました_A123.eml",
			want:     "A123",
		},
		{
			name:     "underscore eml form B",
			filename: "対応完了_B394.eml",
			want:     "B394",
		},
		{
			name:     "underscore eml form C",
			filename: "【Intune切り替え】問い合わせが入りました_C088.eml",
			want:     "C088",
		},
		{
			name:     "lowercase code is uppercased",
			filename: "followup_c088.eml",
			want:     "C088",
		},
		{
			name:     "bounded mid-string",
			filename: "Re: [mdmswitch_help:01218] 問い合わせ_A553_確認.txt",
			want:     "A553",
		},
		{
			name:     "code at end of string",
			filename: "ticket A123",
			want:     "A123",
		},
		{
			name:     "bare code",
			filename: "A123",
			want:     "A123",
		},

		// Long C-number guard
		{
			name:     "long C code blocks extraction",
			filename: "問い合わせ_C29497931_追加.eml",
			want:     UnknownThread,
		},
		{
			name:     "long C code wins over embedded short code",
			filename: "確認_C29497931_と_A123_比較.eml",
			want:     UnknownThread,
		},

		// Candidate validation
		{
			name:     "disallowed lead letter",
			filename: "log_X123.eml",
			want:     UnknownThread,
		},
		{
			name:     "code followed by digit is not canonical",
			filename: "案件_C1234.eml",
			want:     "C123",
		},

		// INC ticket numbers
		{
			name:     "bracketed INC",
			filename: "[INC12345678] サーバー障害.eml",
			want:     "INC12345678",
		},
		{
			name:     "bare INC five digits",
			filename: "障害対応INC54321完了.eml",
			want:     "INC54321",
		},
		{
			name:     "fullwidth bracketed INC",
			filename: "【INC87654321】対応依頼.eml",
			want:     "INC87654321",
		},
		{
			name:     "INC with four digits does not match",
			filename: "メモINC1234.eml",
			want:     UnknownThread,
		},

		// Nothing recognizable
		{
			name:     "no identifiers at all",
			filename: "年末のご挨拶.eml",
			want:     UnknownThread,
		},
		{
			name:     "empty string",
			filename: "",
			want:     UnknownThread,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ThreadID(tt.filename); got != tt.want {
				t.Errorf("ThreadID(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestSearchID(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{
			name:     "bracketed token",
			filename: "Re: [mdmswitch_help:01218] 問い合わせ_A553.eml",
			want:     "mdmswitch_help:01218",
		},
		{
			name:     "bare token",
			filename: "mdmswitch_help:06061 問い合わせ.eml",
			want:     "mdmswitch_help:06061",
		},
		{
			name:     "bracketed wins over earlier bare token",
			filename: "other:999 [mdmswitch_help:02944].eml",
			want:     "mdmswitch_help:02944",
		},
		{
			name:     "absent",
			filename: "問い合わせが入りました_C088.eml",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SearchID(tt.filename); got != tt.want {
				t.Errorf("SearchID(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestIsReply(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"Re: [mdmswitch_help:01218] 問い合わせ.eml", true},
		{"RE: 確認のお願い.eml", true},
		{"rE: mixed case marker.eml", true},
		{"返信: 問い合わせが入りました_C088.eml", true},
		{"回复: 邮件确认.eml", true},
		{"答复: 邮件确认.eml", true},
		{"marker buried mid-string 返信 somewhere.eml", true},
		{"問い合わせが入りました_C088.eml", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsReply(tt.filename); got != tt.want {
			t.Errorf("IsReply(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestEmailID(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"bracketed namespace digits", "[mdmswitch_help:01218] 問い合わせ.eml", "01218"},
		{"underscore suffix", "問い合わせ_12345.eml", "12345"},
		{"plain suffix", "問い合わせ99999.eml", "99999"},
		{"bracketed INC eight digits", "[INC12345678] 障害.eml", "12345678"},
		{"underscore infix", "msg_54321_final.txt", "54321"},
		{"absent", "問い合わせ.eml", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EmailID(tt.filename); got != tt.want {
				t.Errorf("EmailID(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	got := Extract("Re: [mdmswitch_help:01218] 問い合わせが入りました_A553.eml")
	want := Identifiers{
		ThreadID: "A553",
		SearchID: "mdmswitch_help:01218",
		EmailID:  "01218",
		IsReply:  true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}
}

func TestAlternateThreadIDs(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     []string
	}{
		{
			name:     "underscore eml candidate",
			filename: "問い合わせが入りました_B394.eml",
			want:     []string{"B394"},
		},
		{
			name:     "bounded candidate only",
			filename: "確認 A553 済み.txt",
			want:     []string{"A553"},
		},
		{
			name:     "no candidates",
			filename: "年末のご挨拶.eml",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AlternateThreadIDs(tt.filename)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AlternateThreadIDs(%q) mismatch (-want +got):\n%s", tt.filename, diff)
			}
		})
	}
}
