// Package textutil provides encoding detection and conversion for raw mail
// content. The archives this tool reads come from a Japanese mail system, so
// the fallback order favors Japanese encodings.
package textutil

import (
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// DecodeUTF8 converts raw message bytes to a UTF-8 string.
// Valid UTF-8 passes through untouched. Otherwise charset detection is tried
// first, then the common mail encodings in order of likelihood, and as a last
// resort invalid bytes are replaced with the replacement character.
func DecodeUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	// Detection works better on longer samples; short prefixes get a lower
	// confidence bar.
	minConfidence := 30
	if len(data) > 50 {
		minConfidence = 50
	}
	detector := chardet.NewTextDetector()
	if result, err := detector.DetectBest(data); err == nil && result.Confidence >= minConfidence {
		if enc := EncodingByName(result.Charset); enc != nil {
			if decoded, err := enc.NewDecoder().Bytes(data); err == nil && utf8.Valid(decoded) {
				return string(decoded)
			}
		}
	}

	// Japanese first: Shift_JIS covers the CP932 exports, EUC-JP the older
	// ones. Latin-1 last because it decodes anything.
	fallbacks := []encoding.Encoding{
		japanese.ShiftJIS,
		japanese.EUCJP,
		japanese.ISO2022JP,
		simplifiedchinese.GBK,
		charmap.Windows1252,
		charmap.ISO8859_1,
	}
	for _, enc := range fallbacks {
		if decoded, err := enc.NewDecoder().Bytes(data); err == nil && utf8.Valid(decoded) {
			return string(decoded)
		}
	}

	return SanitizeUTF8(string(data))
}

// SanitizeUTF8 replaces invalid UTF-8 bytes with the replacement character.
func SanitizeUTF8(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune('�')
			i++
		} else {
			sb.WriteRune(r)
			i += size
		}
	}
	return sb.String()
}

// EncodingByName returns an encoding for an IANA charset name, or nil for
// charsets this tool does not handle.
func EncodingByName(name string) encoding.Encoding {
	switch strings.ToLower(name) {
	case "shift_jis", "shift-jis", "sjis", "windows-31j", "cp932":
		return japanese.ShiftJIS
	case "euc-jp", "eucjp":
		return japanese.EUCJP
	case "iso-2022-jp":
		return japanese.ISO2022JP
	case "gb2312", "gbk", "gb18030":
		return simplifiedchinese.GBK
	case "windows-1252", "cp1252":
		return charmap.Windows1252
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1
	default:
		return nil
	}
}
