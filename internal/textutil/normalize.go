package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// NormalizeName returns the NFC form of s. File names coming from macOS
// volumes are NFD, which splits voiced kana (ダ -> タ + ゙) and breaks
// substring matching against label keywords.
func NormalizeName(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// FoldWidth maps full-width ASCII (digits, Latin letters, brackets) to their
// narrow forms and half-width katakana to wide forms.
func FoldWidth(s string) string {
	return width.Fold.String(s)
}

// StripSpace removes every Unicode whitespace rune, including the ideographic
// space U+3000.
func StripSpace(s string) string {
	if strings.IndexFunc(s, unicode.IsSpace) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CanonicalCompany normalizes a company name fragment: NFC, width folded,
// whitespace removed.
func CanonicalCompany(s string) string {
	return StripSpace(FoldWidth(NormalizeName(s)))
}
