package words

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var apostropheReplacer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"ʼ", "'",
	"`", "'",
)

// Normalize lowercases raw, folds accents and compatibility forms, keeps
// letters, digits, and apostrophes that sit inside a word, and collapses
// whitespace. It is total and idempotent; empty input yields empty output.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	// Decomposition can produce a modifier apostrophe (U+0149 becomes "ʼn"),
	// so apostrophes are unified after folding.
	folded := apostropheReplacer.Replace(foldMarks(strings.ToLower(raw)))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '\'':
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, field := range fields {
		field = strings.Trim(field, "'")
		if field == "" {
			continue
		}
		out = append(out, field)
	}
	return strings.Join(out, " ")
}

// foldMarks applies compatibility decomposition and drops combining marks so
// "fück" and "ﬁre" compare equal to "fuck" and "fire".
func foldMarks(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SplitFields splits text on whitespace and returns the raw words.
func SplitFields(text string) []string {
	return strings.Fields(text)
}
