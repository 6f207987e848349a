package profanity

import (
	"strings"

	"musicclean/internal/words"
)

const contextWords = 3

// Hit is a profane word found in a stream.
type Hit struct {
	Token words.Token
	// Index is the token's position in the scanned stream.
	Index int
	// Context is the surrounding text, up to three words either side.
	Context string
}

// Result holds the matches of one scan. Matches are timed and can be
// muted; Undetectable holds profane words that never received timing.
type Result struct {
	Matches      []Hit
	Undetectable []Hit
}

// Tokens returns the matched tokens in stream order.
func (r Result) Tokens() []words.Token {
	out := make([]words.Token, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Token
	}
	return out
}

// Empty reports whether nothing profane was found.
func (r Result) Empty() bool {
	return len(r.Matches) == 0 && len(r.Undetectable) == 0
}

// Match compares every token's normalized text against set. Matching is
// whole-word only; fragments inside longer words are not reported.
func Match(stream []words.Token, set *Set) Result {
	var result Result
	if set.Len() == 0 {
		return result
	}
	for i, tok := range stream {
		if !set.containsNormalized(tok.Normalized) {
			continue
		}
		m := Hit{Token: tok, Index: i, Context: snippet(stream, i)}
		if tok.Timed {
			result.Matches = append(result.Matches, m)
		} else {
			result.Undetectable = append(result.Undetectable, m)
		}
	}
	return result
}

func snippet(stream []words.Token, at int) string {
	lo := at - contextWords
	if lo < 0 {
		lo = 0
	}
	hi := at + contextWords + 1
	if hi > len(stream) {
		hi = len(stream)
	}
	parts := make([]string, 0, hi-lo)
	for i := lo; i < hi; i++ {
		text := stream[i].Text
		if i == at {
			text = "[" + text + "]"
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

// ReportEntry is one word of a preview listing.
type ReportEntry struct {
	Index   int     `json:"index"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Matched bool    `json:"matched"`
	Timed   bool    `json:"timed"`
}

// Report lists every word of stream, flagging the ones present in result.
func Report(stream []words.Token, result Result) []ReportEntry {
	flagged := make(map[int]bool, len(result.Matches)+len(result.Undetectable))
	for _, m := range result.Matches {
		flagged[m.Index] = true
	}
	for _, m := range result.Undetectable {
		flagged[m.Index] = true
	}
	out := make([]ReportEntry, len(stream))
	for i, tok := range stream {
		out[i] = ReportEntry{
			Index:   i,
			Text:    tok.Text,
			Start:   tok.Start,
			End:     tok.End,
			Matched: flagged[i],
			Timed:   tok.Timed,
		}
	}
	return out
}
