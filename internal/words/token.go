package words

import (
	"fmt"
	"math"
	"sort"
)

// Source distinguishes recognizer output from supplied lyric text.
type Source string

const (
	// SourceHypothesis marks tokens produced by speech recognition.
	SourceHypothesis Source = "hypothesis"
	// SourceReference marks tokens parsed from reference lyrics.
	SourceReference Source = "reference"
)

// Token is a single recognized or referenced word.
type Token struct {
	Text       string
	Normalized string
	Start      float64
	End        float64
	Confidence float64
	Source     Source
	Timed      bool
}

// NewHypothesis builds a timed recognizer token. Negative or non-finite
// times clamp to zero and an end before the start clamps to the start.
func NewHypothesis(text string, start, end, confidence float64) Token {
	start = clampTime(start)
	end = clampTime(end)
	if end < start {
		end = start
	}
	return Token{
		Text:       text,
		Normalized: Normalize(text),
		Start:      start,
		End:        end,
		Confidence: confidence,
		Source:     SourceHypothesis,
		Timed:      true,
	}
}

// NewReference builds an untimed token from lyric text.
func NewReference(text string) Token {
	return Token{
		Text:       text,
		Normalized: Normalize(text),
		Source:     SourceReference,
	}
}

// WithTiming returns a copy of t carrying the timing of other.
func (t Token) WithTiming(other Token) Token {
	if !other.Timed {
		return t
	}
	t.Start = other.Start
	t.End = other.End
	t.Confidence = other.Confidence
	t.Timed = true
	return t
}

// Duration returns the token length in seconds, or zero when untimed.
func (t Token) Duration() float64 {
	if !t.Timed {
		return 0
	}
	return t.End - t.Start
}

// Empty reports whether the token has no matchable text.
func (t Token) Empty() bool {
	return t.Normalized == ""
}

func (t Token) String() string {
	if !t.Timed {
		return fmt.Sprintf("%q (untimed)", t.Text)
	}
	return fmt.Sprintf("%q %.2fs-%.2fs", t.Text, t.Start, t.End)
}

func clampTime(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// SortHypothesis returns a copy of tokens ordered by start time. Tokens
// sharing a start keep their original relative order.
func SortHypothesis(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	copy(out, tokens)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// Texts returns the raw text of each token.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

// DropEmpty returns the tokens whose normalized text is not empty.
func DropEmpty(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Empty() {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Line is an ordered group of reference tokens from one lyric line.
type Line struct {
	Number int
	Text   string
	Tokens []Token
}

// Flatten concatenates the tokens of every line in order.
func Flatten(lines []Line) []Token {
	total := 0
	for _, line := range lines {
		total += len(line.Tokens)
	}
	out := make([]Token, 0, total)
	for _, line := range lines {
		out = append(out, line.Tokens...)
	}
	return out
}
