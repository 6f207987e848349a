package pipeline

import (
	"fmt"
	"strings"

	"musicclean/internal/align"
	"musicclean/internal/lyrics"
	"musicclean/internal/mute"
	"musicclean/internal/profanity"
	"musicclean/internal/words"
)

// Analysis is the outcome of the pure core for one track.
type Analysis struct {
	// Hypothesis is the recognized stream after clamping and sorting.
	Hypothesis []words.Token
	// Reference is the tokenized lyric text, empty when none was supplied.
	Reference []words.Line
	Alignment align.Result
	// Stream is the word stream matching ran against: the aligned stream
	// when lyrics were adopted, otherwise Hypothesis.
	Stream    []words.Token
	Detection profanity.Result
	Intervals []mute.Interval
	// Report lists every word of Stream for preview.
	Report []profanity.ReportEntry
	// Notes are user-facing remarks such as alignment fallbacks.
	Notes []string
}

// LyricsAdopted reports whether the aligned lyric stream replaced the
// recognized words.
func (a Analysis) LyricsAdopted() bool {
	return a.Alignment.Usable()
}

// MutedSeconds returns the total muted duration.
func (a Analysis) MutedSeconds() float64 {
	return mute.Total(a.Intervals)
}

// Analyze runs alignment, matching, and interval building over hypothesis
// words. Blank lyricsText skips alignment. It never fails: unusable lyrics
// fall back to the recognized words with a note.
func Analyze(cfg Config, hypothesis []words.Token, lyricsText string, set *profanity.Set) Analysis {
	var a Analysis
	a.Hypothesis = sanitizeHypothesis(hypothesis)
	a.Stream = a.Hypothesis
	a.Alignment = align.Result{Bypassed: true}

	if strings.TrimSpace(lyricsText) != "" {
		a.Reference = lyrics.Parse(lyrics.Clean(lyricsText))
		if cfg.AlignEnabled {
			a.Alignment = align.New(cfg.Align).Align(words.Flatten(a.Reference), a.Hypothesis)
			if a.Alignment.Usable() {
				a.Stream = a.Alignment.Words()
			} else if a.Alignment.Note != "" {
				a.Notes = append(a.Notes, "lyrics not used: "+a.Alignment.Note)
			}
		} else {
			a.Notes = append(a.Notes, "lyrics supplied but alignment is disabled")
		}
	}

	a.Detection = profanity.Match(a.Stream, set)
	a.Intervals = mute.Build(a.Detection.Tokens(), cfg.PadSeconds)
	a.Report = profanity.Report(a.Stream, a.Detection)

	if n := len(a.Detection.Undetectable); n > 0 {
		missing := make([]words.Token, n)
		for i, hit := range a.Detection.Undetectable {
			missing[i] = hit.Token
		}
		a.Notes = append(a.Notes, fmt.Sprintf("%d profane lyric word(s) were never heard and cannot be muted: %s",
			n, strings.Join(words.Texts(missing), ", ")))
	}
	return a
}

// sanitizeHypothesis rebuilds every token as a timed hypothesis token so
// malformed timing is clamped, then orders the stream by start time.
func sanitizeHypothesis(tokens []words.Token) []words.Token {
	out := make([]words.Token, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, words.NewHypothesis(tok.Text, tok.Start, tok.End, tok.Confidence))
	}
	return words.SortHypothesis(out)
}
