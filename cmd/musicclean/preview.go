package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"musicclean/internal/edl"
	"musicclean/internal/mute"
	"musicclean/internal/pipeline"
	"musicclean/internal/profanity"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatSeconds(seconds float64) string {
	return edl.FormatTimestamp(seconds)
}

// renderMatches lists what will be muted. Words from the lyrics that were
// never heard are listed too, flagged as not mutable.
func renderMatches(a pipeline.Analysis) string {
	rows := make([][]string, 0, len(a.Detection.Matches)+len(a.Detection.Undetectable))
	add := func(hits []profanity.Hit, note string) {
		for _, hit := range hits {
			when := "-"
			if hit.Token.Timed {
				when = fmt.Sprintf("%s-%s", formatSeconds(hit.Token.Start), formatSeconds(hit.Token.End))
			}
			rows = append(rows, []string{
				strconv.Itoa(len(rows) + 1),
				when,
				hit.Token.Text,
				hit.Context,
				note,
			})
		}
	}
	add(a.Detection.Matches, "")
	add(a.Detection.Undetectable, "not heard")
	return renderTable(
		[]string{"#", "Time", "Word", "Context", "Note"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

// renderReport lists every word of the stream with profane ones flagged.
func renderReport(entries []profanity.ReportEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		start, end := "-", "-"
		if e.Timed {
			start, end = formatSeconds(e.Start), formatSeconds(e.End)
		}
		flag := ""
		if e.Matched {
			flag = "MUTE"
		}
		rows = append(rows, []string{strconv.Itoa(e.Index + 1), start, end, e.Text, flag})
	}
	return renderTable(
		[]string{"#", "Start", "End", "Word", ""},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

// printAnalysis writes the human preview for one file.
func printAnalysis(out io.Writer, input string, a pipeline.Analysis, all, colorize bool) {
	for _, line := range renderSectionHeader(filepath.Base(input), colorize) {
		fmt.Fprintln(out, line)
	}
	lyricsState := "not supplied"
	switch {
	case a.LyricsAdopted():
		lyricsState = "aligned"
	case len(a.Reference) > 0:
		lyricsState = "rejected"
	}
	fmt.Fprintln(out, renderStatusLine("Words", statusInfo, strconv.Itoa(len(a.Stream)), colorize))
	fmt.Fprintln(out, renderStatusLine("Lyrics", statusInfo, lyricsState, colorize))
	for _, note := range a.Notes {
		fmt.Fprintln(out, renderStatusLine("Note", statusWarn, note, colorize))
	}

	if all {
		fmt.Fprintln(out, renderReport(a.Report))
	} else if !a.Detection.Empty() {
		fmt.Fprintln(out, renderMatches(a))
	}

	if len(a.Intervals) == 0 {
		fmt.Fprintln(out, renderStatusLine("Result", statusOK, "No profanity to mute", colorize))
		return
	}
	summary := fmt.Sprintf("%d word(s) in %d window(s), %.2fs muted", len(a.Detection.Matches), len(a.Intervals), a.MutedSeconds())
	fmt.Fprintln(out, renderStatusLine("Result", statusWarn, summary, colorize))
}

// prompter serializes confirmation questions across batch workers.
type prompter struct {
	mu     sync.Mutex
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{reader: bufio.NewReader(in), out: out}
}

// confirm prints the preview for input and asks whether to mute it. End of
// input counts as no.
func (p *prompter) confirm(input string, colorize bool) pipeline.Confirm {
	return func(a pipeline.Analysis) bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		printAnalysis(p.out, input, a, false, colorize)
		fmt.Fprint(p.out, "Mute these words? [y/N] ")
		answer, err := p.reader.ReadString('\n')
		if err != nil && answer == "" {
			fmt.Fprintln(p.out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}

type matchJSON struct {
	Word       string   `json:"word"`
	Start      *float64 `json:"start,omitempty"`
	End        *float64 `json:"end,omitempty"`
	Confidence float64  `json:"confidence"`
	Context    string   `json:"context"`
	Heard      bool     `json:"heard"`
}

type detectJSON struct {
	Input        string                  `json:"input"`
	RunID        string                  `json:"run_id,omitempty"`
	Status       string                  `json:"status"`
	LyricsUsed   bool                    `json:"lyrics_used"`
	Notes        []string                `json:"notes,omitempty"`
	Matches      []matchJSON             `json:"matches"`
	Intervals    []mute.Interval         `json:"intervals"`
	MutedSeconds float64                 `json:"muted_seconds"`
	Words        []profanity.ReportEntry `json:"words,omitempty"`
	Error        string                  `json:"error,omitempty"`
}

func detectPayload(o batchOutcome, all bool) detectJSON {
	payload := detectJSON{
		Input:     o.Input,
		Status:    string(outcomeStatus(o)),
		Matches:   []matchJSON{},
		Intervals: []mute.Interval{},
	}
	if o.Err != nil {
		payload.Error = o.Err.Error()
	}
	r := o.Result
	if r == nil {
		return payload
	}
	payload.RunID = r.RunID
	if r.Analysis == nil {
		return payload
	}
	a := r.Analysis
	payload.LyricsUsed = a.LyricsAdopted()
	payload.Notes = a.Notes
	payload.MutedSeconds = a.MutedSeconds()
	if len(a.Intervals) > 0 {
		payload.Intervals = a.Intervals
	}
	for _, group := range [][]profanity.Hit{a.Detection.Matches, a.Detection.Undetectable} {
		for _, hit := range group {
			m := matchJSON{
				Word:       hit.Token.Text,
				Confidence: hit.Token.Confidence,
				Context:    hit.Context,
				Heard:      hit.Token.Timed,
			}
			if hit.Token.Timed {
				start, end := hit.Token.Start, hit.Token.End
				m.Start, m.End = &start, &end
			}
			payload.Matches = append(payload.Matches, m)
		}
	}
	if all {
		payload.Words = a.Report
	}
	return payload
}
