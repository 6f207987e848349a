// Package edl reads and writes edit decision lists: JSON files listing the
// words to mute with human-editable timestamps, so detections can be
// corrected by hand before the track is cleaned.
package edl

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"musicclean/internal/words"
)

// Suffix is appended to the input base name to form the default EDL path.
const Suffix = ".edl.json"

// Timestamp is a time offset in seconds. It is written as "M:SS.mm" and
// read from either that form, "H:MM:SS.mm", or raw seconds.
type Timestamp float64

// Seconds returns t as float seconds.
func (t Timestamp) Seconds() float64 {
	return float64(t)
}

func (t Timestamp) String() string {
	return FormatTimestamp(float64(t))
}

// MarshalJSON writes the human-readable form.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatTimestamp(float64(t)))
}

// UnmarshalJSON accepts a timestamp string or a bare number.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*t = Timestamp(v)
		return nil
	case string:
		seconds, err := ParseTimestamp(v)
		if err != nil {
			return err
		}
		*t = Timestamp(seconds)
		return nil
	default:
		return fmt.Errorf("timestamp must be a string or number, got %s", string(data))
	}
}

// FormatTimestamp renders seconds as M:SS.mm, e.g. 72.86 -> "1:12.86".
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	centis := int64(math.Round(seconds * 100))
	minutes := centis / 6000
	rest := float64(centis-minutes*6000) / 100
	return fmt.Sprintf("%d:%05.2f", minutes, rest)
}

// ParseTimestamp parses raw seconds, M:SS.mm, MM:SS.mm, or H:MM:SS.mm.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("empty timestamp")
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return checkSeconds(value, seconds)
	}

	parts := strings.Split(value, ":")
	var hours, minutes int
	var secText string
	var err error
	switch len(parts) {
	case 2:
		minutes, err = strconv.Atoi(parts[0])
		secText = parts[1]
	case 3:
		hours, err = strconv.Atoi(parts[0])
		if err == nil {
			minutes, err = strconv.Atoi(parts[1])
		}
		secText = parts[2]
	default:
		return 0, fmt.Errorf("cannot parse timestamp %q", value)
	}
	if err != nil {
		return 0, fmt.Errorf("cannot parse timestamp %q: %w", value, err)
	}
	secs, err := strconv.ParseFloat(secText, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse timestamp %q: %w", value, err)
	}
	return checkSeconds(value, float64(hours*3600+minutes*60)+secs)
}

func checkSeconds(value string, seconds float64) (float64, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, fmt.Errorf("timestamp %q out of range", value)
	}
	return seconds, nil
}

// Edit is one word to mute.
type Edit struct {
	Start      Timestamp `json:"start"`
	End        Timestamp `json:"end"`
	Word       string    `json:"word"`
	Confidence float64   `json:"confidence"`
}

// EDL is the edit list for one source file.
type EDL struct {
	SourceFile string `json:"source_file"`
	Generated  string `json:"generated"`
	// StemsDir points at saved stems so applying the list can skip separation.
	StemsDir string `json:"stems_dir,omitempty"`
	Edits    []Edit `json:"edits"`
}

// Create builds an EDL from matched tokens. Untimed tokens are skipped.
func Create(source string, matched []words.Token, stemsDir string, now time.Time) EDL {
	edits := make([]Edit, 0, len(matched))
	for _, tok := range matched {
		if !tok.Timed {
			continue
		}
		edits = append(edits, Edit{
			Start:      Timestamp(tok.Start),
			End:        Timestamp(tok.End),
			Word:       tok.Text,
			Confidence: math.Round(tok.Confidence*1000) / 1000,
		})
	}
	return EDL{
		SourceFile: source,
		Generated:  now.Format(time.RFC3339),
		StemsDir:   stemsDir,
		Edits:      edits,
	}
}

// DefaultPath returns <dir>/<name>.edl.json for input.
func DefaultPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(filepath.Dir(input), base+Suffix)
}

// Validate reports edits whose end precedes their start.
func (e EDL) Validate() error {
	var problems []string
	for i, edit := range e.Edits {
		if edit.End < edit.Start {
			problems = append(problems, fmt.Sprintf("edit %d (%q): end %s before start %s", i+1, edit.Word, edit.End, edit.Start))
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Tokens converts the edits to timed tokens for interval building.
func (e EDL) Tokens() []words.Token {
	out := make([]words.Token, 0, len(e.Edits))
	for _, edit := range e.Edits {
		out = append(out, words.NewHypothesis(edit.Word, edit.Start.Seconds(), edit.End.Seconds(), edit.Confidence))
	}
	return out
}

// Save writes the EDL as indented JSON.
func (e EDL) Save(path string) error {
	if e.Edits == nil {
		e.Edits = []Edit{}
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("encode edl: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write edl: %w", err)
	}
	return nil
}

// Load reads an EDL from path.
func Load(path string) (EDL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EDL{}, fmt.Errorf("read edl: %w", err)
	}
	var e EDL
	if err := json.Unmarshal(data, &e); err != nil {
		return EDL{}, fmt.Errorf("parse edl %s: %w", path, err)
	}
	if strings.TrimSpace(e.SourceFile) == "" {
		return EDL{}, fmt.Errorf("parse edl %s: missing source_file", path)
	}
	return e, nil
}
