package edl

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"musicclean/internal/words"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00.00"},
		{0.5, "0:00.50"},
		{72.86, "1:12.86"},
		{185.5, "3:05.50"},
		{59.999, "1:00.00"},
		{-3, "0:00.00"},
		{3930.5, "65:30.50"},
	}
	for _, tc := range tests {
		if got := FormatTimestamp(tc.in); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "72.86", want: 72.86},
		{in: "1:12.86", want: 72.86},
		{in: "01:12.86", want: 72.86},
		{in: " 1:05:30.50 ", want: 3930.5},
		{in: "0:00.50", want: 0.5},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1:2:3:4", wantErr: true},
		{in: "x:10", wantErr: true},
		{in: "-5", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseTimestamp(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTimestamp(%q) expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimestamp(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCreateSaveLoad(t *testing.T) {
	matched := []words.Token{
		words.NewHypothesis("Damn", 72.86, 73.2, 0.91234),
		words.NewReference("hell"),
		words.NewHypothesis("shit", 185.5, 185.9, 0.5),
	}
	now := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	list := Create("/music/song.mp3", matched, "/work/stems/song", now)
	if len(list.Edits) != 2 {
		t.Fatalf("expected untimed token to be skipped, got %d edits", len(list.Edits))
	}
	if list.Edits[0].Confidence != 0.912 {
		t.Fatalf("confidence not rounded: %v", list.Edits[0].Confidence)
	}

	path := filepath.Join(t.TempDir(), "song.edl.json")
	if err := list.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, fragment := range []string{`"start": "1:12.86"`, `"end": "3:05.90"`, `"stems_dir": "/work/stems/song"`, `"generated": "2026-05-04T10:30:00Z"`} {
		if !strings.Contains(string(raw), fragment) {
			t.Fatalf("saved EDL missing %s:\n%s", fragment, raw)
		}
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.SourceFile != "/music/song.mp3" || len(loaded.Edits) != 2 || loaded.Edits[1].Word != "shit" {
		t.Fatalf("unexpected loaded EDL %+v", loaded)
	}
	if math.Abs(loaded.Edits[0].Start.Seconds()-72.86) > 1e-9 {
		t.Fatalf("start = %v", loaded.Edits[0].Start)
	}
}

func TestLoadAcceptsHandEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edited.edl.json")
	content := `{
  "source_file": "song.flac",
  "generated": "2026-01-01T00:00:00",
  "edits": [
    {"start": 12.5, "end": "0:13.10", "word": "damn"},
    {"start": "1:00:01.00", "end": "1:00:01.40", "word": "hell", "confidence": 0.4}
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.StemsDir != "" {
		t.Fatalf("expected no stems dir, got %q", loaded.StemsDir)
	}
	tokens := loaded.Tokens()
	if len(tokens) != 2 || tokens[0].Start != 12.5 || math.Abs(tokens[0].End-13.1) > 1e-9 || tokens[1].Start != 3601 {
		t.Fatalf("unexpected tokens %v", tokens)
	}
	if err := loaded.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"badjson.json":   `{`,
		"badstamp.json":  `{"source_file": "a.mp3", "edits": [{"start": "soon", "end": "1", "word": "x"}]}`,
		"nosource.json":  `{"edits": []}`,
		"wrongtype.json": `{"source_file": "a.mp3", "edits": [{"start": true, "end": "1", "word": "x"}]}`,
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	list := EDL{SourceFile: "a.mp3", Edits: []Edit{{Start: 5, End: 4, Word: "damn"}}}
	err := list.Validate()
	if err == nil || !strings.Contains(err.Error(), "damn") {
		t.Fatalf("expected validation error naming the word, got %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	if got := DefaultPath("/music/My Song.mp3"); got != filepath.Join("/music", "My Song.edl.json") {
		t.Fatalf("DefaultPath = %q", got)
	}
}

func TestSaveEmptyEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.edl.json")
	if err := (EDL{SourceFile: "a.mp3"}).Save(path); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), `"edits": []`) {
		t.Fatalf("expected empty edits array:\n%s", raw)
	}
}
