package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const sampleJSON = `{
  "language": "en",
  "segments": [
    {
      "text": "Damn it all 99 times",
      "start": 0.0,
      "end": 3.0,
      "words": [
        {"word": "Damn", "start": 0.1, "end": 0.5, "score": 0.91},
        {"word": "it", "start": 0.5, "end": 0.8, "score": 0.88},
        {"word": "all", "start": 0.9, "end": 1.2, "score": 0.7},
        {"word": "99"},
        {"word": "times", "start": 2.0, "end": 2.6, "score": 0.8}
      ]
    },
    {
      "text": "hello",
      "start": 4.0,
      "end": 5.0,
      "words": [
        {"word": " "},
        {"word": "hello"}
      ]
    }
  ]
}`

func TestTranscribeParsesWords(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "vocals.wav")

	var gotName string
	var gotArgs []string
	svc := NewService(Config{Model: "small", Language: "english"})
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return os.WriteFile(filepath.Join(dir, "out", "vocals.json"), []byte(sampleJSON), 0o644)
	})

	result, err := svc.Transcribe(context.Background(), source, filepath.Join(dir, "out"), "I love you")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotName != UVXCommand {
		t.Fatalf("command = %q, want %q", gotName, UVXCommand)
	}
	for _, want := range []string{"whisperx", source, "small", "en", "I love you", "json"} {
		if !slices.Contains(gotArgs, want) {
			t.Fatalf("args missing %q: %v", want, gotArgs)
		}
	}
	if result.Language != "en" {
		t.Fatalf("Language = %q", result.Language)
	}

	got := result.Words
	if len(got) != 6 {
		t.Fatalf("expected 6 words, got %d: %v", len(got), got)
	}
	if got[0].Text != "Damn" || got[0].Normalized != "damn" || got[0].Start != 0.1 || got[0].End != 0.5 || got[0].Confidence != 0.91 {
		t.Fatalf("unexpected first word %+v", got[0])
	}
	// Untimed numeral borrows the neighbours' bounds.
	if got[3].Text != "99" || got[3].Start != 1.2 || got[3].End != 2.0 {
		t.Fatalf("unexpected borrowed timing %+v", got[3])
	}
	// Untimed with no neighbours takes the segment edges.
	if got[5].Text != "hello" || got[5].Start != 4.0 || got[5].End != 5.0 {
		t.Fatalf("unexpected segment timing %+v", got[5])
	}
}

func TestTranscribeRunnerFailure(t *testing.T) {
	svc := NewService(Config{})
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("exit status 1")
	})
	_, err := svc.Transcribe(context.Background(), filepath.Join(t.TempDir(), "a.wav"), "", "")
	if err == nil || !strings.Contains(err.Error(), "whisperx") {
		t.Fatalf("expected whisperx error, got %v", err)
	}
}

func TestTranscribeRequiresSource(t *testing.T) {
	if _, err := NewService(Config{}).Transcribe(context.Background(), "", "", ""); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		prompt  string
		want    []string
		notWant []string
	}{
		{
			name:    "cpu defaults",
			cfg:     Config{},
			want:    []string{DefaultModel, CPUDevice, CPUComputeType, VADMethodSilero},
			notWant: []string{"--language", "--initial_prompt", "--hf_token", CUDAIndexURL},
		},
		{
			name:    "cuda with pyannote",
			cfg:     Config{CUDAEnabled: true, VADMethod: VADMethodPyannote, HFToken: "hf_x"},
			want:    []string{CUDAIndexURL, CUDADevice, "--hf_token", "hf_x"},
			notWant: []string{CPUComputeType},
		},
		{
			name:    "auto language omitted",
			cfg:     Config{Language: "auto"},
			notWant: []string{"--language"},
		},
		{
			name:   "prompt whitespace collapsed",
			prompt: "  hold   me\n close ",
			want:   []string{"--initial_prompt", "hold me close"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := NewService(tc.cfg).buildArgs("in.wav", "out", tc.prompt)
			for _, w := range tc.want {
				if !slices.Contains(args, w) {
					t.Fatalf("args missing %q: %v", w, args)
				}
			}
			for _, nw := range tc.notWant {
				if slices.Contains(args, nw) {
					t.Fatalf("args unexpectedly contain %q: %v", nw, args)
				}
			}
		})
	}
}

func TestPromptTextKeepsTail(t *testing.T) {
	long := strings.Repeat("chorus line ", 200) + "final words"
	got := promptText(long)
	if len([]rune(got)) > maxPromptRunes {
		t.Fatalf("prompt not truncated: %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "final words") {
		t.Fatalf("expected tail to be kept, got %q", got[len(got)-20:])
	}
	if strings.HasPrefix(got, " ") {
		t.Fatal("expected truncation on a word boundary")
	}
}

func TestLoadWordsMissingFile(t *testing.T) {
	if _, err := LoadWords(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error")
	}
}
