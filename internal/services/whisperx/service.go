package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	langpkg "musicclean/internal/language"
	"musicclean/internal/services"
	"musicclean/internal/words"
)

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	commandRunner services.CommandRunner
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	var env []string
	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		env = append(env, "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	return &Service{
		cfg:           cfg,
		commandRunner: services.ExecRunner(env...),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner services.CommandRunner) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// CUDAEnabled returns whether CUDA is enabled.
func (s *Service) CUDAEnabled() bool {
	return s.cfg.CUDAEnabled
}

// Transcript is the outcome of one transcription.
type Transcript struct {
	// Words are hypothesis tokens sorted by start time.
	Words []words.Token
	// Language is the language WhisperX reports having used.
	Language string
	// JSONPath is the raw WhisperX output.
	JSONPath string
}

// Transcribe runs WhisperX on source and returns timed words. Output files
// are written to outputDir. A non-empty prompt seeds the decoder with
// expected vocabulary, typically the reference lyrics.
func (s *Service) Transcribe(ctx context.Context, source, outputDir, prompt string) (Transcript, error) {
	var result Transcript

	if source == "" {
		return result, fmt.Errorf("transcribe: source path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	args := s.buildArgs(source, outputDir, prompt)
	if err := s.commandRunner(ctx, UVXCommand, args...); err != nil {
		return result, fmt.Errorf("whisperx: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	result.JSONPath = filepath.Join(outputDir, baseName+".json")

	payload, err := loadPayload(result.JSONPath)
	if err != nil {
		return result, err
	}
	result.Language = payload.Language
	result.Words = payload.tokens()
	return result, nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir, prompt string) []string {
	args := make([]string, 0, 40)

	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", s.Model(),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--chunk_size", ChunkSize,
		"--vad_onset", VADOnset,
		"--vad_offset", VADOffset,
		"--beam_size", BeamSize,
		"--temperature", Temperature,
	)

	vadMethod := s.cfg.VADMethod
	if vadMethod == "" {
		vadMethod = VADMethodSilero
	}
	args = append(args, "--vad_method", vadMethod)
	if vadMethod == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}

	if lang := langpkg.ToISO2(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	if prompt = promptText(prompt); prompt != "" {
		args = append(args, "--initial_prompt", prompt)
	}

	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}

	return args
}

// promptText collapses whitespace and keeps the tail of long prompts.
func promptText(prompt string) string {
	prompt = strings.Join(strings.Fields(prompt), " ")
	runes := []rune(prompt)
	if len(runes) <= maxPromptRunes {
		return prompt
	}
	tail := string(runes[len(runes)-maxPromptRunes:])
	if idx := strings.IndexByte(tail, ' '); idx >= 0 {
		tail = tail[idx+1:]
	}
	return tail
}

// Word represents a single word from WhisperX output. Timing is absent for
// tokens the aligner could not place.
type Word struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

type payload struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// LoadWords loads the timed words from a WhisperX JSON file.
func LoadWords(jsonPath string) ([]words.Token, error) {
	p, err := loadPayload(jsonPath)
	if err != nil {
		return nil, err
	}
	return p.tokens(), nil
}

func loadPayload(jsonPath string) (payload, error) {
	var p payload
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return p, fmt.Errorf("read whisperx output: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse whisperx json: %w", err)
	}
	return p, nil
}

func (p payload) tokens() []words.Token {
	var out []words.Token
	for _, seg := range p.Segments {
		out = append(out, segmentTokens(seg)...)
	}
	return words.SortHypothesis(out)
}

// segmentTokens converts one segment's words, borrowing bounds from the
// nearest timed neighbours (or the segment edges) for untimed words.
func segmentTokens(seg Segment) []words.Token {
	out := make([]words.Token, 0, len(seg.Words))
	for i, w := range seg.Words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		start, end := seg.Start, seg.End
		if w.Start != nil {
			start = *w.Start
		} else if prev, ok := previousEnd(seg.Words, i); ok {
			start = prev
		}
		if w.End != nil {
			end = *w.End
		} else if next, ok := nextStart(seg.Words, i); ok {
			end = next
		}
		var score float64
		if w.Score != nil {
			score = *w.Score
		}
		out = append(out, words.NewHypothesis(text, start, end, score))
	}
	return out
}

func previousEnd(ws []Word, i int) (float64, bool) {
	for j := i - 1; j >= 0; j-- {
		if ws[j].End != nil {
			return *ws[j].End, true
		}
	}
	return 0, false
}

func nextStart(ws []Word, i int) (float64, bool) {
	for j := i + 1; j < len(ws); j++ {
		if ws[j].Start != nil {
			return *ws[j].Start, true
		}
	}
	return 0, false
}
