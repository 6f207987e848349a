package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"musicclean/internal/history"
	"musicclean/internal/logging"
	"musicclean/internal/mute"
	"musicclean/internal/profanity"
	"musicclean/internal/services"
	"musicclean/internal/services/demucs"
	"musicclean/internal/services/ffmpeg"
	"musicclean/internal/services/whisperx"
	"musicclean/internal/textutil"
)

// Separator splits a track into vocal and instrumental stems.
type Separator interface {
	Separate(ctx context.Context, input, outputDir string) (demucs.Stems, error)
}

// Transcriber produces timed words for a vocal stem.
type Transcriber interface {
	Transcribe(ctx context.Context, source, outputDir, prompt string) (whisperx.Transcript, error)
}

// Encoder writes the final remix into the output container.
type Encoder interface {
	Encode(ctx context.Context, req ffmpeg.Request) error
}

// Recorder persists finished runs.
type Recorder interface {
	Record(ctx context.Context, run history.Run, matches []history.Match) (string, error)
}

// Confirm is shown the analysis before any audio is changed. Returning
// false cancels the run.
type Confirm func(Analysis) bool

// Request names one input and its per-track options.
type Request struct {
	Input string
	// Output is an explicit destination; blank derives one from Config.
	Output string
	// OutputDir replaces the input's directory when deriving the output.
	OutputDir string
	// Lyrics is reference lyric text; blank skips alignment.
	Lyrics string
	// Set is the profanity set; nil uses the built-in list.
	Set *profanity.Set
	// EDLPath overrides where GenerateEDL writes.
	EDLPath string
}

// Result is the outcome of one coordinator call.
type Result struct {
	RunID  string
	Input  string
	Mode   history.Mode
	Status history.Status
	// Output is empty when nothing was written.
	Output    string
	LRCPath   string
	EDLPath   string
	StemsDir  string
	Analysis  *Analysis
	Intervals []mute.Interval
	StartedAt time.Time
	Duration  time.Duration
}

// Coordinator runs tracks through the pipeline.
type Coordinator struct {
	cfg         Config
	separator   Separator
	transcriber Transcriber
	encoder     Encoder
	recorder    Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithRecorder records every run.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// WithLogger sets the coordinator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New constructs a Coordinator.
func New(cfg Config, separator Separator, transcriber Transcriber, encoder Encoder, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:         cfg,
		separator:   separator,
		transcriber: transcriber,
		encoder:     encoder,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "pipeline")
	return c
}

// Config returns the coordinator configuration.
func (c *Coordinator) Config() Config {
	return c.cfg
}

// session is the state of one run.
type session struct {
	req    Request
	runDir string
	result *Result
	stems  demucs.Stems
	logger *slog.Logger
}

// run handles validation, locking, scratch directories, and history for fn.
func (c *Coordinator) run(ctx context.Context, req Request, mode history.Mode, fn func(context.Context, *session) error) (*Result, error) {
	started := c.now()
	result := &Result{
		RunID:     history.NewRunID(),
		Mode:      mode,
		StartedAt: started,
	}

	input, err := filepath.Abs(strings.TrimSpace(req.Input))
	if err != nil || strings.TrimSpace(req.Input) == "" {
		return result, services.Wrap(services.ErrValidation, "pipeline", "resolve input", fmt.Sprintf("invalid input path %q", req.Input), err)
	}
	req.Input = input
	result.Input = input
	if req.Set == nil {
		req.Set = profanity.Default()
	}

	ctx = services.WithRunID(ctx, result.RunID)
	ctx = services.WithInputFile(ctx, input)
	logger := logging.WithContext(ctx, c.logger)

	runErr := c.runLocked(ctx, req, result, logger, fn)

	result.Duration = c.now().Sub(started)
	if runErr != nil {
		result.Status = services.FailureStatus(runErr)
	}
	c.record(ctx, logger, result, runErr)
	return result, runErr
}

func (c *Coordinator) runLocked(ctx context.Context, req Request, result *Result, logger *slog.Logger, fn func(context.Context, *session) error) error {
	info, err := os.Stat(req.Input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "pipeline", "stat input", "input file not found", err)
		}
		return services.Wrap(services.ErrValidation, "pipeline", "stat input", "cannot read input", err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "pipeline", "stat input", "input is a directory", nil)
	}

	unlock, err := c.lock(req.Input)
	if err != nil {
		return err
	}
	defer unlock()

	runDir, err := c.scratchDir(result.RunID)
	if err != nil {
		return err
	}
	defer func() {
		if c.cfg.KeepTemp {
			logger.Info("kept scratch directory", logging.String("path", runDir))
			return
		}
		if err := os.RemoveAll(runDir); err != nil {
			logging.WarnWithContext(logger, "scratch cleanup failed", "scratch_cleanup_failed",
				logging.String("path", runDir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "intermediate stems remain on disk"),
				logging.String(logging.FieldErrorHint, "remove the directory manually"),
			)
		}
	}()

	return fn(ctx, &session{req: req, runDir: runDir, result: result, logger: logger})
}

// lock takes a per-input file lock so two processes never work on the same
// track at once.
func (c *Coordinator) lock(input string) (func(), error) {
	if c.cfg.LocksDir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(c.cfg.LocksDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "create lock dir", c.cfg.LocksDir, err)
	}
	path := filepath.Join(c.cfg.LocksDir, textutil.SanitizeToken(input)+".lock")
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "acquire lock", path, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrBusy, "pipeline", "acquire lock", "input is already being processed", nil)
	}
	return func() { _ = fl.Unlock() }, nil
}

func (c *Coordinator) scratchDir(runID string) (string, error) {
	base := c.cfg.RunsDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "musicclean-"+runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "pipeline", "create scratch dir", dir, err)
	}
	return dir, nil
}

// record stores the run in history. Failures are logged, never returned.
func (c *Coordinator) record(ctx context.Context, logger *slog.Logger, result *Result, runErr error) {
	if c.recorder == nil {
		return
	}
	run := history.Run{
		ID:           result.RunID,
		InputFile:    result.Input,
		OutputFile:   result.Output,
		Mode:         result.Mode,
		Status:       result.Status,
		StartedAt:    result.StartedAt.UTC(),
		FinishedAt:   result.StartedAt.Add(result.Duration).UTC(),
		MutedSeconds: mute.Total(result.Intervals),
	}
	if runErr != nil {
		run.ErrorMessage = runErr.Error()
	}
	var matches []history.Match
	if a := result.Analysis; a != nil {
		run.WordCount = len(a.Stream)
		run.MatchCount = len(a.Detection.Matches)
		run.UndetectableCount = len(a.Detection.Undetectable)
		run.AlignmentNote = strings.Join(a.Notes, "; ")
		for _, group := range [][]profanity.Hit{a.Detection.Matches, a.Detection.Undetectable} {
			for _, hit := range group {
				matches = append(matches, history.Match{
					Word:       hit.Token.Text,
					Start:      hit.Token.Start,
					End:        hit.Token.End,
					Confidence: hit.Token.Confidence,
					Context:    hit.Context,
					Timed:      hit.Token.Timed,
				})
			}
		}
	} else {
		run.MatchCount = len(result.Intervals)
	}
	// A cancelled parent context must not prevent the record.
	if _, err := c.recorder.Record(context.WithoutCancel(ctx), run, matches); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run will be missing from musicclean history"),
			logging.String(logging.FieldErrorHint, "check paths.history_db permissions"),
		)
	}
}
