package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"musicclean/internal/audio"
	"musicclean/internal/edl"
	"musicclean/internal/fileutil"
	"musicclean/internal/history"
	"musicclean/internal/logging"
	"musicclean/internal/lyrics"
	"musicclean/internal/mute"
	"musicclean/internal/services"
	"musicclean/internal/services/demucs"
	"musicclean/internal/services/ffmpeg"
	"musicclean/internal/textutil"
	"musicclean/internal/words"
)

const (
	stageSeparate   = "separate"
	stageTranscribe = "transcribe"
	stageAnalyze    = "analyze"
	stageMute       = "mute"
	stageEncode     = "encode"
	stageEDL        = "edl"
)

// Detect separates and transcribes req.Input and reports what would be
// muted. No audio is written.
func (c *Coordinator) Detect(ctx context.Context, req Request) (*Result, error) {
	return c.run(ctx, req, history.ModeDetect, func(ctx context.Context, s *session) error {
		if err := c.detect(ctx, s); err != nil {
			return err
		}
		s.result.Status = history.StatusPreview
		return nil
	})
}

// Clean detects profanity, asks confirm (when non-nil) before changing any
// audio, then mutes the vocal stem, remixes, and encodes the output. A track
// with nothing to mute completes without writing a file.
func (c *Coordinator) Clean(ctx context.Context, req Request, confirm Confirm) (*Result, error) {
	return c.run(ctx, req, history.ModeClean, func(ctx context.Context, s *session) error {
		if err := c.detect(ctx, s); err != nil {
			return err
		}
		analysis := s.result.Analysis
		if confirm != nil && !analysis.Detection.Empty() && !confirm(*analysis) {
			s.logger.Info("run cancelled at confirmation")
			s.result.Status = history.StatusCancelled
			return nil
		}
		if len(analysis.Intervals) == 0 {
			s.logger.Info("no profanity to mute", logging.Int("words", len(analysis.Stream)))
			s.result.Status = history.StatusClean
			return nil
		}
		return c.render(ctx, s, analysis.Intervals, analysis.Stream)
	})
}

// GenerateEDL detects profanity, keeps the stems for later, and writes an
// edit decision list next to the input (or at req.EDLPath).
func (c *Coordinator) GenerateEDL(ctx context.Context, req Request) (*Result, error) {
	return c.run(ctx, req, history.ModeEDLGenerate, func(ctx context.Context, s *session) error {
		if err := c.detect(ctx, s); err != nil {
			return err
		}
		ctx = services.WithStage(ctx, stageEDL)

		stemsDir, err := c.keepStems(s)
		if err != nil {
			return err
		}
		s.result.StemsDir = stemsDir

		path := req.EDLPath
		if path == "" {
			path = edl.DefaultPath(s.req.Input)
		}
		list := edl.Create(s.req.Input, s.result.Analysis.Detection.Tokens(), stemsDir, c.now())
		if err := list.Save(path); err != nil {
			return services.Wrap(services.ErrValidation, stageEDL, "save", path, err)
		}
		s.result.EDLPath = path
		s.result.Status = history.StatusCompleted
		logging.WithContext(ctx, c.logger).Info("edit decision list written",
			logging.String("path", path),
			logging.Int("edits", len(list.Edits)),
		)
		return nil
	})
}

// ApplyEDL mutes the edits listed in edlPath. Stems saved by GenerateEDL
// are reused when still present; otherwise the input is separated again.
func (c *Coordinator) ApplyEDL(ctx context.Context, req Request, edlPath string) (*Result, error) {
	if edlPath == "" {
		edlPath = edl.DefaultPath(req.Input)
	}
	return c.run(ctx, req, history.ModeEDLApply, func(ctx context.Context, s *session) error {
		list, err := edl.Load(edlPath)
		if err != nil {
			marker := services.ErrValidation
			if errors.Is(err, os.ErrNotExist) {
				marker = services.ErrNotFound
			}
			return services.Wrap(marker, stageEDL, "load", edlPath, err)
		}
		if err := list.Validate(); err != nil {
			return services.Wrap(services.ErrValidation, stageEDL, "validate", edlPath, err)
		}
		s.result.EDLPath = edlPath

		intervals := mute.Build(list.Tokens(), c.cfg.PadSeconds)
		if len(intervals) == 0 {
			s.logger.Info("edit decision list is empty", logging.String("path", edlPath))
			s.result.Status = history.StatusClean
			return nil
		}

		if list.StemsDir != "" {
			if stems, err := demucs.Locate(list.StemsDir); err == nil {
				s.stems = stems
				s.logger.Info("reusing saved stems", logging.String("dir", list.StemsDir))
			} else {
				logging.WarnWithContext(s.logger, "saved stems unavailable", "stems_missing",
					logging.String("dir", list.StemsDir),
					logging.Error(err),
					logging.String(logging.FieldImpact, "input will be separated again"),
					logging.String(logging.FieldErrorHint, "regenerate the edit list to keep stems"),
				)
			}
		}
		if s.stems.Vocals == "" {
			if err := c.separate(ctx, s); err != nil {
				return err
			}
		}
		return c.render(ctx, s, intervals, nil)
	})
}

// detect runs separation, transcription, and analysis.
func (c *Coordinator) detect(ctx context.Context, s *session) error {
	if err := c.separate(ctx, s); err != nil {
		return err
	}

	ctx = services.WithStage(ctx, stageTranscribe)
	logger := logging.WithContext(ctx, c.logger)
	prompt := ""
	if c.cfg.LyricsPrompt {
		prompt = s.req.Lyrics
	}
	logger.Info("transcribing vocals")
	transcript, err := c.transcriber.Transcribe(ctx, s.stems.Vocals, filepath.Join(s.runDir, "transcript"), prompt)
	if err != nil {
		return classify(ctx, err, stageTranscribe, "whisperx")
	}
	logger.Info("transcription complete",
		logging.Int("words", len(transcript.Words)),
		logging.String("language", transcript.Language),
	)

	ctx = services.WithStage(ctx, stageAnalyze)
	logger = logging.WithContext(ctx, c.logger)
	analysis := Analyze(c.cfg, transcript.Words, s.req.Lyrics, s.req.Set)
	s.result.Analysis = &analysis
	s.result.Intervals = analysis.Intervals

	if strings.TrimSpace(s.req.Lyrics) != "" {
		result, reason := "adopted", "lyrics aligned"
		if !analysis.LyricsAdopted() {
			result, reason = "rejected", analysis.Alignment.Note
		}
		stats := analysis.Alignment.Stats
		logger.Info("lyrics alignment", logging.Args(append(logging.DecisionAttrs("lyrics_alignment", result, reason),
			logging.Int("matches", stats.Matches),
			logging.Int("substitutions", stats.Substitutions),
			logging.Int("insertions", stats.Insertions),
			logging.Int("deletions", stats.Deletions),
		)...)...)
	}
	for _, note := range analysis.Notes {
		logging.WarnWithContext(logger, note, "analysis_note",
			logging.String(logging.FieldImpact, "some words may not be muted"),
			logging.String(logging.FieldErrorHint, "review the preview before cleaning"),
		)
	}
	logger.Info("profanity detection complete",
		logging.Int("matches", len(analysis.Detection.Matches)),
		logging.Int("undetectable", len(analysis.Detection.Undetectable)),
		logging.Int("intervals", len(analysis.Intervals)),
		logging.Float64("muted_seconds", analysis.MutedSeconds()),
	)
	return nil
}

func (c *Coordinator) separate(ctx context.Context, s *session) error {
	ctx = services.WithStage(ctx, stageSeparate)
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("separating stems")
	stems, err := c.separator.Separate(ctx, s.req.Input, filepath.Join(s.runDir, "stems"))
	if err != nil {
		return classify(ctx, err, stageSeparate, "demucs")
	}
	s.stems = stems
	logger.Info("stems ready", logging.String("vocals", stems.Vocals))
	return nil
}

// render mutes the vocal stem, remixes it with the instrumental, and
// encodes the output. stream, when timed, feeds the lyric sidecar and tag.
func (c *Coordinator) render(ctx context.Context, s *session, intervals []mute.Interval, stream []words.Token) error {
	ctx = services.WithStage(ctx, stageMute)
	logger := logging.WithContext(ctx, c.logger)

	vocals, err := audio.ReadWAV(s.stems.Vocals)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageMute, "read vocals", s.stems.Vocals, err)
	}
	instrumental, err := audio.ReadWAV(s.stems.Instrumental)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageMute, "read instrumental", s.stems.Instrumental, err)
	}
	muted := mute.Apply(vocals, intervals)
	mix, err := audio.Mix(muted, instrumental)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageMute, "mix stems", "", err)
	}
	mixPath := filepath.Join(s.runDir, "mix.wav")
	if err := audio.WriteWAV(mixPath, mix); err != nil {
		return services.Wrap(services.ErrValidation, stageMute, "write mix", mixPath, err)
	}
	logger.Info("vocals muted",
		logging.Int("intervals", len(intervals)),
		logging.Float64("muted_seconds", mute.Total(intervals)),
	)

	ctx = services.WithStage(ctx, stageEncode)
	logger = logging.WithContext(ctx, c.logger)
	output := c.OutputPath(s.req)
	lrc := ""
	if c.cfg.WriteLRC || c.cfg.EmbedLyrics {
		lrc = lyrics.GenerateLRC(stream)
	}
	encodeReq := ffmpeg.Request{
		Mix:     mixPath,
		Source:  s.req.Input,
		Output:  output,
		Bitrate: c.cfg.Bitrate,
	}
	if c.cfg.EmbedLyrics {
		encodeReq.Lyrics = lrc
	}
	if err := c.encoder.Encode(ctx, encodeReq); err != nil {
		return classify(ctx, err, stageEncode, "ffmpeg")
	}
	s.result.Output = output
	s.result.Intervals = intervals

	if c.cfg.WriteLRC && lrc != "" {
		lrcPath := strings.TrimSuffix(output, filepath.Ext(output)) + ".lrc"
		if err := lyrics.WriteLRC(lrcPath, stream); err != nil {
			logging.WarnWithContext(logger, "lyric sidecar not written", "lrc_write_failed",
				logging.String("path", lrcPath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "players will not show synced lyrics"),
			)
		} else {
			s.result.LRCPath = lrcPath
		}
	}
	s.result.Status = history.StatusCompleted
	logger.Info("clean track written", logging.String("output", output))
	return nil
}

// keepStems moves the separated stems out of the scratch directory so a
// later ApplyEDL can reuse them.
func (c *Coordinator) keepStems(s *session) (string, error) {
	if c.cfg.StemsDir == "" {
		return "", nil
	}
	base := strings.TrimSuffix(filepath.Base(s.req.Input), filepath.Ext(s.req.Input))
	dest := filepath.Join(c.cfg.StemsDir, textutil.SanitizeToken(base))
	moves := []struct{ src, name string }{
		{s.stems.Vocals, demucs.VocalsFile},
		{s.stems.Instrumental, demucs.InstrumentalFile},
	}
	for _, m := range moves {
		if err := fileutil.MoveFile(m.src, filepath.Join(dest, m.name)); err != nil {
			return "", services.Wrap(services.ErrValidation, stageEDL, "keep stems", dest, err)
		}
	}
	s.stems = demucs.Stems{
		Dir:          dest,
		Vocals:       filepath.Join(dest, demucs.VocalsFile),
		Instrumental: filepath.Join(dest, demucs.InstrumentalFile),
	}
	return dest, nil
}

// OutputPath returns where a cleaned req.Input is written: the explicit
// output, the input itself when overwriting, or "<name><suffix><ext>" in
// the output directory.
func (c *Coordinator) OutputPath(req Request) string {
	if req.Output != "" {
		return req.Output
	}
	input := req.Input
	if c.cfg.Overwrite && (c.cfg.Format == "" || strings.EqualFold(filepath.Ext(input), "."+c.cfg.Format)) {
		return input
	}
	ext := filepath.Ext(input)
	if c.cfg.Format != "" {
		ext = "." + c.cfg.Format
	} else if !ffmpeg.Supported(ext) {
		ext = ".flac"
	}
	dir := req.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if c.cfg.Overwrite {
		return filepath.Join(dir, base+ext)
	}
	return filepath.Join(dir, base+c.cfg.Suffix+ext)
}

// classify tags collaborator failures, keeping cancellation distinct.
func classify(ctx context.Context, err error, stage, tool string) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return services.Wrap(services.ErrCancelled, stage, tool, "interrupted", err)
	}
	if errors.Is(err, services.ErrExternalTool) || errors.Is(err, services.ErrValidation) {
		return err
	}
	return services.Wrap(services.ErrExternalTool, stage, tool, fmt.Sprintf("%s failed", tool), err)
}
