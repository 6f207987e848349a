package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"musicclean/internal/config"
	"musicclean/internal/history"
	"musicclean/internal/logging"
	"musicclean/internal/notifications"
	"musicclean/internal/pipeline"
	"musicclean/internal/preflight"
	"musicclean/internal/services/demucs"
	"musicclean/internal/services/ffmpeg"
	"musicclean/internal/services/whisperx"
)

// collaborators builds the external tool adapters for a run.
type collaborators func(cfg *config.Config) (pipeline.Separator, pipeline.Transcriber, pipeline.Encoder)

type commandContext struct {
	configFlag string
	verbose    bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	tools     collaborators
	preflight func(context.Context, *config.Config) []preflight.Result
	notifier  func(*config.Config) notifications.Service
}

func newCommandContext() *commandContext {
	return &commandContext{
		tools:     defaultCollaborators,
		preflight: preflight.RunAll,
		notifier:  notifications.NewService,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger once. --verbose forces debug.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		settings := *cfg
		if c.verbose {
			settings.Logging.Level = "debug"
		}
		logger, err := logging.NewFromConfig(&settings)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

// newCoordinator wires a pipeline for cfg, which may carry per-command
// overrides. A nil store disables history recording.
func (c *commandContext) newCoordinator(cfg *config.Config, store *history.Store, keepTemp bool) (*pipeline.Coordinator, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	settings := pipeline.ConfigFrom(cfg)
	settings.KeepTemp = keepTemp
	separator, transcriber, encoder := c.tools(cfg)
	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if store != nil {
		opts = append(opts, pipeline.WithRecorder(store))
	}
	return pipeline.New(settings, separator, transcriber, encoder, opts...), nil
}

func defaultCollaborators(cfg *config.Config) (pipeline.Separator, pipeline.Transcriber, pipeline.Encoder) {
	separator := demucs.NewService(demucs.Config{
		Python: cfg.Separation.Python,
		Model:  cfg.Separation.Model,
		Device: cfg.Separation.Device,
	})
	transcriber := whisperx.NewService(whisperx.Config{
		Model:       cfg.Transcription.Model,
		Language:    cfg.Transcription.Language,
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
		VADMethod:   cfg.Transcription.VADMethod,
		HFToken:     cfg.Transcription.HFToken,
	})
	return separator, transcriber, ffmpeg.NewEncoder(cfg.FFmpegBinary())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
