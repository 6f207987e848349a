package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"musicclean/internal/config"
	"musicclean/internal/preflight"
	"musicclean/internal/profanity"
)

// runFlags are the per-invocation overrides shared by the processing
// commands. Only flags the user actually set replace config values.
type runFlags struct {
	outputDir     string
	overwrite     bool
	profanityList string
	whisperModel  string
	demucsModel   string
	lyricsPath    string
	padMS         int
	keepTemp      bool
	jobs          int
	noLRC         bool
}

func (f *runFlags) registerCommon(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.profanityList, "profanity-list", "l", "", "Profanity word list file (one word per line)")
	flags.StringVarP(&f.whisperModel, "whisper-model", "m", "", "WhisperX model name")
	flags.StringVar(&f.demucsModel, "demucs-model", "", "Demucs model name")
	flags.StringVar(&f.lyricsPath, "lyrics", "", "Reference lyrics file used to correct the transcription")
	flags.IntVar(&f.padMS, "pad-ms", 0, "Silence added before and after each muted word, in milliseconds")
	flags.BoolVar(&f.keepTemp, "keep-temp", false, "Keep intermediate stems and transcripts")
}

func (f *runFlags) registerOutput(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.outputDir, "output-dir", "o", "", "Directory for cleaned files (default: next to the input)")
	flags.BoolVarP(&f.overwrite, "overwrite", "w", false, "Replace the input file")
	flags.BoolVar(&f.noLRC, "no-lrc", false, "Do not write or embed synced lyrics")
}

// apply returns a copy of base with the set flags applied, validated, and
// the effective profanity set.
func (f *runFlags) apply(cmd *cobra.Command, base *config.Config) (*config.Config, *profanity.Set, error) {
	cfg := *base
	cfg.Filter.ExtraWords = append([]string(nil), base.Filter.ExtraWords...)
	cfg.Filter.AllowWords = append([]string(nil), base.Filter.AllowWords...)

	changed := cmd.Flags().Changed
	if changed("profanity-list") {
		path, err := config.ExpandPath(strings.TrimSpace(f.profanityList))
		if err != nil {
			return nil, nil, fmt.Errorf("resolve profanity list: %w", err)
		}
		cfg.Filter.ProfanityList = path
	}
	if changed("whisper-model") {
		cfg.Transcription.Model = strings.TrimSpace(f.whisperModel)
	}
	if changed("demucs-model") {
		cfg.Separation.Model = strings.TrimSpace(f.demucsModel)
	}
	if changed("pad-ms") {
		cfg.Filter.PadMS = f.padMS
	}
	if changed("overwrite") {
		cfg.Output.Overwrite = f.overwrite
	}
	if f.noLRC {
		cfg.Output.WriteLRC = false
		cfg.Output.EmbedLyrics = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	set, err := cfg.ProfanitySet()
	if err != nil {
		return nil, nil, err
	}
	return &cfg, set, nil
}

// readLyrics loads the --lyrics file. A lyrics file describes one song, so
// it is rejected for batches.
func (f *runFlags) readLyrics(inputs []string) (string, error) {
	path := strings.TrimSpace(f.lyricsPath)
	if path == "" {
		return "", nil
	}
	if len(inputs) > 1 {
		return "", errors.New("--lyrics applies to a single input file")
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve lyrics path: %w", err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return "", fmt.Errorf("read lyrics: %w", err)
	}
	return string(data), nil
}

// runPreflight fails fast when a directory or required tool is missing.
func runPreflight(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) error {
	failed := preflight.Failed(ctx.preflight(cmd.Context(), cfg))
	if len(failed) == 0 {
		return nil
	}
	colorize := shouldColorize(cmd.ErrOrStderr())
	names := make([]string, 0, len(failed))
	for _, r := range failed {
		fmt.Fprintln(cmd.ErrOrStderr(), renderStatusLine(r.Name, statusError, r.Detail, colorize))
		names = append(names, r.Name)
	}
	return fmt.Errorf("preflight failed: %s (run `musicclean status` for details)", strings.Join(names, ", "))
}
