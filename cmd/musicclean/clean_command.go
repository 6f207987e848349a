package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"musicclean/internal/config"
	"musicclean/internal/pipeline"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var preview bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean FILE...",
		Short: "Mute profanity in one or more songs",
		Long: "Separate vocals, transcribe them, and write a copy of each song with\n" +
			"profane words muted in the vocal track. Songs without profanity are\n" +
			"left alone and no output is written for them.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, set, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}
			lyricsText, err := flags.readLyrics(args)
			if err != nil {
				return err
			}
			outputDir, err := prepareOutputDir(flags.outputDir)
			if err != nil {
				return err
			}
			if err := runPreflight(cmd, ctx, cfg); err != nil {
				return err
			}

			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()
			coordinator, err := ctx.newCoordinator(cfg, store, flags.keepTemp)
			if err != nil {
				return err
			}
			if !preview {
				if err := checkOutputCollisions(coordinator, args, outputDir); err != nil {
					return err
				}
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			jobs := flags.jobs
			if preview {
				jobs = 1
			}
			var prompt *prompter
			if !yes && !preview {
				prompt = newPrompter(cmd.InOrStdin(), out)
			}

			started := time.Now()
			outcomes := runBatch(cmd.Context(), logger, args, jobs, func(runCtx context.Context, input string) (*pipeline.Result, error) {
				req := pipeline.Request{
					Input:     input,
					OutputDir: outputDir,
					Lyrics:    lyricsText,
					Set:       set,
				}
				if preview {
					result, err := coordinator.Detect(runCtx, req)
					if err == nil && result.Analysis != nil {
						printAnalysis(out, input, *result.Analysis, false, colorize)
					}
					return result, err
				}
				var confirm pipeline.Confirm
				if prompt != nil {
					confirm = prompt.confirm(input, colorize)
				}
				return coordinator.Clean(runCtx, req, confirm)
			})

			fmt.Fprintln(out, renderBatchSummary(outcomes))
			if !preview {
				notifyBatch(cmd.Context(), ctx, cfg, logger, "clean", outcomes, started)
			}
			return batchError(cmd.Context(), outcomes)
		},
	}

	flags.registerCommon(cmd)
	flags.registerOutput(cmd)
	cmd.Flags().BoolVarP(&preview, "preview", "p", false, "Show what would be muted without writing anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Mute without asking for confirmation")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 1, "Files processed in parallel")
	return cmd
}

// prepareOutputDir resolves and creates --output-dir. Blank keeps outputs
// next to their inputs.
func prepareOutputDir(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	expanded, err := config.ExpandPath(raw)
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %q: %w", abs, err)
	}
	return abs, nil
}
