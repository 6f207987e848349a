package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"musicclean/internal/config"
	"musicclean/internal/pipeline"
)

func newEDLCommand(ctx *commandContext) *cobra.Command {
	edlCmd := &cobra.Command{
		Use:   "edl",
		Short: "Generate and apply edit decision lists",
		Long: "An edit decision list (EDL) is a JSON file naming every word to mute.\n" +
			"Generate one, review or edit it by hand, then apply it.",
	}
	edlCmd.AddCommand(newEDLGenerateCommand(ctx))
	edlCmd.AddCommand(newEDLApplyCommand(ctx))
	return edlCmd
}

func newEDLGenerateCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var edlPath string

	cmd := &cobra.Command{
		Use:   "generate FILE...",
		Short: "Detect profanity and write <name>.edl.json next to each song",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(edlPath) != "" && len(args) > 1 {
				return errors.New("--edl applies to a single input file")
			}
			target, err := expandOptional(edlPath)
			if err != nil {
				return err
			}
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
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			started := time.Now()
			outcomes := runBatch(cmd.Context(), logger, args, flags.jobs, func(runCtx context.Context, input string) (*pipeline.Result, error) {
				return coordinator.GenerateEDL(runCtx, pipeline.Request{
					Input:   input,
					Lyrics:  lyricsText,
					Set:     set,
					EDLPath: target,
				})
			})
			fmt.Fprintln(cmd.OutOrStdout(), renderBatchSummary(outcomes))
			notifyBatch(cmd.Context(), ctx, cfg, logger, "edl generate", outcomes, started)
			return batchError(cmd.Context(), outcomes)
		},
	}

	flags.registerCommon(cmd)
	cmd.Flags().StringVar(&edlPath, "edl", "", "Write the list to this path instead of next to the song")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 1, "Files processed in parallel")
	return cmd
}

func newEDLApplyCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var edlPath string

	cmd := &cobra.Command{
		Use:   "apply FILE",
		Short: "Mute the words listed in an edit decision list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listPath, err := expandOptional(edlPath)
			if err != nil {
				return err
			}
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, _, err := flags.apply(cmd, base)
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
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			outcomes := runBatch(cmd.Context(), logger, args, 1, func(runCtx context.Context, input string) (*pipeline.Result, error) {
				return coordinator.ApplyEDL(runCtx, pipeline.Request{Input: input, OutputDir: outputDir}, listPath)
			})
			fmt.Fprintln(cmd.OutOrStdout(), renderBatchSummary(outcomes))
			return batchError(cmd.Context(), outcomes)
		},
	}

	cmd.Flags().StringVar(&edlPath, "edl", "", "Edit decision list to apply (default: <name>.edl.json next to the song)")
	cmd.Flags().IntVar(&flags.padMS, "pad-ms", 0, "Silence added before and after each muted word, in milliseconds")
	cmd.Flags().BoolVar(&flags.keepTemp, "keep-temp", false, "Keep intermediate files")
	flags.registerOutput(cmd)
	return cmd
}

func expandOptional(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	expanded, err := config.ExpandPath(raw)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", raw, err)
	}
	return expanded, nil
}
