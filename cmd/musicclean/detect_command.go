package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"musicclean/internal/pipeline"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var all bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "detect FILE...",
		Short: "List profanity in songs without changing them",
		Args:  cobra.MinimumNArgs(1),
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

			outcomes := runBatch(cmd.Context(), logger, args, flags.jobs, func(runCtx context.Context, input string) (*pipeline.Result, error) {
				return coordinator.Detect(runCtx, pipeline.Request{Input: input, Lyrics: lyricsText, Set: set})
			})

			if asJSON {
				payloads := make([]detectJSON, 0, len(outcomes))
				for _, o := range outcomes {
					payloads = append(payloads, detectPayload(o, all))
				}
				if err := writeJSON(cmd, payloads); err != nil {
					return err
				}
				return batchError(cmd.Context(), outcomes)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, o := range outcomes {
				if o.Err != nil || o.Result == nil || o.Result.Analysis == nil {
					continue
				}
				printAnalysis(out, o.Input, *o.Result.Analysis, all, colorize)
			}
			if len(outcomes) > 1 {
				fmt.Fprintln(out, renderBatchSummary(outcomes))
			}
			return batchError(cmd.Context(), outcomes)
		},
	}

	flags.registerCommon(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "List every transcribed word, not just profanity")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 1, "Files processed in parallel")
	return cmd
}
