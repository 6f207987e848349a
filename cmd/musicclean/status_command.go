package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"musicclean/internal/config"
	"musicclean/internal/preflight"
	"musicclean/internal/services/ffmpeg"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration, directories, and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			printSection := func(title string, lines []string) {
				for _, line := range renderSectionHeader(title, colorize) {
					fmt.Fprintln(out, line)
				}
				for _, line := range lines {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out)
			}

			printSection("Configuration", configStatusLines(ctx, cfg, colorize))
			printSection("Directories", []string{
				directoryStatusLine("Work", cfg.Paths.WorkDir, colorize),
				directoryStatusLine("Logs", cfg.Paths.LogDir, colorize),
				directoryStatusLine("History", filepath.Dir(cfg.Paths.HistoryDB), colorize),
			})
			printSection("Dependencies", dependencyLines(preflight.CheckSystemDeps(cmd.Context(), cfg), colorize))
			return nil
		},
	}
}

func configStatusLines(ctx *commandContext, cfg *config.Config, colorize bool) []string {
	lines := make([]string, 0, 6)
	if ctx.configExists {
		lines = append(lines, renderStatusLine("Config", statusOK, ctx.configPath, colorize))
	} else {
		lines = append(lines, renderStatusLine("Config", statusInfo, "defaults (no file at "+ctx.configPath+")", colorize))
	}

	set, err := cfg.ProfanitySet()
	source := "built-in list"
	if cfg.Filter.ProfanityList != "" {
		source = cfg.Filter.ProfanityList
	}
	if err != nil {
		lines = append(lines, renderStatusLine("Profanity list", statusError, err.Error(), colorize))
	} else {
		lines = append(lines, renderStatusLine("Profanity list", statusOK, fmt.Sprintf("%d words (%s)", set.Len(), source), colorize))
	}

	lines = append(lines,
		renderStatusLine("Padding", statusInfo, strconv.Itoa(cfg.Filter.PadMS)+" ms", colorize),
		renderStatusLine("Lyrics alignment", statusInfo, yesNo(cfg.Alignment.Enabled), colorize),
		renderStatusLine("Models", statusInfo, fmt.Sprintf("whisperx %s, demucs %s", cfg.Transcription.Model, cfg.Separation.Model), colorize),
	)
	format := cfg.Output.Format
	if format == "" {
		format = "same as input"
	}
	kind := statusInfo
	if cfg.Output.Format != "" && !ffmpeg.Supported(cfg.Output.Format) {
		kind = statusError
	}
	lines = append(lines, renderStatusLine("Output format", kind, format, colorize))
	return lines
}

func directoryStatusLine(label, path string, colorize bool) string {
	result := preflight.CheckDirectoryAccess(label, path)
	if result.Passed {
		return renderStatusLine(label, statusOK, result.Detail, colorize)
	}
	return renderStatusLine(label, statusError, result.Detail, colorize)
}
