package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"musicclean/internal/history"
	"musicclean/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect previous runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

type runJSON struct {
	ID                string          `json:"id"`
	InputFile         string          `json:"input_file"`
	OutputFile        string          `json:"output_file,omitempty"`
	Mode              string          `json:"mode"`
	Status            string          `json:"status"`
	StartedAt         time.Time       `json:"started_at"`
	FinishedAt        time.Time       `json:"finished_at"`
	WordCount         int             `json:"word_count"`
	MatchCount        int             `json:"match_count"`
	UndetectableCount int             `json:"undetectable_count"`
	MutedSeconds      float64         `json:"muted_seconds"`
	AlignmentNote     string          `json:"alignment_note,omitempty"`
	ErrorMessage      string          `json:"error,omitempty"`
	Matches           []history.Match `json:"matches,omitempty"`
}

func toRunJSON(run history.Run, matches []history.Match) runJSON {
	return runJSON{
		ID:                run.ID,
		InputFile:         run.InputFile,
		OutputFile:        run.OutputFile,
		Mode:              string(run.Mode),
		Status:            string(run.Status),
		StartedAt:         run.StartedAt,
		FinishedAt:        run.FinishedAt,
		WordCount:         run.WordCount,
		MatchCount:        run.MatchCount,
		UndetectableCount: run.UndetectableCount,
		MutedSeconds:      run.MutedSeconds,
		AlignmentNote:     run.AlignmentNote,
		ErrorMessage:      run.ErrorMessage,
		Matches:           matches,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				payload := make([]runJSON, 0, len(runs))
				for _, run := range runs {
					payload = append(payload, toRunJSON(run, nil))
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					humanize.Time(run.StartedAt),
					string(run.Mode),
					string(run.Status),
					strconv.Itoa(run.MatchCount),
					textutil.Truncate(filepath.Base(run.InputFile), 40),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Started", "Mode", "Status", "Matches", "File"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show one run and the words it matched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.FindByPrefix(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %q not found", strings.TrimSpace(args[0]))
			}
			matches, err := store.Matches(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, toRunJSON(*run, matches))
			}

			out := cmd.OutOrStdout()
			pairs := [][2]string{
				{"ID", run.ID},
				{"Input", run.InputFile},
				{"Mode", string(run.Mode)},
				{"Status", string(run.Status)},
				{"Started", run.StartedAt.Local().Format(time.DateTime)},
				{"Duration", run.Duration().Round(time.Millisecond).String()},
				{"Words", strconv.Itoa(run.WordCount)},
				{"Matches", strconv.Itoa(run.MatchCount)},
				{"Not heard", strconv.Itoa(run.UndetectableCount)},
				{"Muted", fmt.Sprintf("%.2fs", run.MutedSeconds)},
			}
			if run.OutputFile != "" {
				pairs = append(pairs, [2]string{"Output", run.OutputFile})
			}
			if run.AlignmentNote != "" {
				pairs = append(pairs, [2]string{"Notes", run.AlignmentNote})
			}
			if run.ErrorMessage != "" {
				pairs = append(pairs, [2]string{"Error", run.ErrorMessage})
			}
			fmt.Fprintln(out, renderKeyValues(pairs))

			if len(matches) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(matches))
			for i, m := range matches {
				when := "not heard"
				if m.Timed {
					when = fmt.Sprintf("%s-%s", formatSeconds(m.Start), formatSeconds(m.End))
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), when, m.Word, m.Context})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Time", "Word", "Context"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than a given age",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age cutoff (e.g. 720h)")
	return cmd
}
