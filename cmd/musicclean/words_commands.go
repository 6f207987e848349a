package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"musicclean/internal/words"
)

func newWordsCommand(ctx *commandContext) *cobra.Command {
	wordsCmd := &cobra.Command{
		Use:   "words",
		Short: "Inspect the effective profanity list",
	}
	wordsCmd.AddCommand(newWordsListCommand(ctx))
	wordsCmd.AddCommand(newWordsCheckCommand(ctx))
	return wordsCmd
}

func newWordsListCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every word on the list",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			_, set, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}
			list := set.Words()
			if asJSON {
				return writeJSON(cmd, list)
			}
			out := cmd.OutOrStdout()
			for _, w := range list {
				fmt.Fprintln(out, w)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.profanityList, "profanity-list", "l", "", "Profanity word list file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newWordsCheckCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "check WORD...",
		Short: "Report whether words would be muted",
		Long: "Each argument is normalized the way transcribed words are (case,\n" +
			"accents, and punctuation are ignored) before the lookup.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			_, set, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(args))
			for _, raw := range args {
				for _, field := range words.SplitFields(raw) {
					verdict := "clean"
					if set.Contains(field) {
						verdict = "muted"
					}
					normalized := words.Normalize(field)
					if normalized == "" {
						normalized = "-"
					}
					rows = append(rows, []string{field, normalized, verdict})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Word", "Normalized", "Result"},
				rows,
				nil,
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.profanityList, "profanity-list", "l", "", "Profanity word list file")
	return cmd
}
