package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyOutput string

	detailsOutput string
	reapplyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List your recent prompts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(historyOutput); err != nil {
			return err
		}
		a, err := newApp(cfg, logger, false)
		if err != nil {
			return err
		}
		defer a.Close()

		prompts, err := a.executor.History(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if historyLimit > 0 && len(prompts) > historyLimit {
			prompts = prompts[:historyLimit]
		}
		return render(cmd.OutOrStdout(), historyOutput, prompts, func(w io.Writer) { writeHistory(w, prompts) })
	},
}

var detailsCmd = &cobra.Command{
	Use:   "details <promptId>",
	Short: "Show a prompt and its recorded changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(detailsOutput); err != nil {
			return err
		}
		a, err := newApp(cfg, logger, false)
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.executor.Details(cmd.Context(), userID, args[0])
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), detailsOutput, d, func(w io.Writer) { writeDetails(w, d) })
	},
}

var reapplyCmd = &cobra.Command{
	Use:   "reapply <promptId>",
	Short: "Write a prompt's recorded changes to disk again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(reapplyOutput); err != nil {
			return err
		}
		a, err := newApp(cfg, logger, false)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.executor.Reapply(cmd.Context(), userID, args[0])
		if err != nil {
			return err
		}
		if err := render(cmd.OutOrStdout(), reapplyOutput, res, func(w io.Writer) { writeResult(w, res) }); err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("reapply failed with %d error(s)", len(res.Errors))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Maximum number of prompts to list (0 for all)")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", formatText, "Output format: text, json or yaml")
	detailsCmd.Flags().StringVarP(&detailsOutput, "output", "o", formatText, "Output format: text, json or yaml")
	reapplyCmd.Flags().StringVarP(&reapplyOutput, "output", "o", formatText, "Output format: text, json or yaml")
}
