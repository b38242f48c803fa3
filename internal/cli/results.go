package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/forgeline/forgeline/internal/pipeline"
	"github.com/spf13/cobra"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect persisted pipeline run summaries",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all recorded pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		ids, err := st.ListRunIDs()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSPEC\tOUTCOME\tITERATIONS\tSTARTED")
		for _, id := range ids {
			var s pipeline.RunSummary
			if err := st.GetRunSummary(id, &s); err != nil {
				continue // skip broken entries
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", s.RunID, s.Spec, s.Outcome, s.Iterations, s.StartedAt)
		}
		return w.Flush()
	},
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run's full summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		var s pipeline.RunSummary
		if err := st.GetRunSummary(args[0], &s); err != nil {
			return fmt.Errorf("run %s not found: %w", args[0], err)
		}
		return writeJSON(cmd, &s)
	},
}

func init() {
	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)
}
