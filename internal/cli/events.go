package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the pipeline event log",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent pipeline events, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, _ := cmd.Flags().GetString("run")
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore()
		if err != nil {
			return err
		}
		database, err := openDB(st)
		if err != nil {
			return err
		}
		defer database.Close()

		events, err := database.RecentEvents(runID, limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No events recorded.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tRUN\tEVENT\tPHASE\tAGENT\tDETAIL")
		for _, e := range events {
			run := e.RunID
			if len(run) > 8 {
				run = run[:8]
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.Timestamp, run, e.Event, e.Phase, e.Agent, e.Detail)
		}
		return w.Flush()
	},
}

var eventsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Aggregate attempt statistics per agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		database, err := openDB(st)
		if err != nil {
			return err
		}
		defer database.Close()

		stats, err := database.AgentStatsAll()
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No attempts recorded.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "AGENT\tATTEMPTS\tSUCCESSES\tAVG MS")
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", s.Agent, s.Attempts, s.Successes, s.AvgDurationMs)
		}
		return w.Flush()
	},
}

func init() {
	eventsListCmd.Flags().String("run", "", "Filter by run ID")
	eventsListCmd.Flags().Int("limit", 50, "Maximum events to show")
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsSummaryCmd)
}
