package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "forgeline",
	Short: "Gated, phase-sequenced build pipeline runner",
	Long: `forgeline runs a multi-stage build pipeline (plan → build → verify →
review → deploy) by sequencing external agents and evaluating declared
quality gates between passes, and executes declarative UI checklists
against a browser automation driver.

Artifacts (agent logs, run summaries, checklist results) live under the
workspace root (.forgeline/ by default, relocatable via FORGELINE_ROOT).`,

	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(checklistCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(serveCmd)
}
