package cli

import (
	"fmt"

	"github.com/forgeline/forgeline/internal/browser"
	"github.com/forgeline/forgeline/internal/checklist"
	"github.com/spf13/cobra"
)

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Run declarative UI checklists",
}

var checklistRunCmd = &cobra.Command{
	Use:   "run <checklist-file>",
	Short: "Execute a checklist against a browser session",
	Long: `Parses the checklist YAML, opens one browser session, and executes every
checkpoint in order. A failed checkpoint is recorded and the run continues
to the next one. The result artifact (result.json plus screenshots) is
written to a fresh timestamp-named directory under the workspace root.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		driverCmd, _ := cmd.Flags().GetString("driver")
		quiet, _ := cmd.Flags().GetBool("quiet")

		cl, err := checklist.Load(args[0])
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}

		runner := checklist.NewRunner(browser.NewExecDriver(driverCmd), st)
		if !quiet {
			runner.SetProgress(cmd.ErrOrStderr())
		}

		result, err := runner.Run(cl)
		if err != nil {
			return err
		}

		if database, dbErr := openDB(st); dbErr == nil {
			_ = database.LogChecklistRun("", cl.Name, result.Success,
				result.CheckpointsPassed, result.CheckpointsTotal, result.ScreenshotDir)
			database.Close()
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			if err := writeJSON(cmd, result); err != nil {
				return err
			}
		} else {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Checklist %q: %d/%d checkpoints passed\n", cl.Name, result.CheckpointsPassed, result.CheckpointsTotal)
			for _, f := range result.Failures {
				fmt.Fprintf(w, "  FAIL %s: %s\n", f.Checkpoint, f.Error)
			}
			fmt.Fprintf(w, "Artifacts: %s\n", result.ScreenshotDir)
		}

		if !result.Success {
			return fmt.Errorf("checklist failed: %d checkpoint(s)", len(result.Failures))
		}
		return nil
	},
}

func init() {
	checklistRunCmd.Flags().String("driver", "", "Browser automation driver command (default: browserctl)")
	checklistRunCmd.Flags().String("format", "text", "Output format: text or json")
	checklistRunCmd.Flags().Bool("quiet", false, "Suppress live progress output")
	checklistCmd.AddCommand(checklistRunCmd)
}
