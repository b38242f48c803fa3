package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/forgeline/forgeline/internal/agent"
	"github.com/forgeline/forgeline/internal/browser"
	"github.com/forgeline/forgeline/internal/checklist"
	"github.com/forgeline/forgeline/internal/db"
	"github.com/forgeline/forgeline/internal/pipeline"
	"github.com/forgeline/forgeline/internal/store"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline for a build spec",
	Long: `Loads the build spec and agent registry, then drives the pipeline loop:
each declared phase runs in order (agents filtered to the active targets,
each retried up to its max_attempts), and after every full pass the
declared quality gates are evaluated. Unsatisfied gates re-run the phase
sequence up to max_loop_iterations before the run fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		specPath, _ := cmd.Flags().GetString("spec")
		registryPath, _ := cmd.Flags().GetString("registry")
		workdir, _ := cmd.Flags().GetString("workdir")
		driverCmd, _ := cmd.Flags().GetString("driver")
		quiet, _ := cmd.Flags().GetBool("quiet")

		spec, reg, err := loadConfigs(specPath, registryPath)
		if err != nil {
			return err
		}

		descs, err := agent.FromConfig(reg)
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}

		database, err := openDB(st)
		if err != nil {
			return fmt.Errorf("open event db: %w", err)
		}
		defer database.Close()

		logDir := resolveLogDir(st, reg.Pipeline.Logging.LogDirectory)
		executor := agent.NewExecutor(&agent.ExecRunner{}, logDir, workdir)
		executor.SetVerifier(newVerifier(st, database, driverCmd, quiet))

		retry := pipeline.NewRetryController(executor)
		loop := pipeline.NewLoop(spec, &reg.Pipeline, descs, retry, st)
		loop.SetDB(database)
		if !quiet {
			loop.SetProgress(cmd.ErrOrStderr())
			executor.SetProgress(cmd.ErrOrStderr())
		}

		summary, err := loop.Run()
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			if err := writeJSON(cmd, summary); err != nil {
				return err
			}
		} else {
			printSummary(cmd, summary)
		}

		if summary.Outcome != "success" {
			return fmt.Errorf("pipeline failed: %s", summary.FailureReason)
		}
		return nil
	},
}

// newVerifier wires the checklist engine for verifier-kind agents. The
// checklist outcome (including its artifact location) is reported back as
// the agent's attempt log.
func newVerifier(st *store.Store, database *db.DB, driverCmd string, quiet bool) agent.VerifierFunc {
	return func(path string) (bool, string, error) {
		cl, err := checklist.Load(path)
		if err != nil {
			return false, "", err
		}

		runner := checklist.NewRunner(browser.NewExecDriver(driverCmd), st)
		if !quiet {
			runner.SetProgress(os.Stderr)
		}

		result, err := runner.Run(cl)
		if err != nil {
			return false, "", err
		}

		_ = database.LogChecklistRun("", cl.Name, result.Success,
			result.CheckpointsPassed, result.CheckpointsTotal, result.ScreenshotDir)

		detail, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return result.Success, "", nil
		}
		return result.Success, string(detail) + "\n", nil
	}
}

func printSummary(cmd *cobra.Command, summary *pipeline.RunSummary) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s: %s\n", summary.RunID, summary.Outcome)
	fmt.Fprintf(w, "  Spec:       %s (targets: %v)\n", summary.Spec, summary.Targets)
	fmt.Fprintf(w, "  Iterations: %d\n", summary.Iterations)
	fmt.Fprintf(w, "  Duration:   %s\n", summary.Duration)
	if len(summary.Gates.Passed) > 0 {
		fmt.Fprintf(w, "  Gates passed: %v\n", summary.Gates.Passed)
	}
	if len(summary.Gates.Failed) > 0 {
		fmt.Fprintf(w, "  Gates failed: %v\n", summary.Gates.Failed)
	}
	if summary.FailureReason != "" {
		fmt.Fprintf(w, "  Reason:     %s\n", summary.FailureReason)
	}
	fmt.Fprintf(w, "  Attempts:\n")
	for _, r := range summary.Results {
		status := "FAIL"
		if r.Success {
			status = "PASS"
		}
		if r.Skipped {
			status = "SKIP"
		}
		fmt.Fprintf(w, "    %s attempt %d: %s (%s)\n", r.AgentID, r.Attempt, status, r.Duration.Round(time.Millisecond))
	}
}

func init() {
	runCmd.Flags().String("spec", "build.yaml", "Path to the build spec YAML")
	runCmd.Flags().String("registry", "", "Path to the agent registry YAML (default: forgeline.yaml, ~/.forgeline/config.yaml)")
	runCmd.Flags().String("workdir", "", "Working directory for agent commands")
	runCmd.Flags().String("driver", "", "Browser automation driver command for verifier checklists")
	runCmd.Flags().String("format", "text", "Output format: text or json")
	runCmd.Flags().Bool("quiet", false, "Suppress live progress output")
}
