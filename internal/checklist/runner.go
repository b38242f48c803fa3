package checklist

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/forgeline/forgeline/internal/browser"
	"github.com/forgeline/forgeline/internal/store"
)

// Runner executes a full checklist: one session per run, checkpoints in
// order, and a durable RunResult artifact in a fresh timestamp-named
// directory.
type Runner struct {
	driver   browser.Driver
	store    *store.Store
	progress io.Writer
	now      func() time.Time
	sleep    func(time.Duration)
}

// NewRunner creates a checklist Runner.
func NewRunner(driver browser.Driver, st *store.Store) *Runner {
	return &Runner{
		driver: driver,
		store:  st,
		now:    time.Now,
	}
}

// SetProgress sets a writer for live progress output (e.g. os.Stderr).
func (r *Runner) SetProgress(w io.Writer) {
	r.progress = w
}

// SetNow overrides the clock (for testing).
func (r *Runner) SetNow(fn func() time.Time) {
	r.now = fn
}

// SetSleep overrides the action retry delay function (for testing).
func (r *Runner) SetSleep(fn func(time.Duration)) {
	r.sleep = fn
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.progress != nil {
		fmt.Fprintf(r.progress, "  → "+format+"\n", args...)
	}
}

// Run executes the checklist and writes result.json into the run directory.
// A failed checkpoint is recorded and the run continues; only session or
// artifact errors abort the run itself. The session is released on every
// exit path.
func (r *Runner) Run(cl *Checklist) (*RunResult, error) {
	start := r.now()

	runDir, err := r.store.NewChecklistRunDir(start)
	if err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	session, err := r.driver.Open()
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	r.logf("checklist %q: %d checkpoints, artifacts in %s", cl.Name, len(cl.Checkpoints), runDir)

	result := &RunResult{
		CheckpointsTotal: len(cl.Checkpoints),
		Failures:         []Failure{},
		ScreenshotDir:    runDir,
		Timestamp:        start.UTC().Format(time.RFC3339),
	}

	executor := NewActionExecutor(session, cl.BaseURL, runDir)
	executor.SetProgress(r.progress)
	if r.sleep != nil {
		executor.SetSleep(r.sleep)
	}

	for _, cp := range cl.Checkpoints {
		if err := r.runCheckpoint(executor, cp); err != nil {
			r.logf("checkpoint %s: FAIL (%v)", cp.ID, err)
			result.Failures = append(result.Failures, Failure{
				Checkpoint: cp.ID,
				Error:      err.Error(),
			})
			continue
		}
		r.logf("checkpoint %s: PASS", cp.ID)
		result.CheckpointsPassed++
	}

	result.Success = len(result.Failures) == 0

	if err := store.WriteJSON(filepath.Join(runDir, "result.json"), result); err != nil {
		return nil, fmt.Errorf("write result.json: %w", err)
	}
	return result, nil
}

// runCheckpoint executes a checkpoint's actions in order. The first action
// to exhaust its retries fails the checkpoint and truncates the remaining
// actions in this checkpoint only.
func (r *Runner) runCheckpoint(executor *ActionExecutor, cp Checkpoint) error {
	for i, action := range cp.Actions {
		if err := executor.Run(action); err != nil {
			return fmt.Errorf("action %d (%s): %w", i+1, action.Type, err)
		}
	}
	return nil
}
