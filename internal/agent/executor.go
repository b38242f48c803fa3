package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, dir string, command string) (stdout string, stderr string, exitCode int, err error)
}

// ExecRunner implements CommandRunner by shelling out.
type ExecRunner struct{}

func (e *ExecRunner) Run(ctx context.Context, dir string, command string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return stdoutBuf.String(), stderrBuf.String(), -1, fmt.Errorf("exec: %w", err)
		}
	}
	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}

// VerifierFunc runs a UI checklist and reports whether it passed. It is
// injected so the executor stays decoupled from the checklist engine.
type VerifierFunc func(path string) (passed bool, detail string, err error)

// Executor runs one agent attempt: invoke the external process (or checklist)
// with a hard deadline and capture its combined output to a log artifact.
type Executor struct {
	cmd      CommandRunner
	logDir   string
	workdir  string
	verifier VerifierFunc
	progress io.Writer // live progress output; nil = silent
	now      func() time.Time
}

// NewExecutor creates an Executor writing log artifacts to logDir and running
// commands in workdir ("" = current directory).
func NewExecutor(cmd CommandRunner, logDir string, workdir string) *Executor {
	return &Executor{
		cmd:     cmd,
		logDir:  logDir,
		workdir: workdir,
		now:     time.Now,
	}
}

// SetVerifier wires the checklist engine used for verifier-kind agents.
func (e *Executor) SetVerifier(fn VerifierFunc) {
	e.verifier = fn
}

// SetProgress sets a writer for live progress output (e.g. os.Stderr).
func (e *Executor) SetProgress(w io.Writer) {
	e.progress = w
}

// SetNow overrides the clock (for testing).
func (e *Executor) SetNow(fn func() time.Time) {
	e.now = fn
}

// logf prints a progress line if a progress writer is configured.
func (e *Executor) logf(format string, args ...interface{}) {
	if e.progress != nil {
		fmt.Fprintf(e.progress, "  → "+format+"\n", args...)
	}
}

// RunAttempt executes one attempt of the given agent. It never returns an
// error: every outcome, including a timed-out or failed process, becomes a
// Result. A timeout is classified exactly like a non-zero exit.
func (e *Executor) RunAttempt(desc *Descriptor, attempt int) *Result {
	start := e.now()
	result := &Result{
		AgentID: desc.ID,
		Attempt: attempt,
	}

	switch inv := desc.Invoke().(type) {
	case CommandInvocation:
		e.runCommand(desc, inv, result)
	case ChecklistInvocation:
		e.runChecklist(desc, inv, result)
	case UnimplementedInvocation:
		// Not yet wired: succeed without claiming any quality gates so the
		// phase passes but gates bound only to this kind stay unsatisfied.
		e.logf("agent %s: kind %s not yet wired, skipping", desc.ID, inv.Kind)
		result.Success = true
		result.Skipped = true
		result.LogFile = e.writeLog(desc, fmt.Sprintf("agent kind %s is not yet wired; invocation skipped\n", inv.Kind))
	}

	result.Duration = e.now().Sub(start)
	return result
}

// runCommand invokes the external process with the descriptor's timeout as a
// hard deadline.
func (e *Executor) runCommand(desc *Descriptor, inv CommandInvocation, result *Result) {
	ctx, cancel := context.WithTimeout(context.Background(), desc.Timeout)
	defer cancel()

	e.logf("agent %s attempt %d: running %q (timeout %s)", desc.ID, result.Attempt, inv.Command, desc.Timeout)
	stdout, stderr, exitCode, err := e.cmd.Run(ctx, e.workdir, inv.Command)

	output := combineOutput(stdout, stderr)
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		result.Error = fmt.Sprintf("timeout after %s", desc.Timeout)
		result.LogFile = e.writeLog(desc, output+"\n"+result.Error+"\n")
	case err != nil:
		result.Error = err.Error()
		result.LogFile = e.writeLog(desc, output+"\n"+result.Error+"\n")
	case exitCode != 0:
		result.Error = fmt.Sprintf("exit code %d", exitCode)
		result.LogFile = e.writeLog(desc, output)
	default:
		result.Success = true
		result.QualityGatesSatisfied = desc.QualityGates
		result.LogFile = e.writeLog(desc, output)
	}
}

// runChecklist executes the verifier's UI checklist in-process.
func (e *Executor) runChecklist(desc *Descriptor, inv ChecklistInvocation, result *Result) {
	if e.verifier == nil {
		result.Error = "no checklist engine wired"
		result.LogFile = e.writeLog(desc, result.Error+"\n")
		return
	}

	e.logf("agent %s attempt %d: running checklist %s", desc.ID, result.Attempt, inv.Path)
	passed, detail, err := e.verifier(inv.Path)
	if err != nil {
		result.Error = err.Error()
		result.LogFile = e.writeLog(desc, detail+"\n"+result.Error+"\n")
		return
	}

	result.LogFile = e.writeLog(desc, detail)
	if passed {
		result.Success = true
		result.QualityGatesSatisfied = desc.QualityGates
	} else {
		result.Error = "checklist failed"
	}
}

// writeLog captures output to a freshly named log file. Naming is
// collision-free: agent ID plus timestamp. Best-effort; a failed write
// never fails the attempt.
func (e *Executor) writeLog(desc *Descriptor, content string) string {
	if e.logDir == "" {
		return ""
	}
	if err := os.MkdirAll(e.logDir, 0o755); err != nil {
		return ""
	}

	name := fmt.Sprintf("%s-%s.log", desc.ID, e.now().UTC().Format("2006-01-02T15-04-05.000Z"))
	path := filepath.Join(e.logDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return ""
	}
	return path
}

func combineOutput(stdout, stderr string) string {
	switch {
	case stdout == "":
		return stderr
	case stderr == "":
		return stdout
	}
	return stdout + "\n" + stderr
}
