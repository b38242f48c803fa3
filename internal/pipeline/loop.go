package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/forgeline/forgeline/internal/agent"
	"github.com/forgeline/forgeline/internal/config"
	"github.com/forgeline/forgeline/internal/db"
	"github.com/forgeline/forgeline/internal/store"
)

// LoopState is the top-level pipeline state machine.
type LoopState int

const (
	LoopInit LoopState = iota
	LoopRunPhases
	LoopEvalGates
	LoopRetry
	LoopDone
	LoopFailed
)

func (s LoopState) String() string {
	switch s {
	case LoopInit:
		return "init"
	case LoopRunPhases:
		return "run_phases"
	case LoopEvalGates:
		return "eval_gates"
	case LoopRetry:
		return "retry"
	case LoopDone:
		return "done"
	case LoopFailed:
		return "failed"
	}
	return "unknown"
}

// RunSummary is the persisted outcome of one pipeline run.
type RunSummary struct {
	RunID         string         `json:"run_id"`
	Spec          string         `json:"spec"`
	Targets       []string       `json:"targets"`
	Outcome       string         `json:"outcome"` // "success" or "fail"
	FailureReason string         `json:"failure_reason,omitempty"`
	Iterations    int            `json:"iterations"`
	Gates         GatePartition  `json:"gates"`
	Results       []agent.Result `json:"results"`
	StartedAt     string         `json:"started_at"`
	Duration      string         `json:"duration"`
}

// Loop is the top-level pipeline controller: it resolves and runs each
// declared phase in order, then evaluates quality gates and either
// completes, re-runs the phase sequence, or fails.
type Loop struct {
	spec     *config.BuildSpec
	pipeline *config.Pipeline
	agents   map[string]*agent.Descriptor
	retry    *RetryController
	store    *store.Store
	db       *db.DB // nil = no event log
	progress io.Writer
	now      func() time.Time
}

// NewLoop creates a pipeline Loop. The descriptor set must come from a
// validated registry.
func NewLoop(spec *config.BuildSpec, pl *config.Pipeline, descs []*agent.Descriptor, retry *RetryController, st *store.Store) *Loop {
	byID := make(map[string]*agent.Descriptor, len(descs))
	for _, d := range descs {
		byID[d.ID] = d
	}
	l := &Loop{
		spec:     spec,
		pipeline: pl,
		agents:   byID,
		retry:    retry,
		store:    st,
		now:      time.Now,
	}
	retry.SetOnResult(l.recordAttempt)
	return l
}

// SetDB wires the event database (optional).
func (l *Loop) SetDB(database *db.DB) {
	l.db = database
}

// SetProgress sets a writer for live progress output (e.g. os.Stderr).
func (l *Loop) SetProgress(w io.Writer) {
	l.progress = w
	l.retry.SetProgress(w)
}

// SetNow overrides the clock (for testing).
func (l *Loop) SetNow(fn func() time.Time) {
	l.now = fn
}

func (l *Loop) logf(format string, args ...interface{}) {
	if l.progress != nil {
		fmt.Fprintf(l.progress, "→ "+format+"\n", args...)
	}
}

// logEvent writes to the event DB, best-effort.
func (l *Loop) logEvent(ctx *RunContext, event string, phase string, agentID string, attempt int, detail string) {
	if l.db != nil {
		_ = l.db.LogPipelineEvent(ctx.RunID, event, phase, agentID, attempt, detail)
	}
}

// recordAttempt mirrors each attempt into the event DB.
func (l *Loop) recordAttempt(ctx *RunContext, r *agent.Result) {
	if l.db != nil {
		_ = l.db.LogAgentAttempt(ctx.RunID, ctx.Iteration, r.AgentID, r.Attempt,
			r.Success, r.Skipped, int(r.Duration.Milliseconds()), r.LogFile,
			r.QualityGatesSatisfied, r.Error)
	}
}

// Run drives the pipeline to a terminal state and persists a RunSummary.
// The returned summary always describes what happened; the error is non-nil
// only for infrastructure failures (bad references, artifact I/O).
func (l *Loop) Run() (*RunSummary, error) {
	start := l.now()
	ctx := NewRunContext(l.spec, l.store.LogDir())

	l.logf("run %s: spec %q, targets %v", ctx.RunID, l.spec.Name, l.spec.Targets)
	l.logEvent(ctx, "run_started", "", "", 0, fmt.Sprintf("spec=%s", l.spec.Name))

	var failureReason string
	state := LoopInit
	for !l.terminal(state) {
		switch state {
		case LoopInit:
			state = LoopRunPhases

		case LoopRunPhases:
			fatal, err := l.runPhases(ctx)
			if err != nil {
				return nil, err
			}
			if fatal != "" {
				failureReason = fatal
				state = LoopFailed
			} else {
				state = LoopEvalGates
			}

		case LoopEvalGates:
			gates := EvaluateGates(l.spec.QualityGates, ctx.Results())
			switch {
			case gates.Satisfied():
				state = LoopDone
			case l.canRetry(ctx):
				l.logf("gates unsatisfied after iteration %d: %v, retrying phase sequence", ctx.Iteration, gates.Failed)
				l.logEvent(ctx, "gates_unsatisfied", "", "", 0, fmt.Sprintf("failed=%v iteration=%d", gates.Failed, ctx.Iteration))
				state = LoopRetry
			default:
				failureReason = fmt.Sprintf("quality gates unsatisfied after %d iteration(s): %v", ctx.Iteration, gates.Failed)
				state = LoopFailed
			}

		case LoopRetry:
			ctx.Iteration++
			l.logEvent(ctx, "loop_retry", "", "", 0, fmt.Sprintf("iteration=%d", ctx.Iteration))
			state = LoopRunPhases
		}
	}

	summary := &RunSummary{
		RunID:         ctx.RunID,
		Spec:          l.spec.Name,
		Targets:       l.spec.Targets,
		Iterations:    ctx.Iteration,
		Gates:         EvaluateGates(l.spec.QualityGates, ctx.Results()),
		Results:       ctx.Results(),
		StartedAt:     start.UTC().Format(time.RFC3339),
		Duration:      l.now().Sub(start).Round(time.Millisecond).String(),
		FailureReason: failureReason,
	}
	if state == LoopDone {
		summary.Outcome = "success"
		l.logf("run %s: success after %d iteration(s)", ctx.RunID, ctx.Iteration)
		l.logEvent(ctx, "completed", "", "", 0, "")
	} else {
		summary.Outcome = "fail"
		l.logf("run %s: failed: %s", ctx.RunID, failureReason)
		l.logEvent(ctx, "failed", "", "", 0, failureReason)
	}

	if err := l.store.SaveRunSummary(ctx.RunID, summary); err != nil {
		return summary, fmt.Errorf("save run summary: %w", err)
	}
	return summary, nil
}

func (l *Loop) terminal(s LoopState) bool {
	return s == LoopDone || s == LoopFailed
}

// canRetry reports whether an unsatisfied gate pass may trigger another
// full phase sequence.
func (l *Loop) canRetry(ctx *RunContext) bool {
	if !l.pipeline.QualityLoop.Enabled || !l.pipeline.QualityLoop.RetryOnFailure {
		return false
	}
	return ctx.Iteration < l.pipeline.MaxLoopIterations
}

// runPhases executes each declared phase in order, one agent at a time.
// It returns a non-empty reason when a required phase failed, a fatal
// condition that bypasses gate evaluation and any remaining iterations.
func (l *Loop) runPhases(ctx *RunContext) (fatal string, err error) {
	for _, phase := range l.pipeline.Phases {
		l.logf("phase %s (iteration %d)", phase.Name, ctx.Iteration)
		l.logEvent(ctx, "phase_started", phase.Name, "", 0, fmt.Sprintf("iteration=%d", ctx.Iteration))

		resolved, err := Resolve(l.spec.Targets, phase.Agents, l.agents, l.logf)
		if err != nil {
			return "", fmt.Errorf("phase %q: %w", phase.Name, err)
		}
		if len(resolved) == 0 {
			l.logf("phase %s: no agents apply to targets %v, vacuously satisfied", phase.Name, l.spec.Targets)
			continue
		}

		for _, desc := range resolved {
			state := l.retry.Run(ctx, desc)
			if state != StateExhausted {
				continue
			}
			l.logEvent(ctx, "agent_exhausted", phase.Name, desc.ID, desc.MaxAttempts, "")
			if phase.Required {
				reason := fmt.Sprintf("required phase %q failed: agent %s exhausted %d attempt(s)", phase.Name, desc.ID, desc.MaxAttempts)
				l.logf("%s", reason)
				l.logEvent(ctx, "required_phase_failed", phase.Name, desc.ID, desc.MaxAttempts, "")
				return reason, nil
			}
			l.logf("phase %s: agent %s exhausted (phase not required), continuing", phase.Name, desc.ID)
		}
	}
	return "", nil
}
