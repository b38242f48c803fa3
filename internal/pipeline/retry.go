package pipeline

import (
	"fmt"
	"io"

	"github.com/forgeline/forgeline/internal/agent"
)

// AttemptState is the lifecycle of one agent within a phase execution.
type AttemptState int

const (
	StatePending AttemptState = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateExhausted
)

func (s AttemptState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Terminal reports whether the state ends the agent's retry loop.
func (s AttemptState) Terminal() bool {
	return s == StateSucceeded || s == StateExhausted
}

// nextState computes the transition after one running attempt resolves:
// success ends the loop, failure goes back to pending while attempts remain
// and exhausts otherwise.
func nextState(success bool, attemptsRemain bool) AttemptState {
	switch {
	case success:
		return StateSucceeded
	case attemptsRemain:
		return StatePending
	}
	return StateExhausted
}

// AttemptRunner executes a single attempt of an agent.
type AttemptRunner interface {
	RunAttempt(desc *agent.Descriptor, attempt int) *agent.Result
}

// RetryController runs an agent up to its max_attempts, recording one
// immutable result per attempt into the run context.
type RetryController struct {
	runner   AttemptRunner
	progress io.Writer
	onResult func(ctx *RunContext, r *agent.Result)
}

// NewRetryController creates a RetryController over the given runner.
func NewRetryController(runner AttemptRunner) *RetryController {
	return &RetryController{runner: runner}
}

// SetProgress sets a writer for live progress output.
func (c *RetryController) SetProgress(w io.Writer) {
	c.progress = w
}

// SetOnResult registers a hook called after each recorded attempt.
func (c *RetryController) SetOnResult(fn func(ctx *RunContext, r *agent.Result)) {
	c.onResult = fn
}

func (c *RetryController) logf(format string, args ...interface{}) {
	if c.progress != nil {
		fmt.Fprintf(c.progress, "  → "+format+"\n", args...)
	}
}

// Run drives one agent to a terminal state, returning StateSucceeded or
// StateExhausted.
func (c *RetryController) Run(ctx *RunContext, desc *agent.Descriptor) AttemptState {
	state := StatePending
	for attempt := 1; attempt <= desc.MaxAttempts; attempt++ {
		state = StateRunning
		result := c.runner.RunAttempt(desc, attempt)
		ctx.Record(*result)
		if c.onResult != nil {
			c.onResult(ctx, result)
		}

		state = nextState(result.Success, attempt < desc.MaxAttempts)
		if state == StateSucceeded {
			c.logf("agent %s: succeeded on attempt %d/%d", desc.ID, attempt, desc.MaxAttempts)
			return state
		}
		if state == StatePending {
			c.logf("agent %s: attempt %d/%d failed, retrying", desc.ID, attempt, desc.MaxAttempts)
		}
	}

	c.logf("agent %s: all %d attempts failed, exhausted", desc.ID, desc.MaxAttempts)
	return state
}
