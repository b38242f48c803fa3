package pipeline

import (
	"github.com/forgeline/forgeline/internal/agent"
	"github.com/forgeline/forgeline/internal/config"
	"github.com/google/uuid"
)

// RunContext carries the state of one pipeline run. It is threaded
// explicitly through every call; nothing about a run lives in package
// state. The results history is append-only: a recorded result is never
// mutated or removed.
type RunContext struct {
	RunID     string
	Spec      *config.BuildSpec
	Iteration int
	LogDir    string

	results []agent.Result
}

// NewRunContext creates the context for a fresh pipeline run.
func NewRunContext(spec *config.BuildSpec, logDir string) *RunContext {
	return &RunContext{
		RunID:     uuid.NewString(),
		Spec:      spec,
		Iteration: 1,
		LogDir:    logDir,
	}
}

// Record appends one immutable result to the run's history.
func (c *RunContext) Record(r agent.Result) {
	c.results = append(c.results, r)
}

// Results returns the full result history for this run, in recording order.
func (c *RunContext) Results() []agent.Result {
	return c.results
}
