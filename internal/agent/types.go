package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/forgeline/forgeline/internal/config"
)

// Kind classifies an agent by the role its ID declares. The set is closed:
// every registered agent resolves to exactly one kind.
type Kind int

const (
	KindScaffolder Kind = iota
	KindImplementer
	KindIntegrator
	KindPlanner
	KindVerifier
	KindReviewer
	KindDeployer
)

func (k Kind) String() string {
	switch k {
	case KindScaffolder:
		return "scaffolder"
	case KindImplementer:
		return "implementer"
	case KindIntegrator:
		return "integrator"
	case KindPlanner:
		return "planner"
	case KindVerifier:
		return "verifier"
	case KindReviewer:
		return "reviewer"
	case KindDeployer:
		return "deployer"
	}
	return "unknown"
}

// implementerPrefix marks per-target implementer agents: "implementer-web",
// "implementer-backend", "implementer-mobile", ...
const implementerPrefix = "implementer-"

// KindOf derives the agent kind from its ID. The target of a per-target
// implementer is the ID suffix after "implementer-".
func KindOf(id string) (Kind, error) {
	if strings.HasPrefix(id, implementerPrefix) && len(id) > len(implementerPrefix) {
		return KindImplementer, nil
	}
	switch id {
	case "scaffolder":
		return KindScaffolder, nil
	case "integrator":
		return KindIntegrator, nil
	case "planner":
		return KindPlanner, nil
	case "verifier":
		return KindVerifier, nil
	case "reviewer":
		return KindReviewer, nil
	case "deployer":
		return KindDeployer, nil
	}
	return 0, fmt.Errorf("agent %q does not match any known kind", id)
}

// ImplementerTarget returns the build target a per-target implementer serves,
// or "" if the ID is not an implementer.
func ImplementerTarget(id string) string {
	if strings.HasPrefix(id, implementerPrefix) {
		return id[len(implementerPrefix):]
	}
	return ""
}

// Descriptor is the resolved, validated form of a registry agent entry.
type Descriptor struct {
	ID             string
	Kind           Kind
	Phase          string
	Preconditions  []string
	Postconditions []string
	QualityGates   []string
	MaxAttempts    int
	Timeout        time.Duration
	Command        string
	Checklist      string
}

// FromConfig converts registry agents into descriptors, resolving each
// agent's kind. The registry must already be validated.
func FromConfig(reg *config.Registry) ([]*Descriptor, error) {
	descs := make([]*Descriptor, 0, len(reg.Agents))
	for _, a := range reg.Agents {
		kind, err := KindOf(a.ID)
		if err != nil {
			return nil, err
		}
		descs = append(descs, &Descriptor{
			ID:             a.ID,
			Kind:           kind,
			Phase:          a.Phase,
			Preconditions:  a.Preconditions,
			Postconditions: a.Postconditions,
			QualityGates:   a.QualityGates,
			MaxAttempts:    a.MaxAttempts,
			Timeout:        time.Duration(a.TimeoutSeconds) * time.Second,
			Command:        a.Command,
			Checklist:      a.Checklist,
		})
	}
	return descs, nil
}

// Invocation is the closed variant of ways an agent can be invoked. Agent
// kinds that are not yet wired to a concrete process resolve to
// Unimplemented, which the executor logs explicitly instead of silently
// running an empty command.
type Invocation interface {
	isInvocation()
}

// CommandInvocation runs an external process via the shell.
type CommandInvocation struct {
	Command string
}

// ChecklistInvocation runs a declarative UI checklist in-process and reports
// its outcome as the agent result.
type ChecklistInvocation struct {
	Path string
}

// UnimplementedInvocation marks an agent kind with no wired execution path.
type UnimplementedInvocation struct {
	Kind Kind
}

func (CommandInvocation) isInvocation()       {}
func (ChecklistInvocation) isInvocation()     {}
func (UnimplementedInvocation) isInvocation() {}

// Invoke resolves how a descriptor should be executed. Scaffolders and
// implementers run their configured command; verifiers run their checklist.
// Planner, integrator, reviewer, and deployer agents have no execution path
// wired yet, and a command-kind agent without a command is in the same
// position.
func (d *Descriptor) Invoke() Invocation {
	switch d.Kind {
	case KindScaffolder, KindImplementer:
		if d.Command == "" {
			return UnimplementedInvocation{Kind: d.Kind}
		}
		return CommandInvocation{Command: d.Command}
	case KindVerifier:
		if d.Checklist == "" {
			return UnimplementedInvocation{Kind: d.Kind}
		}
		return ChecklistInvocation{Path: d.Checklist}
	case KindPlanner, KindIntegrator, KindReviewer, KindDeployer:
		return UnimplementedInvocation{Kind: d.Kind}
	}
	return UnimplementedInvocation{Kind: d.Kind}
}

// Result records one attempt of one agent. Results are immutable once
// created and are only ever appended to a run's history.
type Result struct {
	AgentID               string        `json:"agent_id"`
	Attempt               int           `json:"attempt"`
	Success               bool          `json:"success"`
	Skipped               bool          `json:"skipped,omitempty"`
	Duration              time.Duration `json:"duration"`
	LogFile               string        `json:"log_file,omitempty"`
	QualityGatesSatisfied []string      `json:"quality_gates_satisfied,omitempty"`
	Error                 string        `json:"error,omitempty"`
}
