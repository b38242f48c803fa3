package pipeline

import "github.com/forgeline/forgeline/internal/agent"

// GatePartition splits the required gates of a run into passed and failed,
// preserving the spec's declared order.
type GatePartition struct {
	Passed []string `json:"passed"`
	Failed []string `json:"failed"`
}

// Satisfied reports whether every required gate passed.
func (p GatePartition) Satisfied() bool {
	return len(p.Failed) == 0
}

// EvaluateGates partitions the required gates against the run's full result
// history. A gate is passed iff at least one successful result lists it in
// its satisfied set. Evaluation happens only after a full phase pass, never
// per phase.
func EvaluateGates(required []string, results []agent.Result) GatePartition {
	satisfied := make(map[string]bool)
	for _, r := range results {
		if !r.Success {
			continue
		}
		for _, g := range r.QualityGatesSatisfied {
			satisfied[g] = true
		}
	}

	part := GatePartition{Passed: []string{}, Failed: []string{}}
	for _, g := range required {
		if satisfied[g] {
			part.Passed = append(part.Passed, g)
		} else {
			part.Failed = append(part.Failed, g)
		}
	}
	return part
}
