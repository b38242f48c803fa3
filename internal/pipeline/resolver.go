package pipeline

import (
	"fmt"

	"github.com/forgeline/forgeline/internal/agent"
)

// Resolve filters a phase's declared agent list down to the descriptors
// relevant to the active target set: a per-target implementer is excluded
// when its target wasn't requested, and the cross-target integrator is
// excluded when fewer than two targets are active. An empty result is not
// an error; the phase is vacuously satisfied.
func Resolve(targets []string, ids []string, agents map[string]*agent.Descriptor, logf func(format string, args ...interface{})) ([]*agent.Descriptor, error) {
	active := make(map[string]bool, len(targets))
	for _, t := range targets {
		active[t] = true
	}

	var resolved []*agent.Descriptor
	for _, id := range ids {
		desc, ok := agents[id]
		if !ok {
			return nil, fmt.Errorf("phase references unknown agent %q", id)
		}

		switch desc.Kind {
		case agent.KindImplementer:
			target := agent.ImplementerTarget(id)
			if !active[target] {
				logf("agent %s: target %q not in build targets, excluded", id, target)
				continue
			}
		case agent.KindIntegrator:
			if len(targets) < 2 {
				logf("agent %s: fewer than two targets active, excluded", id)
				continue
			}
		}
		resolved = append(resolved, desc)
	}
	return resolved, nil
}
