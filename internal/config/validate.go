package config

import "fmt"

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateRegistry checks a Registry for structural and semantic errors.
// It returns a slice of all validation errors found (empty if valid).
func ValidateRegistry(reg *Registry) []ValidationError {
	var errs []ValidationError

	if len(reg.Agents) == 0 {
		errs = append(errs, ValidationError{Field: "agents", Message: "at least one agent is required"})
	}

	agentIDs := make(map[string]bool)
	for i, a := range reg.Agents {
		prefix := fmt.Sprintf("agents[%d]", i)
		if a.ID == "" {
			errs = append(errs, ValidationError{Field: prefix + ".id", Message: "is required"})
			continue
		}
		if agentIDs[a.ID] {
			errs = append(errs, ValidationError{
				Field:   prefix + ".id",
				Message: fmt.Sprintf("duplicate agent ID %q", a.ID),
			})
		}
		agentIDs[a.ID] = true

		if !knownPhases[a.Phase] {
			errs = append(errs, ValidationError{
				Field:   prefix + ".phase",
				Message: fmt.Sprintf("unrecognized phase %q", a.Phase),
			})
		}
		if a.MaxAttempts < 1 {
			errs = append(errs, ValidationError{
				Field:   prefix + ".max_attempts",
				Message: "must be at least 1",
			})
		}
		if a.TimeoutSeconds <= 0 {
			errs = append(errs, ValidationError{
				Field:   prefix + ".timeout_seconds",
				Message: "must be positive",
			})
		}
	}

	if reg.Pipeline.MaxLoopIterations < 1 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.max_loop_iterations",
			Message: "must be at least 1",
		})
	}
	if len(reg.Pipeline.Phases) == 0 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.phases",
			Message: "at least one phase is required",
		})
	}

	phaseNames := make(map[string]bool)
	for i, p := range reg.Pipeline.Phases {
		prefix := fmt.Sprintf("pipeline.phases[%d]", i)
		if p.Name == "" {
			errs = append(errs, ValidationError{Field: prefix + ".name", Message: "is required"})
			continue
		}
		if phaseNames[p.Name] {
			errs = append(errs, ValidationError{
				Field:   prefix + ".name",
				Message: fmt.Sprintf("duplicate phase %q", p.Name),
			})
		}
		phaseNames[p.Name] = true

		for _, id := range p.Agents {
			if !agentIDs[id] {
				errs = append(errs, ValidationError{
					Field:   prefix + ".agents",
					Message: fmt.Sprintf("references undefined agent %q", id),
				})
			}
		}
	}

	return errs
}

// ValidateSpec checks a BuildSpec against a Registry. Every quality gate the
// spec requires must be producible by at least one registered agent,
// otherwise the configuration is invalid and nothing may run.
func ValidateSpec(spec *BuildSpec, reg *Registry) []ValidationError {
	var errs []ValidationError

	if spec.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "is required"})
	}
	if len(spec.Targets) == 0 {
		errs = append(errs, ValidationError{Field: "targets", Message: "at least one target is required"})
	}

	seen := make(map[string]bool)
	for _, t := range spec.Targets {
		if seen[t] {
			errs = append(errs, ValidationError{
				Field:   "targets",
				Message: fmt.Sprintf("duplicate target %q", t),
			})
		}
		seen[t] = true
	}

	producible := make(map[string]bool)
	for _, a := range reg.Agents {
		for _, g := range a.QualityGates {
			producible[g] = true
		}
	}
	for _, gate := range spec.QualityGates {
		if !producible[gate] {
			errs = append(errs, ValidationError{
				Field:   "quality_gates",
				Message: fmt.Sprintf("gate %q is not producible by any registered agent", gate),
			})
		}
	}

	return errs
}
