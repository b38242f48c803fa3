package config

// BuildSpec is the declarative description of what is being built, parsed
// from the build spec YAML. Fields not listed here are ignored.
type BuildSpec struct {
	Name         string   `yaml:"name"`
	Targets      []string `yaml:"targets"`
	QualityGates []string `yaml:"quality_gates"`
}

// Registry is the top-level agent registry configuration.
type Registry struct {
	Agents   []Agent  `yaml:"agents"`
	Pipeline Pipeline `yaml:"pipeline"`
}

// Agent describes one external build/test/review step: what phase it belongs
// to, which quality gates it can satisfy, and its retry/timeout limits.
// Preconditions and postconditions are descriptive only; the engine does not
// enforce them.
type Agent struct {
	ID             string   `yaml:"id"`
	Phase          string   `yaml:"phase"`
	Preconditions  []string `yaml:"preconditions"`
	Postconditions []string `yaml:"postconditions"`
	QualityGates   []string `yaml:"quality_gates"`
	MaxAttempts    int      `yaml:"max_attempts"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	Command        string   `yaml:"command"`
	Checklist      string   `yaml:"checklist"`
}

// Pipeline defines the phase sequence and the quality-gate retry policy.
type Pipeline struct {
	MaxLoopIterations int         `yaml:"max_loop_iterations"`
	Phases            []Phase     `yaml:"phases"`
	QualityLoop       QualityLoop `yaml:"quality_loop"`
	Logging           Logging     `yaml:"logging"`
}

// Phase is a named, ordered group of agents executed together within one
// pipeline pass.
type Phase struct {
	Name     string   `yaml:"name"`
	Agents   []string `yaml:"agents"`
	Required bool     `yaml:"required"`
}

// QualityLoop controls whether unsatisfied gates trigger a re-run of the
// full phase sequence.
type QualityLoop struct {
	Enabled        bool `yaml:"enabled"`
	RetryOnFailure bool `yaml:"retry_on_failure"`
}

// Logging holds log artifact settings.
type Logging struct {
	LogDirectory string `yaml:"log_directory"`
}

// knownPhases is the closed set of phases an agent may belong to.
var knownPhases = map[string]bool{
	"plan":   true,
	"build":  true,
	"verify": true,
	"review": true,
	"deploy": true,
}
