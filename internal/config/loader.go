package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadSpec reads and parses a build spec from the given YAML file path.
func LoadSpec(path string) (*BuildSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading build spec: %w", err)
	}

	var spec BuildSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing build spec YAML: %w", err)
	}
	return &spec, nil
}

// LoadRegistry reads and parses an agent registry from the given YAML file
// path. After parsing, it applies defaults to agents that don't specify
// their own limits.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry file: %w", err)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parsing registry YAML: %w", err)
	}

	applyDefaults(&reg)
	return &reg, nil
}

// LoadDefaultRegistry searches for a registry in standard locations and loads
// the first one found. Search order: ./forgeline.yaml, ~/.forgeline/config.yaml
func LoadDefaultRegistry() (*Registry, error) {
	candidates := []string{"forgeline.yaml"}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".forgeline", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return LoadRegistry(path)
		}
	}

	return nil, fmt.Errorf("no registry config found (searched: %v)", candidates)
}

// applyDefaults fills in per-agent and pipeline-level defaults.
func applyDefaults(reg *Registry) {
	for i := range reg.Agents {
		a := &reg.Agents[i]
		if a.MaxAttempts == 0 {
			a.MaxAttempts = 1
		}
		if a.TimeoutSeconds == 0 {
			a.TimeoutSeconds = 300
		}
	}

	if reg.Pipeline.MaxLoopIterations == 0 {
		reg.Pipeline.MaxLoopIterations = 3
	}
	if reg.Pipeline.Logging.LogDirectory == "" {
		reg.Pipeline.Logging.LogDirectory = "logs"
	}
}
