package checklist

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads, parses, and validates a checklist from the given YAML file
// path. A checklist that fails validation is rejected before anything runs.
func Load(path string) (*Checklist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading checklist: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates checklist YAML.
func Parse(data []byte) (*Checklist, error) {
	var cl Checklist
	if err := yaml.Unmarshal(data, &cl); err != nil {
		return nil, fmt.Errorf("parsing checklist YAML: %w", err)
	}
	if err := validate(&cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

func validate(cl *Checklist) error {
	if cl.Name == "" {
		return fmt.Errorf("checklist name is required")
	}
	if cl.BaseURL == "" {
		return fmt.Errorf("checklist base_url is required")
	}
	if len(cl.Checkpoints) == 0 {
		return fmt.Errorf("checklist must have at least one checkpoint")
	}

	seen := make(map[string]bool)
	for i, cp := range cl.Checkpoints {
		if cp.ID == "" {
			return fmt.Errorf("checkpoints[%d]: id is required", i)
		}
		if seen[cp.ID] {
			return fmt.Errorf("checkpoints[%d]: duplicate id %q", i, cp.ID)
		}
		seen[cp.ID] = true

		if len(cp.Actions) == 0 {
			return fmt.Errorf("checkpoint %q: at least one action is required", cp.ID)
		}
		for j, a := range cp.Actions {
			if err := validateAction(a); err != nil {
				return fmt.Errorf("checkpoint %q action %d: %w", cp.ID, j+1, err)
			}
		}
	}
	return nil
}

// validateAction checks that an action carries the fields its type needs.
func validateAction(a Action) error {
	if a.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}

	switch a.Type {
	case ActionNavigate:
		// Path is optional: empty means the base URL itself.
		return nil
	case ActionClick, ActionWaitFor, ActionHover:
		if a.Selector == "" {
			return fmt.Errorf("%s requires a selector", a.Type)
		}
		return nil
	case ActionTypeText:
		if a.Selector == "" {
			return fmt.Errorf("type requires a selector")
		}
		if a.Text == "" {
			return fmt.Errorf("type requires text")
		}
		return nil
	case ActionSelect:
		if a.Selector == "" {
			return fmt.Errorf("select requires a selector")
		}
		if a.Value == "" {
			return fmt.Errorf("select requires a value")
		}
		return nil
	case ActionAssertText:
		if a.Selector == "" {
			return fmt.Errorf("assert_text requires a selector")
		}
		if a.Text == "" {
			return fmt.Errorf("assert_text requires expected text")
		}
		return nil
	case ActionAssertURL:
		if a.URLContains == "" {
			return fmt.Errorf("assert_url requires url_contains")
		}
		return nil
	case ActionScreenshot:
		if a.Name == "" {
			return fmt.Errorf("screenshot requires a name")
		}
		return nil
	case "":
		return fmt.Errorf("action type is required")
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}
