package checklist

// Checklist is a declarative UI-verification script: an ordered list of
// checkpoints executed against one browser session.
type Checklist struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description" json:"description,omitempty"`
	BaseURL     string       `yaml:"base_url" json:"base_url"`
	Checkpoints []Checkpoint `yaml:"checkpoints" json:"checkpoints"`
}

// Checkpoint is one named verification step: an ordered list of actions.
type Checkpoint struct {
	ID          string   `yaml:"id" json:"id"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Actions     []Action `yaml:"actions" json:"actions"`
}

// ActionType discriminates the kinds of declarative steps a checkpoint may
// contain.
type ActionType string

const (
	ActionNavigate   ActionType = "navigate"
	ActionClick      ActionType = "click"
	ActionTypeText   ActionType = "type"
	ActionSelect     ActionType = "select"
	ActionWaitFor    ActionType = "wait_for"
	ActionAssertText ActionType = "assert_text"
	ActionAssertURL  ActionType = "assert_url"
	ActionScreenshot ActionType = "screenshot"
	ActionHover      ActionType = "hover"
)

// Action is one declarative step. Which fields are meaningful depends on
// Type; the parser rejects actions missing the fields their type needs.
type Action struct {
	Type ActionType `yaml:"type" json:"type"`

	// Path is resolved against the checklist's base URL (navigate).
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
	// Selector targets an element (click, type, select, wait_for, hover,
	// assert_text).
	Selector string `yaml:"selector,omitempty" json:"selector,omitempty"`
	// Text is the input to type, or the expected substring for assert_text.
	Text string `yaml:"text,omitempty" json:"text,omitempty"`
	// Value is the option to select.
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
	// URLContains is the expected substring for assert_url.
	URLContains string `yaml:"url_contains,omitempty" json:"url_contains,omitempty"`
	// Name is the screenshot file name.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	// TimeoutSeconds overrides the action type's default timeout.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty" json:"timeout_seconds,omitempty"`
}

// Failure records one failed checkpoint in a run.
type Failure struct {
	Checkpoint string `json:"checkpoint"`
	Error      string `json:"error"`
}

// RunResult is the durable outcome artifact of one checklist run, written
// exactly once to the run's timestamp-named directory.
type RunResult struct {
	Success           bool      `json:"success"`
	CheckpointsPassed int       `json:"checkpointsPassed"`
	CheckpointsTotal  int       `json:"checkpointsTotal"`
	Failures          []Failure `json:"failures"`
	ScreenshotDir     string    `json:"screenshotDir"`
	Timestamp         string    `json:"timestamp"`
}
