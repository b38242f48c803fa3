package checklist

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/forgeline/forgeline/internal/browser"
)

// Retry policy for actions. These are deliberate constants: every action
// gets exactly actionAttempts tries separated by a constant delay,
// regardless of type.
const (
	actionAttempts   = 3
	actionRetryDelay = 1000 * time.Millisecond
)

// Per-action-type default timeouts, overridable per action.
const (
	defaultActionTimeout   = 5 * time.Second
	defaultWaitTimeout     = 10 * time.Second
	defaultNavigateTimeout = 30 * time.Second
)

// ActionExecutor executes single declarative steps against a session with
// bounded retry and fixed backoff.
type ActionExecutor struct {
	session  browser.Session
	baseURL  string
	shotDir  string
	sleep    func(time.Duration)
	progress io.Writer
}

// NewActionExecutor creates an executor bound to one session. Screenshots
// are written into shotDir.
func NewActionExecutor(session browser.Session, baseURL string, shotDir string) *ActionExecutor {
	return &ActionExecutor{
		session: session,
		baseURL: baseURL,
		shotDir: shotDir,
		sleep:   time.Sleep,
	}
}

// SetSleep overrides the inter-retry delay function (for testing).
func (x *ActionExecutor) SetSleep(fn func(time.Duration)) {
	x.sleep = fn
}

// SetProgress sets a writer for live progress output.
func (x *ActionExecutor) SetProgress(w io.Writer) {
	x.progress = w
}

func (x *ActionExecutor) logf(format string, args ...interface{}) {
	if x.progress != nil {
		fmt.Fprintf(x.progress, "    → "+format+"\n", args...)
	}
}

// Run executes one action with up to actionAttempts tries. On failure it
// returns the last attempt's error.
func (x *ActionExecutor) Run(action Action) error {
	var lastErr error
	for attempt := 1; attempt <= actionAttempts; attempt++ {
		lastErr = x.execute(action)
		if lastErr == nil {
			return nil
		}
		if attempt < actionAttempts {
			x.logf("action %s failed (attempt %d/%d), retrying: %v", action.Type, attempt, actionAttempts, lastErr)
			x.sleep(actionRetryDelay)
		}
	}
	return lastErr
}

// execute performs one attempt of one action.
func (x *ActionExecutor) execute(action Action) error {
	timeout := x.timeout(action)

	switch action.Type {
	case ActionNavigate:
		return x.session.Navigate(resolveURL(x.baseURL, action.Path), timeout)
	case ActionClick:
		return x.session.Click(action.Selector, timeout)
	case ActionTypeText:
		return x.session.Type(action.Selector, action.Text, timeout)
	case ActionSelect:
		return x.session.Select(action.Selector, action.Value, timeout)
	case ActionWaitFor:
		return x.session.WaitFor(action.Selector, timeout)
	case ActionHover:
		return x.session.Hover(action.Selector, timeout)
	case ActionAssertText:
		got, err := x.session.Text(action.Selector, timeout)
		if err != nil {
			return err
		}
		if !strings.Contains(got, action.Text) {
			return fmt.Errorf("text assertion failed for %q: expected %q, got %q", action.Selector, action.Text, got)
		}
		return nil
	case ActionAssertURL:
		current, err := x.session.URL()
		if err != nil {
			return err
		}
		if !strings.Contains(current, action.URLContains) {
			return fmt.Errorf("url assertion failed: expected %q in %q", action.URLContains, current)
		}
		return nil
	case ActionScreenshot:
		return x.session.Screenshot(filepath.Join(x.shotDir, screenshotFile(action.Name)))
	}
	return fmt.Errorf("unknown action type %q", action.Type)
}

// timeout resolves the effective timeout for an action: its own override,
// else the default for its type.
func (x *ActionExecutor) timeout(action Action) time.Duration {
	if action.TimeoutSeconds > 0 {
		return time.Duration(action.TimeoutSeconds) * time.Second
	}
	switch action.Type {
	case ActionWaitFor:
		return defaultWaitTimeout
	case ActionNavigate:
		return defaultNavigateTimeout
	}
	return defaultActionTimeout
}

// resolveURL joins a path fragment onto the checklist's base URL.
func resolveURL(base string, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// screenshotFile ensures a screenshot name has an image extension.
func screenshotFile(name string) string {
	if filepath.Ext(name) == "" {
		return name + ".png"
	}
	return name
}
