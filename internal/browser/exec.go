package browser

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultDriverCommand is the automation CLI invoked when none is configured.
const DefaultDriverCommand = "browserctl"

// ExecDriver implements Driver by shelling out to an automation CLI that
// multiplexes sessions by ID (browserctl or compatible).
type ExecDriver struct {
	command string
}

// NewExecDriver returns an ExecDriver using the given CLI command
// ("" = DefaultDriverCommand).
func NewExecDriver(command string) *ExecDriver {
	if command == "" {
		command = DefaultDriverCommand
	}
	return &ExecDriver{command: command}
}

// Open starts a fresh driver session with a unique ID.
func (d *ExecDriver) Open() (Session, error) {
	s := &execSession{command: d.command, id: uuid.NewString()}
	if _, err := s.run(30*time.Second, "open", "--session", s.id); err != nil {
		return nil, fmt.Errorf("open browser session: %w", err)
	}
	return s, nil
}

// execSession drives one browser session through the automation CLI.
type execSession struct {
	command string
	id      string
	closed  bool
}

func (s *execSession) run(timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.command, args...)
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%s %s: timeout after %s", s.command, args[0], timeout)
	}
	if err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", s.command, args[0], err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

func (s *execSession) Navigate(url string, timeout time.Duration) error {
	_, err := s.run(timeout, "navigate", "--session", s.id, "--wait-idle", url)
	return err
}

func (s *execSession) Click(selector string, timeout time.Duration) error {
	_, err := s.run(timeout, "click", "--session", s.id, selector)
	return err
}

func (s *execSession) Type(selector string, text string, timeout time.Duration) error {
	_, err := s.run(timeout, "type", "--session", s.id, selector, text)
	return err
}

func (s *execSession) Select(selector string, value string, timeout time.Duration) error {
	_, err := s.run(timeout, "select", "--session", s.id, selector, value)
	return err
}

func (s *execSession) WaitFor(selector string, timeout time.Duration) error {
	_, err := s.run(timeout, "wait-for", "--session", s.id, selector)
	return err
}

func (s *execSession) Hover(selector string, timeout time.Duration) error {
	_, err := s.run(timeout, "hover", "--session", s.id, selector)
	return err
}

func (s *execSession) Text(selector string, timeout time.Duration) (string, error) {
	return s.run(timeout, "text", "--session", s.id, selector)
}

func (s *execSession) URL() (string, error) {
	return s.run(10*time.Second, "url", "--session", s.id)
}

func (s *execSession) Screenshot(path string) error {
	_, err := s.run(30*time.Second, "screenshot", "--session", s.id, "--out", path)
	return err
}

func (s *execSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	_, err := s.run(10*time.Second, "close", "--session", s.id)
	return err
}
