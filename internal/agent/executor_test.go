package agent

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// mockCmd records calls and returns configured results.
type mockCmd struct {
	calls   []mockCall
	results []mockResult
	callIdx int
}

type mockCall struct {
	Dir     string
	Command string
}

type mockResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

func (m *mockCmd) Run(ctx context.Context, dir string, command string) (string, string, int, error) {
	m.calls = append(m.calls, mockCall{Dir: dir, Command: command})
	if m.callIdx >= len(m.results) {
		return "", "", 0, nil
	}
	r := m.results[m.callIdx]
	m.callIdx++
	return r.Stdout, r.Stderr, r.ExitCode, r.Err
}

// blockingCmd waits for the context deadline, simulating a hung process.
type blockingCmd struct{}

func (b *blockingCmd) Run(ctx context.Context, dir string, command string) (string, string, int, error) {
	<-ctx.Done()
	return "partial output", "", -1, ctx.Err()
}

func webImplementer() *Descriptor {
	return &Descriptor{
		ID:           "implementer-web",
		Kind:         KindImplementer,
		Phase:        "build",
		QualityGates: []string{"ui_smoke_web"},
		MaxAttempts:  3,
		Timeout:      30 * time.Second,
		Command:      "make web",
	}
}

func TestRunAttempt_Success(t *testing.T) {
	mock := &mockCmd{results: []mockResult{{Stdout: "built ok", ExitCode: 0}}}
	logDir := t.TempDir()
	exec := NewExecutor(mock, logDir, "/work")

	result := exec.RunAttempt(webImplementer(), 1)

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.AgentID != "implementer-web" || result.Attempt != 1 {
		t.Errorf("identity: %+v", result)
	}
	if len(result.QualityGatesSatisfied) != 1 || result.QualityGatesSatisfied[0] != "ui_smoke_web" {
		t.Errorf("gates: %v", result.QualityGatesSatisfied)
	}
	if len(mock.calls) != 1 || mock.calls[0].Dir != "/work" || mock.calls[0].Command != "make web" {
		t.Errorf("calls: %+v", mock.calls)
	}

	// Log artifact captures the output.
	data, err := os.ReadFile(result.LogFile)
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	if !strings.Contains(string(data), "built ok") {
		t.Errorf("log content: %q", string(data))
	}
}

func TestRunAttempt_NonZeroExit(t *testing.T) {
	mock := &mockCmd{results: []mockResult{{Stderr: "compile error", ExitCode: 2}}}
	exec := NewExecutor(mock, t.TempDir(), "")

	result := exec.RunAttempt(webImplementer(), 2)

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Attempt != 2 {
		t.Errorf("attempt: %d", result.Attempt)
	}
	if !strings.Contains(result.Error, "exit code 2") {
		t.Errorf("error: %q", result.Error)
	}
	if len(result.QualityGatesSatisfied) != 0 {
		t.Errorf("failed attempt must not satisfy gates: %v", result.QualityGatesSatisfied)
	}
}

func TestRunAttempt_TimeoutIsOrdinaryFailure(t *testing.T) {
	desc := webImplementer()
	desc.Timeout = 20 * time.Millisecond
	exec := NewExecutor(&blockingCmd{}, t.TempDir(), "")

	result := exec.RunAttempt(desc, 1)

	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Error, "timeout after") {
		t.Errorf("error should report the timeout: %q", result.Error)
	}
}

func TestRunAttempt_LogFileNaming(t *testing.T) {
	mock := &mockCmd{}
	logDir := t.TempDir()
	exec := NewExecutor(mock, logDir, "")
	exec.SetNow(func() time.Time {
		return time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	})

	result := exec.RunAttempt(webImplementer(), 1)

	base := filepath.Base(result.LogFile)
	if !strings.HasPrefix(base, "implementer-web-2026-05-06T07-08-09") {
		t.Errorf("log name: %q", base)
	}
	if strings.Contains(base, ":") {
		t.Errorf("log name contains a colon: %q", base)
	}
}

func TestRunAttempt_UnimplementedKind(t *testing.T) {
	mock := &mockCmd{}
	exec := NewExecutor(mock, t.TempDir(), "")

	desc := &Descriptor{
		ID:           "reviewer",
		Kind:         KindReviewer,
		Phase:        "review",
		QualityGates: []string{"code_review"},
		MaxAttempts:  1,
		Timeout:      time.Minute,
	}
	result := exec.RunAttempt(desc, 1)

	if !result.Success {
		t.Fatal("unimplemented kind should succeed by omission")
	}
	if !result.Skipped {
		t.Error("skip must be explicit, not silent")
	}
	if len(result.QualityGatesSatisfied) != 0 {
		t.Errorf("unimplemented kind must not satisfy gates: %v", result.QualityGatesSatisfied)
	}
	if len(mock.calls) != 0 {
		t.Errorf("no process should run: %+v", mock.calls)
	}
}

func TestRunAttempt_VerifierRunsChecklist(t *testing.T) {
	exec := NewExecutor(&mockCmd{}, t.TempDir(), "")

	var gotPath string
	exec.SetVerifier(func(path string) (bool, string, error) {
		gotPath = path
		return true, "2/2 checkpoints passed\n", nil
	})

	desc := &Descriptor{
		ID:           "verifier",
		Kind:         KindVerifier,
		Phase:        "verify",
		QualityGates: []string{"ui_smoke_web"},
		MaxAttempts:  1,
		Timeout:      time.Minute,
		Checklist:    "smoke.yaml",
	}
	result := exec.RunAttempt(desc, 1)

	if gotPath != "smoke.yaml" {
		t.Errorf("checklist path: %q", gotPath)
	}
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	if len(result.QualityGatesSatisfied) != 1 {
		t.Errorf("gates: %v", result.QualityGatesSatisfied)
	}
}

func TestRunAttempt_VerifierChecklistFails(t *testing.T) {
	exec := NewExecutor(&mockCmd{}, t.TempDir(), "")
	exec.SetVerifier(func(path string) (bool, string, error) {
		return false, "1/2 checkpoints passed\n", nil
	})

	desc := &Descriptor{
		ID:          "verifier",
		Kind:        KindVerifier,
		MaxAttempts: 1,
		Timeout:     time.Minute,
		Checklist:   "smoke.yaml",
	}
	result := exec.RunAttempt(desc, 1)

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error != "checklist failed" {
		t.Errorf("error: %q", result.Error)
	}
}

func TestCombineOutput(t *testing.T) {
	if got := combineOutput("out", "err"); got != "out\nerr" {
		t.Errorf("got %q", got)
	}
	if got := combineOutput("out", ""); got != "out" {
		t.Errorf("got %q", got)
	}
	if got := combineOutput("", "err"); got != "err" {
		t.Errorf("got %q", got)
	}
}
