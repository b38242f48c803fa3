package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteAtomic_CreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "file.txt")

	if err := WriteAtomic(path, []byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("expected %q, got %q", "hello", string(data))
	}
}

func TestWriteAtomic_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")

	if err := WriteAtomic(path, []byte("data")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteJSON_ReadJSON_RoundTrip(t *testing.T) {
	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	path := filepath.Join(t.TempDir(), "r.json")
	in := record{Name: "web", Count: 3}
	if err := WriteJSON(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out record
	if err := ReadJSON(path, &out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out != in {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestTimestamp_NoColons(t *testing.T) {
	ts := Timestamp(time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC))
	if ts != "2026-03-14T15-09-26Z" {
		t.Errorf("unexpected timestamp %q", ts)
	}
	if strings.Contains(ts, ":") {
		t.Errorf("timestamp %q contains a colon", ts)
	}
}

func TestNewChecklistRunDir_NeverReuses(t *testing.T) {
	s := NewStore(t.TempDir())
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first, err := s.NewChecklistRunDir(at)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := s.NewChecklistRunDir(at)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if first == second {
		t.Errorf("run dir reused: %s", first)
	}
	for _, dir := range []string{first, second} {
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			t.Errorf("run dir %s not created", dir)
		}
	}
}

func TestListRunIDs(t *testing.T) {
	s := NewStore(t.TempDir())

	if ids, err := s.ListRunIDs(); err != nil || len(ids) != 0 {
		t.Fatalf("expected no runs, got %v (err %v)", ids, err)
	}

	if err := s.SaveRunSummary("run-b", map[string]string{"outcome": "success"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRunSummary("run-a", map[string]string{"outcome": "fail"}); err != nil {
		t.Fatal(err)
	}
	// A run dir without a summary is not listed.
	if err := os.MkdirAll(filepath.Join(s.Root(), "runs", "run-c"), 0o755); err != nil {
		t.Fatal(err)
	}

	ids, err := s.ListRunIDs()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "run-a" || ids[1] != "run-b" {
		t.Errorf("unexpected run ids: %v", ids)
	}
}

func TestDefaultStore_EnvOverride(t *testing.T) {
	root := filepath.Join(t.TempDir(), "elsewhere")
	t.Setenv(EnvRoot, root)

	s, err := DefaultStore()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Root() != root {
		t.Errorf("expected root %q, got %q", root, s.Root())
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root not created: %v", err)
	}
}
