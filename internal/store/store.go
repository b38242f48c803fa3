package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// EnvRoot is the environment variable that relocates the workspace root.
const EnvRoot = "FORGELINE_ROOT"

// defaultRoot is the workspace root used when EnvRoot is unset.
const defaultRoot = ".forgeline"

// Store manages the on-disk workspace: agent logs, pipeline run summaries,
// and checklist run artifacts.
type Store struct {
	root string
}

// NewStore creates a Store rooted at root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// DefaultStore returns a Store at the workspace root, honouring the
// FORGELINE_ROOT override, and creates the root directory if needed.
func DefaultStore() (*Store, error) {
	root := os.Getenv(EnvRoot)
	if root == "" {
		root = defaultRoot
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Root returns the workspace root directory.
func (s *Store) Root() string {
	return s.root
}

// LogDir returns the directory for agent attempt logs.
func (s *Store) LogDir() string {
	return filepath.Join(s.root, "logs")
}

// RunDir returns the directory for one pipeline run's artifacts.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.root, "runs", runID)
}

// UIDir returns the root directory for checklist run artifacts.
func (s *Store) UIDir() string {
	return filepath.Join(s.root, "ui")
}

// DBPath returns the path to the event database.
func (s *Store) DBPath() string {
	return filepath.Join(s.root, "forgeline.db")
}

// NewChecklistRunDir creates a fresh timestamp-named directory for one
// checklist run. The directory is never reused: a later run at the same
// second gets a numeric suffix.
func (s *Store) NewChecklistRunDir(t time.Time) (string, error) {
	base := filepath.Join(s.UIDir(), Timestamp(t))
	dir := base
	for i := 2; ; i++ {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			break
		}
		dir = fmt.Sprintf("%s-%d", base, i)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir run dir: %w", err)
	}
	return dir, nil
}

// SaveRunSummary writes a pipeline run summary JSON under the run directory.
func (s *Store) SaveRunSummary(runID string, summary interface{}) error {
	return WriteJSON(filepath.Join(s.RunDir(runID), "summary.json"), summary)
}

// GetRunSummary reads a pipeline run summary into v.
func (s *Store) GetRunSummary(runID string, v interface{}) error {
	return ReadJSON(filepath.Join(s.RunDir(runID), "summary.json"), v)
}

// ListRunIDs returns all pipeline run IDs with a persisted summary, sorted.
func (s *Store) ListRunIDs() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "runs"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read runs dir: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, "runs", entry.Name(), "summary.json")); err == nil {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Timestamp formats t as an ISO 8601 UTC timestamp with colons replaced by
// dashes, safe for file and directory names.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15-04-05Z")
}
