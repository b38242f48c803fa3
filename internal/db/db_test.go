package db

import (
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := d.Migrate(); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestMigrate(t *testing.T) {
	d, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer d.Close()

	if err := d.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// Verify all tables exist
	tables := []string{"schema_version", "pipeline_events", "agent_attempts", "checklist_runs"}
	for _, table := range tables {
		var name string
		err := d.conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	// Verify schema_version was recorded
	var version int
	if err := d.conn.QueryRow("SELECT version FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("query schema_version: %v", err)
	}
	if version != 1 {
		t.Errorf("expected schema version 1, got %d", version)
	}

	// Migrate again should be idempotent
	if err := d.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestLogPipelineEvent(t *testing.T) {
	d := testDB(t)

	if err := d.LogPipelineEvent("r1", "run_started", "", "", 0, "spec=shop-app"); err != nil {
		t.Fatalf("log event: %v", err)
	}
	if err := d.LogPipelineEvent("r1", "phase_started", "build", "", 0, "iteration=1"); err != nil {
		t.Fatalf("log event: %v", err)
	}
	if err := d.LogPipelineEvent("r2", "run_started", "", "", 0, ""); err != nil {
		t.Fatalf("log event: %v", err)
	}

	events, err := d.RecentEvents("r1", 10)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events for r1, got %d", len(events))
	}
	// Newest first
	if events[0].Event != "phase_started" || events[0].Phase != "build" {
		t.Errorf("first event: %+v", events[0])
	}
	if events[1].Event != "run_started" || events[1].Detail != "spec=shop-app" {
		t.Errorf("second event: %+v", events[1])
	}

	// Unfiltered query sees all runs
	all, err := d.RecentEvents("", 10)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 events total, got %d", len(all))
	}

	// Limit applies
	limited, err := d.RecentEvents("", 1)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 event with limit, got %d", len(limited))
	}
}

func TestLogAgentAttempt(t *testing.T) {
	d := testDB(t)

	err := d.LogAgentAttempt("r1", 1, "implementer-web", 1, false, false, 1200, "/logs/a.log", nil, "exit code 1")
	if err != nil {
		t.Fatalf("log attempt: %v", err)
	}
	err = d.LogAgentAttempt("r1", 1, "implementer-web", 2, true, false, 800, "/logs/b.log", []string{"unit_web", "lint_web"}, "")
	if err != nil {
		t.Fatalf("log attempt: %v", err)
	}

	var gates string
	err = d.conn.QueryRow("SELECT gates FROM agent_attempts WHERE attempt = 2").Scan(&gates)
	if err != nil {
		t.Fatalf("query gates: %v", err)
	}
	if gates != "unit_web,lint_web" {
		t.Errorf("gates = %q", gates)
	}
}

func TestAgentStatsAll(t *testing.T) {
	d := testDB(t)

	attempts := []struct {
		agent    string
		success  bool
		duration int
	}{
		{"implementer-web", false, 1000},
		{"implementer-web", true, 3000},
		{"scaffolder", true, 500},
	}
	for i, a := range attempts {
		if err := d.LogAgentAttempt("r1", 1, a.agent, i+1, a.success, false, a.duration, "", nil, ""); err != nil {
			t.Fatalf("log attempt: %v", err)
		}
	}

	stats, err := d.AgentStatsAll()
	if err != nil {
		t.Fatalf("agent stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected stats for 2 agents, got %d", len(stats))
	}
	// Sorted by agent name
	web := stats[0]
	if web.Agent != "implementer-web" || web.Attempts != 2 || web.Successes != 1 || web.AvgDurationMs != 2000 {
		t.Errorf("implementer-web stats: %+v", web)
	}
	if stats[1].Agent != "scaffolder" || stats[1].Successes != 1 {
		t.Errorf("scaffolder stats: %+v", stats[1])
	}
}

func TestLogChecklistRun(t *testing.T) {
	d := testDB(t)

	if err := d.LogChecklistRun("r1", "smoke.yaml", false, 1, 2, "/ui/2026-01-01"); err != nil {
		t.Fatalf("log checklist run: %v", err)
	}

	var passed, total int
	var success bool
	err := d.conn.QueryRow("SELECT success, passed, total FROM checklist_runs WHERE checklist = 'smoke.yaml'").
		Scan(&success, &passed, &total)
	if err != nil {
		t.Fatalf("query checklist run: %v", err)
	}
	if success || passed != 1 || total != 2 {
		t.Errorf("row: success=%v passed=%d total=%d", success, passed, total)
	}
}
