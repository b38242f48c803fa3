package db

import (
	"fmt"
	"strings"
)

// PipelineEvent represents a row in the pipeline_events table.
type PipelineEvent struct {
	ID        int
	RunID     string
	Event     string
	Phase     string
	Agent     string
	Attempt   int
	Detail    string
	Timestamp string
}

// AgentAttempt represents a row in the agent_attempts table.
type AgentAttempt struct {
	ID         int
	RunID      string
	Iteration  int
	Agent      string
	Attempt    int
	Success    bool
	Skipped    bool
	DurationMs int
	LogFile    string
	Gates      string
	Error      string
	Timestamp  string
}

// AgentStats aggregates attempt history per agent.
type AgentStats struct {
	Agent         string
	Attempts      int
	Successes     int
	AvgDurationMs int
}

// LogPipelineEvent inserts a pipeline event.
func (d *DB) LogPipelineEvent(runID string, event string, phase string, agent string, attempt int, detail string) error {
	_, err := d.conn.Exec(
		`INSERT INTO pipeline_events (run_id, event, phase, agent, attempt, detail) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, event, phase, agent, attempt, detail,
	)
	if err != nil {
		return fmt.Errorf("log pipeline event: %w", err)
	}
	return nil
}

// LogAgentAttempt inserts one agent attempt row.
func (d *DB) LogAgentAttempt(runID string, iteration int, agent string, attempt int, success bool, skipped bool, durationMs int, logFile string, gates []string, errMsg string) error {
	_, err := d.conn.Exec(
		`INSERT INTO agent_attempts (run_id, iteration, agent, attempt, success, skipped, duration_ms, log_file, gates, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, iteration, agent, attempt, success, skipped, durationMs, logFile, strings.Join(gates, ","), errMsg,
	)
	if err != nil {
		return fmt.Errorf("log agent attempt: %w", err)
	}
	return nil
}

// LogChecklistRun inserts one checklist run row.
func (d *DB) LogChecklistRun(runID string, checklist string, success bool, passed int, total int, resultDir string) error {
	_, err := d.conn.Exec(
		`INSERT INTO checklist_runs (run_id, checklist, success, passed, total, result_dir) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, checklist, success, passed, total, resultDir,
	)
	if err != nil {
		return fmt.Errorf("log checklist run: %w", err)
	}
	return nil
}

// RecentEvents returns the most recent pipeline events, newest first,
// optionally filtered by run ID ("" = all runs).
func (d *DB) RecentEvents(runID string, limit int) ([]PipelineEvent, error) {
	query := `SELECT id, run_id, event, COALESCE(phase, ''), COALESCE(agent, ''), COALESCE(attempt, 0), COALESCE(detail, ''), timestamp
	          FROM pipeline_events`
	args := []interface{}{}
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []PipelineEvent
	for rows.Next() {
		var e PipelineEvent
		if err := rows.Scan(&e.ID, &e.RunID, &e.Event, &e.Phase, &e.Agent, &e.Attempt, &e.Detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// AgentStatsAll aggregates attempt counts, success counts, and average
// duration per agent across all recorded runs.
func (d *DB) AgentStatsAll() ([]AgentStats, error) {
	rows, err := d.conn.Query(
		`SELECT agent, COUNT(*), SUM(CASE WHEN success THEN 1 ELSE 0 END), CAST(AVG(duration_ms) AS INTEGER)
		 FROM agent_attempts GROUP BY agent ORDER BY agent`,
	)
	if err != nil {
		return nil, fmt.Errorf("query agent stats: %w", err)
	}
	defer rows.Close()

	var stats []AgentStats
	for rows.Next() {
		var s AgentStats
		if err := rows.Scan(&s.Agent, &s.Attempts, &s.Successes, &s.AvgDurationMs); err != nil {
			return nil, fmt.Errorf("scan agent stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
