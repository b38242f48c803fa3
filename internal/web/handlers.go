package web

import (
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/forgeline/forgeline/internal/db"
	"github.com/forgeline/forgeline/internal/pipeline"
)

// RunRow is one dashboard table row.
type RunRow struct {
	RunID      string
	Spec       string
	Targets    string
	Outcome    string
	Iterations int
	StartedAt  string
	Duration   string
}

type dashboardView struct {
	Runs []RunRow
}

type runView struct {
	Summary *pipeline.RunSummary
}

type eventsView struct {
	RunID  string
	Events []db.PipelineEvent
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.ListRunIDs()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var runs []RunRow
	for _, id := range ids {
		var summary pipeline.RunSummary
		if err := s.store.GetRunSummary(id, &summary); err != nil {
			continue
		}
		runs = append(runs, RunRow{
			RunID:      summary.RunID,
			Spec:       summary.Spec,
			Targets:    strings.Join(summary.Targets, ", "),
			Outcome:    summary.Outcome,
			Iterations: summary.Iterations,
			StartedAt:  summary.StartedAt,
			Duration:   summary.Duration,
		})
	}

	// Most recent first.
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt > runs[j].StartedAt
	})

	s.render(w, s.dashboardTmpl, dashboardView{Runs: runs})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/run/")
	if runID == "" || strings.Contains(runID, "/") {
		http.NotFound(w, r)
		return
	}

	var summary pipeline.RunSummary
	if err := s.store.GetRunSummary(runID, &summary); err != nil {
		http.NotFound(w, r)
		return
	}
	s.render(w, s.runTmpl, runView{Summary: &summary})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, "event database not available", http.StatusServiceUnavailable)
		return
	}

	runID := r.URL.Query().Get("run")
	events, err := s.db.RecentEvents(runID, 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.render(w, s.eventsTmpl, eventsView{RunID: runID, Events: events})
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func relTime(ts string) string {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	var t time.Time
	for _, f := range formats {
		if parsed, err := time.Parse(f, ts); err == nil {
			t = parsed
			break
		}
	}
	if t.IsZero() {
		return ts
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
