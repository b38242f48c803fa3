// Package web serves a read-only dashboard over the pipeline run artifacts
// and the event database. It renders server-side HTML only; there is no
// mutation surface.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/forgeline/forgeline/internal/db"
	"github.com/forgeline/forgeline/internal/store"
)

//go:embed templates
var templateFS embed.FS

var funcMap = template.FuncMap{
	"outcomeClass": func(outcome string) string {
		return "badge badge-" + strings.ReplaceAll(outcome, "_", "-")
	},
	"passClass": func(passed bool) string {
		if passed {
			return "result-pass"
		}
		return "result-fail"
	},
	"relTime": relTime,
}

// Server is the read-only dashboard server.
type Server struct {
	store *store.Store
	db    *db.DB // nil = events view disabled
	port  int

	dashboardTmpl *template.Template
	runTmpl       *template.Template
	eventsTmpl    *template.Template
}

// NewServer creates a Server with parsed templates.
func NewServer(st *store.Store, database *db.DB, port int) *Server {
	return &Server{
		store:         st,
		db:            database,
		port:          port,
		dashboardTmpl: mustParseTmpl("base.html", "dashboard.html"),
		runTmpl:       mustParseTmpl("base.html", "run.html"),
		eventsTmpl:    mustParseTmpl("base.html", "events.html"),
	}
}

func mustParseTmpl(names ...string) *template.Template {
	patterns := make([]string, len(names))
	for i, n := range names {
		patterns[i] = "templates/" + n
	}
	return template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, patterns...))
}

// Start registers routes and starts listening.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("dashboard listening on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// Handler returns the route mux (exposed for testing).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/":
			s.handleDashboard(w, r)
		case strings.HasPrefix(r.URL.Path, "/run/"):
			s.handleRun(w, r)
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/events", s.handleEvents)
	return mux
}
