// Package dashboard provides a web-based UI for onsite time tracking.
package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/onsite/pkg/domain/alerts"
	"github.com/felixgeelhaar/onsite/pkg/domain/events"
	"github.com/felixgeelhaar/onsite/pkg/domain/jobflag"
	"github.com/felixgeelhaar/onsite/pkg/domain/timesheet"
)

//go:embed templates/*
var templatesFS embed.FS

// DataProvider provides data for the dashboard.
type DataProvider interface {
	Summaries() ([]timesheet.ProjectSummary, error)
	Rows() ([]timesheet.Row, error)
	Flags() (map[string]jobflag.FlagResult, error)
	Alerts() (alerts.Report, error)
}

// Server is the dashboard HTTP server.
type Server struct {
	addr     string
	provider DataProvider
	events   http.Handler
	server   *http.Server
	tmpl     *template.Template

	upgrader websocket.Upgrader
	wsMu     sync.Mutex
	wsConns  map[*websocket.Conn]struct{}
}

// NewServer creates a new dashboard server. The publisher feeds the
// websocket stream; the events handler, when non-nil, is mounted at /events
// for SSE clients.
func NewServer(addr string, provider DataProvider, publisher events.EventPublisher, eventsHandler http.Handler) (*Server, error) {
	funcMap := template.FuncMap{
		"formatTime": formatTime,
		"json":       toJSON,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		addr:     addr,
		provider: provider,
		events:   eventsHandler,
		tmpl:     tmpl,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		wsConns: make(map[*websocket.Conn]struct{}),
	}

	if publisher != nil {
		publisher.Subscribe(s.broadcast)
	}

	return s, nil
}

// Start starts the dashboard server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /api/summaries", s.handleAPISummaries)
	mux.HandleFunc("GET /api/rows", s.handleAPIRows)
	mux.HandleFunc("GET /api/flags", s.handleAPIFlags)
	mux.HandleFunc("GET /api/alerts", s.handleAPIAlerts)
	mux.HandleFunc("GET /ws", s.handleWS)
	if s.events != nil {
		mux.Handle("GET /events", s.events)
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("Dashboard server starting on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsMu.Lock()
	for conn := range s.wsConns {
		conn.Close()
		delete(s.wsConns, conn)
	}
	s.wsMu.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// PageData holds data for template rendering.
type PageData struct {
	Title string
	Rows  []timesheet.Row
	Stats DashboardStats
	Error string
}

// DashboardStats holds summary statistics.
type DashboardStats struct {
	Projects     int
	ActiveRows   int
	FlaggedJobs  int
	WorkMinutes  int
	BreakMinutes int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := PageData{Title: "Onsite Board"}

	summaries, err := s.provider.Summaries()
	if err != nil {
		data.Error = err.Error()
		s.render(w, "index.html", data)
		return
	}

	data.Rows = timesheet.Rows(summaries)
	data.Stats = calculateStats(summaries, data.Rows)

	if flags, err := s.provider.Flags(); err == nil {
		for _, f := range flags {
			if f.IsFlagged {
				data.Stats.FlaggedJobs++
			}
		}
	}

	s.render(w, "index.html", data)
}

func (s *Server) handleAPISummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.provider.Summaries()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}

func (s *Server) handleAPIRows(w http.ResponseWriter, r *http.Request) {
	rows, err := s.provider.Rows()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

func (s *Server) handleAPIFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := s.provider.Flags()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(flags)
}

func (s *Server) handleAPIAlerts(w http.ResponseWriter, r *http.Request) {
	report, err := s.provider.Alerts()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.wsMu.Lock()
	s.wsConns[conn] = struct{}{}
	s.wsMu.Unlock()

	// Reader loop only drains control frames; the connection is write-only
	// from the server side.
	go func() {
		defer func() {
			s.wsMu.Lock()
			delete(s.wsConns, conn)
			s.wsMu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// broadcast fans a published event out to all connected websocket clients.
func (s *Server) broadcast(e *events.BaseEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil
	}

	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	for conn := range s.wsConns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(s.wsConns, conn)
		}
	}
	return nil
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func calculateStats(summaries []timesheet.ProjectSummary, rows []timesheet.Row) DashboardStats {
	stats := DashboardStats{Projects: len(summaries)}

	for _, summary := range summaries {
		stats.WorkMinutes += summary.TotalWorkMinutes
		stats.BreakMinutes += summary.TotalBreakMinutes
	}
	for _, row := range rows {
		if row.IsCurrentlyActive {
			stats.ActiveRows++
		}
	}

	return stats
}

// Template helper functions
func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func toJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
