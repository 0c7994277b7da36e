package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/onsite/pkg/domain/alerts"
	"github.com/felixgeelhaar/onsite/pkg/domain/jobflag"
	"github.com/felixgeelhaar/onsite/pkg/domain/timesheet"
)

// mockProvider implements DataProvider for testing.
type mockProvider struct {
	summaries []timesheet.ProjectSummary
	flags     map[string]jobflag.FlagResult
	report    alerts.Report
	err       error
}

func (m *mockProvider) Summaries() ([]timesheet.ProjectSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.summaries, nil
}

func (m *mockProvider) Rows() ([]timesheet.Row, error) {
	if m.err != nil {
		return nil, m.err
	}
	return timesheet.Rows(m.summaries), nil
}

func (m *mockProvider) Flags() (map[string]jobflag.FlagResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.flags, nil
}

func (m *mockProvider) Alerts() (alerts.Report, error) {
	if m.err != nil {
		return alerts.Report{}, m.err
	}
	return m.report, nil
}

func sampleSummaries() []timesheet.ProjectSummary {
	start := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)
	wo := int64(100)

	return []timesheet.ProjectSummary{
		{
			ProjectID:   1,
			ProjectName: "Harbour Tower",
			Workers: []timesheet.WorkerSummary{
				{
					WorkerID:   10,
					WorkerName: "Mika",
					WorkOrders: []timesheet.WorkOrderSummary{
						{
							WorkOrderID:   &wo,
							WorkOrderName: "Foundations",
							Status:        "Completed",
							StatusCode:    timesheet.StatusCompleted,
							WorkMinutes:   480,
							StartTime:     &start,
							EndTime:       &end,
							LogCount:      2,
						},
					},
					TotalWorkMinutes: 480,
				},
			},
			WorkerCount:      1,
			ProjectStatus:    timesheet.ProjectCompleted,
			TotalWorkMinutes: 480,
		},
	}
}

func TestNewServer(t *testing.T) {
	provider := &mockProvider{}
	server, err := NewServer(":8460", provider, nil, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if server == nil {
		t.Fatal("Expected non-nil server")
	}
	if server.addr != ":8460" {
		t.Errorf("Expected addr :8460, got %s", server.addr)
	}
}

func TestHandleIndex(t *testing.T) {
	provider := &mockProvider{
		summaries: sampleSummaries(),
		flags: map[string]jobflag.FlagResult{
			"job-1": {IsFlagged: true, FlagReason: jobflag.ReasonStartedLate},
		},
	}
	server, err := NewServer(":8460", provider, nil, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	server.handleIndex(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Harbour Tower") {
		t.Error("Expected page to contain project name")
	}
	if !strings.Contains(body, "Mika") {
		t.Error("Expected page to contain worker name")
	}
	if !strings.Contains(body, "8.00") {
		t.Error("Expected page to contain formatted work hours")
	}
}

func TestHandleIndexWithError(t *testing.T) {
	provider := &mockProvider{err: errors.New("test error")}
	server, err := NewServer(":8460", provider, nil, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	server.handleIndex(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "test error") {
		t.Error("Expected page to contain error message")
	}
}

func TestHandleAPISummaries(t *testing.T) {
	provider := &mockProvider{summaries: sampleSummaries()}
	server, err := NewServer(":8460", provider, nil, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/summaries", nil)
	rec := httptest.NewRecorder()

	server.handleAPISummaries(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}

	var result []timesheet.ProjectSummary
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(result) != 1 || result[0].ProjectID != 1 {
		t.Errorf("Expected project 1, got %+v", result)
	}
}

func TestHandleAPIRows(t *testing.T) {
	provider := &mockProvider{summaries: sampleSummaries()}
	server, err := NewServer(":8460", provider, nil, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/rows", nil)
	rec := httptest.NewRecorder()

	server.handleAPIRows(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var rows []timesheet.Row
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(rows) != 1 || rows[0].WorkHours != "8.00" {
		t.Errorf("Expected one row with 8.00 work hours, got %+v", rows)
	}
}

func TestHandleAPIFlagsError(t *testing.T) {
	provider := &mockProvider{err: errors.New("flags error")}
	server, err := NewServer(":8460", provider, nil, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/flags", nil)
	rec := httptest.NewRecorder()

	server.handleAPIFlags(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}
}

func TestHandleAPIAlerts(t *testing.T) {
	provider := &mockProvider{
		report: alerts.Report{
			TotalFlagged: 2,
			Projects: []alerts.ProjectAlerts{
				{ProjectID: 1, TotalFlagged: 2},
			},
		},
	}
	server, err := NewServer(":8460", provider, nil, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
	rec := httptest.NewRecorder()

	server.handleAPIAlerts(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var report alerts.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if report.TotalFlagged != 2 {
		t.Errorf("Expected 2 flagged, got %d", report.TotalFlagged)
	}
}

func TestCalculateStats(t *testing.T) {
	summaries := sampleSummaries()
	summaries[0].Workers[0].WorkOrders[0].IsCurrentlyActive = true
	rows := timesheet.Rows(summaries)

	stats := calculateStats(summaries, rows)

	if stats.Projects != 1 {
		t.Errorf("Expected 1 project, got %d", stats.Projects)
	}
	if stats.ActiveRows != 1 {
		t.Errorf("Expected 1 active row, got %d", stats.ActiveRows)
	}
	if stats.WorkMinutes != 480 {
		t.Errorf("Expected 480 work minutes, got %d", stats.WorkMinutes)
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(nil); got != "-" {
		t.Errorf("formatTime(nil) = %s, want -", got)
	}

	tm := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	if got := formatTime(&tm); got != "2025-01-15 10:30" {
		t.Errorf("formatTime(%v) = %s, want 2025-01-15 10:30", tm, got)
	}
}

func TestServerShutdown(t *testing.T) {
	provider := &mockProvider{}
	server, err := NewServer(":0", provider, nil, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	// Shutdown without Start should not error
	if err := server.Shutdown(context.TODO()); err != nil {
		t.Errorf("Shutdown without Start should not error: %v", err)
	}
}
