package wiring

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/onsite/pkg/domain/jobflag"
	"github.com/felixgeelhaar/onsite/pkg/domain/timesheet"
)

func TestBuildAppServicesWiresEverything(t *testing.T) {
	tempDir := t.TempDir()

	services, err := BuildAppServices(tempDir)
	if err != nil {
		t.Fatalf("BuildAppServices failed: %v", err)
	}

	if services.Timesheet == nil || services.Flags == nil || services.Sweep == nil {
		t.Fatal("expected all services wired")
	}
	if services.Alerts == nil || services.Audit == nil {
		t.Fatal("expected alert and audit services wired")
	}
	if services.Events == nil || services.Feed == nil {
		t.Fatal("expected event and feed stores wired")
	}
}

func TestBuildAppServicesRestoresLedger(t *testing.T) {
	tempDir := t.TempDir()

	first, err := BuildAppServices(tempDir)
	if err != nil {
		t.Fatalf("BuildAppServices failed: %v", err)
	}
	if err := first.Workspace.Repo.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	wo := int64(100)
	events := []timesheet.StatusEvent{
		{
			WorkerID:    10,
			ProjectID:   1,
			WorkOrderID: &wo,
			StatusCode:  timesheet.StatusOnsite,
			StatusName:  "Onsite",
			LoggedAt:    time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC),
		},
		{
			WorkerID:    10,
			ProjectID:   1,
			WorkOrderID: &wo,
			StatusCode:  timesheet.StatusCompleted,
			StatusName:  "Completed",
			LoggedAt:    time.Date(2025, 1, 15, 16, 0, 0, 0, time.UTC),
		},
	}
	if err := first.Feed.Append(events); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// A fresh build restores the ledger from the persisted feed.
	second, err := BuildAppServices(tempDir)
	if err != nil {
		t.Fatalf("second BuildAppServices failed: %v", err)
	}
	if got := second.Timesheet.Ledger().Count(); got != 2 {
		t.Errorf("expected 2 restored events, got %d", got)
	}

	summaries := second.Timesheet.Ledger().Summaries()
	if len(summaries) != 1 {
		t.Fatalf("expected 1 project summary, got %d", len(summaries))
	}
	if got := summaries[0].TotalWorkMinutes; got != 480 {
		t.Errorf("expected 480 work minutes, got %d", got)
	}
}

func TestBuildAppServicesPersistsPublishedEvents(t *testing.T) {
	tempDir := t.TempDir()

	services, err := BuildAppServices(tempDir)
	if err != nil {
		t.Fatalf("BuildAppServices failed: %v", err)
	}
	if err := services.Workspace.Repo.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	start := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	jobs := []jobflag.Job{
		{ID: "late", ScheduleStart: &start, Status: jobflag.StatusSchedule},
	}
	if err := services.Workspace.Repo.SaveJobs(jobs); err != nil {
		t.Fatalf("SaveJobs failed: %v", err)
	}

	if _, err := services.Flags.Recalculate(); err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}

	count, err := services.Events.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count == 0 {
		t.Error("expected published events persisted to the event store")
	}
}
