package application_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/onsite/pkg/application"
	"github.com/felixgeelhaar/onsite/pkg/domain/chrono"
	"github.com/felixgeelhaar/onsite/pkg/domain/jobflag"
	"github.com/felixgeelhaar/onsite/pkg/storage"
)

func TestAlertService_Report(t *testing.T) {
	repo := storage.NewFilesystemRepository(t.TempDir())
	_ = repo.Initialize()

	start := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	now := start.Add(time.Hour)

	jobs := []jobflag.Job{
		{ID: "a", ProjectID: 1, ProjectName: "Harbour Tower", ScheduleStart: &start, Status: jobflag.StatusSchedule},
		{ID: "b", ProjectID: 1, ProjectName: "Harbour Tower", ScheduleStart: &start, Status: jobflag.StatusApproved},
	}
	if err := repo.SaveJobs(jobs); err != nil {
		t.Fatalf("SaveJobs failed: %v", err)
	}

	clock := chrono.FixedClock{At: now}
	flags := application.NewFlagService(repo, nil, nil, clock)
	if _, err := flags.Recalculate(); err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}

	service := application.NewAlertService(repo, clock)
	report, err := service.Report()
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if report.TotalFlagged != 1 {
		t.Errorf("expected 1 flagged, got %d", report.TotalFlagged)
	}
	if len(report.Projects) != 1 || report.Projects[0].ProjectID != 1 {
		t.Fatalf("expected project 1 in report, got %+v", report.Projects)
	}
	if report.Projects[0].ByReason["Not Started On Time"] != 1 {
		t.Errorf("expected reason count, got %v", report.Projects[0].ByReason)
	}
	if !report.GeneratedAt.Equal(now) {
		t.Errorf("expected report timestamped with clock, got %v", report.GeneratedAt)
	}
}
