package storage

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/onsite/pkg/domain"
	"github.com/felixgeelhaar/onsite/pkg/domain/events"
	"github.com/felixgeelhaar/onsite/pkg/domain/jobflag"
	"github.com/felixgeelhaar/onsite/pkg/domain/timesheet"
)

func TestFilesystemRepository_Initialize(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())

	if repo.IsInitialized() {
		t.Error("fresh workspace should not be initialized")
	}
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !repo.IsInitialized() {
		t.Error("workspace should be initialized after Initialize")
	}
}

func TestFilesystemRepository_ResolvePathRejectsTraversal(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())

	for _, name := range []string{"", "../escape.yaml", "sub/dir.yaml", "../../etc/passwd"} {
		if _, err := repo.ResolvePath(name); err == nil {
			t.Errorf("expected ResolvePath(%q) to fail", name)
		}
	}
	if _, err := repo.ResolvePath(JobsFile); err != nil {
		t.Errorf("expected plain filename to resolve, got %v", err)
	}
}

func TestFilesystemRepository_JobsRoundTrip(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	start := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	jobs := []jobflag.Job{
		{
			ID:            "job-1",
			Name:          "Fit-off level 3",
			ProjectID:     77,
			ProjectName:   "Harbour Tower",
			ScheduleStart: &start,
			Status:        jobflag.StatusActive,
		},
	}

	if err := repo.SaveJobs(jobs); err != nil {
		t.Fatalf("SaveJobs failed: %v", err)
	}

	loaded, err := repo.LoadJobs()
	if err != nil {
		t.Fatalf("LoadJobs failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 job, got %d", len(loaded))
	}
	if loaded[0].ID != "job-1" || loaded[0].Status != jobflag.StatusActive {
		t.Errorf("job mismatch: %+v", loaded[0])
	}
	if loaded[0].ScheduleStart == nil || !loaded[0].ScheduleStart.Equal(start) {
		t.Errorf("schedule start mismatch: %v", loaded[0].ScheduleStart)
	}
	if loaded[0].ActualStart != nil {
		t.Error("absent actual start must stay absent")
	}
}

func TestFilesystemRepository_LoadJobsMissingFile(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	jobs, err := repo.LoadJobs()
	if err != nil {
		t.Fatalf("LoadJobs on empty workspace failed: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(jobs))
	}
}

func TestFilesystemRepository_FlagsRoundTrip(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	flags := map[string]jobflag.FlagResult{
		"job-1": {IsFlagged: true, FlagReason: jobflag.ReasonStartedLate, DelayMinutes: 25},
		"job-2": {},
	}
	if err := repo.SaveFlags(flags); err != nil {
		t.Fatalf("SaveFlags failed: %v", err)
	}

	loaded, err := repo.LoadFlags()
	if err != nil {
		t.Fatalf("LoadFlags failed: %v", err)
	}
	if loaded["job-1"] != flags["job-1"] || loaded["job-2"] != flags["job-2"] {
		t.Errorf("flag cache mismatch: %+v", loaded)
	}
}

func TestFilesystemRepository_SummariesRoundTrip(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	summaries := []timesheet.ProjectSummary{
		{
			ProjectID:        1,
			ProjectName:      "Harbour Tower",
			ProjectStatus:    timesheet.ProjectInProgress,
			WorkerCount:      1,
			TotalWorkMinutes: 210,
		},
	}
	if err := repo.SaveSummaries(summaries); err != nil {
		t.Fatalf("SaveSummaries failed: %v", err)
	}

	loaded, err := repo.LoadSummaries()
	if err != nil {
		t.Fatalf("LoadSummaries failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].TotalWorkMinutes != 210 {
		t.Errorf("summary cache mismatch: %+v", loaded)
	}
}

func TestFilesystemRepository_ConfigDefaults(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	cfg, err := repo.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ThresholdMinutes != 10 || cfg.SweepMinutes != 5 {
		t.Errorf("expected default config, got %+v", cfg)
	}

	cfg.SweepMinutes = 2
	if err := repo.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := repo.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.SweepMinutes != 2 {
		t.Errorf("expected sweep 2, got %d", loaded.SweepMinutes)
	}
}

func TestFilesystemRepository_WebhookConfig(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	cfg, err := repo.LoadWebhookConfig()
	if err != nil {
		t.Fatalf("LoadWebhookConfig on empty workspace failed: %v", err)
	}
	if len(cfg.Webhooks) != 0 {
		t.Errorf("expected empty webhook config, got %+v", cfg)
	}

	cfg.Webhooks = append(cfg.Webhooks, events.WebhookEndpoint{
		Name:    "alerts",
		URL:     "https://example.com/hook",
		Enabled: true,
	})
	if err := repo.SaveWebhookConfig(cfg); err != nil {
		t.Fatalf("SaveWebhookConfig failed: %v", err)
	}

	loaded, err := repo.LoadWebhookConfig()
	if err != nil {
		t.Fatalf("LoadWebhookConfig failed: %v", err)
	}
	if len(loaded.Webhooks) != 1 || loaded.Webhooks[0].Name != "alerts" {
		t.Errorf("webhook config mismatch: %+v", loaded)
	}
}

func TestFilesystemRepository_AuditEvents(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	event := domain.Event{
		ID:        "evt-1",
		Timestamp: time.Now(),
		Action:    "flags.recalculated",
		Actor:     "system",
		Metadata:  map[string]interface{}{"job_count": 3},
	}
	if err := repo.RecordEvent(event); err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}

	loaded, err := repo.LoadEvents()
	if err != nil {
		t.Fatalf("LoadEvents failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Action != "flags.recalculated" {
		t.Errorf("audit log mismatch: %+v", loaded)
	}
}

func TestFilesystemRepository_IngestStats(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	stats, err := repo.LoadIngestStats()
	if err != nil {
		t.Fatalf("LoadIngestStats on empty workspace failed: %v", err)
	}
	if stats.TotalIngests != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}

	stats.TotalIngests = 1
	stats.TotalEvents = 42
	stats.LastIngestAt = time.Now()
	if err := repo.UpdateIngestStats(*stats); err != nil {
		t.Fatalf("UpdateIngestStats failed: %v", err)
	}

	loaded, err := repo.LoadIngestStats()
	if err != nil {
		t.Fatalf("LoadIngestStats failed: %v", err)
	}
	if loaded.TotalEvents != 42 {
		t.Errorf("expected 42 events, got %d", loaded.TotalEvents)
	}
}
