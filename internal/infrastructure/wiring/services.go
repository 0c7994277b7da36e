package wiring

import (
	"fmt"
	"path/filepath"

	"github.com/felixgeelhaar/onsite/pkg/application"
	"github.com/felixgeelhaar/onsite/pkg/domain/chrono"
	"github.com/felixgeelhaar/onsite/pkg/domain/events"
	"github.com/felixgeelhaar/onsite/pkg/domain/timesheet"
	"github.com/felixgeelhaar/onsite/pkg/storage"
)

// AppServices exposes the application layer services wired together with a
// workspace.
type AppServices struct {
	Workspace *Workspace
	Timesheet *application.TimesheetService
	Flags     *application.FlagService
	Sweep     *application.SweepService
	Alerts    *application.AlertService
	Audit     *application.AuditService
	Events    events.EventStore
	Feed      *storage.FileFeedStore
}

// BuildAppServices constructs the workbench of services for a repo root. The
// ledger is restored from the persisted feed so reports survive restarts.
func BuildAppServices(root string) (*AppServices, error) {
	workspace := NewWorkspace(root)
	onsiteDir := filepath.Join(root, storage.OnsiteDir)

	feed, err := storage.NewFileFeedStore(onsiteDir)
	if err != nil {
		return nil, fmt.Errorf("open feed store: %w", err)
	}
	eventStore, err := storage.NewFileEventStore(onsiteDir)
	if err != nil {
		return nil, fmt.Errorf("open event store: %w", err)
	}

	// Persist every published event into the hash-chained store.
	workspace.Publisher.Subscribe(func(e *events.BaseEvent) error {
		return eventStore.Append(e)
	})

	timesheetSvc := application.NewTimesheetService(
		workspace.Repo, feed, timesheet.NewLedger(nil), workspace.Audit, workspace.Publisher)
	if err := timesheetSvc.Restore(); err != nil {
		return nil, fmt.Errorf("restore ledger: %w", err)
	}

	flagSvc := application.NewFlagService(workspace.Repo, workspace.Audit, workspace.Publisher, chrono.SystemClock{})

	services := &AppServices{
		Workspace: workspace,
		Timesheet: timesheetSvc,
		Flags:     flagSvc,
		Sweep:     application.NewSweepService(workspace.Repo, flagSvc, workspace.Publisher),
		Alerts:    application.NewAlertService(workspace.Repo, chrono.SystemClock{}),
		Audit:     workspace.Audit,
		Events:    eventStore,
		Feed:      feed,
	}

	return services, nil
}
