// Package domain holds the workspace-level contracts shared by the
// application services and the storage layer.
package domain

import (
	"github.com/felixgeelhaar/onsite/pkg/domain/events"
	"github.com/felixgeelhaar/onsite/pkg/domain/jobflag"
	"github.com/felixgeelhaar/onsite/pkg/domain/timesheet"
)

// WorkspaceRepository handles the persistence of onsite artifacts in the .onsite/ directory.
type WorkspaceRepository interface {
	Initialize() error
	IsInitialized() bool
	SaveJobs(jobs []jobflag.Job) error
	LoadJobs() ([]jobflag.Job, error)
	SaveFlags(flags map[string]jobflag.FlagResult) error
	LoadFlags() (map[string]jobflag.FlagResult, error)
	SaveSummaries(summaries []timesheet.ProjectSummary) error
	LoadSummaries() ([]timesheet.ProjectSummary, error)
	SaveConfig(cfg *Config) error
	LoadConfig() (*Config, error)
	SaveWebhookConfig(cfg *events.WebhookConfig) error
	LoadWebhookConfig() (*events.WebhookConfig, error)
	RecordEvent(event Event) error
	LoadEvents() ([]Event, error)
	UpdateIngestStats(stats IngestStats) error
	LoadIngestStats() (*IngestStats, error)
}

// FeedStore persists the raw status-event feed.
type FeedStore interface {
	// Append stores new events, assigning each a monotonic sequence.
	Append(events []timesheet.StatusEvent) error

	// LoadAll returns every stored event in append order.
	LoadAll() ([]timesheet.StatusEvent, error)

	// LoadSince returns events with a sequence greater than the given one.
	LoadSince(sequence int64) ([]timesheet.StatusEvent, error)

	// LastSequence returns the highest assigned sequence.
	LastSequence() (int64, error)

	// Count returns the number of stored events.
	Count() (int, error)
}

// Config is the serialized representation of config.yaml.
type Config struct {
	ThresholdMinutes int    `yaml:"threshold_minutes"` // schedule grace period, default 10
	SweepMinutes     int    `yaml:"sweep_minutes"`     // flag refresh interval, default 5
	DashboardAddr    string `yaml:"dashboard_addr"`    // e.g. ":8460"
	FeedDropDir      string `yaml:"feed_drop_dir"`     // watched directory for feed files
}

// DefaultConfig returns the configuration used when config.yaml is absent.
func DefaultConfig() *Config {
	return &Config{
		ThresholdMinutes: 10,
		SweepMinutes:     5,
		DashboardAddr:    ":8460",
	}
}
