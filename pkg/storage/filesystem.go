// Package storage implements filesystem-backed persistence for the
// .onsite/ workspace directory.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/onsite/pkg/domain"
	"github.com/felixgeelhaar/onsite/pkg/domain/events"
	"github.com/felixgeelhaar/onsite/pkg/domain/jobflag"
	"github.com/felixgeelhaar/onsite/pkg/domain/timesheet"
	"gopkg.in/yaml.v3"
)

const OnsiteDir = ".onsite"
const JobsFile = "jobs.yaml"
const FlagsFile = "flags.json"
const SummariesFile = "summaries.json"
const ConfigFile = "config.yaml"
const WebhookFile = "webhooks.yaml"
const EventsFile = "events.jsonl"
const FeedFile = "feed.jsonl"
const StatsFile = "stats.json"
const DeadLetterFile = "deadletters.jsonl"

type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is within the .onsite directory and prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	// Base directory is strictly root/.onsite
	baseDir := filepath.Join(r.root, OnsiteDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	// Check for traversal and ensure it's a direct child (no nested subdirs in .onsite for now)
	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, OnsiteDir)
	// G301: Use 0700 for directories
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create .onsite directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, OnsiteDir))
	return err == nil
}

// SaveJobs writes the job snapshot to .onsite/jobs.yaml in its raw
// string-typed record form.
func (r *FilesystemRepository) SaveJobs(jobs []jobflag.Job) error {
	path, err := r.ResolvePath(JobsFile)
	if err != nil {
		return err
	}

	records := make([]jobflag.JobRecord, 0, len(jobs))
	for _, job := range jobs {
		records = append(records, job.Record())
	}

	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal jobs: %w", err)
	}

	// G306: Use 0600 for files
	return os.WriteFile(path, data, 0600)
}

// LoadJobs reads the job snapshot, parsing timestamps leniently.
func (r *FilesystemRepository) LoadJobs() ([]jobflag.Job, error) {
	retryer := retry.New[[]jobflag.Job](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) ([]jobflag.Job, error) {
		path, err := r.ResolvePath(JobsFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return []jobflag.Job{}, nil
			}
			return nil, fmt.Errorf("failed to read jobs file: %w", err)
		}

		var records []jobflag.JobRecord
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal jobs: %w", err)
		}

		jobs := make([]jobflag.Job, 0, len(records))
		for _, record := range records {
			jobs = append(jobs, record.Job())
		}
		return jobs, nil
	})
}

// SaveFlags writes the flag cache to .onsite/flags.json. The cache is
// derived state: it is recomputed whenever jobs change or time advances.
func (r *FilesystemRepository) SaveFlags(flags map[string]jobflag.FlagResult) error {
	path, err := r.ResolvePath(FlagsFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(flags, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal flags: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// LoadFlags reads the flag cache. A missing file is an empty cache.
func (r *FilesystemRepository) LoadFlags() (map[string]jobflag.FlagResult, error) {
	path, err := r.ResolvePath(FlagsFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]jobflag.FlagResult{}, nil
		}
		return nil, fmt.Errorf("failed to read flags file: %w", err)
	}

	var flags map[string]jobflag.FlagResult
	if err := json.Unmarshal(data, &flags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flags: %w", err)
	}

	return flags, nil
}

// SaveSummaries writes the aggregation cache to .onsite/summaries.json.
func (r *FilesystemRepository) SaveSummaries(summaries []timesheet.ProjectSummary) error {
	path, err := r.ResolvePath(SummariesFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summaries: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// LoadSummaries reads the aggregation cache. A missing file is an empty cache.
func (r *FilesystemRepository) LoadSummaries() ([]timesheet.ProjectSummary, error) {
	path, err := r.ResolvePath(SummariesFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []timesheet.ProjectSummary{}, nil
		}
		return nil, fmt.Errorf("failed to read summaries file: %w", err)
	}

	var summaries []timesheet.ProjectSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summaries: %w", err)
	}

	return summaries, nil
}

// SaveConfig writes .onsite/config.yaml.
func (r *FilesystemRepository) SaveConfig(cfg *domain.Config) error {
	path, err := r.ResolvePath(ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// LoadConfig reads .onsite/config.yaml, falling back to defaults when absent.
func (r *FilesystemRepository) LoadConfig() (*domain.Config, error) {
	path, err := r.ResolvePath(ConfigFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// SaveWebhookConfig saves the webhook configuration to .onsite/webhooks.yaml.
func (r *FilesystemRepository) SaveWebhookConfig(config *events.WebhookConfig) error {
	path, err := r.ResolvePath(WebhookFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// LoadWebhookConfig loads the webhook configuration from .onsite/webhooks.yaml.
func (r *FilesystemRepository) LoadWebhookConfig() (*events.WebhookConfig, error) {
	path, err := r.ResolvePath(WebhookFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &events.WebhookConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read webhook config: %w", err)
	}

	var config events.WebhookConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal webhook config: %w", err)
	}

	return &config, nil
}

// UpdateIngestStats writes .onsite/stats.json.
func (r *FilesystemRepository) UpdateIngestStats(stats domain.IngestStats) error {
	path, err := r.ResolvePath(StatsFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ingest stats: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// LoadIngestStats reads .onsite/stats.json. A missing file is zero stats.
func (r *FilesystemRepository) LoadIngestStats() (*domain.IngestStats, error) {
	path, err := r.ResolvePath(StatsFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &domain.IngestStats{}, nil
		}
		return nil, fmt.Errorf("failed to read ingest stats: %w", err)
	}

	var stats domain.IngestStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingest stats: %w", err)
	}

	return &stats, nil
}
