package application

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/onsite/pkg/domain"
	"github.com/felixgeelhaar/onsite/pkg/domain/chrono"
	"github.com/felixgeelhaar/onsite/pkg/domain/events"
	"github.com/felixgeelhaar/onsite/pkg/domain/jobflag"
)

// FlagService recalculates schedule-adherence flags across the job
// snapshot and maintains the persisted flag cache. The cache is derived
// state; every recalculation replaces it wholesale.
type FlagService struct {
	repo      domain.WorkspaceRepository
	audit     domain.AuditLogger
	publisher events.EventPublisher
	clock     chrono.Clock
}

func NewFlagService(
	repo domain.WorkspaceRepository,
	audit domain.AuditLogger,
	publisher events.EventPublisher,
	clock chrono.Clock,
) *FlagService {
	if clock == nil {
		clock = chrono.SystemClock{}
	}
	return &FlagService{
		repo:      repo,
		audit:     audit,
		publisher: publisher,
		clock:     clock,
	}
}

// RecalculateResult reports one flag recalculation pass.
type RecalculateResult struct {
	JobCount     int                           `json:"jobCount"`
	FlaggedCount int                           `json:"flaggedCount"`
	NewlyFlagged []string                      `json:"newlyFlagged"`
	Cleared      []string                      `json:"cleared"`
	Flags        map[string]jobflag.FlagResult `json:"flags"`
}

// Recalculate evaluates every job at the current clock reading.
func (s *FlagService) Recalculate() (*RecalculateResult, error) {
	return s.RecalculateAt(s.clock.Now())
}

// RecalculateAt evaluates every job at an explicit instant, diffs the
// outcome against the cached flags, and persists the new cache. Newly
// flagged and newly cleared jobs are reported so alert transports can
// notify on transitions rather than on every pass.
func (s *FlagService) RecalculateAt(now time.Time) (*RecalculateResult, error) {
	jobs, err := s.repo.LoadJobs()
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}

	previous, err := s.repo.LoadFlags()
	if err != nil {
		return nil, fmt.Errorf("load flag cache: %w", err)
	}

	calculator := s.calculator()
	flags := calculator.CalculateBatch(jobs, now)

	result := &RecalculateResult{
		JobCount: len(flags),
		Flags:    flags,
	}

	projectIDs := make(map[string]int64, len(jobs))
	for _, job := range jobs {
		projectIDs[job.ID] = job.ProjectID
	}

	for id, flag := range flags {
		if flag.IsFlagged {
			result.FlaggedCount++
		}
		was := previous[id].IsFlagged
		switch {
		case flag.IsFlagged && !was:
			result.NewlyFlagged = append(result.NewlyFlagged, id)
			s.publishFlagged(id, projectIDs[id], flag)
		case !flag.IsFlagged && was:
			result.Cleared = append(result.Cleared, id)
			s.publishCleared(id)
		}
	}

	if err := s.repo.SaveFlags(flags); err != nil {
		return nil, fmt.Errorf("save flag cache: %w", err)
	}

	if s.audit != nil {
		if err := s.audit.Log("flags.recalculated", "system", map[string]interface{}{
			"job_count":     result.JobCount,
			"flagged_count": result.FlaggedCount,
			"newly_flagged": len(result.NewlyFlagged),
			"cleared":       len(result.Cleared),
		}); err != nil {
			return nil, fmt.Errorf("log recalculation: %w", err)
		}
	}

	return result, nil
}

// Evaluate computes the flag for a single job without touching the cache.
func (s *FlagService) Evaluate(job jobflag.Job) jobflag.FlagResult {
	return s.calculator().Calculate(job, s.clock.Now())
}

// Flags returns the persisted flag cache.
func (s *FlagService) Flags() (map[string]jobflag.FlagResult, error) {
	return s.repo.LoadFlags()
}

func (s *FlagService) calculator() *jobflag.Calculator {
	cfg, err := s.repo.LoadConfig()
	if err != nil || cfg == nil {
		return jobflag.NewCalculator()
	}
	return jobflag.NewCalculatorWithThreshold(time.Duration(cfg.ThresholdMinutes) * time.Minute)
}

func (s *FlagService) publishFlagged(jobID string, projectID int64, flag jobflag.FlagResult) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(events.NewJobFlagged(jobID, projectID, flag.FlagReason, flag.DelayMinutes).Base())
}

func (s *FlagService) publishCleared(jobID string) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(events.NewJobUnflagged(jobID).Base())
}
