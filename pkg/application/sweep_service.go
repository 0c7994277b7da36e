package application

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/onsite/pkg/domain"
	"github.com/felixgeelhaar/onsite/pkg/domain/events"
)

// SweepService periodically re-runs the flag recalculation so cached flags
// never go stale as wall-clock time advances. The flag calculation itself
// is pure; the sweep is the host-side scheduling around it.
type SweepService struct {
	repo      domain.WorkspaceRepository
	flags     *FlagService
	publisher events.EventPublisher
}

func NewSweepService(repo domain.WorkspaceRepository, flags *FlagService, publisher events.EventPublisher) *SweepService {
	return &SweepService{
		repo:      repo,
		flags:     flags,
		publisher: publisher,
	}
}

// Interval returns the configured sweep interval, defaulting to 5 minutes.
func (s *SweepService) Interval() time.Duration {
	cfg, err := s.repo.LoadConfig()
	if err != nil || cfg == nil || cfg.SweepMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(cfg.SweepMinutes) * time.Minute
}

// RunOnce performs a single sweep pass.
func (s *SweepService) RunOnce() (*RecalculateResult, error) {
	result, err := s.flags.Recalculate()
	if err != nil {
		return nil, fmt.Errorf("sweep recalculation: %w", err)
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(events.NewSweepCompleted(result.JobCount, result.FlaggedCount).Base())
	}

	return result, nil
}

// Run sweeps on the configured interval until the context is cancelled.
// The first pass runs immediately.
func (s *SweepService) Run(ctx context.Context) error {
	if _, err := s.RunOnce(); err != nil {
		return err
	}

	ticker := time.NewTicker(s.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(); err != nil {
				return err
			}
		}
	}
}
