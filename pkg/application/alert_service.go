package application

import (
	"fmt"

	"github.com/felixgeelhaar/onsite/pkg/domain"
	"github.com/felixgeelhaar/onsite/pkg/domain/alerts"
	"github.com/felixgeelhaar/onsite/pkg/domain/chrono"
)

// AlertService builds the dashboard alert rollup from the current job
// snapshot and flag cache.
type AlertService struct {
	repo  domain.WorkspaceRepository
	clock chrono.Clock
}

func NewAlertService(repo domain.WorkspaceRepository, clock chrono.Clock) *AlertService {
	if clock == nil {
		clock = chrono.SystemClock{}
	}
	return &AlertService{repo: repo, clock: clock}
}

// Report counts flagged jobs per project by reason.
func (s *AlertService) Report() (*alerts.Report, error) {
	jobs, err := s.repo.LoadJobs()
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}

	flags, err := s.repo.LoadFlags()
	if err != nil {
		return nil, fmt.Errorf("load flag cache: %w", err)
	}

	return alerts.BuildReport(jobs, flags, s.clock.Now()), nil
}
