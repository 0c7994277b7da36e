// Package jobflag computes schedule-adherence flags for jobs by comparing
// scheduled start/end times against actual start/end times.
package jobflag

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/onsite/pkg/domain/chrono"
)

// JobStatus is the lifecycle status of a job in the external job store.
type JobStatus string

const (
	StatusSchedule        JobStatus = "schedule"
	StatusActive          JobStatus = "active"
	StatusWaitingApproval JobStatus = "waiting_approval"
	StatusApproved        JobStatus = "approved"
	StatusRejected        JobStatus = "rejected"
)

// AllJobStatuses returns all valid job statuses.
func AllJobStatuses() []JobStatus {
	return []JobStatus{
		StatusSchedule,
		StatusActive,
		StatusWaitingApproval,
		StatusApproved,
		StatusRejected,
	}
}

// IsValid returns true if the status is a valid job status.
func (s JobStatus) IsValid() bool {
	switch s {
	case StatusSchedule, StatusActive, StatusWaitingApproval, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s JobStatus) String() string {
	return string(s)
}

// IsFinal returns true if the job has been through review (approved or
// rejected) and no further time reconciliation applies.
func (s JobStatus) IsFinal() bool {
	return s == StatusApproved || s == StatusRejected
}

// SuppressesFlags returns true if jobs in this status are never flagged.
func (s JobStatus) SuppressesFlags() bool {
	return s.IsFinal()
}

// DisplayName returns a human-readable display name for the status.
func (s JobStatus) DisplayName() string {
	switch s {
	case StatusSchedule:
		return "Scheduled"
	case StatusActive:
		return "Active"
	case StatusWaitingApproval:
		return "Waiting Approval"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	default:
		return string(s)
	}
}

// ParseJobStatus parses a string into a JobStatus.
func ParseJobStatus(str string) (JobStatus, error) {
	status := JobStatus(str)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid job status: %s", str)
	}
	return status, nil
}

// MarshalJSON implements json.Marshaler.
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler.
// An empty string is accepted as schedule so that partially-filled external
// rows remain readable.
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	if str == "" {
		*s = StatusSchedule
		return nil
	}

	status := JobStatus(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid job status: %s", str)
	}

	*s = status
	return nil
}

// Job is the calculator's read-only view of a job row in the external
// job-tracking store. Every time field except ScheduleStart is optional;
// the calculator never mutates a Job.
type Job struct {
	ID            string     `json:"id" yaml:"id"`
	Name          string     `json:"name,omitempty" yaml:"name,omitempty"`
	ProjectID     int64      `json:"projectId,omitempty" yaml:"project_id,omitempty"`
	ProjectName   string     `json:"projectName,omitempty" yaml:"project_name,omitempty"`
	ScheduleStart *time.Time `json:"scheduleStart" yaml:"schedule_start"`
	ScheduleEnd   *time.Time `json:"scheduleEnd" yaml:"schedule_end"`
	ActualStart   *time.Time `json:"actualStart" yaml:"actual_start"`
	ActualEnd     *time.Time `json:"actualEnd" yaml:"actual_end"`
	Status        JobStatus  `json:"status" yaml:"status"`
}

// HasStarted returns true if an actual start time is recorded.
func (j Job) HasStarted() bool {
	return j.ActualStart != nil && !j.ActualStart.IsZero()
}

// HasEnded returns true if an actual end time is recorded.
func (j Job) HasEnded() bool {
	return j.ActualEnd != nil && !j.ActualEnd.IsZero()
}

// JobRecord is the raw, string-typed shape of a job row as external stores
// serialize it. Timestamps are parsed leniently at this boundary; unparsable
// values degrade to absent rather than erroring.
type JobRecord struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	ProjectID     int64  `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	ProjectName   string `json:"project_name,omitempty" yaml:"project_name,omitempty"`
	ScheduleStart string `json:"schedule_start" yaml:"schedule_start"`
	ScheduleEnd   string `json:"schedule_end,omitempty" yaml:"schedule_end,omitempty"`
	ActualStart   string `json:"actual_start,omitempty" yaml:"actual_start,omitempty"`
	ActualEnd     string `json:"actual_end,omitempty" yaml:"actual_end,omitempty"`
	Status        string `json:"status" yaml:"status"`
}

// Job converts the raw record into a calculator-ready Job.
func (r JobRecord) Job() Job {
	job := Job{
		ID:          r.ID,
		Name:        r.Name,
		ProjectID:   r.ProjectID,
		ProjectName: r.ProjectName,
		Status:      JobStatus(r.Status),
	}
	if !job.Status.IsValid() {
		job.Status = StatusSchedule
	}
	job.ScheduleStart = parseOptional(r.ScheduleStart)
	job.ScheduleEnd = parseOptional(r.ScheduleEnd)
	job.ActualStart = parseOptional(r.ActualStart)
	job.ActualEnd = parseOptional(r.ActualEnd)
	return job
}

// Record converts a Job back into its string-typed storage shape.
func (j Job) Record() JobRecord {
	r := JobRecord{
		ID:          j.ID,
		Name:        j.Name,
		ProjectID:   j.ProjectID,
		ProjectName: j.ProjectName,
		Status:      string(j.Status),
	}
	r.ScheduleStart = formatOptional(j.ScheduleStart)
	r.ScheduleEnd = formatOptional(j.ScheduleEnd)
	r.ActualStart = formatOptional(j.ActualStart)
	r.ActualEnd = formatOptional(j.ActualEnd)
	return r
}

func parseOptional(s string) *time.Time {
	t, ok := chrono.ParseString(s)
	if !ok {
		return nil
	}
	return &t
}

func formatOptional(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
