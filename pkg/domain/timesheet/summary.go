package timesheet

import (
	"time"

	"github.com/felixgeelhaar/onsite/pkg/domain/chrono"
)

// ProjectStatus is the rollup status of a project's work orders.
type ProjectStatus string

const (
	ProjectCompleted  ProjectStatus = "Completed"
	ProjectInProgress ProjectStatus = "In Progress"
)

// String returns the string representation of the status.
func (s ProjectStatus) String() string {
	return string(s)
}

// WorkOrderSummary is the elapsed-time rollup for one work-order bucket.
// The status triple reflects the last closing event, not merely the last
// event. Field names are a wire contract with dashboard consumers.
type WorkOrderSummary struct {
	WorkOrderID       *int64     `json:"workOrderId"`
	WorkOrderName     string     `json:"workOrderName"`
	CostCenterID      *int64     `json:"costCenterId"`
	Status            string     `json:"status"`
	StatusCode        StatusCode `json:"statusCode"`
	StatusColor       string     `json:"statusColor"`
	WorkMinutes       int        `json:"workMinutes"`
	BreakMinutes      int        `json:"breakMinutes"`
	StartTime         *time.Time `json:"startTime"`
	EndTime           *time.Time `json:"endTime"`
	IsCurrentlyActive bool       `json:"isCurrentlyActive"`
	LogCount          int        `json:"logCount"`
}

// WorkHours returns worked time as fractional hours.
func (s WorkOrderSummary) WorkHours() float64 {
	return chrono.Hours(s.WorkMinutes)
}

// BreakHours returns break time as fractional hours.
func (s WorkOrderSummary) BreakHours() float64 {
	return chrono.Hours(s.BreakMinutes)
}

// IsCompleted reports whether the work order reached a terminal status.
func (s WorkOrderSummary) IsCompleted() bool {
	return IsCompletingStatus(s.StatusCode, s.Status)
}

// WorkerSummary rolls up one worker's work orders on a project.
type WorkerSummary struct {
	WorkerID          int64              `json:"workerId"`
	WorkerName        string             `json:"workerName"`
	WorkOrders        []WorkOrderSummary `json:"workOrders"`
	TotalWorkMinutes  int                `json:"totalWorkMinutes"`
	TotalBreakMinutes int                `json:"totalBreakMinutes"`
	LastActivity      time.Time          `json:"lastActivity"`
}

// ProjectSummary is the top-level aggregation result for one project.
type ProjectSummary struct {
	ProjectID         int64           `json:"projectId"`
	ProjectName       string          `json:"projectName"`
	Workers           []WorkerSummary `json:"workers"`
	WorkerCount       int             `json:"workerCount"`
	ProjectStatus     ProjectStatus   `json:"projectStatus"`
	LastActivity      time.Time       `json:"lastActivity"`
	TotalWorkMinutes  int             `json:"totalWorkMinutes"`
	TotalBreakMinutes int             `json:"totalBreakMinutes"`
}

// IsCompleted reports whether every work order under every worker reached
// a terminal status. Aggregation only produces a project from at least one
// event, so every summary carries at least one work order.
func (s ProjectSummary) IsCompleted() bool {
	return s.ProjectStatus == ProjectCompleted
}
