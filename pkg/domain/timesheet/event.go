// Package timesheet aggregates raw worker status events into per-project,
// per-worker, per-work-order time summaries.
package timesheet

import (
	"time"
)

// StatusCode is the numeric code a field device reports with each status
// change. The codes below are the ones the aggregation logic interprets;
// any other code is treated as a generic "no longer on site" transition.
type StatusCode int

const (
	// StatusOnsite marks the worker as present and working. It opens a
	// work session.
	StatusOnsite StatusCode = 40

	// StatusBreak closes any open session and credits a flat break
	// allowance on top of worked time.
	StatusBreak StatusCode = 45

	// StatusEndOfDay closes the working day for the work order.
	StatusEndOfDay StatusCode = 51

	// StatusCompleted marks the work order as finished.
	StatusCompleted StatusCode = 70
)

// BreakMinutes is the flat allowance credited per break event.
const BreakMinutes = 5

// IsOnsite returns true for the session-opening code.
func (c StatusCode) IsOnsite() bool {
	return c == StatusOnsite
}

// IsBreak returns true for the break code.
func (c StatusCode) IsBreak() bool {
	return c == StatusBreak
}

// IsCompleting returns true for codes that finish a work order outright.
func (c StatusCode) IsCompleting() bool {
	return c == StatusEndOfDay || c == StatusCompleted
}

// completingStatusNames are status labels that also finish a work order,
// independent of the numeric code. Devices from older fleets report these
// names with vendor-specific codes.
var completingStatusNames = map[string]bool{
	"Completed":  true,
	"End Of Day": true,
}

// IsCompletingStatus reports whether a code/name pair finishes a work order.
func IsCompletingStatus(code StatusCode, name string) bool {
	return code.IsCompleting() || completingStatusNames[name]
}

// StatusEvent is one status-change record from the field event feed.
// WorkOrderID and CostCenterID are nil when the event was logged against
// the project as a whole rather than a specific work order.
type StatusEvent struct {
	Sequence      int64      `json:"sequence,omitempty"`
	WorkerID      int64      `json:"workerId"`
	WorkerName    string     `json:"workerName"`
	ProjectID     int64      `json:"projectId"`
	ProjectName   string     `json:"projectName"`
	WorkOrderID   *int64     `json:"workOrderId"`
	WorkOrderName string     `json:"workOrderName,omitempty"`
	CostCenterID  *int64     `json:"costCenterId"`
	StatusCode    StatusCode `json:"statusCode"`
	StatusName    string     `json:"statusName"`
	StatusColor   string     `json:"statusColor,omitempty"`
	LoggedAt      time.Time  `json:"loggedAt"`
}

// IsValid reports whether the event carries the minimum fields the
// aggregation needs. Invalid events are skipped silently; a single bad
// record must never sink a whole feed. A zero status code means the feed
// row had no status at all, so the event can neither open nor close a
// session and is dropped too.
func (e StatusEvent) IsValid() bool {
	if e.WorkerID == 0 || e.ProjectID == 0 {
		return false
	}
	if e.StatusCode == 0 {
		return false
	}
	if e.LoggedAt.IsZero() {
		return false
	}
	return true
}

// IsCompleting reports whether this event finishes its work order.
func (e StatusEvent) IsCompleting() bool {
	return IsCompletingStatus(e.StatusCode, e.StatusName)
}
