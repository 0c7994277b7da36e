package timesheet

import (
	"sort"
	"time"

	"github.com/felixgeelhaar/onsite/pkg/domain/chrono"
)

// Aggregator turns a flat slice of status events into per-project,
// per-worker, per-work-order summaries. It is stateless between calls and
// never mutates its input; the clock only matters when a work order has a
// live open session at the end of the stream.
type Aggregator struct {
	clock chrono.Clock
}

// NewAggregator creates an aggregator using the system clock.
func NewAggregator() *Aggregator {
	return &Aggregator{clock: chrono.SystemClock{}}
}

// NewAggregatorWithClock creates an aggregator with an injectable clock.
func NewAggregatorWithClock(clock chrono.Clock) *Aggregator {
	if clock == nil {
		clock = chrono.SystemClock{}
	}
	return &Aggregator{clock: clock}
}

// Aggregate groups events into project summaries, extending any live
// session to the current clock reading.
func (a *Aggregator) Aggregate(events []StatusEvent) []ProjectSummary {
	return a.AggregateAt(events, a.clock.Now())
}

// AggregateAt is Aggregate with an explicit reference instant, used by
// tests and replays. Results do not depend on input order: events are
// sorted chronologically before processing, with input order as the tie
// break for identical timestamps.
func (a *Aggregator) AggregateAt(events []StatusEvent, referenceNow time.Time) []ProjectSummary {
	sorted := make([]StatusEvent, 0, len(events))
	for _, e := range events {
		if e.IsValid() {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LoggedAt.Before(sorted[j].LoggedAt)
	})

	type workerBucket struct {
		name   string
		keys   []WorkOrderKey
		groups map[WorkOrderKey][]StatusEvent
		last   time.Time
	}
	type projectBucket struct {
		name      string
		workerIDs []int64
		workers   map[int64]*workerBucket
	}

	projects := make(map[int64]*projectBucket)
	var projectIDs []int64

	for _, e := range sorted {
		project, ok := projects[e.ProjectID]
		if !ok {
			project = &projectBucket{workers: make(map[int64]*workerBucket)}
			projects[e.ProjectID] = project
			projectIDs = append(projectIDs, e.ProjectID)
		}
		if e.ProjectName != "" {
			project.name = e.ProjectName
		}

		worker, ok := project.workers[e.WorkerID]
		if !ok {
			worker = &workerBucket{groups: make(map[WorkOrderKey][]StatusEvent)}
			project.workers[e.WorkerID] = worker
			project.workerIDs = append(project.workerIDs, e.WorkerID)
		}
		if e.WorkerName != "" {
			worker.name = e.WorkerName
		}
		if e.LoggedAt.After(worker.last) {
			worker.last = e.LoggedAt
		}

		key := KeyForEvent(e)
		if _, ok := worker.groups[key]; !ok {
			worker.keys = append(worker.keys, key)
		}
		worker.groups[key] = append(worker.groups[key], e)
	}

	sort.Slice(projectIDs, func(i, j int) bool { return projectIDs[i] < projectIDs[j] })

	summaries := make([]ProjectSummary, 0, len(projectIDs))
	for _, projectID := range projectIDs {
		project := projects[projectID]
		sort.Slice(project.workerIDs, func(i, j int) bool {
			return project.workerIDs[i] < project.workerIDs[j]
		})

		ps := ProjectSummary{
			ProjectID:     projectID,
			ProjectName:   project.name,
			ProjectStatus: ProjectCompleted,
		}

		for _, workerID := range project.workerIDs {
			worker := project.workers[workerID]
			sort.Slice(worker.keys, func(i, j int) bool {
				return worker.keys[i].Less(worker.keys[j])
			})

			ws := WorkerSummary{
				WorkerID:     workerID,
				WorkerName:   worker.name,
				LastActivity: worker.last,
			}
			for _, key := range worker.keys {
				wo := summarizeWorkOrder(key, worker.groups[key], referenceNow)
				ws.WorkOrders = append(ws.WorkOrders, wo)
				ws.TotalWorkMinutes += wo.WorkMinutes
				ws.TotalBreakMinutes += wo.BreakMinutes
				if !wo.IsCompleted() {
					ps.ProjectStatus = ProjectInProgress
				}
			}

			ps.Workers = append(ps.Workers, ws)
			ps.TotalWorkMinutes += ws.TotalWorkMinutes
			ps.TotalBreakMinutes += ws.TotalBreakMinutes
			if ws.LastActivity.After(ps.LastActivity) {
				ps.LastActivity = ws.LastActivity
			}
		}

		ps.WorkerCount = len(ps.Workers)
		summaries = append(summaries, ps)
	}

	return summaries
}

// summarizeWorkOrder folds one chronologically sorted event group through
// the session machine. Onsite opens a session, every other code closes it;
// breaks credit a flat allowance on top of worked time.
func summarizeWorkOrder(key WorkOrderKey, group []StatusEvent, referenceNow time.Time) WorkOrderSummary {
	summary := WorkOrderSummary{LogCount: len(group)}
	if len(group) == 0 {
		return summary
	}
	if key.HasWorkOrder {
		id := key.WorkOrderID
		summary.WorkOrderID = &id
	}
	for _, e := range group {
		if summary.WorkOrderName == "" {
			summary.WorkOrderName = e.WorkOrderName
		}
		if summary.CostCenterID == nil && e.CostCenterID != nil {
			id := *e.CostCenterID
			summary.CostCenterID = &id
		}
	}

	session, err := NewSessionMachine(firstWorkerID(group), key)
	if err != nil {
		// The machine definition is static; a build failure is a
		// programming error and the bucket reports zero time.
		return summary
	}

	for _, e := range group {
		if e.StatusCode.IsOnsite() {
			if !session.IsOpen() {
				session.Arrive(e.LoggedAt)
				if summary.StartTime == nil {
					at := e.LoggedAt
					summary.StartTime = &at
				}
			}
			continue
		}

		if session.IsOpen() {
			summary.WorkMinutes += chrono.RoundMinutes(session.Close(e.LoggedAt))
		}
		if e.StatusCode.IsBreak() {
			summary.BreakMinutes += BreakMinutes
		}
		at := e.LoggedAt
		summary.EndTime = &at
		summary.Status = e.StatusName
		summary.StatusCode = e.StatusCode
		summary.StatusColor = e.StatusColor
	}

	last := group[len(group)-1]
	if session.IsOpen() {
		if last.StatusCode.IsOnsite() {
			// Worker is still on site: extend the open session to the
			// reference instant. This is the only place live time accrues.
			summary.WorkMinutes += chrono.RoundMinutes(session.Close(referenceNow))
			at := referenceNow
			summary.EndTime = &at
			summary.IsCurrentlyActive = true
		} else {
			// Should not occur given the per-event closing above, but a
			// stuck session must not leak time past the last event.
			summary.WorkMinutes += chrono.RoundMinutes(session.Close(last.LoggedAt))
		}
	}

	// The status triple comes from the last closing event. Only when every
	// event is an onsite heartbeat does the literal last event stand in.
	if summary.StatusCode == 0 {
		summary.Status = last.StatusName
		summary.StatusCode = last.StatusCode
		summary.StatusColor = last.StatusColor
	}

	return summary
}

func firstWorkerID(group []StatusEvent) int64 {
	if len(group) == 0 {
		return 0
	}
	return group[0].WorkerID
}
