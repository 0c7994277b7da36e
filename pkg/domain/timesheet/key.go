package timesheet

import "fmt"

// WorkOrderKey identifies the bucket a status event belongs to within a
// worker's activity on a project. It is a tagged union: either a real work
// order ID, or a synthetic bucket built from worker, project, and cost
// center for events logged without a work order. A struct key rather than a
// concatenated string rules out accidental collisions between the two
// shapes.
type WorkOrderKey struct {
	HasWorkOrder bool
	WorkOrderID  int64

	// Synthetic bucket identity, populated only when HasWorkOrder is
	// false. Ad hoc work under different cost centers stays separated.
	WorkerID     int64
	ProjectID    int64
	CostCenterID int64
}

// NoWorkOrderKey builds the synthetic bucket key for ad hoc work.
func NoWorkOrderKey(workerID, projectID, costCenterID int64) WorkOrderKey {
	return WorkOrderKey{
		WorkerID:     workerID,
		ProjectID:    projectID,
		CostCenterID: costCenterID,
	}
}

// KeyForEvent derives the grouping key from an event.
func KeyForEvent(e StatusEvent) WorkOrderKey {
	if e.WorkOrderID != nil {
		return WorkOrderKey{HasWorkOrder: true, WorkOrderID: *e.WorkOrderID}
	}
	var costCenter int64
	if e.CostCenterID != nil {
		costCenter = *e.CostCenterID
	}
	return NoWorkOrderKey(e.WorkerID, e.ProjectID, costCenter)
}

// String renders the key for logs and diagnostics.
func (k WorkOrderKey) String() string {
	if k.HasWorkOrder {
		return fmt.Sprintf("wo-%d", k.WorkOrderID)
	}
	return fmt.Sprintf("adhoc-%d-%d-%d", k.ProjectID, k.WorkerID, k.CostCenterID)
}

// Less orders keys deterministically: real work orders first by ID, then
// synthetic buckets by cost center.
func (k WorkOrderKey) Less(other WorkOrderKey) bool {
	if k.HasWorkOrder != other.HasWorkOrder {
		return k.HasWorkOrder
	}
	if k.HasWorkOrder {
		return k.WorkOrderID < other.WorkOrderID
	}
	return k.CostCenterID < other.CostCenterID
}
