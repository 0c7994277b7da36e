package timesheet

import (
	"time"

	"github.com/felixgeelhaar/onsite/pkg/domain/chrono"
)

// Row is one flat line of a summary tree, one per work-order bucket. It is
// a pure projection for tables and exports; no business logic happens here.
type Row struct {
	ProjectID         int64      `json:"projectId"`
	ProjectName       string     `json:"projectName"`
	WorkerID          int64      `json:"workerId"`
	WorkerName        string     `json:"workerName"`
	WorkOrderID       *int64     `json:"workOrderId"`
	WorkOrderName     string     `json:"workOrderName"`
	CostCenterID      *int64     `json:"costCenterId"`
	Status            string     `json:"status"`
	StatusCode        StatusCode `json:"statusCode"`
	WorkMinutes       int        `json:"workMinutes"`
	BreakMinutes      int        `json:"breakMinutes"`
	WorkHours         string     `json:"workHours"`
	BreakHours        string     `json:"breakHours"`
	StartTime         *time.Time `json:"startTime"`
	EndTime           *time.Time `json:"endTime"`
	IsCurrentlyActive bool       `json:"isCurrentlyActive"`
	LogCount          int        `json:"logCount"`
}

// Rows flattens summaries into display rows, preserving the deterministic
// project, worker, and work-order ordering of the input.
func Rows(summaries []ProjectSummary) []Row {
	var rows []Row
	for _, project := range summaries {
		for _, worker := range project.Workers {
			for _, wo := range worker.WorkOrders {
				rows = append(rows, Row{
					ProjectID:         project.ProjectID,
					ProjectName:       project.ProjectName,
					WorkerID:          worker.WorkerID,
					WorkerName:        worker.WorkerName,
					WorkOrderID:       wo.WorkOrderID,
					WorkOrderName:     wo.WorkOrderName,
					CostCenterID:      wo.CostCenterID,
					Status:            wo.Status,
					StatusCode:        wo.StatusCode,
					WorkMinutes:       wo.WorkMinutes,
					BreakMinutes:      wo.BreakMinutes,
					WorkHours:         chrono.FormatHours(wo.WorkMinutes),
					BreakHours:        chrono.FormatHours(wo.BreakMinutes),
					StartTime:         wo.StartTime,
					EndTime:           wo.EndTime,
					IsCurrentlyActive: wo.IsCurrentlyActive,
					LogCount:          wo.LogCount,
				})
			}
		}
	}
	return rows
}
