// Package alerts builds the dashboard alert rollup: flagged-job counts per
// project, keyed by flag reason.
package alerts

import (
	"sort"
	"time"

	"github.com/felixgeelhaar/onsite/pkg/domain/jobflag"
)

// ProjectAlerts is the flagged-job rollup for one project. ByReason is
// keyed by the literal flag reason strings; consumers match on them
// verbatim.
type ProjectAlerts struct {
	ProjectID    int64          `json:"projectId"`
	ProjectName  string         `json:"projectName"`
	TotalFlagged int            `json:"totalFlagged"`
	ByReason     map[string]int `json:"byReason"`
}

// Report is one alert aggregation run across all jobs.
type Report struct {
	Projects     []ProjectAlerts `json:"projects"`
	TotalFlagged int             `json:"totalFlagged"`
	GeneratedAt  time.Time       `json:"generatedAt"`
}

// HasAlerts reports whether any job is currently flagged.
func (r *Report) HasAlerts() bool {
	return r.TotalFlagged > 0
}

// BuildReport counts flagged jobs per project and reason. Jobs without a
// flag result, and unflagged results, contribute nothing. Projects are
// ordered by ID.
func BuildReport(jobs []jobflag.Job, flags map[string]jobflag.FlagResult, at time.Time) *Report {
	report := &Report{GeneratedAt: at}

	byProject := make(map[int64]*ProjectAlerts)
	var projectIDs []int64

	for _, job := range jobs {
		result, ok := flags[job.ID]
		if !ok || !result.IsFlagged {
			continue
		}

		project, ok := byProject[job.ProjectID]
		if !ok {
			project = &ProjectAlerts{
				ProjectID: job.ProjectID,
				ByReason:  make(map[string]int),
			}
			byProject[job.ProjectID] = project
			projectIDs = append(projectIDs, job.ProjectID)
		}
		if job.ProjectName != "" {
			project.ProjectName = job.ProjectName
		}

		project.ByReason[result.FlagReason.String()]++
		project.TotalFlagged++
		report.TotalFlagged++
	}

	sort.Slice(projectIDs, func(i, j int) bool { return projectIDs[i] < projectIDs[j] })
	for _, id := range projectIDs {
		report.Projects = append(report.Projects, *byProject[id])
	}

	return report
}
