package application

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/onsite/pkg/domain"
	"github.com/felixgeelhaar/onsite/pkg/domain/chrono"
	"github.com/felixgeelhaar/onsite/pkg/domain/events"
	"github.com/felixgeelhaar/onsite/pkg/domain/timesheet"
)

// feedSchemaJSON is the contract for incoming status-log pages. Work order
// fields are optional because ad hoc work is logged without one; everything
// else the aggregator needs is required up front so bad pages are rejected
// whole rather than half-ingested.
const feedSchemaJSON = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["Staff", "Status", "DateLogged"],
    "properties": {
      "Staff": {
        "type": "object",
        "required": ["ID"],
        "properties": {
          "ID": { "type": "integer" },
          "Name": { "type": "string" }
        }
      },
      "WorkOrder": {
        "type": ["object", "null"],
        "properties": {
          "ID": { "type": ["integer", "null"] },
          "Name": { "type": "string" },
          "ProjectID": { "type": "integer" },
          "ProjectName": { "type": "string" },
          "CostCenterID": { "type": ["integer", "null"] }
        }
      },
      "Status": {
        "type": "object",
        "required": ["ID"],
        "properties": {
          "ID": { "type": "integer" },
          "Name": { "type": "string" },
          "Color": { "type": "string" }
        }
      },
      "DateLogged": { "type": ["string", "number"] }
    }
  }
}`

var feedSchemaLoader = gojsonschema.NewStringLoader(feedSchemaJSON)

// FeedItem is the raw shape of one status-log row as the external feed
// serializes it.
type FeedItem struct {
	Staff struct {
		ID   int64  `json:"ID"`
		Name string `json:"Name"`
	} `json:"Staff"`
	WorkOrder *struct {
		ID           *int64 `json:"ID"`
		Name         string `json:"Name"`
		ProjectID    int64  `json:"ProjectID"`
		ProjectName  string `json:"ProjectName"`
		CostCenterID *int64 `json:"CostCenterID"`
	} `json:"WorkOrder"`
	Status struct {
		ID    int    `json:"ID"`
		Name  string `json:"Name"`
		Color string `json:"Color"`
	} `json:"Status"`
	DateLogged interface{} `json:"DateLogged"`
}

// Event converts the raw row into a StatusEvent. The boolean is false when
// the row lacks a parsable timestamp; other missing fields degrade to zero
// values and are filtered later by StatusEvent.IsValid.
func (i FeedItem) Event() (timesheet.StatusEvent, bool) {
	loggedAt, ok := chrono.Parse(i.DateLogged)
	if !ok {
		return timesheet.StatusEvent{}, false
	}

	event := timesheet.StatusEvent{
		WorkerID:    i.Staff.ID,
		WorkerName:  i.Staff.Name,
		StatusCode:  timesheet.StatusCode(i.Status.ID),
		StatusName:  i.Status.Name,
		StatusColor: i.Status.Color,
		LoggedAt:    loggedAt,
	}
	if i.WorkOrder != nil {
		event.ProjectID = i.WorkOrder.ProjectID
		event.ProjectName = i.WorkOrder.ProjectName
		event.WorkOrderName = i.WorkOrder.Name
		if i.WorkOrder.ID != nil {
			id := *i.WorkOrder.ID
			event.WorkOrderID = &id
		}
		if i.WorkOrder.CostCenterID != nil {
			id := *i.WorkOrder.CostCenterID
			event.CostCenterID = &id
		}
	}
	return event, true
}

// IngestResult reports what happened to one feed page.
type IngestResult struct {
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`
}

// TimesheetService owns the event feed: it validates and ingests raw
// status-log pages, keeps the in-memory ledger current, and caches the
// aggregated summaries in the workspace.
type TimesheetService struct {
	repo      domain.WorkspaceRepository
	feed      domain.FeedStore
	ledger    *timesheet.Ledger
	audit     domain.AuditLogger
	publisher events.EventPublisher
}

func NewTimesheetService(
	repo domain.WorkspaceRepository,
	feed domain.FeedStore,
	ledger *timesheet.Ledger,
	audit domain.AuditLogger,
	publisher events.EventPublisher,
) *TimesheetService {
	if ledger == nil {
		ledger = timesheet.NewLedger(nil)
	}
	return &TimesheetService{
		repo:      repo,
		feed:      feed,
		ledger:    ledger,
		audit:     audit,
		publisher: publisher,
	}
}

// Ledger exposes the live accumulator for read-side consumers.
func (s *TimesheetService) Ledger() *timesheet.Ledger {
	return s.ledger
}

// Restore rebuilds the ledger from the persisted feed, used at startup.
func (s *TimesheetService) Restore() error {
	stored, err := s.feed.LoadAll()
	if err != nil {
		return fmt.Errorf("load feed: %w", err)
	}
	s.ledger.Rebuild(stored)
	return nil
}

// IngestJSON validates a raw feed page against the feed schema, converts
// it, and ingests it. Rows that fail conversion are counted as skipped,
// never fatal; a page that fails schema validation is rejected whole.
func (s *TimesheetService) IngestJSON(source string, data []byte) (*IngestResult, error) {
	result, err := gojsonschema.Validate(feedSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate feed page: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("feed page does not match schema: %v", result.Errors())
	}

	var items []FeedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode feed page: %w", err)
	}

	return s.Ingest(source, items)
}

// Ingest converts raw feed rows and folds them into the feed store and the
// ledger.
func (s *TimesheetService) Ingest(source string, items []FeedItem) (*IngestResult, error) {
	converted := make([]timesheet.StatusEvent, 0, len(items))
	skipped := 0
	for _, item := range items {
		event, ok := item.Event()
		if !ok || !event.IsValid() {
			skipped++
			continue
		}
		converted = append(converted, event)
	}

	if err := s.feed.Append(converted); err != nil {
		return nil, fmt.Errorf("persist feed events: %w", err)
	}
	accepted := s.ledger.Ingest(converted)

	if err := s.recordIngest(source, accepted, skipped); err != nil {
		return nil, err
	}

	return &IngestResult{Accepted: accepted, Skipped: skipped}, nil
}

// Summaries aggregates the ledger and refreshes the workspace cache.
func (s *TimesheetService) Summaries() ([]timesheet.ProjectSummary, error) {
	summaries := s.ledger.Summaries()
	if err := s.repo.SaveSummaries(summaries); err != nil {
		return nil, fmt.Errorf("cache summaries: %w", err)
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(events.NewSummariesRecomputed(len(summaries), s.ledger.Count()).Base())
	}

	return summaries, nil
}

// Rows aggregates and flattens for table display.
func (s *TimesheetService) Rows() ([]timesheet.Row, error) {
	summaries, err := s.Summaries()
	if err != nil {
		return nil, err
	}
	return timesheet.Rows(summaries), nil
}

func (s *TimesheetService) recordIngest(source string, accepted, skipped int) error {
	stats, err := s.repo.LoadIngestStats()
	if err != nil {
		return fmt.Errorf("load ingest stats: %w", err)
	}
	stats.TotalIngests++
	stats.TotalEvents += accepted
	stats.SkippedEvents += skipped
	stats.LastIngestAt = chrono.SystemClock{}.Now()
	if stats.SourceCounts == nil {
		stats.SourceCounts = make(map[string]int)
	}
	stats.SourceCounts[source] += accepted
	if err := s.repo.UpdateIngestStats(*stats); err != nil {
		return fmt.Errorf("update ingest stats: %w", err)
	}

	if s.audit != nil {
		if err := s.audit.Log("feed.ingested", "system", map[string]interface{}{
			"source":   source,
			"accepted": accepted,
			"skipped":  skipped,
		}); err != nil {
			return fmt.Errorf("log ingest: %w", err)
		}
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(events.NewFeedIngested(source, accepted, skipped).Base())
	}

	return nil
}
