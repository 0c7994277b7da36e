// Package events defines domain events for event sourcing.
package events

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/felixgeelhaar/onsite/pkg/domain/jobflag"
)

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventType() string
	AggregateID() string
	AggregateType() string
	OccurredAt() time.Time
	Version() int
}

// BaseEvent provides common fields for all events.
// Action mirrors Type for backward compatibility with domain.Event JSON format.
type BaseEvent struct {
	ID             string                 `json:"id"`
	Type           string                 `json:"type"`
	Action         string                 `json:"action,omitempty"`
	AggregateID_   string                 `json:"aggregate_id"`
	AggregateType_ string                 `json:"aggregate_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Version_       interface{}            `json:"version"`
	Actor          string                 `json:"actor"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	PrevHash       string                 `json:"prev_hash,omitempty"`
	Hash           string                 `json:"hash,omitempty"`
}

// Version returns the event version as an int.
func (e *BaseEvent) Version() int {
	if e.Version_ == nil {
		return 0
	}
	switch v := e.Version_.(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// EnsureAction sets Action to match Type for backward-compatible JSON serialization.
func (e *BaseEvent) EnsureAction() {
	if e.Action == "" {
		e.Action = e.Type
	}
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) AggregateID() string   { return e.AggregateID_ }
func (e BaseEvent) AggregateType() string { return e.AggregateType_ }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// Base returns the pipeline form of the event. Stores, publishers, and
// transports operate on *BaseEvent; typed events embed one and mirror their
// fields into Metadata so nothing is lost in transit.
func (e *BaseEvent) Base() *BaseEvent { return e }

// CalculateHash generates a deterministic SHA256 hash of the event.
func (e *BaseEvent) CalculateHash() string {
	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write([]byte(e.ID))
	h.Write([]byte(e.Timestamp.Format(time.RFC3339Nano)))
	h.Write([]byte(e.Type))
	h.Write([]byte(e.AggregateID_))
	h.Write([]byte(e.Actor))
	h.Write([]byte(canonicalJSON(e.Metadata)))
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalJSON produces a deterministic JSON representation.
func canonicalJSON(m map[string]interface{}) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]byte, 0, 256)
	ordered = append(ordered, '{')
	for i, k := range keys {
		if i > 0 {
			ordered = append(ordered, ',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(m[k])
		ordered = append(ordered, keyJSON...)
		ordered = append(ordered, ':')
		ordered = append(ordered, valJSON...)
	}
	ordered = append(ordered, '}')
	return string(ordered)
}

// =============================================================================
// Feed Events
// =============================================================================

// FeedIngested is emitted after a batch of status events enters the ledger.
type FeedIngested struct {
	BaseEvent
	Source   string `json:"source"`
	Accepted int    `json:"accepted"`
	Skipped  int    `json:"skipped"`
}

// NewFeedIngested builds the event emitted after a feed page enters the ledger.
func NewFeedIngested(source string, accepted, skipped int) *FeedIngested {
	return &FeedIngested{
		BaseEvent: BaseEvent{
			Type:           EventTypeFeedIngested,
			AggregateID_:   "feed",
			AggregateType_: AggregateTypeFeed,
			Actor:          "system",
			Metadata: map[string]interface{}{
				"source":   source,
				"accepted": accepted,
				"skipped":  skipped,
			},
		},
		Source:   source,
		Accepted: accepted,
		Skipped:  skipped,
	}
}

// SummariesRecomputed is emitted after an aggregation run.
type SummariesRecomputed struct {
	BaseEvent
	ProjectCount int `json:"project_count"`
	EventCount   int `json:"event_count"`
}

// NewSummariesRecomputed builds the event emitted after an aggregation run.
func NewSummariesRecomputed(projectCount, eventCount int) *SummariesRecomputed {
	return &SummariesRecomputed{
		BaseEvent: BaseEvent{
			Type:           EventTypeSummariesRecomputed,
			AggregateID_:   "feed",
			AggregateType_: AggregateTypeFeed,
			Actor:          "system",
			Metadata: map[string]interface{}{
				"project_count": projectCount,
				"event_count":   eventCount,
			},
		},
		ProjectCount: projectCount,
		EventCount:   eventCount,
	}
}

// =============================================================================
// Flag Events
// =============================================================================

// JobFlagged is emitted when a job transitions from unflagged to flagged.
type JobFlagged struct {
	BaseEvent
	JobID        string             `json:"job_id"`
	ProjectID    int64              `json:"project_id"`
	FlagReason   jobflag.FlagReason `json:"flag_reason"`
	DelayMinutes int                `json:"delay_minutes"`
}

// NewJobFlagged builds the event emitted when a job transitions from
// unflagged to flagged.
func NewJobFlagged(jobID string, projectID int64, reason jobflag.FlagReason, delayMinutes int) *JobFlagged {
	return &JobFlagged{
		BaseEvent: BaseEvent{
			Type:           EventTypeJobFlagged,
			AggregateID_:   jobID,
			AggregateType_: AggregateTypeJob,
			Actor:          "system",
			Metadata: map[string]interface{}{
				"project_id":    projectID,
				"flag_reason":   reason.String(),
				"delay_minutes": delayMinutes,
			},
		},
		JobID:        jobID,
		ProjectID:    projectID,
		FlagReason:   reason,
		DelayMinutes: delayMinutes,
	}
}

// JobUnflagged is emitted when a previously flagged job clears.
type JobUnflagged struct {
	BaseEvent
	JobID string `json:"job_id"`
}

// NewJobUnflagged builds the event emitted when a flagged job clears.
func NewJobUnflagged(jobID string) *JobUnflagged {
	return &JobUnflagged{
		BaseEvent: BaseEvent{
			Type:           EventTypeJobUnflagged,
			AggregateID_:   jobID,
			AggregateType_: AggregateTypeJob,
			Actor:          "system",
		},
		JobID: jobID,
	}
}

// SweepCompleted is emitted after each periodic flag recalculation pass.
type SweepCompleted struct {
	BaseEvent
	JobCount     int `json:"job_count"`
	FlaggedCount int `json:"flagged_count"`
}

// NewSweepCompleted builds the event emitted after a sweep pass.
func NewSweepCompleted(jobCount, flaggedCount int) *SweepCompleted {
	return &SweepCompleted{
		BaseEvent: BaseEvent{
			Type:           EventTypeSweepCompleted,
			AggregateID_:   "sweep",
			AggregateType_: AggregateTypeJob,
			Actor:          "system",
			Metadata: map[string]interface{}{
				"job_count":     jobCount,
				"flagged_count": flaggedCount,
			},
		},
		JobCount:     jobCount,
		FlaggedCount: flaggedCount,
	}
}

// =============================================================================
// File Events
// =============================================================================

// FileChanged is emitted when a watched feed file is modified.
type FileChanged struct {
	BaseEvent
	FilePath   string `json:"file_path"`
	ChangeType string `json:"change_type"` // "create", "write", "remove", "rename"
}

// NewFileChanged builds the event emitted when a watched feed file changes.
func NewFileChanged(filePath, changeType string) *FileChanged {
	return &FileChanged{
		BaseEvent: BaseEvent{
			Type:           EventTypeFileChanged,
			AggregateID_:   "feed",
			AggregateType_: AggregateTypeFeed,
			Actor:          "system",
			Metadata: map[string]interface{}{
				"file_path":   filePath,
				"change_type": changeType,
			},
		},
		FilePath:   filePath,
		ChangeType: changeType,
	}
}

// =============================================================================
// Event Type Constants
// =============================================================================

const (
	EventTypeFeedIngested        = "feed.ingested"
	EventTypeSummariesRecomputed = "feed.summaries_recomputed"
	EventTypeJobFlagged          = "flag.raised"
	EventTypeJobUnflagged        = "flag.cleared"
	EventTypeSweepCompleted      = "flag.sweep_completed"
	EventTypeFileChanged         = "file.changed"
)

// AggregateTypes
const (
	AggregateTypeFeed = "feed"
	AggregateTypeJob  = "job"
)

// Compile-time checks that every event satisfies DomainEvent.
var (
	_ DomainEvent = (*BaseEvent)(nil)
	_ DomainEvent = (*FeedIngested)(nil)
	_ DomainEvent = (*SummariesRecomputed)(nil)
	_ DomainEvent = (*JobFlagged)(nil)
	_ DomainEvent = (*JobUnflagged)(nil)
	_ DomainEvent = (*SweepCompleted)(nil)
	_ DomainEvent = (*FileChanged)(nil)
)

// Typed reconstructs the concrete event for a stored or transported
// BaseEvent so consumers see the typed fields rather than a metadata map.
// Events of an unknown type come back as the BaseEvent itself.
func Typed(e *BaseEvent) DomainEvent {
	switch e.Type {
	case EventTypeFeedIngested:
		return &FeedIngested{
			BaseEvent: *e,
			Source:    metaString(e.Metadata, "source"),
			Accepted:  metaInt(e.Metadata, "accepted"),
			Skipped:   metaInt(e.Metadata, "skipped"),
		}
	case EventTypeSummariesRecomputed:
		return &SummariesRecomputed{
			BaseEvent:    *e,
			ProjectCount: metaInt(e.Metadata, "project_count"),
			EventCount:   metaInt(e.Metadata, "event_count"),
		}
	case EventTypeJobFlagged:
		return &JobFlagged{
			BaseEvent:    *e,
			JobID:        e.AggregateID_,
			ProjectID:    metaInt64(e.Metadata, "project_id"),
			FlagReason:   jobflag.FlagReason(metaString(e.Metadata, "flag_reason")),
			DelayMinutes: metaInt(e.Metadata, "delay_minutes"),
		}
	case EventTypeJobUnflagged:
		return &JobUnflagged{
			BaseEvent: *e,
			JobID:     e.AggregateID_,
		}
	case EventTypeSweepCompleted:
		return &SweepCompleted{
			BaseEvent:    *e,
			JobCount:     metaInt(e.Metadata, "job_count"),
			FlaggedCount: metaInt(e.Metadata, "flagged_count"),
		}
	case EventTypeFileChanged:
		return &FileChanged{
			BaseEvent:  *e,
			FilePath:   metaString(e.Metadata, "file_path"),
			ChangeType: metaString(e.Metadata, "change_type"),
		}
	default:
		return e
	}
}

// Metadata values arrive as int/int64 in process and as float64 after a
// JSON round trip; the helpers accept both.

func metaString(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func metaInt(m map[string]interface{}, key string) int {
	return int(metaInt64(m, key))
}

func metaInt64(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
