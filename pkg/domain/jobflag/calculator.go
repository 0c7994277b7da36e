package jobflag

import (
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/onsite/pkg/domain/chrono"
)

// DefaultThreshold is the grace period applied to every schedule comparison.
const DefaultThreshold = 10 * time.Minute

// FlagReason identifies why a job was flagged. The strings are a closed
// contract consumed verbatim by downstream alert queries.
type FlagReason string

const (
	ReasonNotStartedOnTime FlagReason = "Not Started On Time"
	ReasonStartedLate      FlagReason = "Started Late"
	ReasonNotEndedOnTime   FlagReason = "Not Ended On Time"
)

// AllFlagReasons returns the closed set of flag reasons.
func AllFlagReasons() []FlagReason {
	return []FlagReason{ReasonNotStartedOnTime, ReasonStartedLate, ReasonNotEndedOnTime}
}

// IsValid returns true if the reason is one of the closed set.
func (r FlagReason) IsValid() bool {
	switch r {
	case ReasonNotStartedOnTime, ReasonStartedLate, ReasonNotEndedOnTime:
		return true
	default:
		return false
	}
}

// String returns the string representation of the reason.
func (r FlagReason) String() string {
	return string(r)
}

// FlagResult is the outcome of evaluating one job at a reference instant.
// Invariant: IsFlagged is true exactly when FlagReason is non-empty.
type FlagResult struct {
	IsFlagged    bool
	FlagReason   FlagReason
	DelayMinutes int
}

// flagResultJSON is the wire shape: reason and delay serialize as null when
// the job is not flagged, matching what alert consumers expect.
type flagResultJSON struct {
	IsFlagged    bool    `json:"isFlagged"`
	FlagReason   *string `json:"flagReason"`
	DelayMinutes *int    `json:"delayMinutes"`
}

// MarshalJSON implements json.Marshaler.
func (f FlagResult) MarshalJSON() ([]byte, error) {
	out := flagResultJSON{IsFlagged: f.IsFlagged}
	if f.IsFlagged {
		reason := string(f.FlagReason)
		delay := f.DelayMinutes
		out.FlagReason = &reason
		out.DelayMinutes = &delay
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlagResult) UnmarshalJSON(data []byte) error {
	var in flagResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	f.IsFlagged = in.IsFlagged
	f.FlagReason = ""
	f.DelayMinutes = 0
	if in.FlagReason != nil {
		f.FlagReason = FlagReason(*in.FlagReason)
	}
	if in.DelayMinutes != nil {
		f.DelayMinutes = *in.DelayMinutes
	}
	return nil
}

// notFlagged is the zero outcome shared by every suppression path.
var notFlagged = FlagResult{}

// Calculator evaluates jobs against their schedule with a fixed grace
// threshold. It is stateless and safe for concurrent use.
type Calculator struct {
	threshold time.Duration
}

// NewCalculator creates a calculator with the default 10-minute threshold.
func NewCalculator() *Calculator {
	return &Calculator{threshold: DefaultThreshold}
}

// NewCalculatorWithThreshold creates a calculator with a custom grace period.
// Non-positive thresholds fall back to the default.
func NewCalculatorWithThreshold(threshold time.Duration) *Calculator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Calculator{threshold: threshold}
}

// Threshold returns the configured grace period.
func (c *Calculator) Threshold() time.Duration {
	return c.threshold
}

// flagRule is one predicate/result pair in the calculator's precedence list.
type flagRule struct {
	reason  FlagReason
	applies func(job Job, now time.Time) bool
	delay   func(job Job, now time.Time) time.Duration
}

// rules returns the ordered precedence list. The first rule whose predicate
// holds decides the outcome; later rules are never consulted, so a job can
// only ever carry a single reason. Not-Started beats Started-Late beats
// Not-Ended: a job that never started also has no actual end, and must not
// report "Not Ended On Time".
func (c *Calculator) rules() []flagRule {
	return []flagRule{
		{
			reason: ReasonNotStartedOnTime,
			applies: func(job Job, now time.Time) bool {
				return !job.HasStarted() && now.Sub(*job.ScheduleStart) > c.threshold
			},
			delay: func(job Job, now time.Time) time.Duration {
				return now.Sub(*job.ScheduleStart)
			},
		},
		{
			reason: ReasonStartedLate,
			applies: func(job Job, now time.Time) bool {
				return job.HasStarted() && job.ActualStart.Sub(*job.ScheduleStart) > c.threshold
			},
			delay: func(job Job, now time.Time) time.Duration {
				return job.ActualStart.Sub(*job.ScheduleStart)
			},
		},
		{
			reason: ReasonNotEndedOnTime,
			applies: func(job Job, now time.Time) bool {
				return !job.HasEnded() && job.ScheduleEnd != nil && !job.ScheduleEnd.IsZero() &&
					now.Sub(*job.ScheduleEnd) > c.threshold
			},
			delay: func(job Job, now time.Time) time.Duration {
				return now.Sub(*job.ScheduleEnd)
			},
		},
	}
}

// Calculate evaluates a single job at the given reference instant. It is a
// pure function: identical inputs always produce identical results, and the
// job is never mutated.
//
// Jobs that are approved or rejected are never flagged, and a job without a
// schedule start is not flaggable at all.
func (c *Calculator) Calculate(job Job, now time.Time) FlagResult {
	if job.Status.SuppressesFlags() {
		return notFlagged
	}
	if job.ScheduleStart == nil || job.ScheduleStart.IsZero() {
		return notFlagged
	}

	for _, rule := range c.rules() {
		if rule.applies(job, now) {
			return FlagResult{
				IsFlagged:    true,
				FlagReason:   rule.reason,
				DelayMinutes: chrono.RoundMinutes(rule.delay(job, now)),
			}
		}
	}

	return notFlagged
}

// CalculateBatch evaluates many jobs at the same reference instant and
// returns one result per job ID. Jobs do not interact; the batch is just the
// single-job function applied per row.
func (c *Calculator) CalculateBatch(jobs []Job, now time.Time) map[string]FlagResult {
	results := make(map[string]FlagResult, len(jobs))
	for _, job := range jobs {
		if job.ID == "" {
			continue
		}
		results[job.ID] = c.Calculate(job, now)
	}
	return results
}
