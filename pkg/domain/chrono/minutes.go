package chrono

import (
	"fmt"
	"math"
	"time"
)

// RoundMinutes converts a duration to whole minutes, rounding half away from
// zero. This is the single rounding rule shared by elapsed-time totals and
// delay calculations.
func RoundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}

// MinutesBetween returns the rounded minutes elapsed from one instant to
// another. A negative result is possible when to precedes from; callers that
// need clamping do it themselves.
func MinutesBetween(from, to time.Time) int {
	return RoundMinutes(to.Sub(from))
}

// Hours converts whole minutes to fractional hours.
func Hours(minutes int) float64 {
	return float64(minutes) / 60.0
}

// FormatHours renders minutes as hours with two decimal places, the display
// format used by reports and exports.
func FormatHours(minutes int) string {
	return fmt.Sprintf("%.2f", Hours(minutes))
}
