package domain

import (
	"fmt"
	"math"
)

// ZeroDuration is shown when worked time cannot be computed.
const ZeroDuration = "0:00"

// Duration renders the time between check-in and check-out as "H:MM".
// Check-out before check-in yields a negative rendering such as "-1:-15";
// the value is not clamped.
func (n Normalizer) Duration(checkIn, checkOut TimeValue) string {
	in, ok := n.Normalize(checkIn)
	if !ok {
		return ZeroDuration
	}
	out, ok := n.Normalize(checkOut)
	if !ok {
		return ZeroDuration
	}
	diffMs := float64(out - in)
	return formatMinutes(roundHalfUp(diffMs / 60000))
}

// Duration uses a UTC normalizer.
func Duration(checkIn, checkOut TimeValue) string {
	return Normalizer{}.Duration(checkIn, checkOut)
}

// DecimalHoursToClock renders fractional hours, e.g. 7.75 as "7:45".
func DecimalHoursToClock(hours float64) string {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return ZeroDuration
	}
	return formatMinutes(roundHalfUp(hours * 60))
}

// formatMinutes floors the hours while the minutes keep the sign of the
// total, so -75 minutes renders as "-2:-15".
func formatMinutes(total int64) string {
	hours := int64(math.Floor(float64(total) / 60))
	minutes := total % 60
	return fmt.Sprintf("%d:%02d", hours, minutes)
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
