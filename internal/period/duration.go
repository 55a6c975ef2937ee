package period

import (
	"fmt"
	"math"
)

// FormatDuration renders a second count as zero-padded HH:MM:SS. Hours are
// unbounded. NaN, infinities and negative input render as "00:00:00" so
// display code never has to handle an error.
func FormatDuration(totalSeconds float64) string {
	if math.IsNaN(totalSeconds) || math.IsInf(totalSeconds, 0) || totalSeconds < 0 {
		return "00:00:00"
	}
	sec := int64(totalSeconds)
	hours := sec / 3600
	minutes := (sec % 3600) / 60
	seconds := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
