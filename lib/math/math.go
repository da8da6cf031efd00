package math

import "time"

// MaxDuration returns the largest of the given durations, or zero when
// called with none.
func MaxDuration(values ...time.Duration) time.Duration {
	var maxVal time.Duration
	for _, v := range values {
		if v < maxVal {
			continue
		}
		maxVal = v
	}
	return maxVal
}
