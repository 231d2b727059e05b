package renderer

import "math"

// UptimeSource reports milliseconds elapsed on a monotonic clock.
type UptimeSource func() int64

// AnimationClock turns uptime into looping animation phases.
type AnimationClock struct {
	uptime UptimeSource
}

// NewAnimationClock returns a clock reading source, or the system uptime when
// source is nil.
func NewAnimationClock(source UptimeSource) *AnimationClock {
	if source == nil {
		source = systemUptimeMillis
	}
	return &AnimationClock{uptime: source}
}

// Phase returns (uptime mod period) / period in [0, 1). Periods below 1 ms
// yield 0.
func (c *AnimationClock) Phase(periodMillis int64) float32 {
	if periodMillis < 1 {
		return 0
	}
	elapsed := c.uptime() % periodMillis
	if elapsed < 0 {
		elapsed += periodMillis
	}
	phase := float32(float64(elapsed) / float64(periodMillis))
	// float32 rounding can reach 1 for very long periods.
	if phase >= 1 {
		phase = math.Nextafter32(1, 0)
	}
	return phase
}
