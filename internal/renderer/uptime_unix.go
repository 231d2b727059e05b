//go:build linux || darwin || freebsd || netbsd || openbsd

package renderer

import (
	"time"

	"golang.org/x/sys/unix"
)

var processStart = time.Now()

// systemUptimeMillis reads CLOCK_MONOTONIC, which tracks time since boot and
// ignores wall-clock adjustments.
func systemUptimeMillis() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return time.Since(processStart).Milliseconds()
	}
	return ts.Nano() / int64(time.Millisecond)
}
