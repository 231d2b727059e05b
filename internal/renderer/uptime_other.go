//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package renderer

import "time"

var processStart = time.Now()

func systemUptimeMillis() int64 {
	return time.Since(processStart).Milliseconds()
}
