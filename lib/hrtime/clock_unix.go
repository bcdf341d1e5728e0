//go:build !windows

package hrtime

import (
	"time"

	"github.com/samber/lo"
	"golang.org/x/sys/unix"
)

var sysStart = monotonicNano()

func monotonicNano() int64 {
	ts := unix.Timespec{}
	lo.Must0(unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts))
	return ts.Nano()
}

// Now returns the CLOCK_MONOTONIC time elapsed since the process
// started.
func Now() time.Duration {
	return time.Duration(monotonicNano() - sysStart)
}

// Resolution returns the clock granularity in nanoseconds.
func Resolution() float64 {
	ts := unix.Timespec{}
	lo.Must0(unix.ClockGetres(unix.CLOCK_MONOTONIC, &ts))
	return float64(ts.Nano())
}
