package hrtime

import (
	"time"
)

// Clock is a monotonic clock reporting the elapsed time since the
// process started. Values are only meaningful as differences.
type Clock interface {
	Now() time.Duration
}

var (
	// SysClock reads the OS monotonic counter directly.
	SysClock Clock = sysClock{}
	// GoClock relies on the monotonic reading carried by time.Time.
	GoClock Clock = goClock{}

	goStart = time.Now()
)

type goClock struct{}

func (goClock) Now() time.Duration {
	return time.Since(goStart)
}

type sysClock struct{}

func (sysClock) Now() time.Duration {
	return Now()
}

// Measure runs fn once and returns its duration on clock c.
func Measure(c Clock, fn func()) time.Duration {
	begin := c.Now()
	fn()
	return c.Now() - begin
}
