//go:build windows

package hrtime

// References:
// https://learn.microsoft.com/en-us/windows/win32/sysinfo/acquiring-high-resolution-time-stamps

import (
	"errors"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32 = windows.NewLazyDLL("kernel32.dll")
	procQPF  = kernel32.NewProc("QueryPerformanceFrequency")
	procQPC  = kernel32.NewProc("QueryPerformanceCounter")
)

func queryPerformance(proc *windows.LazyProc) int64 {
	var v int64
	r1, _, err := proc.Call(uintptr(unsafe.Pointer(&v)))
	if err != nil && !errors.Is(err, windows.SEVERITY_SUCCESS) || r1 != 1 {
		panic(err)
	}
	return v
}

var (
	baseProcFreq    = queryPerformance(procQPF)
	baseProcCounter = queryPerformance(procQPC)
)

// Now returns the performance counter time elapsed since the process
// started.
func Now() time.Duration {
	elapsed := queryPerformance(procQPC) - baseProcCounter
	sec, rem := elapsed/baseProcFreq, elapsed%baseProcFreq
	return time.Duration(sec)*time.Second + time.Duration(rem*int64(time.Second)/baseProcFreq)
}

// Resolution returns the clock granularity in nanoseconds.
func Resolution() float64 {
	return float64(time.Second) / float64(baseProcFreq)
}
