package observability

// References:
// https://github.com/DataDog/dd-trace-go/blob/main/profiler/profiler.go#L118

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/google/safeopen"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

type ProfileType int8

const (
	CPUProfile ProfileType = iota
	MemProfile
)

func (typ ProfileType) String() string {
	if typ == CPUProfile {
		return "cpu"
	}
	return "heap"
}

// StartProfile begins a pprof profile written to path. The CPU profile
// samples until stop is called, the heap profile is taken at stop.
func StartProfile(typ ProfileType, path string) (stop func() error, err error) {
	f, err := createFile(path)
	if err != nil {
		return nil, err
	}
	switch typ {
	case CPUProfile:
		if err = pprof.StartCPUProfile(f); err != nil {
			return nil, multierr.Append(infra.WrapErrorStackWithMessage(err, "start cpu profile"), f.Close())
		}
		return func() error {
			pprof.StopCPUProfile()
			return f.Close()
		}, nil
	default:
	}
	return func() error {
		runtime.GC()
		return multierr.Append(pprof.WriteHeapProfile(f), f.Close())
	}, nil
}

// createFile creates path beneath its directory without following
// symlinks out of it.
func createFile(path string) (*os.File, error) {
	dir, name := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	f, err := safeopen.OpenFileBeneath(dir, name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "create "+path)
	}
	return f, nil
}
