package observability

import (
	"runtime"

	"go.uber.org/zap/zapcore"
)

// Environment describes where the process runs. Timings from a
// container with a CPU quota do not compare with bare metal ones.
type Environment struct {
	GOMAXPROCS  int
	NumCPU      int
	ContainerID string
	Kubernetes  bool
}

func DetectEnvironment() Environment {
	return Environment{
		GOMAXPROCS:  runtime.GOMAXPROCS(0),
		NumCPU:      runtime.NumCPU(),
		ContainerID: containerID(),
		Kubernetes:  inKubernetes(),
	}
}

func (env Environment) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("gomaxprocs", env.GOMAXPROCS)
	enc.AddInt("cpus", env.NumCPU)
	if len(env.ContainerID) > 0 {
		enc.AddString("containerID", env.ContainerID)
	}
	enc.AddBool("kubernetes", env.Kubernetes)
	return nil
}
