//go:build linux

package observability

import (
	"bufio"
	"io"
	"os"
	"regexp"

	"github.com/google/safeopen"
)

const k8sNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

var (
	// 0::/kubepods.slice/kubepods-besteffort.slice/.../cri-containerd-<64 hex>.scope
	cgroupLineRegex  = regexp.MustCompile(`^\d+:[^:]*:(.+)$`)
	containerIDRegex = regexp.MustCompile(`([0-9a-f]{8}[-_][0-9a-f]{4}[-_][0-9a-f]{4}[-_][0-9a-f]{4}[-_][0-9a-f]{12}|[0-9a-f]{64}|[0-9a-f]{32}-\d+)(?:\.scope)?$`)
)

// parseContainerID returns the first container id found in the
// cgroup lines of r.
func parseContainerID(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		path := cgroupLineRegex.FindStringSubmatch(scanner.Text())
		if len(path) != 2 {
			continue
		}
		if id := containerIDRegex.FindStringSubmatch(path[1]); len(id) == 2 {
			return id[1]
		}
	}
	return ""
}

func containerID() string {
	f, err := safeopen.OpenBeneath("/proc/self", "cgroup")
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()
	return parseContainerID(f)
}

func inKubernetes() bool {
	info, err := os.Stat(k8sNamespaceFile)
	return err == nil && !info.IsDir() && info.Size() > 0
}
