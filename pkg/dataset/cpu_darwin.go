//go:build darwin

package dataset

import (
	"runtime"
	"syscall"
)

// detectOptimalWorkers prefers the performance cores of Apple Silicon
func detectOptimalWorkers() int {
	for _, name := range []string{"hw.perflevel0.physicalcpu", "hw.physicalcpu"} {
		if n := sysctlCount(name); n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}

// sysctlCount decodes a small little-endian integer sysctl
func sysctlCount(name string) int {
	raw, err := syscall.Sysctl(name)
	if err != nil || len(raw) == 0 {
		return 0
	}
	n := int(raw[0])
	if len(raw) > 1 {
		n |= int(raw[1]) << 8
	}
	return n
}
