//go:build !darwin && !linux

package dataset

import "runtime"

func detectOptimalWorkers() int {
	return runtime.NumCPU()
}
