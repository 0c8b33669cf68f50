//go:build !darwin && !linux

package dataset

// detectSystemMemory returns zeros so callers use their defaults
func detectSystemMemory() (total int64, available int64) {
	return 0, 0
}
