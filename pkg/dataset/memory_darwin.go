//go:build darwin

package dataset

import "syscall"

// detectSystemMemory reads hw.memsize; available memory is estimated at 75%
func detectSystemMemory() (total int64, available int64) {
	raw, err := syscall.Sysctl("hw.memsize")
	if err != nil {
		return 0, 0
	}

	var mem uint64
	for i := 0; i < len(raw) && i < 8; i++ {
		mem |= uint64(raw[i]) << (uint(i) * 8)
	}

	total = int64(mem)
	return total, total * 3 / 4
}
