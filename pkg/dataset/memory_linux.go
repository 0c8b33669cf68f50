//go:build linux

package dataset

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// detectSystemMemory reads MemTotal and MemAvailable from /proc/meminfo.
// Kernels without MemAvailable fall back to MemFree+Buffers+Cached.
func detectSystemMemory() (total int64, available int64) {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0
	}
	defer file.Close()

	kb := make(map[string]int64)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		v, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		kb[strings.TrimSuffix(fields[0], ":")] = v
	}

	total = kb["MemTotal"] * 1024
	available, ok := kb["MemAvailable"]
	if !ok {
		available = kb["MemFree"] + kb["Buffers"] + kb["Cached"]
	}
	return total, available * 1024
}
