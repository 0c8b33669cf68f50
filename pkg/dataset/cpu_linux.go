//go:build linux

package dataset

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// detectOptimalWorkers prefers performance cores on hybrid CPUs
func detectOptimalWorkers() int {
	if n := perfCoresLinux(); n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// perfCoresLinux counts physical cores whose clock is within 10% of the mean
// when /proc/cpuinfo shows a split between fast and slow cores. It returns 0
// for homogeneous machines or when the file cannot be read.
func perfCoresLinux() int {
	file, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return 0
	}
	defer file.Close()

	maxFreq := make(map[int]float64) // core id -> highest MHz seen
	coreID := -1

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "core id":
			if id, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				coreID = id
			}
		case "cpu MHz":
			freq, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil || coreID < 0 {
				continue
			}
			if freq > maxFreq[coreID] {
				maxFreq[coreID] = freq
			}
		}
	}

	if len(maxFreq) <= 2 {
		return 0
	}

	var sum float64
	for _, f := range maxFreq {
		sum += f
	}
	avg := sum / float64(len(maxFreq))

	fast := 0
	for _, f := range maxFreq {
		if f >= avg*0.9 {
			fast++
		}
	}
	if fast > 0 && fast < len(maxFreq) {
		return fast
	}
	return 0
}
