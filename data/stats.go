package data

import (
	"fmt"
	"strings"
)

const bytesPerGB = 1024.0 * 1024.0 * 1024.0

// ParseStats aggregates one plain-text parse run. Scan and parse times are
// the maximum over workers (critical-path time), not the sum.
type ParseStats struct {
	TotalBytes  uint64
	TotalLines  uint64
	ScanTimeMS  float64
	ParseTimeMS float64
	TotalTimeMS float64
	ThreadsUsed int
}

func (s ParseStats) ThroughputGBps() float64 {
	if s.TotalTimeMS <= 0 {
		return 0
	}
	return (float64(s.TotalBytes) / bytesPerGB) / (s.TotalTimeMS / 1000.0)
}

func (s ParseStats) ScanThroughputGBps() float64 {
	if s.ScanTimeMS <= 0 {
		return 0
	}
	return (float64(s.TotalBytes) / bytesPerGB) / (s.ScanTimeMS / 1000.0)
}

func (s ParseStats) ParseThroughputGBps() float64 {
	if s.ParseTimeMS <= 0 {
		return 0
	}
	return (float64(s.TotalBytes) / bytesPerGB) / (s.ParseTimeMS / 1000.0)
}

func (s ParseStats) String() string {
	var b strings.Builder
	fmt.Fprintln(&b, "╔══════════════════════════════════════╗")
	fmt.Fprintln(&b, "     PANDORA'S LOGS — PARSE STATS      ")
	fmt.Fprintln(&b, "╠══════════════════════════════════════╣")
	fmt.Fprintf(&b, "  Total bytes:     %10.2f GB        \n", float64(s.TotalBytes)/bytesPerGB)
	fmt.Fprintf(&b, "  Total lines:     %10d           \n", s.TotalLines)
	fmt.Fprintf(&b, "  Threads used:    %10d           \n", s.ThreadsUsed)
	fmt.Fprintln(&b, "╠══════════════════════════════════════╣")
	fmt.Fprintf(&b, "  Stage 1 (scan):  %8.1f ms         \n", s.ScanTimeMS)
	fmt.Fprintf(&b, "    └─ throughput: %8.2f GB/s       \n", s.ScanThroughputGBps())
	fmt.Fprintf(&b, "  Stage 2 (parse): %8.1f ms         \n", s.ParseTimeMS)
	fmt.Fprintf(&b, "    └─ throughput: %8.2f GB/s       \n", s.ParseThroughputGBps())
	fmt.Fprintln(&b, "╠══════════════════════════════════════╣")
	fmt.Fprintf(&b, "  Total time:      %8.1f ms         \n", s.TotalTimeMS)
	fmt.Fprintf(&b, "     Throughput:   %8.2f GB/s       \n", s.ThroughputGBps())
	fmt.Fprintln(&b, "╚══════════════════════════════════════╝")
	return b.String()
}
