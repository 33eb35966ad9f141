package structured

import (
	"fmt"
	"strings"

	"github.com/Lunyn-HFT/pandora/format"
)

const bytesPerGB = 1024.0 * 1024.0 * 1024.0

// Stats aggregates one structured parse run. Scan and parse times are the
// maximum over workers (critical-path time), not the sum.
type Stats struct {
	TotalBytes   uint64
	TotalRecords uint64
	TotalFields  uint64
	ScanTimeMS   float64
	ParseTimeMS  float64
	TotalTimeMS  float64
	ThreadsUsed  int
	Format       format.Format
}

func (s Stats) ThroughputGBps() float64 {
	if s.TotalTimeMS <= 0 {
		return 0
	}
	return (float64(s.TotalBytes) / bytesPerGB) / (s.TotalTimeMS / 1000.0)
}

func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintln(&b, "╔══════════════════════════════════════════╗")
	fmt.Fprintln(&b, "   PANDORA'S LOGS — STRUCTURED PARSE STATS ")
	fmt.Fprintln(&b, "╠══════════════════════════════════════════╣")
	fmt.Fprintf(&b, "  Format:        %-24s    \n", s.Format)
	fmt.Fprintf(&b, "  Total bytes:   %10.2f GB              \n", float64(s.TotalBytes)/bytesPerGB)
	fmt.Fprintf(&b, "  Total records: %10d                 \n", s.TotalRecords)
	fmt.Fprintf(&b, "  Total fields:  %10d                 \n", s.TotalFields)
	fmt.Fprintf(&b, "  Threads used:  %10d                 \n", s.ThreadsUsed)
	fmt.Fprintln(&b, "╠══════════════════════════════════════════╣")
	fmt.Fprintf(&b, "  Scan time:     %8.1f ms               \n", s.ScanTimeMS)
	fmt.Fprintf(&b, "  Parse time:    %8.1f ms               \n", s.ParseTimeMS)
	fmt.Fprintf(&b, "  Total time:    %8.1f ms               \n", s.TotalTimeMS)
	fmt.Fprintf(&b, "  Throughput:    %8.2f GB/s             \n", s.ThroughputGBps())
	fmt.Fprintln(&b, "╚══════════════════════════════════════════╝")
	return b.String()
}
