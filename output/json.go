// Package output renders parse results for the CLI: a JSON report document,
// the text stat panels, and a parallel level/component summary.
package output

import (
	"encoding/json"
	"time"
)

// Report is the complete JSON output document for one parse run.
type Report struct {
	Metadata Metadata  `json:"metadata"`
	Parsing  Parsing   `json:"parsing"`
	Summary  *Summary  `json:"summary,omitempty"`
	Samples  []Sample  `json:"samples,omitempty"`
	Warnings []Warning `json:"warnings"`
}

// Metadata describes the run itself.
type Metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Version     string    `json:"version"`
	File        string    `json:"file"`
	Mode        string    `json:"mode"`
	Capability  string    `json:"simd_capability"`
}

// Parsing carries the performance figures.
type Parsing struct {
	Format         string  `json:"format,omitempty"`
	TotalBytes     uint64  `json:"total_bytes"`
	TotalRecords   uint64  `json:"total_records"`
	TotalFields    uint64  `json:"total_fields,omitempty"`
	ThreadsUsed    int     `json:"threads_used"`
	ScanTimeMS     float64 `json:"scan_time_ms"`
	ParseTimeMS    float64 `json:"parse_time_ms"`
	TotalTimeMS    float64 `json:"total_time_ms"`
	ThroughputGBps float64 `json:"throughput_gbps"`
}

// Sample is one example record included in the report.
type Sample struct {
	Timestamp     uint64 `json:"timestamp,omitempty"`
	TimestampText string `json:"timestamp_text,omitempty"`
	Level         string `json:"level,omitempty"`
	Component     string `json:"component,omitempty"`
	Message       string `json:"message,omitempty"`
}

// Warning is a non-fatal note surfaced to the caller.
type Warning struct {
	Message string `json:"message"`
}

// Render marshals the report, pretty-printed unless compact is set.
func (r *Report) Render(compact bool) ([]byte, error) {
	if r.Warnings == nil {
		r.Warnings = []Warning{}
	}
	if compact {
		return json.Marshal(r)
	}
	return json.MarshalIndent(r, "", "  ")
}
