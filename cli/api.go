package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/Lunyn-HFT/pandora/data"
	"github.com/Lunyn-HFT/pandora/format"
	"github.com/Lunyn-HFT/pandora/generator"
	"github.com/Lunyn-HFT/pandora/output"
	"github.com/Lunyn-HFT/pandora/pipeline"
	"github.com/Lunyn-HFT/pandora/scan"
	"github.com/Lunyn-HFT/pandora/structured"
	"github.com/Lunyn-HFT/pandora/version"
)

type parseOptions struct {
	filePath   string
	workers    int
	useMmap    bool
	hint       *format.Format
	structured bool
	jsonOut    bool
	compact    bool
	summary    bool
}

const bytesPerGB = 1024.0 * 1024.0 * 1024.0

func openSized(path string) (*os.File, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("error opening '%s': %w", path, err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("error reading metadata for '%s': %w", path, err)
	}
	return file, stat.Size(), nil
}

func modeString(useMmap bool) string {
	if useMmap {
		return "mmap"
	}
	return "streaming"
}

func printRunBanner(opts parseOptions) {
	fmt.Println()
	fmt.Println("╔════════════════════════════════════════════════════╗")
	fmt.Println("       PANDORA'S LOGS — SIMD Log Parser             ")
	fmt.Println("╠════════════════════════════════════════════════════╣")
	fmt.Printf("  SIMD:   %-42s \n", scan.Capability())
	fmt.Printf("  Threads:%-42d \n", opts.workers)
	fmt.Printf("  Mode:   %-42s \n", modeString(opts.useMmap))
	fmt.Printf("  File:   %-42s \n", opts.filePath)
	fmt.Println("╚════════════════════════════════════════════════════╝")
	fmt.Println()
}

// runParse drives one parse run end to end: open, mmap or stream, parse,
// render. The plain-text fast path is used for plain input unless
// --structured asks for the general field table.
func runParse(opts parseOptions) error {
	file, fileSize, err := openSized(opts.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	if !opts.jsonOut {
		printRunBanner(opts)
		fmt.Printf("File size: %.2f GB (%d bytes)\n", float64(fileSize)/bytesPerGB, fileSize)
	}

	if fileSize == 0 {
		if !opts.jsonOut {
			fmt.Println("File is empty. Nothing to parse.")
		}
		return nil
	}

	// Decide between the plain columnar fast path and the general parser.
	// A detected or hinted plain-text format takes the fast path.
	usePlain := !opts.structured
	if usePlain {
		if opts.hint != nil {
			usePlain = *opts.hint == format.PlainText
		} else {
			prefix := make([]byte, 4096)
			n, rerr := file.ReadAt(prefix, 0)
			if rerr != nil && n == 0 {
				return fmt.Errorf("error reading '%s': %w", opts.filePath, rerr)
			}
			usePlain = format.Detect(prefix[:n]) == format.PlainText
		}
	}

	if usePlain {
		return runParsePlain(file, fileSize, opts)
	}
	return runParseStructured(file, fileSize, opts)
}

func runParsePlain(file *os.File, fileSize int64, opts parseOptions) error {
	totalStart := time.Now()

	var result *pipeline.PlainResult
	if opts.useMmap {
		buf, err := pipeline.Mmap(file, fileSize)
		if err != nil {
			return err
		}
		defer pipeline.Munmap(buf)
		result = pipeline.ParsePlainMmap(buf, opts.workers)
		return renderPlain(result, fileSize, totalStart, opts)
	}

	result, err := pipeline.ParsePlainStreamed(file, fileSize, opts.workers)
	if err != nil {
		return fmt.Errorf("error reading '%s': %w", opts.filePath, err)
	}
	return renderPlain(result, fileSize, totalStart, opts)
}

func renderPlain(result *pipeline.PlainResult, fileSize int64, totalStart time.Time, opts parseOptions) error {
	totalMS := float64(time.Since(totalStart)) / float64(time.Millisecond)

	stats := data.ParseStats{
		TotalBytes:  uint64(fileSize),
		TotalLines:  uint64(result.TotalLines),
		ScanTimeMS:  result.ScanTimeMS,
		ParseTimeMS: result.ParseTimeMS,
		TotalTimeMS: totalMS,
		ThreadsUsed: opts.workers,
	}

	var summary *output.Summary
	if opts.summary {
		summary = output.SummarizePlain(result.Batches)
	}

	if opts.jsonOut {
		report := &output.Report{
			Metadata: output.Metadata{
				GeneratedAt: time.Now(),
				Version:     version.Version,
				File:        opts.filePath,
				Mode:        modeString(opts.useMmap),
				Capability:  scan.Capability(),
			},
			Parsing: output.Parsing{
				Format:         format.PlainText.String(),
				TotalBytes:     stats.TotalBytes,
				TotalRecords:   stats.TotalLines,
				ThreadsUsed:    stats.ThreadsUsed,
				ScanTimeMS:     stats.ScanTimeMS,
				ParseTimeMS:    stats.ParseTimeMS,
				TotalTimeMS:    stats.TotalTimeMS,
				ThroughputGBps: stats.ThroughputGBps(),
			},
			Summary: summary,
			Samples: plainSamples(result.Batches),
		}
		return emitReport(report, opts.compact)
	}

	fmt.Printf("  Processed %d lines in %.1f ms (%.2f GB/s)\n\n",
		result.TotalLines, totalMS, stats.ThroughputGBps())
	fmt.Print(stats)
	printPlainSamples(result.Batches)
	printSummary(summary)
	return nil
}

func plainSamples(batches []*data.Batch) []output.Sample {
	var samples []output.Sample
	for _, b := range batches {
		for i := 0; i < b.Len && len(samples) < 10; i++ {
			samples = append(samples, output.Sample{
				Timestamp: b.Timestamps[i],
				Level:     b.Levels[i].String(),
				Component: b.Component(i),
				Message:   truncate(b.Message(i), 60),
			})
		}
		if len(samples) >= 10 {
			break
		}
	}
	return samples
}

func printPlainSamples(batches []*data.Batch) {
	if len(batches) == 0 || batches[0].Len == 0 {
		return
	}
	first := batches[0]
	sampleCount := first.Len
	if sampleCount > 10 {
		sampleCount = 10
	}
	fmt.Println("\nSample log records:")
	fmt.Println("─────────────────────────────────────────────────────────────────────────")
	for i := 0; i < sampleCount; i++ {
		fmt.Printf("  [%4d] %d | %7s | %20s | %s\n",
			i, first.Timestamps[i], first.Levels[i], first.Component(i),
			truncate(first.Message(i), 60))
	}
	fmt.Println("─────────────────────────────────────────────────────────────────────────")
}

func runParseStructured(file *os.File, fileSize int64, opts parseOptions) error {
	totalStart := time.Now()

	var result *pipeline.StructuredResult
	if opts.useMmap {
		buf, err := pipeline.Mmap(file, fileSize)
		if err != nil {
			return err
		}
		defer pipeline.Munmap(buf)
		result = pipeline.ParseStructuredMmap(buf, opts.workers, opts.hint)
		return renderStructured(result, fileSize, totalStart, opts)
	}

	result, err := pipeline.ParseStructuredStreamed(file, fileSize, opts.workers, opts.hint)
	if err != nil {
		return fmt.Errorf("error reading '%s': %w", opts.filePath, err)
	}
	return renderStructured(result, fileSize, totalStart, opts)
}

func renderStructured(result *pipeline.StructuredResult, fileSize int64, totalStart time.Time, opts parseOptions) error {
	totalMS := float64(time.Since(totalStart)) / float64(time.Millisecond)

	stats := structured.Stats{
		TotalBytes:   uint64(fileSize),
		TotalRecords: uint64(result.TotalRecords),
		TotalFields:  uint64(result.TotalFields),
		ScanTimeMS:   result.ScanTimeMS,
		ParseTimeMS:  result.ParseTimeMS,
		TotalTimeMS:  totalMS,
		ThreadsUsed:  opts.workers,
		Format:       result.Format,
	}

	var summary *output.Summary
	if opts.summary {
		summary = output.SummarizeStructured(result.Batches)
	}

	if opts.jsonOut {
		report := &output.Report{
			Metadata: output.Metadata{
				GeneratedAt: time.Now(),
				Version:     version.Version,
				File:        opts.filePath,
				Mode:        modeString(opts.useMmap),
				Capability:  scan.Capability(),
			},
			Parsing: output.Parsing{
				Format:         result.Format.String(),
				TotalBytes:     stats.TotalBytes,
				TotalRecords:   stats.TotalRecords,
				TotalFields:    stats.TotalFields,
				ThreadsUsed:    stats.ThreadsUsed,
				ScanTimeMS:     stats.ScanTimeMS,
				ParseTimeMS:    stats.ParseTimeMS,
				TotalTimeMS:    stats.TotalTimeMS,
				ThroughputGBps: stats.ThroughputGBps(),
			},
			Summary: summary,
			Samples: structuredSamples(result.Batches),
		}
		return emitReport(report, opts.compact)
	}

	fmt.Printf("  Processed %d records in %.1f ms (%.2f GB/s)\n\n",
		result.TotalRecords, totalMS, stats.ThroughputGBps())
	fmt.Print(stats)
	printSummary(summary)
	return nil
}

func structuredSamples(batches []*structured.Batch) []output.Sample {
	var samples []output.Sample
	for _, b := range batches {
		for i := 0; i < b.Len && len(samples) < 10; i++ {
			var s output.Sample
			if v, ok := b.TimestampValue(i); ok {
				s.TimestampText = v
			}
			if v, ok := b.LevelValue(i); ok {
				s.Level = v
			}
			if v, ok := b.ComponentValue(i); ok {
				s.Component = v
			}
			if v, ok := b.MessageValue(i); ok {
				s.Message = truncate(v, 60)
			}
			samples = append(samples, s)
		}
		if len(samples) >= 10 {
			break
		}
	}
	return samples
}

func printSummary(summary *output.Summary) {
	if summary == nil {
		return
	}
	fmt.Println("\nLevel histogram:")
	for _, k := range output.TopN(summary.Levels, 10) {
		fmt.Printf("  %-10s %10d\n", k, summary.Levels[k])
	}
	fmt.Println("\nTop components:")
	for _, k := range output.TopN(summary.Components, 10) {
		fmt.Printf("  %-24s %10d\n", k, summary.Components[k])
	}
}

func emitReport(report *output.Report, compact bool) error {
	raw, err := report.Render(compact)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Println(string(raw))
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// runGenerate writes a synthetic log file of roughly sizeMB mebibytes.
func runGenerate(outPath string, sizeMB uint64, f format.Format) error {
	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("error creating '%s': %w", outPath, err)
	}
	defer file.Close()

	fmt.Printf("Generating %d MB %s log file: %s\n", sizeMB, f, outPath)

	res, err := generator.WriteStructured(file, sizeMB*1024*1024, f)
	if err != nil {
		return err
	}

	fmt.Printf("Generated %d lines (~%.2f MB) to %s\n",
		res.Lines, float64(res.BytesWritten)/(1024.0*1024.0), outPath)
	return nil
}

// runScanNewlines counts lines in a file with the mask counter and reports
// scanner throughput.
func runScanNewlines(filePath string, workers int, useMmap bool) error {
	file, fileSize, err := openSized(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	if fileSize == 0 {
		fmt.Println("File is empty. Nothing to scan.")
		return nil
	}

	fmt.Printf("SIMD: %s\n", scan.Capability())

	var buf []byte
	if useMmap {
		mapped, err := pipeline.Mmap(file, fileSize)
		if err != nil {
			return err
		}
		defer pipeline.Munmap(mapped)
		buf = mapped
	} else {
		buf = make([]byte, fileSize)
		if _, err := file.ReadAt(buf, 0); err != nil {
			return fmt.Errorf("error reading '%s': %w", filePath, err)
		}
	}

	start := time.Now()
	count := scan.Count(buf)
	elapsed := time.Since(start)

	starts := scan.NewlinesParallel(buf, workers)

	fmt.Printf("Newlines:    %d\n", count)
	fmt.Printf("Line starts: %d\n", len(starts))
	fmt.Printf("Scan time:   %.1f ms\n", float64(elapsed)/float64(time.Millisecond))
	fmt.Printf("Throughput:  %.2f GB/s\n",
		(float64(fileSize)/bytesPerGB)/elapsed.Seconds())
	return nil
}
