package pipeline

import (
	"bytes"
	"os"
	"sync"
	"time"

	"github.com/Lunyn-HFT/pandora/config"
	"github.com/Lunyn-HFT/pandora/format"
	"github.com/Lunyn-HFT/pandora/scan"
	"github.com/Lunyn-HFT/pandora/structured"
)

// StructuredResult is the outcome of a structured parse run. Batches are in
// strict file order.
type StructuredResult struct {
	Batches      []*structured.Batch
	TotalRecords int
	TotalFields  int
	ScanTimeMS   float64
	ParseTimeMS  float64
	Format       format.Format
}

// avgFieldsPerRecord is the capacity pre-reservation estimate per format.
func avgFieldsPerRecord(f format.Format, header *structured.CSVHeader) int {
	switch f {
	case format.JSON:
		return 8
	case format.Logfmt:
		return 6
	case format.CSV:
		if header != nil {
			return header.NumColumns()
		}
		return 4
	default:
		return 4
	}
}

// parseStructuredChunk runs the fused scan+parse over buf[start:end] for the
// given format. Offsets in the produced batch are absolute into buf.
func parseStructuredChunk(buf []byte, start, end int, f format.Format, header *structured.CSVHeader) (*structured.Batch, float64, float64) {
	chunk := buf[start:end]

	scanStart := time.Now()
	estimated := len(chunk) / 80
	if estimated < 16 {
		estimated = 16
	}
	lineStarts := make([]uint64, 1, estimated+2)
	lineStarts[0] = uint64(start)
	lineStarts = scan.Region(chunk, uint64(start), uint64(end), lineStarts)
	lineStarts = append(lineStarts, uint64(end))
	scanMS := float64(time.Since(scanStart)) / float64(time.Millisecond)

	numLines := len(lineStarts) - 1

	parseStart := time.Now()
	batch := structured.NewBatch(numLines, numLines*avgFieldsPerRecord(f, header), buf)
	switch f {
	case format.JSON:
		structured.ParseJSONLines(buf, lineStarts, 0, numLines, batch)
	case format.CSV:
		if header != nil {
			structured.ParseCSVLines(buf, lineStarts, 0, numLines, header, batch)
		}
	default:
		// Logfmt, and the plain-text fallback when a structured parse is
		// requested on a plain buffer.
		structured.ParseLogfmtLines(buf, lineStarts, 0, numLines, batch)
	}
	parseMS := float64(time.Since(parseStart)) / float64(time.Millisecond)

	return batch, scanMS, parseMS
}

// ParseStructuredMmap parses a contiguous structured buffer. A non-nil hint
// overrides detection. CSV keeps its header as part of the shared buffer, so
// every batch's key references resolve against the same bytes.
func ParseStructuredMmap(buf []byte, workers int, hint *format.Format) *StructuredResult {
	if len(buf) == 0 {
		return &StructuredResult{Format: format.PlainText}
	}

	f := format.Detect(buf)
	if hint != nil {
		f = *hint
	}

	bodyStart := 0
	var header *structured.CSVHeader
	if f == format.CSV {
		header = structured.ParseCSVHeader(buf)
		bodyStart = structured.CSVHeaderEnd(buf)
		if bodyStart >= len(buf) || header == nil {
			return &StructuredResult{Format: format.CSV}
		}
	}

	return parseStructuredRegion(buf, bodyStart, workers, f, header)
}

// parseStructuredRegion chunk-parallelizes buf[bodyStart:] with stable chunk
// ordering, mirroring the plain-text mmap orchestrator.
func parseStructuredRegion(buf []byte, bodyStart, workers int, f format.Format, header *structured.CSVHeader) *StructuredResult {
	boundaries := chunkBoundariesFrom(buf, bodyStart, config.ChunkBytes())
	numChunks := len(boundaries) - 1

	if workers < 1 {
		workers = 1
	}
	if workers > numChunks {
		workers = numChunks
	}

	result := &StructuredResult{Format: f}

	if workers == 1 || numChunks <= 1 {
		for i := 0; i < numChunks; i++ {
			batch, scanMS, parseMS := parseStructuredChunk(buf, boundaries[i], boundaries[i+1], f, header)
			result.ScanTimeMS += scanMS
			result.ParseTimeMS += parseMS
			result.TotalRecords += batch.Len
			result.TotalFields += len(batch.Fields)
			result.Batches = append(result.Batches, batch)
		}
		return result
	}

	assignments := assignChunks(boundaries, workers)
	pinned := pinnedCPUs(workers)

	ordered := make([]*structured.Batch, numChunks)
	workerScanMS := make([]float64, workers)
	workerParseMS := make([]float64, workers)

	var wg sync.WaitGroup
	for w, chunks := range assignments {
		wg.Add(1)
		go func(w int, chunks []chunkAssignment) {
			defer wg.Done()
			if w < len(pinned) {
				pinWorker(pinned[w])
			}
			for _, c := range chunks {
				batch, scanMS, parseMS := parseStructuredChunk(buf, c.start, c.end, f, header)
				workerScanMS[w] += scanMS
				workerParseMS[w] += parseMS
				ordered[c.chunkIdx] = batch
			}
		}(w, chunks)
	}
	wg.Wait()

	for _, ms := range workerScanMS {
		if ms > result.ScanTimeMS {
			result.ScanTimeMS = ms
		}
	}
	for _, ms := range workerParseMS {
		if ms > result.ParseTimeMS {
			result.ParseTimeMS = ms
		}
	}
	for _, batch := range ordered {
		if batch == nil {
			continue
		}
		result.TotalRecords += batch.Len
		result.TotalFields += len(batch.Fields)
		result.Batches = append(result.Batches, batch)
	}
	return result
}

// chunkBoundariesFrom is chunkBoundaries with a non-zero first chunk start.
func chunkBoundariesFrom(buf []byte, from, chunkSize int) []int {
	boundaries := []int{from}
	pos := from + chunkSize
	for pos < len(buf) {
		off := bytes.IndexByte(buf[pos:], '\n')
		if off < 0 {
			break
		}
		boundary := pos + off + 1
		boundaries = append(boundaries, boundary)
		pos = boundary + chunkSize
	}
	return append(boundaries, len(buf))
}

// ParseStructuredStreamed parses a structured file with fixed-size reads and
// tail carry. Detection runs on the first combined buffer when no hint is
// given. In CSV mode the header line is recorded once and then prepended to
// every segment so key references stay valid against each segment's own
// buffer. Every segment's batch is retained with its owning buffer.
func ParseStructuredStreamed(file *os.File, fileSize int64, workers int, hint *format.Format) (*StructuredResult, error) {
	_ = workers // streaming parses each segment on the calling goroutine
	if fileSize == 0 {
		return &StructuredResult{Format: format.PlainText}, nil
	}

	fadviseSequential(file, fileSize)

	segmentSize := config.ChunkBytes()
	readBuf := make([]byte, segmentSize)
	var leftover []byte

	result := &StructuredResult{Format: format.PlainText}
	detected := false
	var f format.Format
	if hint != nil {
		f = *hint
		detected = true
	}

	var header *structured.CSVHeader
	var headerLine []byte

	for {
		bytesRead, err := readFull(file, readBuf)
		if err != nil {
			return nil, err
		}
		atEOF := bytesRead < segmentSize

		var workBuf []byte
		if len(leftover) == 0 {
			if bytesRead == 0 {
				break
			}
			workBuf = append(make([]byte, 0, bytesRead), readBuf[:bytesRead]...)
		} else {
			workBuf = append(leftover, readBuf[:bytesRead]...)
			leftover = nil
		}
		if len(workBuf) == 0 {
			break
		}

		if !detected {
			f = format.Detect(workBuf)
			detected = true
		}
		result.Format = f

		if f == format.CSV && header == nil {
			if !atEOF && bytes.IndexByte(workBuf, '\n') < 0 {
				// First line not complete yet; keep accumulating.
				leftover = workBuf
				continue
			}
			header = structured.ParseCSVHeader(workBuf)
			if header == nil {
				continue
			}
			headerEnd := structured.CSVHeaderEnd(workBuf)
			headerLine = append([]byte(nil), workBuf[:headerEnd]...)
			if headerEnd >= len(workBuf) {
				continue
			}
			workBuf = append(append([]byte(nil), headerLine...), workBuf[headerEnd:]...)
		} else if f == format.CSV && header != nil && len(headerLine) > 0 {
			workBuf = append(append([]byte(nil), headerLine...), workBuf...)
		}

		bodyStart := 0
		if f == format.CSV {
			bodyStart = len(headerLine)
		}

		completeEnd := len(workBuf)
		if !atEOF {
			pos := bytes.LastIndexByte(workBuf, '\n')
			if pos < bodyStart {
				leftover = append([]byte(nil), workBuf[bodyStart:]...)
				continue
			}
			completeEnd = pos + 1
		}

		if completeEnd < len(workBuf) {
			leftover = append([]byte(nil), workBuf[completeEnd:]...)
		}
		workBuf = workBuf[:completeEnd]

		if completeEnd <= bodyStart {
			if atEOF {
				break
			}
			continue
		}

		batch, scanMS, parseMS := parseStructuredOwned(workBuf, bodyStart, f, header)
		result.TotalRecords += batch.Len
		result.TotalFields += len(batch.Fields)
		result.ScanTimeMS += scanMS
		result.ParseTimeMS += parseMS
		result.Batches = append(result.Batches, batch)

		if atEOF {
			break
		}
	}

	return result, nil
}

// parseStructuredOwned is the single-segment fused scan+parse for streaming
// mode. bodyStart skips a prepended CSV header line.
func parseStructuredOwned(buf []byte, bodyStart int, f format.Format, header *structured.CSVHeader) (*structured.Batch, float64, float64) {
	return parseStructuredChunk(buf, bodyStart, len(buf), f, header)
}
