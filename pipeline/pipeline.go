// Package pipeline orchestrates fused scan+parse runs over large log
// buffers, either memory-mapped (newline-aligned chunks parsed in parallel
// with stable ordering) or streamed (fixed-size reads with a carried-over
// partial-line tail).
package pipeline

import (
	"sync"
	"time"

	"github.com/Lunyn-HFT/pandora/config"
	"github.com/Lunyn-HFT/pandora/data"
	"github.com/Lunyn-HFT/pandora/logparser"
	"github.com/Lunyn-HFT/pandora/scan"
)

// PlainResult is the outcome of a plain-text parse run. Batches are in
// strict file order; each batch references the buffer it was parsed from.
type PlainResult struct {
	Batches     []*data.Batch
	TotalLines  int
	ScanTimeMS  float64
	ParseTimeMS float64
}

// chunkBoundaries cuts buf into newline-aligned chunks of roughly chunkSize
// bytes: from each target offset, advance to the next '\n' inclusive. The
// returned slice holds chunk start offsets plus len(buf) as the final bound,
// so chunk i spans [b[i], b[i+1]).
func chunkBoundaries(buf []byte, chunkSize int) []int {
	return chunkBoundariesFrom(buf, 0, chunkSize)
}

// chunkAssignment is one worker's contiguous run of chunks.
type chunkAssignment struct {
	chunkIdx int
	start    int
	end      int
}

// assignChunks partitions chunks contiguously among workers: worker k gets
// chunks [k*C/W, (k+1)*C/W).
func assignChunks(boundaries []int, workers int) [][]chunkAssignment {
	numChunks := len(boundaries) - 1
	assignments := make([][]chunkAssignment, workers)
	for w := 0; w < workers; w++ {
		startChunk := w * numChunks / workers
		endChunk := (w + 1) * numChunks / workers
		chunks := make([]chunkAssignment, 0, endChunk-startChunk)
		for i := startChunk; i < endChunk; i++ {
			chunks = append(chunks, chunkAssignment{i, boundaries[i], boundaries[i+1]})
		}
		assignments[w] = chunks
	}
	return assignments
}

// parsePlainChunk runs the fused scan+parse over buf[start:end]. Passing end
// as the scanner's length bound drops the chunk's own trailing newline, so
// the appended end sentinel is the sole terminator.
func parsePlainChunk(buf []byte, start, end int) (*data.Batch, float64, float64) {
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
	batch := data.NewBatch(numLines, buf)
	n := parsePlainLines(buf, lineStarts, numLines, batch)
	truncatePlainBatch(batch, n)
	parseMS := float64(time.Since(parseStart)) / float64(time.Millisecond)

	return batch, scanMS, parseMS
}

// parsePlainLines writes records compactly so that empty lines produce no
// record, and returns the record count.
func parsePlainLines(buf []byte, lineStarts []uint64, numLines int, batch *data.Batch) int {
	out := 0
	for i := 0; i < numLines; i++ {
		lineStart := int(lineStarts[i])
		next := int(lineStarts[i+1])
		lineEnd := next
		if next > 0 && next <= len(buf) && buf[next-1] == '\n' {
			lineEnd = next - 1
		}
		if lineStart >= len(buf) || lineStart >= lineEnd {
			continue
		}
		logparser.ParseLine(buf[lineStart:lineEnd], out, batch, uint64(lineStart))
		out++
	}
	return out
}

func truncatePlainBatch(b *data.Batch, n int) {
	b.Timestamps = b.Timestamps[:n]
	b.Levels = b.Levels[:n]
	b.ComponentOffsets = b.ComponentOffsets[:n]
	b.ComponentLens = b.ComponentLens[:n]
	b.MessageOffsets = b.MessageOffsets[:n]
	b.MessageLens = b.MessageLens[:n]
	b.Len = n
}

// ParsePlainMmap parses a contiguous plain-text buffer with up to workers
// parallel workers. Chunks are newline-aligned, parsed independently, and
// reassembled in chunk order, so the concatenated batches are in strict file
// order regardless of the worker count.
func ParsePlainMmap(buf []byte, workers int) *PlainResult {
	if len(buf) == 0 {
		return &PlainResult{}
	}

	boundaries := chunkBoundaries(buf, config.ChunkBytes())
	numChunks := len(boundaries) - 1

	if workers < 1 {
		workers = 1
	}
	if workers > numChunks {
		workers = numChunks
	}

	if workers == 1 || numChunks <= 1 {
		result := &PlainResult{Batches: make([]*data.Batch, 0, numChunks)}
		for i := 0; i < numChunks; i++ {
			batch, scanMS, parseMS := parsePlainChunk(buf, boundaries[i], boundaries[i+1])
			result.ScanTimeMS += scanMS
			result.ParseTimeMS += parseMS
			result.TotalLines += batch.Len
			result.Batches = append(result.Batches, batch)
		}
		return result
	}

	assignments := assignChunks(boundaries, workers)
	pinned := pinnedCPUs(workers)

	ordered := make([]*data.Batch, numChunks)
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
				batch, scanMS, parseMS := parsePlainChunk(buf, c.start, c.end)
				workerScanMS[w] += scanMS
				workerParseMS[w] += parseMS
				ordered[c.chunkIdx] = batch
			}
		}(w, chunks)
	}
	wg.Wait()

	result := &PlainResult{Batches: make([]*data.Batch, 0, numChunks)}
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
		result.TotalLines += batch.Len
		result.Batches = append(result.Batches, batch)
	}
	return result
}

// pinnedCPUs resolves the pinning CPU set when PANDORA_ENABLE_PINNING asks
// for it; otherwise no worker is pinned.
func pinnedCPUs(workers int) []int {
	if !config.PinningEnabled() {
		return nil
	}
	return choosePinnedCPUs(workers)
}
