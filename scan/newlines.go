package scan

import (
	"sort"
	"sync"
)

// parallelThreshold is the minimum input size worth splitting across threads.
const parallelThreshold = 1_000_000

// Newlines returns the line-start offsets for the whole buffer, seeded with 0.
func Newlines(data []byte) []uint64 {
	if len(data) == 0 {
		return []uint64{0}
	}

	estimated := len(data) / 80
	if estimated < 64 {
		estimated = 64
	}
	starts := make([]uint64, 1, estimated)
	starts[0] = 0
	return Region(data, 0, uint64(len(data)), starts)
}

// NewlinesParallel splits the buffer across threads and merges the per-chunk
// line-start vectors in chunk order. The result is identical to Newlines.
func NewlinesParallel(data []byte, threads int) []uint64 {
	if len(data) == 0 {
		return []uint64{0}
	}
	if threads <= 1 || len(data) < parallelThreshold {
		return Newlines(data)
	}

	chunkSize := (len(data) + threads - 1) / threads
	totalLen := uint64(len(data))

	type chunkResult struct {
		idx    int
		starts []uint64
	}

	var wg sync.WaitGroup
	results := make([]chunkResult, 0, threads)
	var mu sync.Mutex

	for i := 0; i < threads; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(idx, start, end int) {
			defer wg.Done()
			chunk := data[start:end]
			estimated := len(chunk) / 80
			if estimated < 16 {
				estimated = 16
			}
			local := make([]uint64, 0, estimated+1)
			if idx == 0 {
				local = append(local, 0)
			}
			local = Region(chunk, uint64(start), totalLen, local)
			mu.Lock()
			results = append(results, chunkResult{idx: idx, starts: local})
			mu.Unlock()
		}(i, start, end)
	}
	wg.Wait()

	sort.Slice(results, func(a, b int) bool { return results[a].idx < results[b].idx })

	total := 0
	for _, r := range results {
		total += len(r.starts)
	}
	merged := make([]uint64, 0, total)
	for _, r := range results {
		merged = append(merged, r.starts...)
	}
	return merged
}
