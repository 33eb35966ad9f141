package output

import (
	"sort"
	"sync"

	"github.com/alphadose/haxmap"

	"github.com/Lunyn-HFT/pandora/data"
	"github.com/Lunyn-HFT/pandora/structured"
)

// Summary aggregates record counts by level and component value across all
// batches of a run.
type Summary struct {
	Levels     map[string]uint64 `json:"levels,omitempty"`
	Components map[string]uint64 `json:"components,omitempty"`
}

// bump atomically increments key's counter in m.
func bump(m *haxmap.Map[string, uint64], key string) {
	for {
		if cur, ok := m.Get(key); ok {
			if m.CompareAndSwap(key, cur, cur+1) {
				return
			}
			continue
		}
		if _, loaded := m.GetOrSet(key, 1); !loaded {
			return
		}
	}
}

// SummarizeStructured counts level and component values across batches, one
// worker goroutine per batch, merging into shared concurrent maps. Map keys
// are copied out of the backing buffers so the summary outlives them.
func SummarizeStructured(batches []*structured.Batch) *Summary {
	levels := haxmap.New[string, uint64]()
	components := haxmap.New[string, uint64]()

	var wg sync.WaitGroup
	for _, batch := range batches {
		wg.Add(1)
		go func(b *structured.Batch) {
			defer wg.Done()
			for i := 0; i < b.Len; i++ {
				if v, ok := b.LevelValue(i); ok {
					bump(levels, string([]byte(v)))
				}
				if v, ok := b.ComponentValue(i); ok {
					bump(components, string([]byte(v)))
				}
			}
		}(batch)
	}
	wg.Wait()

	return &Summary{
		Levels:     drain(levels),
		Components: drain(components),
	}
}

// SummarizePlain counts decoded levels and component strings across plain
// batches.
func SummarizePlain(batches []*data.Batch) *Summary {
	levels := haxmap.New[string, uint64]()
	components := haxmap.New[string, uint64]()

	var wg sync.WaitGroup
	for _, batch := range batches {
		wg.Add(1)
		go func(b *data.Batch) {
			defer wg.Done()
			for i := 0; i < b.Len; i++ {
				bump(levels, b.Levels[i].String())
				bump(components, string([]byte(b.Component(i))))
			}
		}(batch)
	}
	wg.Wait()

	return &Summary{
		Levels:     drain(levels),
		Components: drain(components),
	}
}

func drain(m *haxmap.Map[string, uint64]) map[string]uint64 {
	out := make(map[string]uint64, m.Len())
	m.ForEach(func(k string, v uint64) bool {
		out[k] = v
		return true
	})
	return out
}

// TopN returns the n highest-count keys of counts, largest first, ties
// broken lexicographically.
func TopN(counts map[string]uint64, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if counts[keys[a]] != counts[keys[b]] {
			return counts[keys[a]] > counts[keys[b]]
		}
		return keys[a] < keys[b]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
