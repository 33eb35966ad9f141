package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Lunyn-HFT/pandora/data"
	"github.com/Lunyn-HFT/pandora/structured"
)

func TestSummarizeStructured(t *testing.T) {
	buf := []byte("level=info component=api\nlevel=warn component=api\nlevel=info component=db\n")
	b := structured.NewBatch(3, 6, buf)
	structured.ParseLogfmtLines(buf, []uint64{0, 25, 50, uint64(len(buf))}, 0, 3, b)

	summary := SummarizeStructured([]*structured.Batch{b})

	if summary.Levels["info"] != 2 || summary.Levels["warn"] != 1 {
		t.Fatalf("levels = %v", summary.Levels)
	}
	if summary.Components["api"] != 2 || summary.Components["db"] != 1 {
		t.Fatalf("components = %v", summary.Components)
	}
}

func TestSummarizeStructuredManyBatches(t *testing.T) {
	// One goroutine per batch merging into the shared maps.
	var batches []*structured.Batch
	buf := []byte("level=info component=api\n")
	for i := 0; i < 32; i++ {
		b := structured.NewBatch(1, 2, buf)
		structured.ParseLogfmtLine(buf[:len(buf)-1], 0, b)
		batches = append(batches, b)
	}

	summary := SummarizeStructured(batches)
	if summary.Levels["info"] != 32 {
		t.Fatalf("levels = %v", summary.Levels)
	}
	if summary.Components["api"] != 32 {
		t.Fatalf("components = %v", summary.Components)
	}
}

func TestSummarizePlain(t *testing.T) {
	buf := []byte("2025-02-12T10:31:45Z INFO api-server one\n2025-02-12T10:31:46Z INFO api-server two\n")
	b := data.NewBatch(2, buf)
	b.Levels[0] = data.Info
	b.Levels[1] = data.Info
	b.ComponentOffsets[0] = 26
	b.ComponentLens[0] = 10
	b.ComponentOffsets[1] = 67
	b.ComponentLens[1] = 10

	summary := SummarizePlain([]*data.Batch{b})
	if summary.Levels["Info"] != 2 {
		t.Fatalf("levels = %v", summary.Levels)
	}
	if summary.Components["api-server"] != 2 {
		t.Fatalf("components = %v", summary.Components)
	}
}

func TestTopN(t *testing.T) {
	counts := map[string]uint64{"a": 5, "b": 9, "c": 1, "d": 9}
	got := TopN(counts, 3)
	if len(got) != 3 || got[0] != "b" || got[1] != "d" || got[2] != "a" {
		t.Fatalf("top = %v", got)
	}
}

func TestReportRender(t *testing.T) {
	report := &Report{
		Metadata: Metadata{
			GeneratedAt: time.Unix(0, 0).UTC(),
			Version:     "test",
			File:        "/tmp/x.log",
			Mode:        "mmap",
			Capability:  "Scalar (no wide blocks)",
		},
		Parsing: Parsing{
			Format:       "json",
			TotalBytes:   100,
			TotalRecords: 2,
		},
	}

	raw, err := report.Render(false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "\n") {
		t.Error("pretty output should be indented")
	}

	compact, err := report.Render(true)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(compact, &decoded); err != nil {
		t.Fatalf("compact output must be valid JSON: %v", err)
	}
	if _, ok := decoded["warnings"]; !ok {
		t.Error("warnings must serialize even when empty")
	}
}
