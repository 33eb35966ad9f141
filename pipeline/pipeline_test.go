package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"testing"

	"github.com/Lunyn-HFT/pandora/config"
	"github.com/Lunyn-HFT/pandora/data"
	"github.com/Lunyn-HFT/pandora/format"
)

func TestChunkBoundariesNewlineAligned(t *testing.T) {
	var buf []byte
	for i := 0; i < 100; i++ {
		buf = append(buf, []byte(fmt.Sprintf("line number %d with padding padding padding\n", i))...)
	}

	boundaries := chunkBoundaries(buf, 256)
	if boundaries[0] != 0 || boundaries[len(boundaries)-1] != len(buf) {
		t.Fatal("boundaries must span the whole buffer")
	}
	for _, b := range boundaries[1 : len(boundaries)-1] {
		if buf[b-1] != '\n' {
			t.Fatalf("boundary %d does not follow a newline", b)
		}
	}
}

func TestPlainMmapBasic(t *testing.T) {
	buf := []byte("2025-02-12T10:31:45Z INFO api-server request_id=abc123\n" +
		"2025-02-12T10:31:46Z WARN auth-service auth_failed\n" +
		"2025-02-12T10:31:47Z ERROR database-pool connection_timeout\n")

	result := ParsePlainMmap(buf, 2)
	if result.TotalLines != 3 {
		t.Fatalf("total lines = %d", result.TotalLines)
	}

	first := result.Batches[0]
	wantLevels := []data.Level{data.Info, data.Warn, data.Error}
	wantComponents := []string{"api-server", "auth-service", "database-pool"}
	wantTimestamps := []uint64{1739356305, 1739356306, 1739356307}
	for i := range wantLevels {
		if first.Levels[i] != wantLevels[i] {
			t.Errorf("record %d level = %v", i, first.Levels[i])
		}
		if got := first.Component(i); got != wantComponents[i] {
			t.Errorf("record %d component = %q", i, got)
		}
		if first.Timestamps[i] != wantTimestamps[i] {
			t.Errorf("record %d timestamp = %d", i, first.Timestamps[i])
		}
	}
	if got := first.Message(0); got != "request_id=abc123" {
		t.Errorf("record 0 message = %q", got)
	}
}

func TestPlainMmapEmptyInput(t *testing.T) {
	result := ParsePlainMmap(nil, 4)
	if result.TotalLines != 0 || len(result.Batches) != 0 {
		t.Fatal("empty input must produce no records and no batches")
	}
}

func TestPlainMmapNoTrailingNewline(t *testing.T) {
	buf := []byte("2025-02-12T10:31:45Z INFO api-server one\n2025-02-12T10:31:46Z WARN auth-service two")
	result := ParsePlainMmap(buf, 1)
	if result.TotalLines != 2 {
		t.Fatalf("final line without newline must still be a record, got %d", result.TotalLines)
	}
}

func TestPlainMmapSkipsEmptyLines(t *testing.T) {
	buf := []byte("2025-02-12T10:31:45Z INFO api-server one\n\n2025-02-12T10:31:46Z WARN auth-service two\n")
	result := ParsePlainMmap(buf, 1)
	if result.TotalLines != 2 {
		t.Fatalf("consecutive newlines must not produce a record, got %d", result.TotalLines)
	}
}

// collectPlain flattens a result into comparable record tuples.
func collectPlain(r *PlainResult) []string {
	var out []string
	for _, b := range r.Batches {
		for i := 0; i < b.Len; i++ {
			out = append(out, fmt.Sprintf("%d|%s|%s|%s",
				b.Timestamps[i], b.Levels[i], b.Component(i), b.Message(i)))
		}
	}
	return out
}

func TestPlainMmapWorkerCountInvariance(t *testing.T) {
	t.Setenv(config.EnvChunkMB, "1")

	var buf []byte
	for i := 0; i < 60000; i++ {
		buf = append(buf, []byte(fmt.Sprintf(
			"2025-02-12T10:31:45Z INFO api-server request_id=req%06d latency_ms=%d\n", i, i%500))...)
	}

	baseline := collectPlain(ParsePlainMmap(buf, 1))
	if len(baseline) != 60000 {
		t.Fatalf("baseline records = %d", len(baseline))
	}

	for _, workers := range []int{2, 3, 8} {
		got := collectPlain(ParsePlainMmap(buf, workers))
		if len(got) != len(baseline) {
			t.Fatalf("workers=%d: %d records, want %d", workers, len(got), len(baseline))
		}
		for i := range got {
			if got[i] != baseline[i] {
				t.Fatalf("workers=%d: record %d differs:\n  %s\n  %s", workers, i, got[i], baseline[i])
			}
		}
	}
}

func TestPlainStreamedMatchesMmap(t *testing.T) {
	t.Setenv(config.EnvChunkMB, "1")

	var buf []byte
	for i := 0; i < 50000; i++ {
		buf = append(buf, []byte(fmt.Sprintf(
			"2025-02-12T10:31:45Z INFO api-server request_id=req%06d\n", i))...)
	}

	mmapRecords := collectPlain(ParsePlainMmap(buf, 4))

	file := writeTempFile(t, buf)
	defer os.Remove(file.Name())
	defer file.Close()

	streamed, err := ParsePlainStreamed(file, int64(len(buf)), 4)
	if err != nil {
		t.Fatal(err)
	}
	streamRecords := collectPlain(streamed)

	if len(streamRecords) != len(mmapRecords) {
		t.Fatalf("streamed %d records, mmap %d", len(streamRecords), len(mmapRecords))
	}
	for i := range streamRecords {
		// Offsets differ between modes; the decoded values must not.
		if streamRecords[i] != mmapRecords[i] {
			t.Fatalf("record %d differs:\n  stream: %s\n  mmap:   %s",
				i, streamRecords[i], mmapRecords[i])
		}
	}
	if len(streamed.Batches) < 2 {
		t.Error("a 1 MiB segment size over ~3 MB of input must retain multiple batches")
	}
}

func TestPlainStreamedFinalLeftover(t *testing.T) {
	buf := []byte("2025-02-12T10:31:45Z INFO api-server one\n2025-02-12T10:31:46Z WARN auth-service tail-no-newline")
	file := writeTempFile(t, buf)
	defer os.Remove(file.Name())
	defer file.Close()

	result, err := ParsePlainStreamed(file, int64(len(buf)), 1)
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalLines != 2 {
		t.Fatalf("leftover at EOF must parse as a final region, got %d lines", result.TotalLines)
	}
}

func TestPlainStreamedEmptyFile(t *testing.T) {
	file := writeTempFile(t, nil)
	defer os.Remove(file.Name())
	defer file.Close()

	result, err := ParsePlainStreamed(file, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalLines != 0 {
		t.Fatal("empty file must parse to zero records")
	}
}

func writeTempFile(t *testing.T, content []byte) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "pipeline_*.log")
	if err != nil {
		t.Fatal(err)
	}
	if len(content) > 0 {
		if _, err := f.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestMmapParsesRealFile(t *testing.T) {
	buf := bytes.Repeat([]byte("2025-02-12T10:31:45Z INFO api-server request_id=abc123\n"), 1000)
	file := writeTempFile(t, buf)
	defer os.Remove(file.Name())
	defer file.Close()

	mapped, err := Mmap(file, int64(len(buf)))
	if err != nil {
		t.Skipf("mmap unavailable: %v", err)
	}
	defer Munmap(mapped)

	result := ParsePlainMmap(mapped, 4)
	if result.TotalLines != 1000 {
		t.Fatalf("mapped parse = %d lines", result.TotalLines)
	}
	if result.Batches[0].Levels[0] != data.Info {
		t.Error("first record level")
	}
}

func TestStructuredFormatFallback(t *testing.T) {
	// A structured parse over plain text uses the logfmt tokenizer.
	buf := []byte("2025-02-12T10:31:45Z INFO api-server request_id=abc123\n")
	hint := format.PlainText
	result := ParseStructuredMmap(buf, 1, &hint)
	if result.TotalRecords != 1 {
		t.Fatalf("records = %d", result.TotalRecords)
	}
}
