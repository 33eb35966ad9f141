package generator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Lunyn-HFT/pandora/format"
)

func TestWritePlainShape(t *testing.T) {
	var buf bytes.Buffer
	res, err := WritePlain(&buf, 4096)
	if err != nil {
		t.Fatal(err)
	}
	if res.Lines == 0 || res.BytesWritten < 4096 {
		t.Fatalf("lines=%d bytes=%d", res.Lines, res.BytesWritten)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if uint64(len(lines)) != res.Lines {
		t.Fatalf("reported %d lines, wrote %d", res.Lines, len(lines))
	}
	for _, line := range lines[:10] {
		parts := strings.SplitN(line, " ", 4)
		if len(parts) != 4 {
			t.Fatalf("line %q does not have four space-separated sections", line)
		}
		if !strings.HasPrefix(parts[0], "2025-02-12T") || !strings.HasSuffix(parts[0], "Z") {
			t.Errorf("timestamp %q", parts[0])
		}
		switch parts[1] {
		case "DEBUG", "INFO", "WARN", "ERROR", "FATAL":
		default:
			t.Errorf("level %q", parts[1])
		}
	}
}

func TestWritePlainDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	if _, err := WritePlain(&a, 2048); err != nil {
		t.Fatal(err)
	}
	if _, err := WritePlain(&b, 2048); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("generation must be deterministic")
	}
}

func TestWriteStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WriteStructured(&buf, 2048, format.JSON); err != nil {
		t.Fatal(err)
	}
	first, _, _ := strings.Cut(buf.String(), "\n")
	if !strings.HasPrefix(first, `{"ts":"`) || !strings.Contains(first, `"level":"`) {
		t.Errorf("json line %q", first)
	}
	if format.Detect(buf.Bytes()) != format.JSON {
		t.Error("generated json must detect as json")
	}
}

func TestWriteStructuredLogfmt(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WriteStructured(&buf, 2048, format.Logfmt); err != nil {
		t.Fatal(err)
	}
	if format.Detect(buf.Bytes()) != format.Logfmt {
		t.Error("generated logfmt must detect as logfmt")
	}
}

func TestWriteStructuredCSV(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WriteStructured(&buf, 2048, format.CSV); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "timestamp,level,component,message\n") {
		t.Error("csv output must begin with the header row")
	}
	if format.Detect(buf.Bytes()) != format.CSV {
		t.Error("generated csv must detect as csv")
	}
}

func TestWriteStructuredPlainFallsThrough(t *testing.T) {
	var a, b bytes.Buffer
	if _, err := WriteStructured(&a, 1024, format.PlainText); err != nil {
		t.Fatal(err)
	}
	if _, err := WritePlain(&b, 1024); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("PlainText structured generation must match WritePlain")
	}
}
