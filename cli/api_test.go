package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Lunyn-HFT/pandora/format"
)

func TestTruncate(t *testing.T) {
	if got := truncate("short", 60); got != "short" {
		t.Errorf("got %q", got)
	}
	long := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	got := truncate(long, 10)
	if len(got) != 10 || got[7:] != "..." {
		t.Errorf("got %q", got)
	}
}

func TestModeString(t *testing.T) {
	if modeString(true) != "mmap" || modeString(false) != "streaming" {
		t.Fatal("mode strings")
	}
}

func TestGenerateThenParse(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gen.log")
	if err := runGenerate(out, 1, format.PlainText); err != nil {
		t.Fatal(err)
	}

	stat, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if stat.Size() < 1024*1024 {
		t.Fatalf("generated file too small: %d", stat.Size())
	}

	err = runParse(parseOptions{
		filePath: out,
		workers:  2,
		useMmap:  false,
		jsonOut:  true,
		compact:  true,
		summary:  true,
	})
	if err != nil {
		t.Fatalf("parse of generated file failed: %v", err)
	}
}

func TestGenerateThenParseStructured(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gen.jsonl")
	if err := runGenerate(out, 1, format.JSON); err != nil {
		t.Fatal(err)
	}

	err := runParse(parseOptions{
		filePath: out,
		workers:  2,
		useMmap:  false,
		jsonOut:  true,
		compact:  true,
	})
	if err != nil {
		t.Fatalf("structured parse of generated file failed: %v", err)
	}
}

func TestParseMissingFile(t *testing.T) {
	err := runParse(parseOptions{filePath: filepath.Join(t.TempDir(), "absent.log"), workers: 1})
	if err == nil {
		t.Fatal("missing file must error")
	}
}
