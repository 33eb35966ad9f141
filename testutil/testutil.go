// Package testutil creates temporary log files for tests and benchmarks.
package testutil

import (
	"os"
	"testing"

	"github.com/Lunyn-HFT/pandora/format"
	"github.com/Lunyn-HFT/pandora/generator"
)

// GenerateTestLogFile writes a synthetic log file of roughly targetBytes in
// the given format and returns its path plus a cleanup function.
func GenerateTestLogFile(t *testing.T, f format.Format, targetBytes uint64) (string, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "pandora_test_*.log")
	if err != nil {
		t.Fatalf("Failed to create temp log file: %v", err)
	}

	if _, err := generator.WriteStructured(tmpFile, targetBytes, f); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		t.Fatalf("Failed to write test log file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("Failed to close test log file: %v", err)
	}

	return tmpFile.Name(), func() { os.Remove(tmpFile.Name()) }
}

// WriteTempFile writes content to a fresh temp file and returns its path
// plus a cleanup function.
func WriteTempFile(t *testing.T, content []byte) (string, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "pandora_raw_*.log")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		t.Fatalf("Failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	return tmpFile.Name(), func() { os.Remove(tmpFile.Name()) }
}
