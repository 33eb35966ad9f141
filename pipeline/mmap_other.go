//go:build !unix

package pipeline

import (
	"errors"
	"os"
)

// Mmap is unavailable off Unix; callers fall back to streaming mode.
func Mmap(*os.File, int64) ([]byte, error) {
	return nil, errors.New("memory mapping is not supported on this platform")
}

func Munmap([]byte) error { return nil }
