//go:build unix

package pipeline

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mmap maps the file read-only as one contiguous buffer and advises the
// kernel the access will be sequential.
func Mmap(file *os.File, size int64) ([]byte, error) {
	buf, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap failed: %w", err)
	}
	_ = unix.Madvise(buf, unix.MADV_SEQUENTIAL)
	_ = unix.Madvise(buf, unix.MADV_WILLNEED)
	return buf, nil
}

// Munmap releases a buffer obtained from Mmap. The caller must not touch the
// buffer, or any batch referencing it, afterwards.
func Munmap(buf []byte) error {
	return unix.Munmap(buf)
}
