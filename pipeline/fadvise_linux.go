//go:build linux

package pipeline

import (
	"os"

	"golang.org/x/sys/unix"
)

// fadviseSequential tells the kernel the file will be read sequentially.
// Advisory only; failure is ignored.
func fadviseSequential(file *os.File, size int64) {
	_ = unix.Fadvise(int(file.Fd()), 0, size, unix.FADV_SEQUENTIAL)
}
