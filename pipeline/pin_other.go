//go:build !linux

package pipeline

// Thread pinning relies on sysfs topology and sched_setaffinity; on other
// platforms workers run unpinned.

func choosePinnedCPUs(int) []int { return nil }

func pinWorker(int) {}
