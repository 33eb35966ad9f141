//go:build linux

package pipeline

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// cpuTopoEntry describes one logical CPU with its package and physical core
// ids from sysfs, when available.
type cpuTopoEntry struct {
	cpu       int
	packageID int
	coreID    int
}

func readTopologyInt(cpu int, leaf string) int {
	path := fmt.Sprintf("/sys/devices/system/cpu/cpu%d/topology/%s", cpu, leaf)
	raw, err := os.ReadFile(path)
	if err != nil {
		return -1
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return -1
	}
	return v
}

func onlineCPUs() []int {
	n := runtime.NumCPU()
	cpus := make([]int, 0, n)
	for i := 0; i < n; i++ {
		cpus = append(cpus, i)
	}
	return cpus
}

// choosePinnedCPUs selects one logical CPU per worker, preferring one thread
// per physical core across all packages and spilling to SMT siblings only
// after distinct physical cores run out. Packages with more CPUs drain
// first.
func choosePinnedCPUs(workers int) []int {
	cpus := onlineCPUs()
	if workers == 0 || len(cpus) == 0 {
		return nil
	}

	topo := make([]cpuTopoEntry, 0, len(cpus))
	for _, cpu := range cpus {
		topo = append(topo, cpuTopoEntry{
			cpu:       cpu,
			packageID: readTopologyInt(cpu, "physical_package_id"),
			coreID:    readTopologyInt(cpu, "core_id"),
		})
	}

	byPackage := make(map[int][]cpuTopoEntry)
	for _, entry := range topo {
		byPackage[entry.packageID] = append(byPackage[entry.packageID], entry)
	}

	packages := make([][]cpuTopoEntry, 0, len(byPackage))
	for _, entries := range byPackage {
		packages = append(packages, entries)
	}
	sort.Slice(packages, func(a, b int) bool {
		if len(packages[a]) != len(packages[b]) {
			return len(packages[a]) > len(packages[b])
		}
		return packages[a][0].packageID < packages[b][0].packageID
	})

	type coreKey struct{ pkg, core int }
	selected := make([]int, 0, workers)
	usedCores := make(map[coreKey]bool)

	for _, entries := range packages {
		for _, entry := range entries {
			key := coreKey{entry.packageID, entry.coreID}
			if usedCores[key] {
				continue
			}
			usedCores[key] = true
			selected = append(selected, entry.cpu)
			if len(selected) >= workers {
				return selected
			}
		}
	}

	for _, entries := range packages {
		for _, entry := range entries {
			already := false
			for _, s := range selected {
				if s == entry.cpu {
					already = true
					break
				}
			}
			if already {
				continue
			}
			selected = append(selected, entry.cpu)
			if len(selected) >= workers {
				return selected
			}
		}
	}

	return selected
}

// pinWorker binds the calling goroutine's OS thread to one logical CPU for
// the remainder of the run. Failure to pin is not an error.
func pinWorker(cpu int) {
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	_ = unix.SchedSetaffinity(0, &set)
}
