// +build linux

package bootstrap

import (
	"golang.org/x/sys/unix"
)

// pinWorker binds the calling OS thread — the caller must already have
// called runtime.LockOSThread — to cpu, replacing the original's HWLOC
// call with the Linux-only syscall pair x/sys/unix exposes.
func pinWorker(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

// availableCPUs reports how many PUs this thread could be scheduled on
// before bootstrap narrows it down, used to balance local ranks across
// a node (spec §4.10: "local ranks × worker count fills the node in a
// balanced way").
func availableCPUs() (int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 0, err
	}
	return set.Count(), nil
}
