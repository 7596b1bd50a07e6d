// +build !linux

package bootstrap

import "runtime"

// pinWorker no-ops outside Linux: there is no portable affinity syscall
// this stack reaches for, mirroring the teacher's node_plan9.go fallback
// for platform-specific behavior it can't express uniformly.
func pinWorker(cpu int) error {
	return nil
}

func availableCPUs() (int, error) {
	return runtime.NumCPU(), nil
}
