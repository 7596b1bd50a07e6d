package rthread

import (
	"sync/atomic"

	"github.com/jtolds/gls"
)

// glsMgr tags every pool-managed goroutine with the id of the task it is
// currently running, using goroutine-local storage. This lets
// CurrentTaskID distinguish a pool worker's call stack from an arbitrary
// caller goroutine without threading a context value through every
// function signature, the same trick the original's cooperative scheduler
// got for free by controlling its own stack-switching.
var glsMgr = gls.NewContextManager()

const taskIDKey = "rthread.taskID"

var taskCounter uint64

func nextTaskID() uint64 {
	return atomic.AddUint64(&taskCounter, 1)
}

// CurrentTaskID returns the id of the pool task executing on the calling
// goroutine. ok is false when called from a goroutine that isn't running
// inside the pool (e.g. the transport's own event-loop goroutine, or a
// test).
func CurrentTaskID() (id uint64, ok bool) {
	v, found := glsMgr.GetValue(taskIDKey)
	if !found {
		return 0, false
	}
	return v.(uint64), true
}

func runAsTask(id uint64, fn func()) {
	glsMgr.SetValues(gls.Values{taskIDKey: id}, fn)
}
