package gptr

import "sync/atomic"

var localRank int32 = -1

// SetLocalRank records this process's rank in the mesh. Bootstrap calls
// this exactly once, before any other component runs, matching the fixed
// construction order of spec §9 ("Global mutable state").
func SetLocalRank(rank int) {
	atomic.StoreInt32(&localRank, int32(rank))
}

// Rank returns the local process's rank, or -1 if SetLocalRank has not
// run yet.
func Rank() int {
	return int(atomic.LoadInt32(&localRank))
}
