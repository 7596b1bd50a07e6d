package gshared

import (
	"sync/atomic"

	"github.com/nicolagi/rpctree/internal/callp"
)

// activeCaller is how the increment/decrement/fetch actions below reach
// the local call layer: gob's Encode/Decode hooks take no extra
// arguments, so there is nowhere else to thread a *callp.Caller through.
// Bootstrap installs this exactly once, right after callp.SetActive,
// mirroring the same fixed global construction order (spec §9).
var activeCaller atomic.Pointer[callp.Caller]

// SetCaller installs the process-wide call layer gshared uses to send
// owner traffic to remote ranks.
func SetCaller(c *callp.Caller) {
	activeCaller.Store(c)
}
