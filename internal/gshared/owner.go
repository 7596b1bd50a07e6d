package gshared

import (
	"sync"
	"sync/atomic"

	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/callp"
	"github.com/nicolagi/rpctree/internal/gptr"
)

// owner is the refcounted record an object's home process keeps: one
// per locally-constructed GlobalShared value. It never crosses the wire
// itself; only its (process, id) identity does.
type owner struct {
	refcount int64
	destroy  func()
}

var (
	ownersMu  sync.Mutex
	owners    = make(map[uint64]*owner)
	nextOwner uint64
)

// allocateOwner registers a fresh owner with refcount 1 (the reference
// the caller is about to hand back) and returns its id.
func allocateOwner(destroy func()) uint64 {
	id := atomic.AddUint64(&nextOwner, 1)
	ownersMu.Lock()
	owners[id] = &owner{refcount: 1, destroy: destroy}
	ownersMu.Unlock()
	return id
}

func incrementLocal(id uint64) {
	ownersMu.Lock()
	o, ok := owners[id]
	if ok {
		o.refcount++
	}
	ownersMu.Unlock()
}

func decrementLocal(id uint64) {
	ownersMu.Lock()
	o, ok := owners[id]
	if !ok {
		ownersMu.Unlock()
		return
	}
	o.refcount--
	zero := o.refcount == 0
	if zero {
		delete(owners, id)
	}
	ownersMu.Unlock()
	if zero {
		o.destroy()
	}
}

type incrementArgs struct {
	OwnerID uint64
}

type decrementArgs struct {
	OwnerID uint64
}

var incrementAction = action.Register[incrementArgs, struct{}]("gshared.increment", func(a incrementArgs) (struct{}, error) {
	incrementLocal(a.OwnerID)
	return struct{}{}, nil
})

var decrementAction = action.Register[decrementArgs, struct{}]("gshared.decrement", func(a decrementArgs) (struct{}, error) {
	decrementLocal(a.OwnerID)
	return struct{}{}, nil
})

// sendIncrement adds one to ownerID's refcount, wherever it lives.
func sendIncrement(ownerProc int, ownerID uint64) {
	if ownerProc == gptr.Rank() {
		incrementLocal(ownerID)
		return
	}
	c := activeCaller.Load()
	if c == nil {
		return
	}
	_ = callp.Detached(c, ownerProc, incrementAction, incrementArgs{OwnerID: ownerID})
}

// sendDecrement subtracts one from ownerID's refcount, wherever it
// lives; reaching zero destructs the owner (and, through it, the
// pointee) on its home process.
func sendDecrement(ownerProc int, ownerID uint64) {
	if ownerProc == gptr.Rank() {
		decrementLocal(ownerID)
		return
	}
	c := activeCaller.Load()
	if c == nil {
		return
	}
	_ = callp.Detached(c, ownerProc, decrementAction, decrementArgs{OwnerID: ownerID})
}
