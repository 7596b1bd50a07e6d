package gshared

import "sync"

// manager is the local amortization point for a given owner: however
// many GlobalShared copies exist on this process referencing the same
// owner, they share one manager, so the owner holds a single reference
// for this process (spec §4.6: "so only one manager exists per
// (process, owner) pair"). Each further decoded copy still returns its
// inherited reference with a decrement (acquireManagerFromWire).
type manager struct {
	ownerProc int
	ownerID   uint64
	localRef  int64
}

type managerKey struct {
	ownerProc int
	ownerID   uint64
}

var (
	managersMu sync.Mutex
	managers   = make(map[managerKey]*manager)
)

// acquireManagerOwned is used when this process just became the owner
// itself (NewGlobalShared): the owner's initial refcount of 1 already
// covers this first local reference, so no network traffic is needed.
func acquireManagerOwned(ownerProc int, ownerID uint64) *manager {
	key := managerKey{ownerProc, ownerID}
	managersMu.Lock()
	defer managersMu.Unlock()
	m := &manager{ownerProc: ownerProc, ownerID: ownerID, localRef: 1}
	managers[key] = m
	return m
}

// acquireManagerFromWire installs or reuses the local manager for a
// deserialized GlobalShared value. The incoming bytes already carry one
// in-flight reference (the sender's GobEncode called sendIncrement): if
// this is the first local reference to that owner, the inherited
// reference is kept as this process's stake and no traffic is sent; if
// a manager already existed, the inherited reference is now redundant
// and is discarded with a decrement (spec §4.6, "discard the inherited
// in-flight reference").
func acquireManagerFromWire(ownerProc int, ownerID uint64) *manager {
	key := managerKey{ownerProc, ownerID}
	managersMu.Lock()
	m, existed := managers[key]
	if !existed {
		m = &manager{ownerProc: ownerProc, ownerID: ownerID, localRef: 1}
		managers[key] = m
		managersMu.Unlock()
		return m
	}
	m.localRef++
	managersMu.Unlock()
	sendDecrement(ownerProc, ownerID)
	return m
}

// release drops one local reference from m, sending a decrement to the
// owner only when this was the last local reference on this process.
func release(m *manager) {
	if m == nil {
		return
	}
	key := managerKey{m.ownerProc, m.ownerID}
	managersMu.Lock()
	m.localRef--
	zero := m.localRef == 0
	if zero {
		delete(managers, key)
	}
	managersMu.Unlock()
	if zero {
		sendDecrement(m.ownerProc, m.ownerID)
	}
}
