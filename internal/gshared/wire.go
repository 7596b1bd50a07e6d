package gshared

// sharedWire is what actually crosses the wire for a GlobalShared[T]
// value: the pointee's (rank, address) and the owner's identity, never
// T itself — the pointee is dereferenced in place on its home process,
// not copied, unless Local() is explicitly asked to fetch a copy.
type sharedWire struct {
	Empty       bool
	PointeeProc int
	PointeeAddr uint64
	OwnerProc   int
	OwnerID     uint64
}
