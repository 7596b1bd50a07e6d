package action

// Descriptor is a registered action: a stable ID plus the function it
// invokes on the callee. Args and R are captured as type parameters so
// call sites (component C4) get a typed Call/EncodeArgs/DecodeResult API,
// while the registry itself only ever sees the type-erased EvaluateFunc
// installed by Register.
type Descriptor[Args any, R any] struct {
	id string
	fn func(Args) (R, error)
}

// Register assigns Default's registry a fresh Descriptor for fn under a
// name-derived stable id. Intended to be called from a package-level var
// initializer, exactly where the original's RPC_ACTION macro would have
// run static-initialization-time registration.
func Register[Args any, R any](name string, fn func(Args) (R, error)) *Descriptor[Args, R] {
	return RegisterIn(Default, name, fn)
}

// RegisterIn is Register against an explicit registry, for tests that
// want isolation from the process-wide Default.
func RegisterIn[Args any, R any](reg *Registry, name string, fn func(Args) (R, error)) *Descriptor[Args, R] {
	d := &Descriptor[Args, R]{id: stableID(name), fn: fn}
	reg.register(d.id, name, d.evaluateWire)
	return d
}

// ID is the wire identifier for this action.
func (d *Descriptor[Args, R]) ID() string { return d.id }

// Call invokes the action's function directly, with no encoding at all.
// This is what the local short-circuit (spec §4.4) uses when destination
// equals the local rank.
func (d *Descriptor[Args, R]) Call(args Args) (R, error) {
	return d.fn(args)
}

// EncodeArgs gob-encodes an argument tuple for shipment in an evaluate
// envelope.
func (d *Descriptor[Args, R]) EncodeArgs(args Args) ([]byte, error) {
	return gobEncode(args)
}

// DecodeResult gob-decodes a result payload from a finish envelope.
func (d *Descriptor[Args, R]) DecodeResult(payload []byte) (R, error) {
	var r R
	err := gobDecode(payload, &r)
	return r, err
}

// evaluateWire is the type-erased entry point the registry calls on the
// callee: decode args, run fn, re-encode the result (or record a failure
// message — invocation-time errors are surfaced to the caller's future,
// per spec §7, not treated as a transport fault).
func (d *Descriptor[Args, R]) evaluateWire(payload []byte) ([]byte, string) {
	var args Args
	if err := gobDecode(payload, &args); err != nil {
		return nil, err.Error()
	}
	result, err := d.fn(args)
	if err != nil {
		return nil, err.Error()
	}
	out, err := gobEncode(result)
	if err != nil {
		return nil, err.Error()
	}
	return out, ""
}
