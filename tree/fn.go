package tree

import (
	"sync/atomic"

	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/callp"
)

// activeCaller is how the remote-dispatch action handlers below reach
// the local call layer: they run with no closure over a live *Caller,
// the same constraint package callp's broadcast-forward action and
// package gshared's increment/decrement actions have. Bootstrap installs
// this once, right after callp.SetActive (spec §9's fixed construction
// order).
var activeCaller atomic.Pointer[callp.Caller]

// SetActive installs c as the process-wide call layer tree operations
// dispatch remote work through.
func SetActive(c *callp.Caller) {
	activeCaller.Store(c)
}

// Callable is the "function argument" of every tree operation (spec
// §4.9's "action-ness of the function argument"). It is either a plain
// Go callable, usable only to compute a value on whichever process
// already holds the data, or a registered action (package action),
// which can additionally be dispatched to run on a different process
// entirely. Both shapes produce the same observable results; only
// whether the work can cross the wire differs.
type Callable[In, Out any] struct {
	fn     func(In) (Out, error)
	action *action.Descriptor[In, Out]
}

// LocalFn wraps an ordinary callable. It can only ever run on the
// process that already has the input value in hand.
func LocalFn[In, Out any](fn func(In) (Out, error)) Callable[In, Out] {
	return Callable[In, Out]{fn: fn}
}

// ActionFn wraps a registered action, letting tree operations dispatch
// it to whichever rank a branch's child lives on.
func ActionFn[In, Out any](d *action.Descriptor[In, Out]) Callable[In, Out] {
	return Callable[In, Out]{action: d}
}

// IsAction reports whether f can be shipped to another process.
func (f Callable[In, Out]) IsAction() bool {
	return f.action != nil
}

// Eval runs f on the calling process, regardless of which shape it is:
// this is always correct when the input is already local, whether or
// not f happens to be remotely dispatchable.
func (f Callable[In, Out]) Eval(in In) (Out, error) {
	if f.fn != nil {
		return f.fn(in)
	}
	return f.action.Call(in)
}

// id returns the wire identifier of f's action, for handing to a
// generic remote-dispatch action that only knows f by its registry id
// (see fmap.go, fold.go, iota.go). Only valid when f.IsAction().
func (f Callable[In, Out]) id() string {
	return f.action.ID()
}

// rehydrate reconstructs a Callable from nothing but a registry id: the
// remote-dispatch action handlers (fmap.go, fold.go, iota.go) arrive
// at the owning process holding only the originating Callable's wire id,
// not a typed *action.Descriptor, since the action they themselves are
// registered under is generic over T rather than over f. Going through
// the registry's type-erased EvaluateFunc one element at a time, as this
// does, is slower than a direct typed call but requires no extra
// bookkeeping beyond the single string already being carried.
func rehydrate[In, Out any](fnID string) Callable[In, Out] {
	return LocalFn(func(in In) (Out, error) {
		var zero Out
		evalFn, ok := action.Default.Lookup(fnID)
		if !ok {
			return zero, errorf("rehydrate", "no action registered under id %s", fnID)
		}
		payload, err := gobEncode(in)
		if err != nil {
			return zero, errorf("rehydrate", "encoding argument: %w", err)
		}
		resultPayload, failure := evalFn(payload)
		if failure != "" {
			return zero, errorf("rehydrate", "action %s failed: %s", fnID, failure)
		}
		var out Out
		if err := gobDecode(resultPayload, &out); err != nil {
			return zero, errorf("rehydrate", "decoding result: %w", err)
		}
		return out, nil
	})
}
