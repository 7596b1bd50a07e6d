package gshared

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/callp"
	"github.com/nicolagi/rpctree/internal/gptr"
)

// fetchGroup collapses concurrent local waiters fetching the same
// remote pointee into a single in-flight RPC, the "multiple concurrent
// local waiters ... collapse into a single in-flight fetch" case
// SPEC_FULL.md's domain stack calls out for the manager.
var fetchGroup singleflight.Group

type fetchArgs struct {
	PointeeAddr uint64
}

var (
	fetchRegistryMu sync.Mutex
	fetchRegistry   = make(map[reflect.Type]interface{})
)

// fetchDescriptor returns the process-wide action that copies a T off
// its owning rank, registering it the first time this T is requested.
// Every process must reach this registration in the same order (e.g. by
// calling gshared.Local on the same types at the same points in the
// program), since the registered name, and hence wire id, is derived
// from T's static type name.
func fetchDescriptor[T any]() *action.Descriptor[fetchArgs, T] {
	key := reflect.TypeOf((*T)(nil)).Elem()
	fetchRegistryMu.Lock()
	defer fetchRegistryMu.Unlock()
	if d, ok := fetchRegistry[key]; ok {
		return d.(*action.Descriptor[fetchArgs, T])
	}
	name := fmt.Sprintf("gshared.fetch<%s>", key.String())
	d := action.Register(name, func(args fetchArgs) (T, error) {
		var zero T
		p := gptr.Ptr[T]{Proc: gptr.Rank(), Addr: args.PointeeAddr}
		v := p.Get()
		if v == nil {
			return zero, errorf("fetch", "no local pointee at address %d", args.PointeeAddr)
		}
		return *v, nil
	})
	fetchRegistry[key] = d
	return d
}

// fetchCopy blocks until it has fetched g's current value from its
// owning rank and wraps the copy in a freshly owned GlobalShared.
// Concurrent callers asking for the same (owner, address) share a
// single in-flight RPC via fetchGroup; each still gets back its own
// freshly owned GlobalShared, since two waiters must not share a
// manager's reference count.
func fetchCopy[T any](g GlobalShared[T]) (GlobalShared[T], error) {
	c := activeCaller.Load()
	if c == nil {
		return GlobalShared[T]{}, errorf("fetchCopy", "no active caller installed")
	}
	d := fetchDescriptor[T]()
	key := fmt.Sprintf("%s:%d:%d", reflect.TypeOf((*T)(nil)).Elem(), g.owner, g.pointee.Addr)
	v, err, _ := fetchGroup.Do(key, func() (interface{}, error) {
		return callp.Sync(c, g.owner, d, fetchArgs{PointeeAddr: g.pointee.Addr})
	})
	if err != nil {
		return GlobalShared[T]{}, errorf("fetchCopy", "fetching from rank %d: %w", g.owner, err)
	}
	value := v.(T)
	return NewGlobalShared(&value), nil
}
