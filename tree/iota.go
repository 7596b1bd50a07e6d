package tree

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/nicolagi/rpctree/client"
	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/callp"
	"github.com/nicolagi/rpctree/internal/gshared"
)

// Iota constructs a tree whose in-order traversal yields f(i) for each
// i in r, subdividing into leaves of at most MaxLeaf elements and, when
// f is a registered action, round-robining each leaf's construction
// across the mesh so the resulting tree's data is actually distributed
// (spec §4.9). When f is a plain callable the whole tree is built on
// the calling process instead, since there is no way to ship a closure
// to another rank.
func Iota[T any](caller *callp.Caller, f Callable[int, T], r Range) Tree[T] {
	n := r.Size()
	if n == 0 {
		return MZero[T]()
	}
	if n <= MaxLeaf {
		return buildLeaf(f, r)
	}
	nChildren := (n + MaxLeaf - 1) / MaxLeaf
	children := make([]client.Client[Tree[T]], nChildren)
	for i := 0; i < nChildren; i++ {
		lo := i * MaxLeaf
		hi := lo + MaxLeaf
		if hi > n {
			hi = n
		}
		sub := r.sub(lo, hi)
		if f.IsAction() && caller != nil && caller.Size() > 1 {
			dest := i % caller.Size()
			children[i] = client.MakeRemoteClient(caller, dest, iotaLeafDescriptor[T](), iotaLeafArgs{Range: sub, FnID: f.id()})
		} else {
			t := buildLeaf(f, sub)
			children[i] = client.MakeClient(&t)
		}
	}
	return newBranch(children)
}

func buildLeaf[T any](f Callable[int, T], r Range) Tree[T] {
	n := r.Size()
	values := make([]T, n)
	for i := 0; i < n; i++ {
		v, err := f.Eval(r.At(i))
		if err != nil {
			panic(errorf("buildLeaf", "evaluating index %d: %v", r.At(i), err))
		}
		values[i] = v
	}
	return newLeaf(values)
}

type iotaLeafArgs struct {
	Range Range
	FnID  string
}

var (
	iotaLeafRegistryMu sync.Mutex
	iotaLeafRegistry   = make(map[reflect.Type]interface{})
)

// iotaLeafDescriptor returns the process-wide action that builds one
// leaf's worth of values using the action named by args.FnID and wraps
// the leaf in a freshly owned GlobalShared, registering it the first
// time T is requested. Every process must reach this registration in
// the same order, exactly like gshared's fetchDescriptor.
func iotaLeafDescriptor[T any]() *action.Descriptor[iotaLeafArgs, gshared.GlobalShared[Tree[T]]] {
	key := reflect.TypeOf((*T)(nil)).Elem()
	iotaLeafRegistryMu.Lock()
	defer iotaLeafRegistryMu.Unlock()
	if d, ok := iotaLeafRegistry[key]; ok {
		return d.(*action.Descriptor[iotaLeafArgs, gshared.GlobalShared[Tree[T]]])
	}
	name := fmt.Sprintf("tree.iota-leaf<%s>", key.String())
	d := action.Register(name, func(args iotaLeafArgs) (gshared.GlobalShared[Tree[T]], error) {
		f := rehydrate[int, T](args.FnID)
		t := buildLeaf(f, args.Range)
		return gshared.NewGlobalShared(&t), nil
	})
	iotaLeafRegistry[key] = d
	return d
}
