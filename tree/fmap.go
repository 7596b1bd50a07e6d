package tree

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nicolagi/rpctree/client"
	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/callp"
	"github.com/nicolagi/rpctree/internal/gshared"
)

// fanoutSem bounds how many children of one branch are processed
// concurrently, the same semaphore-over-errgroup shape the teacher uses
// in Tree.grow (internal/tree/tree_walking.go) to fan recursive loading
// out without unbounded goroutine growth.
const fanoutSem = 8

// FMap applies f to every leaf element of xs, producing a tree of the
// same shape (spec §4.9): a leaf maps to a new leaf via elementwise
// apply; a branch maps to a new branch where each child is FMap'd in
// place, dispatched to the child's owning process when f is a
// registered action and the child is not already local, and fetched and
// computed locally otherwise. Shape preservation — same branching, same
// child count, same leaf cardinality — is an invariant of this
// construction, never checked separately.
func FMap[T, T2 any](caller *callp.Caller, f Callable[T, T2], xs Tree[T]) Tree[T2] {
	if xs.IsEmpty() {
		return MZero[T2]()
	}
	if !xs.isBranch {
		out := make([]T2, len(xs.leaf))
		for i, v := range xs.leaf {
			r, err := f.Eval(v)
			if err != nil {
				panic(errorf("FMap", "evaluating leaf element %d: %v", i, err))
			}
			out[i] = r
		}
		return newLeaf(out)
	}

	newChildren := make([]client.Client[Tree[T2]], len(xs.branch))
	g, _ := errgroup.WithContext(context.Background())
	sem := make(chan struct{}, fanoutSem)
	for i, c := range xs.branch {
		i, c := i, c
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			newChildren[i] = fmapChild(caller, f, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		panic(errorf("FMap", "%v", err))
	}
	return newBranch(newChildren)
}

func fmapChild[T, T2 any](caller *callp.Caller, f Callable[T, T2], c client.Client[Tree[T]]) client.Client[Tree[T2]] {
	gShared, err := c.Get()
	if err != nil {
		panic(errorf("fmapChild", "resolving child: %v", err))
	}
	if !f.IsAction() || gShared.IsLocal() || caller == nil {
		local, err := gShared.Local().Get()
		if err != nil {
			panic(errorf("fmapChild", "fetching child locally: %v", err))
		}
		v := local.Get()
		if v == nil {
			panic(errorf("fmapChild", "local fetch returned no value"))
		}
		sub := FMap(caller, f, *v)
		return client.MakeClient(&sub)
	}
	args := fmapRemoteArgs[T, T2]{G: gShared, FnID: f.id()}
	return client.MakeRemoteClient(caller, gShared.GetProc(), fmapRemoteDescriptor[T, T2](), args)
}

// fmapRemoteArgs is the action argument a branch's child is dispatched
// with: G is the child's own global shared pointer, handed back to the
// action verbatim. Since GlobalShared implements GobEncode/GobDecode
// (package gshared), passing it as an ordinary action argument already
// carries out the increment-on-send / install-manager-on-receive
// protocol of spec §4.6 — no separate address plumbing is needed here.
type fmapRemoteArgs[T, T2 any] struct {
	G    gshared.GlobalShared[Tree[T]]
	FnID string
}

var (
	fmapRegistryMu sync.Mutex
	fmapRegistry   = make(map[string]interface{})
)

// fmapRemoteDescriptor returns the process-wide action that, running on
// the process the argument's G is local to, rehydrates f from its
// registry id and recurses FMap locally (which may itself dispatch
// further remote children), wrapping the result in a freshly owned
// GlobalShared. Registered lazily, once per (T, T2) pair, identically on
// every process.
func fmapRemoteDescriptor[T, T2 any]() *action.Descriptor[fmapRemoteArgs[T, T2], gshared.GlobalShared[Tree[T2]]] {
	key := fmt.Sprintf("%s->%s", reflect.TypeOf((*T)(nil)).Elem(), reflect.TypeOf((*T2)(nil)).Elem())
	fmapRegistryMu.Lock()
	defer fmapRegistryMu.Unlock()
	if d, ok := fmapRegistry[key]; ok {
		return d.(*action.Descriptor[fmapRemoteArgs[T, T2], gshared.GlobalShared[Tree[T2]]])
	}
	name := fmt.Sprintf("tree.fmap<%s>", key)
	d := action.Register(name, func(args fmapRemoteArgs[T, T2]) (gshared.GlobalShared[Tree[T2]], error) {
		var zero gshared.GlobalShared[Tree[T2]]
		v := args.G.Get()
		if v == nil {
			return zero, errorf("fmapRemoteDescriptor", "argument's pointee is not local on this process")
		}
		f := rehydrate[T, T2](args.FnID)
		sub := FMap(activeCaller.Load(), f, *v)
		return gshared.NewGlobalShared(&sub), nil
	})
	fmapRegistry[key] = d
	return d
}
