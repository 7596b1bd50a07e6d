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

// FoldMap is the in-order fold of spec §4.9: op must be associative with
// identity zero. Each child of a branch contributes a partial result —
// computed on the child's own process when both f and op are registered
// actions and the child is not already local, computed locally
// otherwise — and the branch combines its children's partials with op
// in in-order left-fold, exactly like the flat callp.MapReduce this
// mirrors one recursion level at a time.
//
// Both f and op need to be dispatchable (Callable.IsAction) for a
// child's fold to actually run on its own process instead of fetching
// the child home first: op is assumed associative and so, like f, needs
// a wire identity to be evaluated anywhere but where it was declared.
func FoldMap[T, R any](caller *callp.Caller, f Callable[T, R], op Callable[Pair[R, R], R], zero R, xs Tree[T]) (R, error) {
	if xs.IsEmpty() {
		return zero, nil
	}
	if !xs.isBranch {
		acc := zero
		for i, v := range xs.leaf {
			r, err := f.Eval(v)
			if err != nil {
				return zero, errorf("FoldMap", "evaluating leaf element %d: %w", i, err)
			}
			acc, err = op.Eval(Pair[R, R]{X: acc, Y: r})
			if err != nil {
				return zero, errorf("FoldMap", "combining leaf element %d: %w", i, err)
			}
		}
		return acc, nil
	}

	partials := make([]R, len(xs.branch))
	g, _ := errgroup.WithContext(context.Background())
	sem := make(chan struct{}, fanoutSem)
	for i, c := range xs.branch {
		i, c := i, c
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			r, err := foldMapChild(caller, f, op, zero, c)
			if err != nil {
				return err
			}
			partials[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return zero, err
	}
	acc := zero
	for i, r := range partials {
		var err error
		acc, err = op.Eval(Pair[R, R]{X: acc, Y: r})
		if err != nil {
			return zero, errorf("FoldMap", "combining child %d: %w", i, err)
		}
	}
	return acc, nil
}

// Fold is FoldMap with the identity projection, per spec §4.9:
// "fold(op, z, xs) = foldMap(id, op, z, xs)".
func Fold[T any](caller *callp.Caller, op Callable[Pair[T, T], T], zero T, xs Tree[T]) (T, error) {
	return FoldMap(caller, LocalFn(func(v T) (T, error) { return v, nil }), op, zero, xs)
}

func foldMapChild[T, R any](caller *callp.Caller, f Callable[T, R], op Callable[Pair[R, R], R], zero R, c client.Client[Tree[T]]) (R, error) {
	gShared, err := c.Get()
	if err != nil {
		return zero, errorf("foldMapChild", "resolving child: %w", err)
	}
	if !f.IsAction() || !op.IsAction() || gShared.IsLocal() || caller == nil {
		local, err := gShared.Local().Get()
		if err != nil {
			return zero, errorf("foldMapChild", "fetching child locally: %w", err)
		}
		v := local.Get()
		if v == nil {
			return zero, errorf("foldMapChild", "local fetch returned no value")
		}
		return FoldMap(caller, f, op, zero, *v)
	}
	args := foldRemoteArgs[T, R]{G: gShared, FFnID: f.id(), OpFnID: op.id(), Zero: zero}
	return callp.Sync(caller, gShared.GetProc(), foldRemoteDescriptor[T, R](), args)
}

type foldRemoteArgs[T, R any] struct {
	G      gshared.GlobalShared[Tree[T]]
	FFnID  string
	OpFnID string
	Zero   R
}

var (
	foldRegistryMu sync.Mutex
	foldRegistry   = make(map[string]interface{})
)

func foldRemoteDescriptor[T, R any]() *action.Descriptor[foldRemoteArgs[T, R], R] {
	key := fmt.Sprintf("%s->%s", reflect.TypeOf((*T)(nil)).Elem(), reflect.TypeOf((*R)(nil)).Elem())
	foldRegistryMu.Lock()
	defer foldRegistryMu.Unlock()
	if d, ok := foldRegistry[key]; ok {
		return d.(*action.Descriptor[foldRemoteArgs[T, R], R])
	}
	name := fmt.Sprintf("tree.foldmap<%s>", key)
	d := action.Register(name, func(args foldRemoteArgs[T, R]) (R, error) {
		var zero R
		v := args.G.Get()
		if v == nil {
			return zero, errorf("foldRemoteDescriptor", "argument's pointee is not local on this process")
		}
		f := rehydrate[T, R](args.FFnID)
		op := rehydrate[Pair[R, R], R](args.OpFnID)
		return FoldMap(activeCaller.Load(), f, op, args.Zero, *v)
	})
	foldRegistry[key] = d
	return d
}
