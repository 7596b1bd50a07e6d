package tree

import "github.com/nicolagi/rpctree/client"

// Boundaries is the 2×D boundary container of spec §3: for each of D
// dimensions, a lower and an upper face value. Lower[d] and Upper[d] are
// the values StencilFMap hands to the leftmost/rightmost cell along
// dimension d in place of an interior neighbor.
type Boundaries[T any] struct {
	Lower []T
	Upper []T
}

// Boundaries1D builds a single-dimension Boundaries from its two faces,
// the common case StencilFMap (1-D) uses.
func Boundaries1D[T any](lower, upper T) Boundaries[T] {
	return Boundaries[T]{Lower: []T{lower}, Upper: []T{upper}}
}

// StencilFMap is the 1-D stencil functor of spec §4.9: it produces a
// tree of the same shape as xs where each cell sees its own value plus
// its left and right neighbor, projected through g. f combines a cell
// with its two neighbors; g projects a cell (or, at a branch boundary,
// an adjacent subtree's extremal cell) to the boundary representation
// neighbors are expressed in. At the domain's own edges, g is applied to
// bs's lower/upper boundary value instead of a neighbor cell.
//
// Internal boundaries between a branch's children are resolved by
// applying g to the adjacent child's Head/Last, exactly as spec §4.9
// describes. Unlike FMap, StencilFMap always fetches a child subtree's
// data home (via resolveLocal/MakeLocal) rather than dispatching f
// to run where the data already lives: computing an interior cell needs
// its neighbor's value too, which in general lives in a different
// child, so there is no single remote process the whole computation can
// run on the way there is for FMap's independent children. f and g are
// therefore plain local callables, not Callable — see DESIGN.md.
func StencilFMap[T, B, R any](f func(center T, left, right B) R, g func(T) B, xs Tree[T], bs Boundaries[T]) (Tree[R], error) {
	if len(bs.Lower) == 0 || len(bs.Upper) == 0 {
		return Tree[R]{}, errorf("StencilFMap", "boundaries must supply at least one dimension")
	}
	return stencilFMap(f, g, xs, g(bs.Lower[0]), g(bs.Upper[0]))
}

func stencilFMap[T, B, R any](f func(center T, left, right B) R, g func(T) B, xs Tree[T], left, right B) (Tree[R], error) {
	if xs.IsEmpty() {
		return MZero[R](), nil
	}
	if !xs.isBranch {
		n := len(xs.leaf)
		out := make([]R, n)
		for i, v := range xs.leaf {
			var l, r B
			if i == 0 {
				l = left
			} else {
				l = g(xs.leaf[i-1])
			}
			if i == n-1 {
				r = right
			} else {
				r = g(xs.leaf[i+1])
			}
			out[i] = f(v, l, r)
		}
		return newLeaf(out), nil
	}

	n := len(xs.branch)
	subs := make([]Tree[T], n)
	for i, c := range xs.branch {
		sub, err := resolveLocal(c)
		if err != nil {
			return Tree[R]{}, errorf("stencilFMap", "resolving child %d: %w", i, err)
		}
		subs[i] = sub
	}

	children := make([]client.Client[Tree[R]], n)
	for i := 0; i < n; i++ {
		var l, r B
		if i == 0 {
			l = left
		} else {
			last, err := subs[i-1].Last()
			if err != nil {
				return Tree[R]{}, errorf("stencilFMap", "left boundary of child %d: %w", i, err)
			}
			l = g(last)
		}
		if i == n-1 {
			r = right
		} else {
			head, err := subs[i+1].Head()
			if err != nil {
				return Tree[R]{}, errorf("stencilFMap", "right boundary of child %d: %w", i, err)
			}
			r = g(head)
		}
		sub, err := stencilFMap(f, g, subs[i], l, r)
		if err != nil {
			return Tree[R]{}, err
		}
		children[i] = client.MakeClient(&sub)
	}
	return newBranch(children), nil
}

// StencilFMap2D applies a 1-D stencil along the outer (row) dimension of
// a tree-of-trees, tagging each row with its north/south neighbor
// projection, then applies a second 1-D stencil along the inner
// (column) dimension independently within each tagged row, combining
// the two per-axis neighbor pairs with f2. This is the concrete D=2
// instance of spec §4.9's "for multi-D: f(x[i], boundaries<D>)": rather
// than a single D-parameterized function (which Go's type system cannot
// express as a statically recursive generic), each dimension is peeled
// off one StencilFMap application at a time, matching the spec's own
// description of internal boundaries being "possibly recursively"
// resolved via g. The result has the same tree-of-trees shape as xs.
func StencilFMap2D[T, B, R any](
	f2 func(center T, north, south, west, east B) R,
	gRow func(Tree[T]) B,
	gCell func(T) B,
	xs Tree[Tree[T]],
	rowBounds Boundaries[Tree[T]],
	cellBounds Boundaries[T],
) (Tree[Tree[R]], error) {
	type withNS struct {
		v     T
		north B
		south B
	}
	// Pass 1: tag every cell of every row with that row's north/south
	// neighbor projection, without touching the column dimension.
	rows, err := StencilFMap(func(row Tree[T], north, south B) Tree[withNS] {
		tagged, err := FMap2Index(row, func(v T) withNS { return withNS{v: v, north: north, south: south} })
		if err != nil {
			panic(err)
		}
		return tagged
	}, gRow, xs, rowBounds)
	if err != nil {
		return Tree[Tree[R]]{}, err
	}
	// Pass 2: within each tagged row independently, run the column-wise
	// stencil, combining a cell's own north/south tag with its freshly
	// computed west/east neighbors via f2.
	return FMap2IndexErr(rows, func(row Tree[withNS]) (Tree[R], error) {
		return StencilFMap(func(center withNS, west, east B) R {
			return f2(center.v, center.north, center.south, west, east)
		}, func(c withNS) B { return gCell(c.v) }, row, Boundaries[withNS]{
			Lower: []withNS{{v: cellBounds.Lower[0]}},
			Upper: []withNS{{v: cellBounds.Upper[0]}},
		})
	})
}

// FMap2Index maps f over every element of xs, identical to FMap except
// it takes no Callable/caller since this helper only ever runs locally,
// as part of assembling StencilFMap2D's intermediate per-row tree.
func FMap2Index[T, R any](xs Tree[T], f func(T) R) (Tree[R], error) {
	if xs.IsEmpty() {
		return MZero[R](), nil
	}
	if !xs.isBranch {
		out := make([]R, len(xs.leaf))
		for i, v := range xs.leaf {
			out[i] = f(v)
		}
		return newLeaf(out), nil
	}
	children := make([]client.Client[Tree[R]], len(xs.branch))
	for i, c := range xs.branch {
		sub, err := resolveLocal(c)
		if err != nil {
			return Tree[R]{}, errorf("FMap2Index", "resolving child %d: %w", i, err)
		}
		mapped, err := FMap2Index(sub, f)
		if err != nil {
			return Tree[R]{}, err
		}
		children[i] = client.MakeClient(&mapped)
	}
	return newBranch(children), nil
}

// FMap2IndexErr is FMap2Index for an f that can itself fail, used by
// StencilFMap2D's second pass where f is a nested StencilFMap call.
func FMap2IndexErr[T, R any](xs Tree[T], f func(T) (R, error)) (Tree[R], error) {
	if xs.IsEmpty() {
		return MZero[R](), nil
	}
	if !xs.isBranch {
		out := make([]R, len(xs.leaf))
		for i, v := range xs.leaf {
			r, err := f(v)
			if err != nil {
				return Tree[R]{}, errorf("FMap2IndexErr", "evaluating leaf element %d: %w", i, err)
			}
			out[i] = r
		}
		return newLeaf(out), nil
	}
	children := make([]client.Client[Tree[R]], len(xs.branch))
	for i, c := range xs.branch {
		sub, err := resolveLocal(c)
		if err != nil {
			return Tree[R]{}, errorf("FMap2IndexErr", "resolving child %d: %w", i, err)
		}
		mapped, err := FMap2IndexErr(sub, f)
		if err != nil {
			return Tree[R]{}, err
		}
		children[i] = client.MakeClient(&mapped)
	}
	return newBranch(children), nil
}
