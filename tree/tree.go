package tree

import (
	"bytes"
	"encoding/gob"

	"github.com/nicolagi/rpctree/client"
)

// MaxLeaf bounds a leaf's cardinality (spec §3, "Leaf array bound"; §9
// open question resolved here to a single value, matching the 10 that
// one of the original's files hard-codes).
const MaxLeaf = 10

// Tree is tree<T> of spec §3/§4.9: either a leaf wrapping an ordered
// array of at most MaxLeaf values, or a branch wrapping a non-empty
// ordered array of clients to child trees, any of which may live on a
// remote process. Trees are immutable after construction; every
// operation in this package returns a new Tree.
type Tree[T any] struct {
	isBranch bool
	leaf     []T
	branch   []client.Client[Tree[T]]
}

// newLeaf builds a leaf, enforcing the cardinality invariant. Exceeding
// MaxLeaf here is a programming error in this package, not user input,
// so it panics rather than returning an error (spec §7, "assertion
// violations").
func newLeaf[T any](values []T) Tree[T] {
	if len(values) == 0 {
		panic(errorf("newLeaf", "leaf must hold at least one value"))
	}
	if len(values) > MaxLeaf {
		panic(errorf("newLeaf", "leaf of %d values exceeds MaxLeaf=%d", len(values), MaxLeaf))
	}
	return Tree[T]{leaf: values}
}

// newBranch builds a branch, enforcing the non-empty invariant (spec
// §3, "A branch's client array is never empty").
func newBranch[T any](children []client.Client[Tree[T]]) Tree[T] {
	if len(children) == 0 {
		panic(errorf("newBranch", "branch must hold at least one child"))
	}
	return Tree[T]{isBranch: true, branch: children}
}

// Munit wraps a single value in a one-element leaf, the monadic unit
// of spec §4.9 ("munit(x) = leaf([x])").
func Munit[T any](x T) Tree[T] {
	return newLeaf([]T{x})
}

// Msome wraps up to MaxLeaf values in a single leaf directly, without
// going through Iota's subdivision.
func Msome[T any](x T, xs ...T) Tree[T] {
	return newLeaf(append([]T{x}, xs...))
}

// MZero is the empty tree, the monoid identity for MPlus (spec §4.9).
// It is the zero Tree value, neither a leaf nor a branch: size 0, and
// Head/Last on it return an error, matching "well defined exactly when
// the tree is non-empty".
func MZero[T any]() Tree[T] {
	return Tree[T]{}
}

// IsEmpty reports whether t is MZero: neither a populated leaf nor a
// populated branch.
func (t Tree[T]) IsEmpty() bool {
	return !t.isBranch && len(t.leaf) == 0
}

// IsLeaf reports whether t is a leaf (as opposed to a branch or MZero).
func (t Tree[T]) IsLeaf() bool {
	return !t.isBranch && len(t.leaf) > 0
}

// IsBranch reports whether t is a branch.
func (t Tree[T]) IsBranch() bool {
	return t.isBranch
}

// Size returns the sum of leaf cardinalities reachable from t (spec §3).
// Branch children may be remote; Size resolves each child through
// resolveLocal, which waits for the child's client future and fetches a
// local copy of a remote subtree, and walks every child since no size is
// cached. A child that fails to resolve is skipped and adds nothing.
func (t Tree[T]) Size() int {
	if !t.isBranch {
		return len(t.leaf)
	}
	n := 0
	for _, c := range t.branch {
		sub, err := resolveLocal(c)
		if err != nil {
			continue
		}
		n += sub.Size()
	}
	return n
}

// Head returns the first element of t's in-order traversal. Defined
// only when t is non-empty.
func (t Tree[T]) Head() (T, error) {
	var zero T
	if t.IsEmpty() {
		return zero, errorf("Head", "tree is empty")
	}
	if !t.isBranch {
		return t.leaf[0], nil
	}
	sub, err := resolveLocal(t.branch[0])
	if err != nil {
		return zero, errorf("Head", "%w", err)
	}
	return sub.Head()
}

// Last returns the last element of t's in-order traversal. Defined only
// when t is non-empty.
func (t Tree[T]) Last() (T, error) {
	var zero T
	if t.IsEmpty() {
		return zero, errorf("Last", "tree is empty")
	}
	if !t.isBranch {
		return t.leaf[len(t.leaf)-1], nil
	}
	sub, err := resolveLocal(t.branch[len(t.branch)-1])
	if err != nil {
		return zero, errorf("Last", "%w", err)
	}
	return sub.Last()
}

// resolveLocal waits for c's value and, fetching a local copy if
// necessary, dereferences it. Used by the purely-local traversal helpers
// above (Size, Head, Last); the fan-out operations below (FMap,
// FoldMap, ...) use the client's owner rank directly instead, so they
// can dispatch to it rather than fetching.
func resolveLocal[T any](c client.Client[Tree[T]]) (Tree[T], error) {
	g, err := c.MakeLocal().Get()
	if err != nil {
		var zero Tree[T]
		return zero, err
	}
	v := g.Get()
	if v == nil {
		var zero Tree[T]
		return zero, errorf("resolveLocal", "local fetch returned no value")
	}
	return *v, nil
}

// treeWire is what actually crosses the wire for a Tree[T]: Client
// itself knows how to Gob-encode/decode (see client.Client's GobEncode),
// so the recursive structure here is just three exported fields
// wrapped for gob's benefit, mirroring gshared's sharedWire pattern.
type treeWire[T any] struct {
	IsBranch bool
	Leaf     []T
	Branch   []client.Client[Tree[T]]
}

// GobEncode implements gob.GobEncoder.
func (t Tree[T]) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	w := treeWire[T]{IsBranch: t.isBranch, Leaf: t.leaf, Branch: t.branch}
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, errorf("GobEncode", "%w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (t *Tree[T]) GobDecode(data []byte) error {
	var w treeWire[T]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return errorf("GobDecode", "%w", err)
	}
	t.isBranch = w.IsBranch
	t.leaf = w.Leaf
	t.branch = w.Branch
	return nil
}
