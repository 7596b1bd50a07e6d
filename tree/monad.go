package tree

import "github.com/nicolagi/rpctree/client"

// MBind concatenates f(x) over the in-order sequence of xs (spec §4.9:
// "mbind(xs, f) concatenates f(x) over the in-order sequence of xs").
// Like StencilFMap's f/g, the function argument here is a plain
// callable: mbind's shape (one input element producing a whole
// subtree) has no single owning process to dispatch to in general,
// since the resulting subtrees must be concatenated in order on
// whichever process assembles the final tree.
func MBind[T, R any](xs Tree[T], f func(T) (Tree[R], error)) (Tree[R], error) {
	if xs.IsEmpty() {
		return MZero[R](), nil
	}
	parts := make([]Tree[R], 0, xs.Size())
	if err := mbindCollect(xs, f, &parts); err != nil {
		return Tree[R]{}, err
	}
	return mplusAll(parts), nil
}

func mbindCollect[T, R any](xs Tree[T], f func(T) (Tree[R], error), out *[]Tree[R]) error {
	if !xs.isBranch {
		for i, v := range xs.leaf {
			sub, err := f(v)
			if err != nil {
				return errorf("MBind", "evaluating leaf element %d: %w", i, err)
			}
			if !sub.IsEmpty() {
				*out = append(*out, sub)
			}
		}
		return nil
	}
	for i, c := range xs.branch {
		sub, err := resolveLocal(c)
		if err != nil {
			return errorf("MBind", "resolving child %d: %w", i, err)
		}
		if err := mbindCollect(sub, f, out); err != nil {
			return err
		}
	}
	return nil
}

// MJoin flattens a tree of trees, per spec §4.9's "mjoin(xss) =
// mbind(xss, id)".
func MJoin[T any](xss Tree[Tree[T]]) (Tree[T], error) {
	return MBind(xss, func(x Tree[T]) (Tree[T], error) { return x, nil })
}

// MPlus combines xs with zero or more further trees into a single
// branch (spec §4.9: "mplus(xs, ys…) = branch([xs, ys…])"). MZero
// operands are dropped rather than contributing an empty child, so
// MPlus(mzero, xs) and MPlus(xs, mzero) both equal xs up to shape, as
// required by the monoid-identity law in spec §8.
func MPlus[T any](xs Tree[T], ys ...Tree[T]) Tree[T] {
	all := make([]Tree[T], 0, 1+len(ys))
	all = append(all, xs)
	all = append(all, ys...)
	return mplusAll(all)
}

// mplusAll is the shared implementation behind MBind's concatenation
// and MPlus's public API: drop empty operands, collapse to the single
// survivor when only one remains, and otherwise build one branch level
// holding every non-empty operand as a local, already-resolved child.
func mplusAll[T any](trees []Tree[T]) Tree[T] {
	nonEmpty := make([]Tree[T], 0, len(trees))
	for _, t := range trees {
		if !t.IsEmpty() {
			nonEmpty = append(nonEmpty, t)
		}
	}
	switch len(nonEmpty) {
	case 0:
		return MZero[T]()
	case 1:
		return nonEmpty[0]
	default:
		children := make([]client.Client[Tree[T]], len(nonEmpty))
		for i := range nonEmpty {
			t := nonEmpty[i]
			children[i] = client.MakeClient(&t)
		}
		return newBranch(children)
	}
}
