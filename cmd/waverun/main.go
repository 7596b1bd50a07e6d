// Command waverun is the "external collaborator" referenced by
// spec.md §1: a 1-D wave-equation leapfrog solver expressed purely in
// terms of the tree container's functor/stencil/foldable operations
// (tree.Iota, tree.StencilFMap, tree.FMap2, tree.Fold). It never names a
// process rank; every distribution decision is made inside package tree
// and the runtime underneath it. It demonstrates the contract described
// in spec.md §1 and is not itself part of that contract.
package main

import (
	"flag"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/rpctree/bootstrap"
	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/callp"
	"github.com/nicolagi/rpctree/tree"
)

var (
	gridSize  = flag.Int("n", 256, "number of grid points")
	steps     = flag.Int("steps", 200, "number of leapfrog steps")
	courant   = flag.Float64("c", 0.5, "Courant number c*dt/dx, must be <= 1 for stability")
)

// initialCondition is registered as an action rather than passed as a
// closure so tree.Iota (component C9) can dispatch each leaf's worth of
// construction to whichever rank round-robin assigns it, per spec §4.9:
// "When f is a registered action, remote work is scheduled by value
// using the registry."
var initialCondition = action.Register("waverun.initial", func(i int) (float64, error) {
	n := float64(*gridSize)
	x := float64(i) / n
	return math.Sin(2 * math.Pi * x), nil
})

// laplacian is the 1-D second-difference stencil: left - 2*center +
// right, zero-Dirichlet at both domain edges.
func laplacian(center, left, right float64) float64 {
	return left - 2*center + right
}

func identityProjection(x float64) float64 { return x }

func combine2uMinusPrev(p tree.Pair[float64, float64]) (float64, error) {
	return 2*p.X - p.Y, nil
}

func addScaled(coeff float64) func(tree.Pair[float64, float64]) (float64, error) {
	return func(p tree.Pair[float64, float64]) (float64, error) {
		return p.X + coeff*p.Y, nil
	}
}

var sumOp = tree.LocalFn(func(p tree.Pair[float64, float64]) (float64, error) {
	return p.X + p.Y, nil
})

func main() {
	flag.Parse()
	bootstrap.Main(func(c *callp.Caller) int {
		n := *gridSize
		coeff := (*courant) * (*courant)

		r := tree.NewRange(0, n, 1)
		u := tree.Iota[float64](c, tree.ActionFn(initialCondition), r)
		// The leapfrog scheme needs two prior time levels; the first
		// step assumes the field started at rest, so u and uPrev
		// coincide initially.
		uPrev := u

		for step := 0; step < *steps; step++ {
			lap, err := tree.StencilFMap(laplacian, identityProjection, u, tree.Boundaries1D(0.0, 0.0))
			if err != nil {
				log.WithError(err).Fatal("waverun: stencil step failed")
			}
			twoUMinusPrev, err := tree.FMap2(c, tree.LocalFn(combine2uMinusPrev), u, uPrev)
			if err != nil {
				log.WithError(err).Fatal("waverun: combining time levels failed")
			}
			uNext, err := tree.FMap2(c, tree.LocalFn(addScaled(coeff)), twoUMinusPrev, lap)
			if err != nil {
				log.WithError(err).Fatal("waverun: advancing time level failed")
			}
			uPrev, u = u, uNext
		}

		energy, err := tree.Fold(c, sumOp, 0.0, u)
		if err != nil {
			log.WithError(err).Fatal("waverun: fold over final field failed")
		}
		head, err := u.Head()
		if err != nil {
			log.WithError(err).Fatal("waverun: reading first grid point failed")
		}
		last, err := u.Last()
		if err != nil {
			log.WithError(err).Fatal("waverun: reading last grid point failed")
		}
		fmt.Printf("waverun: n=%d steps=%d size=%d sum=%.6f u[0]=%.6f u[n-1]=%.6f\n",
			n, *steps, u.Size(), energy, head, last)
		return 0
	})
}
