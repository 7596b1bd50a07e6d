package tree

import (
	"fmt"
	"io"
	"strings"
)

// DumpNodes writes a readable, line-oriented rendering of t's shape to w:
// one line per leaf or branch node, indented by depth, following the
// teacher's own diagnostics.go convention for dumping a tree structure.
// Branch children that are not available locally (a client future not
// yet settled, or a pointee living on another rank) are rendered as an
// "<unresolved...>" line rather than waiting or forcing a fetch, since
// this is a diagnostic, not a traversal.
func (t Tree[T]) DumpNodes(w io.Writer) {
	t.dumpNodesFrom(w, 0)
}

func (t Tree[T]) dumpNodesFrom(w io.Writer, depth int) {
	indent := strings.Repeat("  ", depth)
	switch {
	case t.IsEmpty():
		fmt.Fprintf(w, "%sempty\n", indent)
	case !t.isBranch:
		fmt.Fprintf(w, "%sleaf size=%d values=%v\n", indent, len(t.leaf), t.leaf)
	default:
		fmt.Fprintf(w, "%sbranch children=%d\n", indent, len(t.branch))
		for _, c := range t.branch {
			if !c.Ready() {
				fmt.Fprintf(w, "%s  <unresolved>\n", indent)
				continue
			}
			g, err := c.Get()
			if err != nil {
				fmt.Fprintf(w, "%s  <unresolved: %v>\n", indent, err)
				continue
			}
			sub := g.Get()
			if sub == nil {
				fmt.Fprintf(w, "%s  <unresolved: remote on rank %d>\n", indent, g.GetProc())
				continue
			}
			sub.dumpNodesFrom(w, depth+1)
		}
	}
}

// Dump renders DumpNodes to a string, for tests and interactive
// debugging where a Writer is inconvenient.
func (t Tree[T]) Dump() string {
	var b strings.Builder
	t.DumpNodes(&b)
	return b.String()
}
