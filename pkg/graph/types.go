// Package graph provides the in-memory graph store walked by the simulation.
//
// Nodes are addressed by dense integer indices. Edges are stored under ordered
// (src, dest) keys in a B-tree, and a neighbor index is maintained as the exact
// inverse of the edge map: every edge key (a, b) contributes one b to
// neighbors[a] and one a to neighbors[b].
//
// The store is not safe for concurrent use. It is owned by a single
// simulation loop.
package graph

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrNodeOutOfRange indicates an edge endpoint that is not a valid node index.
	ErrNodeOutOfRange = errors.New("graph: node index out of range")

	// ErrMalformedRow indicates a CSV row that could not be parsed.
	ErrMalformedRow = errors.New("graph: malformed row")

	// ErrNodeIndex indicates a node table whose ids are not dense and 0-based.
	ErrNodeIndex = errors.New("graph: node id does not match row order")
)

// Node is a point in space. Its index in the store is its identity.
type Node struct {
	Pos r3.Vec
}

// EdgeKey identifies an edge by its ordered endpoints.
type EdgeKey struct {
	Src  int
	Dest int
}

// Reverse returns the key with its endpoints swapped.
func (k EdgeKey) Reverse() EdgeKey {
	return EdgeKey{Src: k.Dest, Dest: k.Src}
}

// Edge is a connection between two nodes.
type Edge struct {
	Src  int
	Dest int

	// HopCount is the number of traversals recorded on this edge.
	HopCount int

	// Free marks edges created by a rewire rather than loaded at startup.
	Free bool
}

// Key returns the ordered key the edge is stored under.
func (e *Edge) Key() EdgeKey {
	return EdgeKey{Src: e.Src, Dest: e.Dest}
}

// EdgeAttrs are the mutable attributes supplied on insertion.
type EdgeAttrs struct {
	HopCount int
	Free     bool
}

func edgeLess(a, b *Edge) bool {
	if a.Src != b.Src {
		return a.Src < b.Src
	}
	return a.Dest < b.Dest
}
