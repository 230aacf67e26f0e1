package graph

import (
	"fmt"
	"slices"

	"github.com/tidwall/btree"
	"gonum.org/v1/gonum/spatial/r3"
)

// Store owns the node table, the edge map and the neighbor index.
type Store struct {
	nodes     []Node
	edges     *btree.BTreeG[*Edge]
	neighbors [][]int
}

// NewStore creates a store over the given nodes with no edges.
// The node slice is owned by the store afterwards.
func NewStore(nodes []Node) *Store {
	return &Store{
		nodes:     nodes,
		edges:     btree.NewBTreeGOptions(edgeLess, btree.Options{NoLocks: true}),
		neighbors: make([][]int, len(nodes)),
	}
}

// Build creates a store from a node table and a list of (src, dest) pairs.
// Every pair becomes a loaded (non-free) edge with a zero hop count.
// Neighbor appends are O(1) per pair; the ordered edge map adds a log factor,
// so the whole build is O(E log E).
func Build(nodes []Node, pairs []EdgeKey) (*Store, error) {
	s := NewStore(nodes)
	for i, p := range pairs {
		if err := s.InsertEdge(p.Src, p.Dest, EdgeAttrs{}); err != nil {
			return nil, fmt.Errorf("edge %d (%d,%d): %w", i, p.Src, p.Dest, err)
		}
	}
	return s, nil
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of edge keys in the edge map.
func (s *Store) EdgeCount() int { return s.edges.Len() }

// Position returns the current position of node i.
func (s *Store) Position(i int) r3.Vec { return s.nodes[i].Pos }

// Nodes returns a copy of all node positions in index order.
func (s *Store) Nodes() []r3.Vec {
	out := make([]r3.Vec, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.Pos
	}
	return out
}

// Transform replaces every node position with fn(position).
func (s *Store) Transform(fn func(r3.Vec) r3.Vec) {
	for i := range s.nodes {
		s.nodes[i].Pos = fn(s.nodes[i].Pos)
	}
}

// NeighborsOf returns the nodes reachable from i. The slice is a view into
// the index: callers must not modify it or rely on its order, and it is only
// valid until the next mutation.
func (s *Store) NeighborsOf(i int) []int {
	return s.neighbors[i]
}

// NeighborEntries returns the total number of entries in the neighbor index.
func (s *Store) NeighborEntries() int {
	n := 0
	for _, ns := range s.neighbors {
		n += len(ns)
	}
	return n
}

// Edge returns a copy of the edge stored under (src, dest).
func (s *Store) Edge(src, dest int) (Edge, bool) {
	e, ok := s.edges.Get(&Edge{Src: src, Dest: dest})
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Edges returns a copy of every edge in key order.
func (s *Store) Edges() []Edge {
	out := make([]Edge, 0, s.edges.Len())
	s.edges.Scan(func(e *Edge) bool {
		out = append(out, *e)
		return true
	})
	return out
}

// KeysWhere returns the keys of all edges matching pred. The result is a
// snapshot: the caller may mutate the store while walking it.
func (s *Store) KeysWhere(pred func(Edge) bool) []EdgeKey {
	var keys []EdgeKey
	s.edges.Scan(func(e *Edge) bool {
		if pred(*e) {
			keys = append(keys, e.Key())
		}
		return true
	})
	return keys
}

// InsertEdge stores an edge under (a, b) and links a and b in the neighbor
// index. If the ordered key already exists its attributes are replaced and
// the neighbor index is left untouched, so each key is indexed exactly once.
func (s *Store) InsertEdge(a, b int, attrs EdgeAttrs) error {
	if !s.valid(a) || !s.valid(b) {
		return fmt.Errorf("%w: (%d,%d) with %d nodes", ErrNodeOutOfRange, a, b, len(s.nodes))
	}
	e := &Edge{Src: a, Dest: b, HopCount: attrs.HopCount, Free: attrs.Free}
	if _, replaced := s.edges.Set(e); replaced {
		return nil
	}
	s.neighbors[a] = append(s.neighbors[a], b)
	s.neighbors[b] = append(s.neighbors[b], a)
	return nil
}

// RemoveEdge deletes the edge stored under (a, b) and removes the first
// matching entry from each endpoint's neighbor list. It reports whether the
// key existed.
func (s *Store) RemoveEdge(a, b int) bool {
	if _, ok := s.edges.Delete(&Edge{Src: a, Dest: b}); !ok {
		return false
	}
	s.neighbors[a] = removeFirst(s.neighbors[a], b)
	s.neighbors[b] = removeFirst(s.neighbors[b], a)
	return true
}

// RecordHop increments the hop count of the edge joining src and dest, probing
// both (src, dest) and (dest, src). When both directions are stored, both are
// counted; a self loop is counted once. It reports whether any edge was found.
func (s *Store) RecordHop(src, dest int) bool {
	hit := false
	if e, ok := s.edges.Get(&Edge{Src: src, Dest: dest}); ok {
		e.HopCount++
		hit = true
	}
	if src == dest {
		return hit
	}
	if e, ok := s.edges.Get(&Edge{Src: dest, Dest: src}); ok {
		e.HopCount++
		hit = true
	}
	return hit
}

// CheckSymmetry verifies that the neighbor index is the inverse of the edge
// map: every key (a, b) is reflected in both neighbors[a] and neighbors[b],
// and the index holds no entries beyond those.
func (s *Store) CheckSymmetry() error {
	want := make([]map[int]int, len(s.nodes))
	for i := range want {
		want[i] = make(map[int]int)
	}
	s.edges.Scan(func(e *Edge) bool {
		want[e.Src][e.Dest]++
		want[e.Dest][e.Src]++
		return true
	})
	for i, ns := range s.neighbors {
		got := make(map[int]int, len(ns))
		for _, n := range ns {
			got[n]++
		}
		for n, c := range want[i] {
			if got[n] != c {
				return fmt.Errorf("graph: node %d lists neighbor %d %d times, edge map implies %d", i, n, got[n], c)
			}
		}
		for n, c := range got {
			if _, ok := want[i][n]; !ok {
				return fmt.Errorf("graph: node %d lists neighbor %d %d times without an edge", i, n, c)
			}
		}
	}
	return nil
}

func (s *Store) valid(i int) bool {
	return i >= 0 && i < len(s.nodes)
}

func removeFirst(list []int, v int) []int {
	if i := slices.Index(list, v); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}
