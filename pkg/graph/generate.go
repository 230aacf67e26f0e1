package graph

import (
	"encoding/csv"
	"io"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

// Source is the randomness Random draws from. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// Random generates n nodes uniformly inside the cube [-1,1]^3 and e edges.
// The first min(n, e) edges form a ring through every node so that no node
// starts isolated; the rest join random pairs of distinct nodes.
func Random(n, e int, src Source) ([]Node, []EdgeKey) {
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i].Pos = r3.Vec{
			X: 2*src.Float64() - 1,
			Y: 2*src.Float64() - 1,
			Z: 2*src.Float64() - 1,
		}
	}
	if n < 2 {
		return nodes, nil
	}

	pairs := make([]EdgeKey, 0, e)
	for i := 0; i < n && len(pairs) < e; i++ {
		pairs = append(pairs, EdgeKey{Src: i, Dest: (i + 1) % n})
	}
	for len(pairs) < e {
		a := src.IntN(n)
		b := src.IntN(n - 1)
		if b >= a {
			b++
		}
		pairs = append(pairs, EdgeKey{Src: a, Dest: b})
	}
	return nodes, pairs
}

// WriteNodes writes a node table readable by ReadNodes with scale 1.
func WriteNodes(w io.Writer, nodes []Node) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "x", "y", "z"}); err != nil {
		return err
	}
	for i, n := range nodes {
		if err := cw.Write([]string{
			strconv.Itoa(i),
			strconv.FormatFloat(n.Pos.X, 'g', -1, 64),
			strconv.FormatFloat(n.Pos.Y, 'g', -1, 64),
			strconv.FormatFloat(n.Pos.Z, 'g', -1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEdges writes an edge table readable by ReadEdges.
func WriteEdges(w io.Writer, pairs []EdgeKey) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"src", "dest"}); err != nil {
		return err
	}
	for _, p := range pairs {
		if err := cw.Write([]string{strconv.Itoa(p.Src), strconv.Itoa(p.Dest)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
