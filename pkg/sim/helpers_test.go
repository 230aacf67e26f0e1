package sim

import (
	"math/rand/v2"
	"testing"

	"github.com/sanonone/beams/pkg/graph"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// scripted returns queued values from IntN (reduced mod n) and falls back to a
// seeded generator once the queue is empty.
type scripted struct {
	*rand.Rand
	ints []int
}

func newScripted(ints ...int) *scripted {
	return &scripted{Rand: rand.New(rand.NewPCG(1, 2)), ints: ints}
}

func (s *scripted) IntN(n int) int {
	if len(s.ints) == 0 {
		return s.Rand.IntN(n)
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func buildStore(t *testing.T, positions []r3.Vec, pairs ...graph.EdgeKey) *graph.Store {
	t.Helper()
	nodes := make([]graph.Node, len(positions))
	for i, p := range positions {
		nodes[i] = graph.Node{Pos: p}
	}
	s, err := graph.Build(nodes, pairs)
	require.NoError(t, err)
	return s
}

// triangle is three nodes on the x/y plane.
func triangle() []r3.Vec {
	return []r3.Vec{{X: 0}, {X: 100}, {Y: 100}}
}

func randomPositions(n int, seed uint64) []r3.Vec {
	r := rand.New(rand.NewPCG(seed, seed))
	out := make([]r3.Vec, n)
	for i := range out {
		out[i] = r3.Vec{X: r.Float64()*600 - 300, Y: r.Float64()*600 - 300, Z: r.Float64()*600 - 300}
	}
	return out
}
