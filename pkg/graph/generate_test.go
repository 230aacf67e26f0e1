package graph

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomGraph(t *testing.T) {
	nodes, pairs := Random(30, 45, rand.New(rand.NewPCG(1, 2)))
	require.Len(t, nodes, 30)
	require.Len(t, pairs, 45)

	for _, n := range nodes {
		for _, c := range []float64{n.Pos.X, n.Pos.Y, n.Pos.Z} {
			assert.GreaterOrEqual(t, c, -1.0)
			assert.Less(t, c, 1.0)
		}
	}
	for i, p := range pairs {
		if i < 30 {
			assert.Equal(t, EdgeKey{Src: i, Dest: (i + 1) % 30}, p, "ring edge %d", i)
			continue
		}
		assert.NotEqual(t, p.Src, p.Dest, "random edge %d is a self loop", i)
	}

	s, err := Build(nodes, pairs)
	require.NoError(t, err)
	for i := range nodes {
		assert.NotEmpty(t, s.NeighborsOf(i), "node %d isolated", i)
	}
}

func TestRandomGraphTiny(t *testing.T) {
	nodes, pairs := Random(1, 5, rand.New(rand.NewPCG(1, 2)))
	assert.Len(t, nodes, 1)
	assert.Empty(t, pairs)

	_, pairs = Random(5, 3, rand.New(rand.NewPCG(1, 2)))
	assert.Len(t, pairs, 3)
}

func TestWriteThenLoad(t *testing.T) {
	nodes, pairs := Random(12, 20, rand.New(rand.NewPCG(3, 4)))

	var nb, eb bytes.Buffer
	require.NoError(t, WriteNodes(&nb, nodes))
	require.NoError(t, WriteEdges(&eb, pairs))

	s, err := Load(&nb, &eb, 300)
	require.NoError(t, err)
	require.Equal(t, 12, s.NodeCount())
	assert.InDelta(t, nodes[5].Pos.Y*300, s.Position(5).Y, 1e-9)
	assert.Equal(t, 2*s.EdgeCount(), s.NeighborEntries())
	require.NoError(t, s.CheckSymmetry())
}
