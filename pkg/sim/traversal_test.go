package sim

import (
	"testing"

	"github.com/sanonone/beams/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func railsEntity(g *graph.Store, src, dest int) Entity {
	return Entity{
		Pos:  g.Position(src),
		Mode: &Rails{Src: src, Dest: dest, DestPos: g.Position(dest)},
	}
}

func TestRailsRepeatedLerp(t *testing.T) {
	g := buildStore(t, triangle(), graph.EdgeKey{Src: 0, Dest: 1})
	tr := NewTraversal(DefaultConfig(), newScripted())
	entities := []Entity{railsEntity(g, 0, 1)}

	// Tick 1: progress 0.02, pos = 0 + 0.02*(100-0) = 2.
	tr.Step(g, entities)
	assert.InDelta(t, 2.0, entities[0].Pos.X, 1e-9)

	// Tick 2: progress 0.04 applied from the already moved position.
	tr.Step(g, entities)
	assert.InDelta(t, 2.0+0.04*98.0, entities[0].Pos.X, 1e-9)
	assert.InDelta(t, 0.04, entities[0].Progress, 1e-12)
}

func TestHopResetsProgress(t *testing.T) {
	g := buildStore(t, randomPositions(8, 7),
		graph.EdgeKey{Src: 0, Dest: 1}, graph.EdgeKey{Src: 1, Dest: 2},
		graph.EdgeKey{Src: 2, Dest: 3}, graph.EdgeKey{Src: 3, Dest: 0},
		graph.EdgeKey{Src: 4, Dest: 5}, graph.EdgeKey{Src: 5, Dest: 6},
		graph.EdgeKey{Src: 6, Dest: 7}, graph.EdgeKey{Src: 7, Dest: 4},
		graph.EdgeKey{Src: 0, Dest: 4},
	)
	tr := NewTraversal(DefaultConfig(), NewRand(11))
	entities := []Entity{railsEntity(g, 0, 1), railsEntity(g, 4, 5), railsEntity(g, 6, 7)}

	hopped := 0
	for range 200 {
		hops, dead := tr.Step(g, entities)
		require.Empty(t, dead, "every node of this graph has neighbors")
		for _, h := range hops {
			hopped++
			e := entities[h.Entity]
			assert.Zero(t, e.Progress)
			assert.Contains(t, g.NeighborsOf(h.Src), h.Dest)
			assert.True(t, h.Recorded)

			src, dest, ok := e.Route()
			require.True(t, ok)
			assert.Equal(t, h.Src, src)
			assert.Equal(t, h.Dest, dest)
		}
	}
	assert.Greater(t, hopped, 0)
}

func TestHopSnapsToFormerDestination(t *testing.T) {
	g := buildStore(t, triangle(), graph.EdgeKey{Src: 0, Dest: 1}, graph.EdgeKey{Src: 1, Dest: 2})
	tr := NewTraversal(DefaultConfig(), newScripted(1)) // neighbors(1) = [0 2]: pick 2
	entities := []Entity{railsEntity(g, 0, 1)}

	var hops []HopEvent
	for len(hops) == 0 {
		hops, _ = tr.Step(g, entities)
	}

	require.Equal(t, HopEvent{Entity: 0, Src: 1, Dest: 2, Recorded: true}, hops[0])
	assert.Equal(t, g.Position(1), entities[0].Pos)
	e, _ := g.Edge(1, 2)
	assert.Equal(t, 1, e.HopCount)
	e, _ = g.Edge(0, 1)
	assert.Zero(t, e.HopCount, "the leg just finished is not counted")
}

func TestHopCountedOnReverseKey(t *testing.T) {
	g := buildStore(t, triangle(), graph.EdgeKey{Src: 0, Dest: 1})
	tr := NewTraversal(DefaultConfig(), newScripted())
	// The entity travels 2 -> 1 on an edge that is not stored; its next leg
	// 1 -> 0 is only stored as (0,1).
	entities := []Entity{railsEntity(g, 2, 1)}

	var hops []HopEvent
	for len(hops) == 0 {
		hops, _ = tr.Step(g, entities)
	}
	assert.Equal(t, 0, hops[0].Dest)
	assert.True(t, hops[0].Recorded)
	e, _ := g.Edge(0, 1)
	assert.Equal(t, 1, e.HopCount)
}

func TestIsolationFallback(t *testing.T) {
	for _, tc := range []struct {
		fallback FallbackMode
		want     ModeKind
	}{
		{FallbackFree, KindFree},
		{FallbackCore, KindCore},
	} {
		t.Run(string(tc.fallback), func(t *testing.T) {
			g := buildStore(t, triangle(), graph.EdgeKey{Src: 0, Dest: 1}, graph.EdgeKey{Src: 1, Dest: 2})
			cfg := DefaultConfig()
			cfg.Fallback = tc.fallback
			tr := NewTraversal(cfg, newScripted())
			entities := []Entity{railsEntity(g, 1, 2)}

			// Node 2 loses its only edge and the rewire did not reconnect it.
			require.True(t, g.RemoveEdge(1, 2))

			var dead []DeadEnd
			for len(dead) == 0 {
				_, dead = tr.Step(g, entities)
			}

			require.Equal(t, DeadEnd{Entity: 0, Node: 2, Mode: tc.want}, dead[0])
			e := entities[0]
			assert.Equal(t, tc.want, e.Mode.Kind())
			assert.Zero(t, e.Progress)
			assert.Equal(t, 2, anchorOf(e.Mode))
			_, _, onRails := e.Route()
			assert.False(t, onRails)

			// Off rails it keeps moving without touching the graph.
			for range 10 {
				hops, dead := tr.Step(g, entities)
				assert.Empty(t, hops)
				assert.Empty(t, dead)
			}
			assert.False(t, isNaN(entities[0].Pos))
		})
	}
}

func TestFreeEntityRejoins(t *testing.T) {
	g := buildStore(t, triangle(), graph.EdgeKey{Src: 0, Dest: 1})
	tr := NewTraversal(DefaultConfig(), newScripted())
	entities := []Entity{{Pos: r3.Vec{X: 5}, Mode: &Free{Anchor: 2}}}

	// No neighbor yet: progress wraps without a hop.
	for range 30 {
		hops, _ := tr.Step(g, entities)
		require.Empty(t, hops)
	}
	assert.Equal(t, KindFree, entities[0].Mode.Kind())

	require.NoError(t, g.InsertEdge(2, 0, graph.EdgeAttrs{Free: true}))

	var hops []HopEvent
	for i := 0; len(hops) == 0 && i < 30; i++ {
		hops, _ = tr.Step(g, entities)
	}
	require.Len(t, hops, 1)
	assert.Equal(t, HopEvent{Entity: 0, Src: 2, Dest: 0, Recorded: true, Rejoined: true}, hops[0])

	src, dest, ok := entities[0].Route()
	require.True(t, ok)
	assert.Equal(t, 2, src)
	assert.Equal(t, 0, dest)
	e, _ := g.Edge(2, 0)
	assert.Equal(t, 1, e.HopCount)
}

func TestFreeDriftIsDampedTowardTarget(t *testing.T) {
	g := buildStore(t, triangle())
	cfg := DefaultConfig()
	cfg.FreeSigma = 0
	tr := NewTraversal(cfg, newScripted())
	entities := []Entity{{Pos: r3.Vec{X: 100}, Mode: &Free{Anchor: 0}}}

	tr.Step(g, entities)
	assert.InDelta(t, 100*(1-cfg.FreeDamping), entities[0].Pos.X, 1e-9)
}

func TestCorePullsToUnitSphere(t *testing.T) {
	g := buildStore(t, triangle())
	cfg := DefaultConfig()
	cfg.CoreSigma = 0
	tr := NewTraversal(cfg, newScripted())
	entities := []Entity{
		{Pos: r3.Vec{X: 30, Y: 40}, Mode: &Core{Anchor: 0}},
		{Pos: r3.Vec{}, Mode: &Core{Anchor: 0}},
	}

	tr.Step(g, entities)
	assert.InDelta(t, 1.0, r3.Norm(entities[0].Pos), 1e-9)
	assert.Equal(t, r3.Vec{}, entities[1].Pos)
}

func TestSpawnOnIsolatedNode(t *testing.T) {
	g := buildStore(t, triangle(), graph.EdgeKey{Src: 0, Dest: 1})
	e := spawn(g, newScripted(2), DefaultConfig())

	assert.Equal(t, KindFree, e.Mode.Kind())
	assert.Equal(t, 2, anchorOf(e.Mode))
	assert.Equal(t, g.Position(2), e.Pos)
}

func isNaN(v r3.Vec) bool {
	return v.X != v.X || v.Y != v.Y || v.Z != v.Z
}
