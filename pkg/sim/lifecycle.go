package sim

import (
	"log/slog"

	"github.com/sanonone/beams/pkg/graph"
)

// Break records one decayed edge and its two replacements.
type Break struct {
	Src, Dest int
	// SrcTarget and DestTarget are the new destinations drawn for the
	// replacement edges (Src, SrcTarget) and (Dest, DestTarget).
	SrcTarget, DestTarget int
}

// Lifecycle ages out overused edges and rewires their endpoints.
type Lifecycle struct {
	Threshold int
	src       Rand
}

// NewLifecycle returns a manager breaking edges at threshold hops.
func NewLifecycle(threshold int, src Rand) *Lifecycle {
	return &Lifecycle{Threshold: threshold, src: src}
}

// Step scans the edge map for stale edges and replaces each one by two free
// edges anchored at its former endpoints. Each break grows the edge count by
// one unless a drawn replacement collides with an existing key.
func (l *Lifecycle) Step(g *graph.Store) []Break {
	stale := g.KeysWhere(func(e graph.Edge) bool {
		return e.HopCount >= l.Threshold
	})
	if len(stale) == 0 {
		return nil
	}

	n := g.NodeCount()
	breaks := make([]Break, 0, len(stale))
	for _, k := range stale {
		// An earlier break in this pass may have overwritten the key with a
		// fresh edge; only edges that are still stale break.
		if e, ok := g.Edge(k.Src, k.Dest); !ok || e.HopCount < l.Threshold {
			continue
		}
		g.RemoveEdge(k.Src, k.Dest)

		b := Break{Src: k.Src, Dest: k.Dest, SrcTarget: l.src.IntN(n)}
		// Indices come from the store itself, insertion cannot fail.
		_ = g.InsertEdge(b.Src, b.SrcTarget, graph.EdgeAttrs{Free: true})
		b.DestTarget = l.src.IntN(n)
		_ = g.InsertEdge(b.Dest, b.DestTarget, graph.EdgeAttrs{Free: true})

		slog.Debug("edge broken",
			"src", b.Src, "dest", b.Dest,
			"src_target", b.SrcTarget, "dest_target", b.DestTarget,
		)
		breaks = append(breaks, b)
	}
	return breaks
}
