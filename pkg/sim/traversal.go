package sim

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Graph is the view of the graph store the traversal engine needs.
type Graph interface {
	NodeCount() int
	Position(i int) r3.Vec
	NeighborsOf(i int) []int
	RecordHop(src, dest int) bool
}

// HopEvent reports one entity moving onto a new edge.
type HopEvent struct {
	Entity int
	Src    int
	Dest   int
	// Recorded is false when no edge between Src and Dest was found to
	// count the hop on.
	Recorded bool
	// Rejoined is true when the entity came back from free or core mode.
	Rejoined bool
}

// DeadEnd reports an entity that reached a node without neighbors.
type DeadEnd struct {
	Entity int
	Node   int
	Mode   ModeKind
}

// Traversal advances entities over a graph.
type Traversal struct {
	cfg Config
	src Rand
}

// NewTraversal returns an engine with the given parameters and random source.
func NewTraversal(cfg Config, src Rand) *Traversal {
	return &Traversal{cfg: cfg, src: src}
}

// Step advances every entity by one tick and reports hops and dead ends.
// Hops are counted on the graph as they happen.
func (t *Traversal) Step(g Graph, entities []Entity) ([]HopEvent, []DeadEnd) {
	var (
		hops []HopEvent
		dead []DeadEnd
	)
	for i := range entities {
		e := &entities[i]
		e.Progress += t.cfg.StepSize

		switch m := e.Mode.(type) {
		case *Rails:
			e.Pos = r3.Add(e.Pos, r3.Scale(e.Progress, r3.Sub(m.DestPos, e.Pos)))
			if e.Progress < t.cfg.HopProgress {
				continue
			}
			if hop, ok := t.hop(g, e, m); ok {
				hop.Entity = i
				hops = append(hops, hop)
				continue
			}
			e.Progress = 0
			e.Mode = fallback(t.cfg.Fallback, m.Dest)
			slog.Debug("entity reached a dead end", "entity", i, "node", m.Dest, "mode", e.Mode.Kind())
			dead = append(dead, DeadEnd{Entity: i, Node: m.Dest, Mode: e.Mode.Kind()})

		case *Free:
			e.Pos = t.drift(e, m.Target)
			if hop, ok := t.retry(g, e); ok {
				hop.Entity = i
				hops = append(hops, hop)
			}

		case *Core:
			e.Pos = t.pull(e.Pos)
			if hop, ok := t.retry(g, e); ok {
				hop.Entity = i
				hops = append(hops, hop)
			}
		}
	}
	return hops, dead
}

// hop moves a rails entity from its destination onto a random neighbor of it.
func (t *Traversal) hop(g Graph, e *Entity, m *Rails) (HopEvent, bool) {
	opts := g.NeighborsOf(m.Dest)
	if len(opts) == 0 {
		return HopEvent{}, false
	}
	next := opts[t.src.IntN(len(opts))]

	m.Src = m.Dest
	e.Pos = m.DestPos
	m.Dest = next
	m.DestPos = g.Position(next)
	e.Progress = 0

	return HopEvent{Src: m.Src, Dest: m.Dest, Recorded: g.RecordHop(m.Src, m.Dest)}, true
}

// retry puts an off-rails entity back on the graph once its anchor has a
// neighbor again. It departs from where it currently is.
func (t *Traversal) retry(g Graph, e *Entity) (HopEvent, bool) {
	if e.Progress < t.cfg.HopProgress {
		return HopEvent{}, false
	}
	e.Progress = 0

	anchor := anchorOf(e.Mode)
	opts := g.NeighborsOf(anchor)
	if len(opts) == 0 {
		return HopEvent{}, false
	}
	next := opts[t.src.IntN(len(opts))]
	e.Mode = &Rails{Src: anchor, Dest: next, DestPos: g.Position(next)}

	return HopEvent{Src: anchor, Dest: next, Recorded: g.RecordHop(anchor, next), Rejoined: true}, true
}

// drift is a damped random walk toward target; smaller entities wander more.
func (t *Traversal) drift(e *Entity, target r3.Vec) r3.Vec {
	d := r3.Scale(1/e.Size(), gaussianVec(t.src, t.cfg.FreeSigma))
	pull := r3.Scale(t.cfg.FreeDamping, r3.Sub(e.Pos, target))
	return r3.Sub(r3.Add(e.Pos, d), pull)
}

// pull projects a position onto the unit sphere around the origin and
// perturbs it with noise.
func (t *Traversal) pull(p r3.Vec) r3.Vec {
	noise := gaussianVec(t.src, t.cfg.CoreSigma)
	dist := r3.Norm(p)
	if dist == 0 || math.IsNaN(dist) {
		return r3.Scale(-1, noise)
	}
	return r3.Sub(r3.Scale(1/dist, p), noise)
}
