// Package sim implements the beams simulation: entities walking a graph whose
// overused edges break and rewire while the whole scene spins.
//
// A Simulation is single-threaded. Each call to Tick runs, in this order:
//
//  1. the edge lifecycle (break and rewire stale edges),
//  2. the orientation transform (one rigid rotation of every position),
//  3. the traversal step (entities move and report hops).
//
// Hops recorded in step 3 feed the lifecycle scan of the next tick.
//
// Basic usage:
//
//	store, err := graph.LoadFiles("graph_positions.csv", "graph_edges.csv", 300)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s, err := sim.New(store, sim.DefaultConfig(), sim.NewRand(0))
//	for {
//	    s.Tick()
//	    render(s.Frame())
//	}
package sim

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sanonone/beams/pkg/graph"
	"gonum.org/v1/gonum/spatial/r3"
)

// TickReport summarises what happened during one tick.
type TickReport struct {
	Tick     uint64
	Breaks   []Break
	Hops     []HopEvent
	DeadEnds []DeadEnd
	Edges    int
}

// Simulation owns the graph, the entities and the orientation.
type Simulation struct {
	// ID identifies this run in logs and frames.
	ID string

	cfg         Config
	graph       *graph.Store
	entities    []Entity
	lifecycle   *Lifecycle
	traversal   *Traversal
	orientation Orientation
	tick        uint64

	breaks, hops, deadEnds uint64
}

// New spawns cfg.Entities entities on the store and returns a simulation
// ready to tick. The store is owned by the simulation afterwards.
func New(store *graph.Store, cfg Config, src Rand) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store.NodeCount() == 0 && cfg.Entities > 0 {
		return nil, fmt.Errorf("%w: cannot spawn entities on an empty graph", errInvalidConfig)
	}

	s := &Simulation{
		ID:          uuid.NewString(),
		cfg:         cfg,
		graph:       store,
		entities:    make([]Entity, 0, cfg.Entities),
		lifecycle:   NewLifecycle(cfg.BreakThreshold, src),
		traversal:   NewTraversal(cfg, src),
		orientation: Orientation{PitchStep: cfg.PitchStep},
	}
	for range cfg.Entities {
		s.entities = append(s.entities, spawn(store, src, cfg))
	}

	slog.Info("simulation created",
		"id", s.ID,
		"nodes", store.NodeCount(),
		"edges", store.EdgeCount(),
		"entities", len(s.entities),
	)
	return s, nil
}

// Tick advances the simulation by one frame.
func (s *Simulation) Tick() TickReport {
	s.tick++
	r := TickReport{Tick: s.tick}

	r.Breaks = s.lifecycle.Step(s.graph)
	s.rotate()
	r.Hops, r.DeadEnds = s.traversal.Step(s.graph, s.entities)
	r.Edges = s.graph.EdgeCount()

	s.breaks += uint64(len(r.Breaks))
	s.hops += uint64(len(r.Hops))
	s.deadEnds += uint64(len(r.DeadEnds))

	if s.cfg.VerifyInvariants {
		if err := s.graph.CheckSymmetry(); err != nil {
			slog.Error("neighbor index out of sync", "id", s.ID, "tick", s.tick, "error", err)
		}
	}
	return r
}

// rotate applies this tick's rotation to nodes, entities and their targets.
func (s *Simulation) rotate() {
	rot := s.orientation.Rotation()
	s.graph.Transform(rot.Rotate)
	for i := range s.entities {
		e := &s.entities[i]
		e.Pos = rot.Rotate(e.Pos)
		switch m := e.Mode.(type) {
		case *Rails:
			m.DestPos = rot.Rotate(m.DestPos)
		case *Free:
			m.Target = rot.Rotate(m.Target)
		}
	}
}

// SetOrientation sets the externally controlled roll and yaw. It takes effect
// on the next tick.
func (s *Simulation) SetOrientation(roll, yaw float64) {
	s.orientation.SetRollYaw(roll, yaw)
}

// Angles returns the current orientation triple.
func (s *Simulation) Angles() Angles { return s.orientation.Angles }

// Ticks returns the number of ticks run so far.
func (s *Simulation) Ticks() uint64 { return s.tick }

// Config returns the configuration the simulation was created with.
func (s *Simulation) Config() Config { return s.cfg }

// Graph exposes the underlying store for read access.
func (s *Simulation) Graph() *graph.Store { return s.graph }

// Entities returns a copy of the entity list. Modes are shared; treat them as
// read-only.
func (s *Simulation) Entities() []Entity {
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// ModeCounts returns how many entities are in each mode.
func (s *Simulation) ModeCounts() map[ModeKind]int {
	counts := map[ModeKind]int{KindRails: 0, KindFree: 0, KindCore: 0}
	for _, e := range s.entities {
		counts[e.Mode.Kind()]++
	}
	return counts
}

// EdgeView is the read-only projection of an edge for renderers.
type EdgeView struct {
	Src      int     `json:"src"`
	Dest     int     `json:"dest"`
	HopCount int     `json:"hop_count"`
	Free     bool    `json:"free"`
	Wear     float64 `json:"wear"`
}

// EntityView is the read-only projection of an entity for renderers.
type EntityView struct {
	Pos   r3.Vec     `json:"pos"`
	Mode  ModeKind   `json:"mode"`
	Size  float64    `json:"size"`
	Fade  float64    `json:"fade"`
	Color [3]float64 `json:"color"`
}

// Frame is everything a renderer needs to draw one tick.
type Frame struct {
	ID       string       `json:"id"`
	Tick     uint64       `json:"tick"`
	Angles   Angles       `json:"angles"`
	Nodes    []r3.Vec     `json:"nodes"`
	Edges    []EdgeView   `json:"edges"`
	Entities []EntityView `json:"entities"`
}

// Edges lists every edge in key order with its wear.
func (s *Simulation) Edges() []EdgeView {
	edges := s.graph.Edges()
	out := make([]EdgeView, len(edges))
	for i, e := range edges {
		out[i] = s.edgeView(e)
	}
	return out
}

// Frame builds a snapshot of the current state.
func (s *Simulation) Frame() Frame {
	f := Frame{
		ID:     s.ID,
		Tick:   s.tick,
		Angles: s.orientation.Angles,
		Nodes:  s.graph.Nodes(),
	}

	f.Edges = s.Edges()

	f.Entities = make([]EntityView, len(s.entities))
	for i := range s.entities {
		e := &s.entities[i]
		f.Entities[i] = EntityView{
			Pos:   e.Pos,
			Mode:  e.Mode.Kind(),
			Size:  e.Size(),
			Fade:  e.Fade(s.cfg.SphereSize),
			Color: e.Color,
		}
	}
	return f
}

// Stats is a summary of the simulation state and its running totals.
type Stats struct {
	ID              string           `json:"id"`
	Tick            uint64           `json:"tick"`
	Nodes           int              `json:"nodes"`
	Edges           int              `json:"edges"`
	FreeEdges       int              `json:"free_edges"`
	NeighborEntries int              `json:"neighbor_entries"`
	Modes           map[ModeKind]int `json:"modes"`
	Breaks          uint64           `json:"breaks_total"`
	Hops            uint64           `json:"hops_total"`
	DeadEnds        uint64           `json:"dead_ends_total"`
	Angles          Angles           `json:"angles"`
}

// Stats returns the current summary.
func (s *Simulation) Stats() Stats {
	free := s.graph.KeysWhere(func(e graph.Edge) bool { return e.Free })
	return Stats{
		ID:              s.ID,
		Tick:            s.tick,
		Nodes:           s.graph.NodeCount(),
		Edges:           s.graph.EdgeCount(),
		FreeEdges:       len(free),
		NeighborEntries: s.graph.NeighborEntries(),
		Modes:           s.ModeCounts(),
		Breaks:          s.breaks,
		Hops:            s.hops,
		DeadEnds:        s.deadEnds,
		Angles:          s.orientation.Angles,
	}
}

// NodeInfo describes one node and the edges touching it.
type NodeInfo struct {
	Index     int        `json:"index"`
	Pos       r3.Vec     `json:"pos"`
	Neighbors []int      `json:"neighbors"`
	Edges     []EdgeView `json:"edges"`
}

// ErrUnknownNode is returned by Node for an index outside the graph.
var ErrUnknownNode = errors.New("sim: unknown node")

// Node returns the position, neighbors and incident edges of node i.
func (s *Simulation) Node(i int) (NodeInfo, error) {
	if i < 0 || i >= s.graph.NodeCount() {
		return NodeInfo{}, fmt.Errorf("%w: %d (graph has %d nodes)", ErrUnknownNode, i, s.graph.NodeCount())
	}
	info := NodeInfo{
		Index:     i,
		Pos:       s.graph.Position(i),
		Neighbors: append([]int{}, s.graph.NeighborsOf(i)...),
		Edges:     []EdgeView{},
	}
	for _, e := range s.graph.Edges() {
		if e.Src == i || e.Dest == i {
			info.Edges = append(info.Edges, s.edgeView(e))
		}
	}
	return info, nil
}

func (s *Simulation) edgeView(e graph.Edge) EdgeView {
	return EdgeView{
		Src:      e.Src,
		Dest:     e.Dest,
		HopCount: e.HopCount,
		Free:     e.Free,
		Wear:     float64(e.HopCount) / float64(s.cfg.BreakThreshold),
	}
}
