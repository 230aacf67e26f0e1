package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Entity is a traversing unit. It references nodes by index only.
type Entity struct {
	Pos      r3.Vec
	Progress float64
	Mode     Mode
	Color    [3]float64
}

// Size is the display radius derived from progress.
func (e *Entity) Size() float64 {
	return 2.0 + 25.0*math.Abs(e.Progress-0.25)
}

// Fade is the display alpha derived from depth.
func (e *Entity) Fade(sphereSize float64) float64 {
	return 0.5 + (e.Pos.Z-sphereSize/2.0)/sphereSize
}

// Route returns the (src, dest) pair an entity on rails is travelling.
func (e *Entity) Route() (src, dest int, ok bool) {
	r, ok := e.Mode.(*Rails)
	if !ok {
		return 0, 0, false
	}
	return r.Src, r.Dest, true
}

// spawn places an entity on a random node heading to a random neighbor. A
// node without neighbors starts it off rails, anchored there.
func spawn(g Graph, src Rand, cfg Config) Entity {
	from := src.IntN(g.NodeCount())
	e := Entity{Pos: g.Position(from), Color: cfg.Color}

	opts := g.NeighborsOf(from)
	if len(opts) == 0 {
		e.Mode = fallback(cfg.Fallback, from)
		return e
	}
	to := opts[src.IntN(len(opts))]
	e.Mode = &Rails{Src: from, Dest: to, DestPos: g.Position(to)}
	return e
}

func fallback(kind FallbackMode, anchor int) Mode {
	if kind == FallbackCore {
		return &Core{Anchor: anchor}
	}
	return &Free{Anchor: anchor, Target: r3.Vec{}}
}
