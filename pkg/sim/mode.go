package sim

import "gonum.org/v1/gonum/spatial/r3"

// ModeKind names an entity's motion mode.
type ModeKind string

const (
	KindRails ModeKind = "rails"
	KindFree  ModeKind = "free"
	KindCore  ModeKind = "core"
)

// Mode is the motion state of an entity. It is a closed set: Rails, Free
// and Core are its only implementations, each carrying only its own fields.
type Mode interface {
	Kind() ModeKind
	mode()
}

// Rails moves an entity along the edge from Src toward Dest.
type Rails struct {
	Src     int
	Dest    int
	DestPos r3.Vec
}

// Free drifts an entity toward Target after it lost its graph anchor.
// Anchor is the isolated node it is waiting on.
type Free struct {
	Anchor int
	Target r3.Vec
}

// Core pulls an entity toward the origin with radial noise.
type Core struct {
	Anchor int
}

func (Rails) Kind() ModeKind { return KindRails }
func (Free) Kind() ModeKind  { return KindFree }
func (Core) Kind() ModeKind  { return KindCore }

func (Rails) mode() {}
func (Free) mode()  {}
func (Core) mode()  {}

// anchorOf returns the node an off-rails entity retries from.
func anchorOf(m Mode) int {
	switch m := m.(type) {
	case *Free:
		return m.Anchor
	case *Core:
		return m.Anchor
	case *Rails:
		return m.Dest
	}
	panic("sim: unknown mode")
}
