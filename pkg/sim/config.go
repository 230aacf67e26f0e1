package sim

import (
	"errors"
	"fmt"
)

// FallbackMode selects what an entity does when it reaches a node with no
// remaining neighbors.
type FallbackMode string

const (
	FallbackFree FallbackMode = "free"
	FallbackCore FallbackMode = "core"
)

// Config holds the tunables of a simulation. Zero values are not meaningful;
// start from DefaultConfig.
type Config struct {
	// BreakThreshold is the hop count at which an edge breaks.
	BreakThreshold int `yaml:"break_threshold" json:"break_threshold"`

	// StepSize is added to an entity's progress every tick.
	StepSize float64 `yaml:"step_size" json:"step_size"`

	// HopProgress is the progress at which a hop fires.
	HopProgress float64 `yaml:"hop_progress" json:"hop_progress"`

	// PitchStep is the pitch rotation applied every tick, in radians.
	PitchStep float64 `yaml:"pitch_step" json:"pitch_step"`

	// Entities is the number of traversing units spawned at start.
	Entities int `yaml:"entities" json:"entities"`

	// Fallback is the mode adopted at a dead end: "free" or "core".
	Fallback FallbackMode `yaml:"fallback" json:"fallback"`

	// FreeSigma is the standard deviation of the drift noise in free mode.
	FreeSigma float64 `yaml:"free_sigma" json:"free_sigma"`
	// FreeDamping pulls a drifting entity toward its target.
	FreeDamping float64 `yaml:"free_damping" json:"free_damping"`
	// CoreSigma is the standard deviation of the radial noise in core mode.
	CoreSigma float64 `yaml:"core_sigma" json:"core_sigma"`

	// SphereSize is the world radius used for depth fading in frames.
	SphereSize float64 `yaml:"sphere_size" json:"sphere_size"`

	// Color is the display colour of every entity (RGB, 0..1).
	Color [3]float64 `yaml:"color" json:"color"`

	// Seed seeds the random source. 0 picks a time-based seed.
	Seed uint64 `yaml:"seed" json:"seed"`

	// VerifyInvariants checks neighbor-index symmetry after every tick.
	VerifyInvariants bool `yaml:"verify_invariants" json:"verify_invariants"`
}

// DefaultConfig returns the parameters of the reference sketch.
func DefaultConfig() Config {
	return Config{
		BreakThreshold: 5,
		StepSize:       0.02,
		HopProgress:    0.5,
		PitchStep:      0.02,
		Entities:       150,
		Fallback:       FallbackFree,
		FreeSigma:      10,
		FreeDamping:    0.02,
		CoreSigma:      10,
		SphereSize:     300,
		Color:          [3]float64{1.0, 0.1, 0.1},
	}
}

var errInvalidConfig = errors.New("sim: invalid config")

// Validate reports the first parameter that cannot drive a simulation.
func (c Config) Validate() error {
	switch {
	case c.BreakThreshold < 1:
		return fmt.Errorf("%w: break_threshold must be >= 1, got %d", errInvalidConfig, c.BreakThreshold)
	case c.StepSize <= 0:
		return fmt.Errorf("%w: step_size must be > 0, got %g", errInvalidConfig, c.StepSize)
	case c.HopProgress <= 0:
		return fmt.Errorf("%w: hop_progress must be > 0, got %g", errInvalidConfig, c.HopProgress)
	case c.Entities < 0:
		return fmt.Errorf("%w: entities must be >= 0, got %d", errInvalidConfig, c.Entities)
	case c.Fallback != FallbackFree && c.Fallback != FallbackCore:
		return fmt.Errorf("%w: fallback must be %q or %q, got %q", errInvalidConfig, FallbackFree, FallbackCore, c.Fallback)
	case c.FreeSigma < 0 || c.CoreSigma < 0:
		return fmt.Errorf("%w: noise sigma must be >= 0", errInvalidConfig)
	case c.FreeDamping < 0 || c.FreeDamping > 1:
		return fmt.Errorf("%w: free_damping must be in [0,1], got %g", errInvalidConfig, c.FreeDamping)
	case c.SphereSize <= 0:
		return fmt.Errorf("%w: sphere_size must be > 0, got %g", errInvalidConfig, c.SphereSize)
	}
	return nil
}
