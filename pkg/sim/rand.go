package sim

import (
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// Rand is the random source a simulation draws from. *rand.Rand from
// math/rand/v2 satisfies it; tests substitute scripted sources.
type Rand interface {
	// Uint64 feeds the gonum distributions used for noise.
	Uint64() uint64
	// IntN returns a uniform index in [0, n).
	IntN(n int) int
}

// NewRand returns a PCG-backed source. A zero seed picks one from the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// gaussianVec draws a vector with each axis ~ N(0, sigma).
func gaussianVec(src Rand, sigma float64) r3.Vec {
	if sigma == 0 {
		return r3.Vec{}
	}
	n := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	return r3.Vec{X: n.Rand(), Y: n.Rand(), Z: n.Rand()}
}
