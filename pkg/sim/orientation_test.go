package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func assertVecNear(t *testing.T, want, got r3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-9, "z")
}

func TestEulerRotationAxes(t *testing.T) {
	x, y, z := r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{Z: 1}

	assertVecNear(t, y, EulerRotation(0, 0, math.Pi/2).Rotate(x))
	assertVecNear(t, z, EulerRotation(math.Pi/2, 0, 0).Rotate(y))
	assertVecNear(t, x, EulerRotation(0, math.Pi/2, 0).Rotate(z))
}

func TestEulerRotationOrder(t *testing.T) {
	// Roll is applied first, yaw last.
	r := EulerRotation(math.Pi/2, 0, math.Pi/2)
	assertVecNear(t, r3.Vec{Y: 1}, r.Rotate(r3.Vec{X: 1}))
	assertVecNear(t, r3.Vec{Z: 1}, r.Rotate(r3.Vec{Y: 1}))
}

func TestRotationIsRigid(t *testing.T) {
	pts := randomPositions(40, 5)
	r := EulerRotation(0.7, 0.02, -1.3)

	rotated := make([]r3.Vec, len(pts))
	for i, p := range pts {
		rotated[i] = r.Rotate(p)
	}
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			before := r3.Norm(r3.Sub(pts[i], pts[j]))
			after := r3.Norm(r3.Sub(rotated[i], rotated[j]))
			if !scalar.EqualWithinRel(before, after, 1e-4) {
				t.Fatalf("distance %d-%d changed: %g -> %g", i, j, before, after)
			}
		}
	}
}

func TestOrientationAccumulatesPitch(t *testing.T) {
	o := Orientation{PitchStep: 0.02}
	o.SetRollYaw(0.1, 0.2)

	o.Rotation()
	o.Rotation()

	assert.InDelta(t, 0.04, o.Angles.Pitch, 1e-12)
	assert.Equal(t, 0.1, o.Angles.Roll)
	assert.Equal(t, 0.2, o.Angles.Yaw)
}
