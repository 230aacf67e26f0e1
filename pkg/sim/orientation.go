package sim

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Angles is the orientation triple shown to and set by the UI.
// Roll and Yaw are written by collaborators; Pitch accumulates the spin the
// simulation applies on its own.
type Angles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

var (
	axisX = r3.Vec{X: 1}
	axisY = r3.Vec{Y: 1}
	axisZ = r3.Vec{Z: 1}
)

// EulerRotation composes a rotation of roll about x, then pitch about y,
// then yaw about z: R = Rz(yaw) Ry(pitch) Rx(roll).
func EulerRotation(roll, pitch, yaw float64) r3.Rotation {
	qx := quat.Number(r3.NewRotation(roll, axisX))
	qy := quat.Number(r3.NewRotation(pitch, axisY))
	qz := quat.Number(r3.NewRotation(yaw, axisZ))
	return r3.Rotation(quat.Mul(qz, quat.Mul(qy, qx)))
}

// Orientation applies one rigid rotation per tick to all positions.
type Orientation struct {
	Angles    Angles
	PitchStep float64
}

// SetRollYaw overwrites the externally controlled angles.
func (o *Orientation) SetRollYaw(roll, yaw float64) {
	o.Angles.Roll = roll
	o.Angles.Yaw = yaw
}

// Rotation returns this tick's rotation and advances the accumulated pitch.
func (o *Orientation) Rotation() r3.Rotation {
	o.Angles.Pitch += o.PitchStep
	return EulerRotation(o.Angles.Roll, o.PitchStep, o.Angles.Yaw)
}
