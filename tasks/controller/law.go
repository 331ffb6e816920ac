package controller

import "balancer/internal/mathx"

// StateLen is the length of one axis state vector.
const StateLen = 4

// Axis is the full-state feedback law of one plate axis.
type Axis struct {
	K [StateLen]float64
}

// NewAxis copies up to StateLen gains into an Axis.
func NewAxis(gains []float64) Axis {
	var a Axis
	copy(a.K[:], gains)
	return a
}

// StateVector builds the vector [position, tilt, velocity, -tilt rate].
func StateVector(pos, tilt, vel, tiltRate float64) [StateLen]float64 {
	return [StateLen]float64{pos, tilt, vel, -tiltRate}
}

// Command returns the torque command -K·x.
func (a Axis) Command(x [StateLen]float64) float64 {
	return -mathx.Dot(a.K[:], x[:])
}
