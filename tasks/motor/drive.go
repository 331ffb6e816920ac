package motor

import "balancer/internal/mathx"

// Channels splits a signed duty percentage over the two half-bridge inputs of
// one motor. Zero duty releases both inputs.
func Channels(duty float64) (a, b float64) {
	switch {
	case duty > 0:
		return 100, 100 - duty
	case duty < 0:
		return 100 + duty, 100
	default:
		return 0, 0
	}
}

// Duty converts a torque command into a duty percentage limited to ±limit.
func Duty(torque, perTorque, limit float64) float64 {
	return mathx.Clamp(torque*perTorque, -limit, limit)
}
