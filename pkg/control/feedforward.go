package control

import "math"

// ElevatorFeedforward models a vertical joint:
//
//	u = kS·sgn(v) + kG + kV·v + kA·a
type ElevatorFeedforward struct {
	S, G, V, A float64
}

// Calculate returns the voltage for the requested velocity and acceleration.
func (f ElevatorFeedforward) Calculate(velocity, acceleration float64) float64 {
	return f.S*sign(velocity) + f.G + f.V*velocity + f.A*acceleration
}

// Acceleration inverts the model: the acceleration produced by voltage at
// velocity.
func (f ElevatorFeedforward) Acceleration(voltage, velocity float64) float64 {
	if f.A == 0 {
		return 0
	}
	return (voltage - f.S*sign(velocity) - f.G - f.V*velocity) / f.A
}

// ArmFeedforward models a pivoting joint whose angle is measured from
// horizontal:
//
//	u = kS·sgn(ω) + kG·cos(θ) + kV·ω + kA·α
type ArmFeedforward struct {
	S, G, V, A float64
}

// Calculate returns the voltage for the requested angle, velocity and
// acceleration.
func (f ArmFeedforward) Calculate(angle, velocity, acceleration float64) float64 {
	return f.S*sign(velocity) + f.G*math.Cos(angle) + f.V*velocity + f.A*acceleration
}

// Acceleration inverts the model at angle and velocity.
func (f ArmFeedforward) Acceleration(voltage, angle, velocity float64) float64 {
	if f.A == 0 {
		return 0
	}
	return (voltage - f.S*sign(velocity) - f.G*math.Cos(angle) - f.V*velocity) / f.A
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
