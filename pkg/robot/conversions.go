package robot

import "math"

const secondsPerMinute = 60.0

// DrumCircumference returns the rope travel per drum revolution in meters.
func (m PhysicalModel) DrumCircumference() float64 {
	return 2 * math.Pi * m.DrumRadius
}

// ToLinearPosition converts elevator motor rotations to meters of travel.
func (m PhysicalModel) ToLinearPosition(rotations float64) float64 {
	return rotations / m.ElevatorGearing * m.DrumCircumference()
}

// ToRotations converts meters of elevator travel to motor rotations.
func (m PhysicalModel) ToRotations(meters float64) float64 {
	return meters / m.DrumCircumference() * m.ElevatorGearing
}

// ToLinearVelocity converts elevator motor RPM to meters per second.
func (m PhysicalModel) ToLinearVelocity(rpm float64) float64 {
	return m.ToLinearPosition(rpm) / secondsPerMinute
}

// ToRPM converts elevator meters per second to motor RPM.
func (m PhysicalModel) ToRPM(metersPerSecond float64) float64 {
	return m.ToRotations(metersPerSecond) * secondsPerMinute
}

// ToAngularPosition converts wrist motor rotations to radians. The result is
// not limited to any envelope; see CheckWristAngle.
func (m PhysicalModel) ToAngularPosition(rotations float64) float64 {
	return rotations / m.WristReduction * 2 * math.Pi
}

// ToWristRotations converts wrist radians to motor rotations.
func (m PhysicalModel) ToWristRotations(radians float64) float64 {
	return radians / (2 * math.Pi) * m.WristReduction
}

// ToAngularVelocity converts wrist motor RPM to radians per second.
func (m PhysicalModel) ToAngularVelocity(rpm float64) float64 {
	return m.ToAngularPosition(rpm) / secondsPerMinute
}

// ToWristRPM converts wrist radians per second to motor RPM.
func (m PhysicalModel) ToWristRPM(radiansPerSecond float64) float64 {
	return m.ToWristRotations(radiansPerSecond) * secondsPerMinute
}

// RPMToRadiansPerSecond converts output shaft RPM to radians per second.
func RPMToRadiansPerSecond(rpm float64) float64 {
	return rpm * 2 * math.Pi / secondsPerMinute
}
