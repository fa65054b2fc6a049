// Package control implements the closed loop motion model for the elevator
// and wrist: PID feedback, feedforward voltage models and trapezoidal motion
// profiles, combined into profiled joint controllers.
package control

import (
	"math"

	"github.com/gwillem/superstructure/pkg/robot"
)

// PIDController is a discrete PID controller. It is not safe for concurrent
// use; each control loop owns its own instance.
type PIDController struct {
	gains robot.PID

	// integral is clamped to ±integralLimit when the limit is positive
	integralLimit float64

	integral  float64
	prevError float64
	hasPrev   bool
}

// NewPIDController creates a controller with no integral limit.
func NewPIDController(gains robot.PID) *PIDController {
	return &PIDController{gains: gains}
}

// SetIntegralLimit bounds the accumulated integral. Zero disables the bound.
func (c *PIDController) SetIntegralLimit(limit float64) {
	c.integralLimit = math.Abs(limit)
}

// Gains returns the controller gains.
func (c *PIDController) Gains() robot.PID {
	return c.gains
}

// Calculate returns the correction that drives measurement to setpoint.
// dt is the time since the previous call in seconds.
func (c *PIDController) Calculate(measurement, setpoint, dt float64) float64 {
	err := setpoint - measurement

	if dt > 0 {
		c.integral += err * dt
		if c.integralLimit > 0 {
			c.integral = math.Max(-c.integralLimit, math.Min(c.integralLimit, c.integral))
		}
	}

	var derivative float64
	if c.hasPrev && dt > 0 {
		derivative = (err - c.prevError) / dt
	}
	c.prevError = err
	c.hasPrev = true

	return c.gains.P*err + c.gains.I*c.integral + c.gains.D*derivative
}

// Reset clears accumulated state.
func (c *PIDController) Reset() {
	c.integral = 0
	c.prevError = 0
	c.hasPrev = false
}
