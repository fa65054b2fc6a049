package control

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/gwillem/superstructure/pkg/robot"
)

// Output is one control step's result.
type Output struct {
	Voltage     float64 // applied, saturated to the controller's nominal voltage
	Feedforward float64
	Feedback    float64
	Gravity     float64 // gravity gain in effect
	Setpoint    State   // profiled setpoint for this step
}

// Elevator tracks a goal extension (meters from fully retracted) with a
// trapezoid profile, PID feedback and stage-dependent gravity feedforward.
type Elevator struct {
	tuning     robot.ElevatorTuning
	model      robot.PhysicalModel
	travel     robot.Bounds
	maxVoltage float64

	profile *TrapezoidProfile
	pid     *PIDController

	goal     State
	setpoint State
}

// NewElevator builds the elevator controller from the superstructure.
func NewElevator(s *robot.Superstructure) (*Elevator, error) {
	t := s.Tuning().Elevator
	maxV, maxA := t.ProfileLimits()
	profile, err := NewTrapezoidProfile(Constraints{MaxVelocity: maxV, MaxAcceleration: maxA})
	if err != nil {
		return nil, errors.Wrap(err, "elevator profile")
	}
	preset, err := s.Preset(robot.ElevatorPrimary)
	if err != nil {
		return nil, errors.Wrap(err, "elevator preset")
	}

	return &Elevator{
		tuning:     t,
		model:      s.Physical(),
		travel:     s.Physical().ElevatorTravel(),
		maxVoltage: preset.VoltageCompensation(),
		profile:    profile,
		pid:        NewPIDController(t.PID),
	}, nil
}

// Reset restarts profiling from the measured state.
func (e *Elevator) Reset(measured State) {
	e.setpoint = measured
	e.goal = State{Position: e.travel.Clamp(measured.Position)}
	e.pid.Reset()
}

// SetGoal sets the target extension, clamped to the travel range. It returns
// the goal actually used.
func (e *Elevator) SetGoal(extension float64) float64 {
	e.goal = State{Position: e.travel.Clamp(extension)}
	return e.goal.Position
}

// Goal returns the current goal.
func (e *Elevator) Goal() State {
	return e.goal
}

// AtGoal reports whether the profile has reached the goal.
func (e *Elevator) AtGoal() bool {
	return e.setpoint == e.goal
}

// Calculate advances the profile by dt seconds and returns the voltage for
// the measured state.
func (e *Elevator) Calculate(measured State, dt float64) (Output, error) {
	if !(dt > 0) {
		return Output{}, errors.Errorf("elevator: non-positive dt %v", dt)
	}

	next := e.profile.Calculate(dt, e.setpoint, e.goal)
	accel := (next.Velocity - e.setpoint.Velocity) / dt
	e.setpoint = next

	_, carriage := e.model.SplitHeight(measured.Position)
	ff := ElevatorFeedforward{
		S: e.tuning.Feedforward.S,
		G: e.tuning.SelectGravityFF(carriage),
		V: e.tuning.Feedforward.V,
		A: e.tuning.Feedforward.A,
	}

	out := Output{
		Feedforward: ff.Calculate(next.Velocity, accel),
		Feedback:    e.pid.Calculate(measured.Position, next.Position, dt),
		Gravity:     ff.G,
		Setpoint:    next,
	}
	out.Voltage = mgl64.Clamp(out.Feedforward+out.Feedback, -e.maxVoltage, e.maxVoltage)
	return out, nil
}

// Wrist tracks a goal angle (radians from horizontal). Goals are clamped to
// the operational envelope; a measurement outside the mechanical envelope is
// a fault.
type Wrist struct {
	tuning      robot.WristTuning
	operational robot.Bounds
	mechanical  robot.Bounds
	maxVoltage  float64

	profile *TrapezoidProfile
	pid     *PIDController

	goal     State
	setpoint State
}

// NewWrist builds the wrist controller from the superstructure.
func NewWrist(s *robot.Superstructure) (*Wrist, error) {
	t := s.Tuning().Wrist
	maxV, maxA := t.ProfileLimits()
	profile, err := NewTrapezoidProfile(Constraints{MaxVelocity: maxV, MaxAcceleration: maxA})
	if err != nil {
		return nil, errors.Wrap(err, "wrist profile")
	}
	preset, err := s.Preset(robot.Wrist)
	if err != nil {
		return nil, errors.Wrap(err, "wrist preset")
	}

	return &Wrist{
		tuning:      t,
		operational: t.OperationalBounds(),
		mechanical:  s.Physical().WristLimits,
		maxVoltage:  preset.VoltageCompensation(),
		profile:     profile,
		pid:         NewPIDController(t.PID),
	}, nil
}

// Reset restarts profiling from the measured state.
func (w *Wrist) Reset(measured State) {
	w.setpoint = measured
	w.goal = State{Position: w.operational.Clamp(measured.Position)}
	w.pid.Reset()
}

// SetGoal sets the target angle, clamped to the operational envelope. It
// returns the goal actually used.
func (w *Wrist) SetGoal(angle float64) float64 {
	w.goal = State{Position: w.operational.Clamp(angle)}
	return w.goal.Position
}

// Goal returns the current goal.
func (w *Wrist) Goal() State {
	return w.goal
}

// AtGoal reports whether the profile has reached the goal.
func (w *Wrist) AtGoal() bool {
	return w.setpoint == w.goal
}

// Calculate advances the profile by dt seconds and returns the voltage for
// the measured state. Outside the mechanical envelope it returns zero output
// and a RangeError.
func (w *Wrist) Calculate(measured State, dt float64) (Output, error) {
	if !(dt > 0) {
		return Output{}, errors.Errorf("wrist: non-positive dt %v", dt)
	}
	if err := w.mechanical.Check("wrist angle", robot.Mechanical, measured.Position); err != nil {
		w.pid.Reset()
		return Output{Setpoint: w.setpoint}, err
	}

	next := w.profile.Calculate(dt, w.setpoint, w.goal)
	accel := (next.Velocity - w.setpoint.Velocity) / dt
	w.setpoint = next

	ff := ArmFeedforward{
		S: w.tuning.Feedforward.S,
		G: w.tuning.Gravity,
		V: w.tuning.Feedforward.V,
		A: w.tuning.Feedforward.A,
	}

	out := Output{
		Feedforward: ff.Calculate(next.Position, next.Velocity, accel),
		Feedback:    w.pid.Calculate(measured.Position, next.Position, dt),
		Gravity:     ff.G,
		Setpoint:    next,
	}
	out.Voltage = mgl64.Clamp(out.Feedforward+out.Feedback, -w.maxVoltage, w.maxVoltage)
	return out, nil
}
