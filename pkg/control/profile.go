package control

import (
	"math"

	"github.com/gwillem/superstructure/pkg/robot"
)

// Constraints bound a motion profile.
type Constraints struct {
	MaxVelocity     float64
	MaxAcceleration float64
}

// NewConstraints validates that both limits are positive and finite.
func NewConstraints(maxVelocity, maxAcceleration float64) (Constraints, error) {
	if !(maxVelocity > 0) || math.IsInf(maxVelocity, 0) {
		return Constraints{}, &robot.ConfigError{Subject: "motion profile", Reason: "max velocity must be positive"}
	}
	if !(maxAcceleration > 0) || math.IsInf(maxAcceleration, 0) {
		return Constraints{}, &robot.ConfigError{Subject: "motion profile", Reason: "max acceleration must be positive"}
	}
	return Constraints{MaxVelocity: maxVelocity, MaxAcceleration: maxAcceleration}, nil
}

// State is a position and velocity along one axis.
type State struct {
	Position float64
	Velocity float64
}

// TrapezoidProfile generates velocity-limited, acceleration-limited motion
// between two states.
type TrapezoidProfile struct {
	c Constraints
}

// NewTrapezoidProfile creates a profile generator.
func NewTrapezoidProfile(c Constraints) (*TrapezoidProfile, error) {
	c, err := NewConstraints(c.MaxVelocity, c.MaxAcceleration)
	if err != nil {
		return nil, err
	}
	return &TrapezoidProfile{c: c}, nil
}

// Constraints returns the profile limits.
func (p *TrapezoidProfile) Constraints() Constraints {
	return p.c
}

type phases struct {
	endAccel, endFullSpeed, endDecel float64
}

func (p *TrapezoidProfile) plan(current, goal State) (phases, State, State, float64) {
	direction := 1.0
	if current.Position > goal.Position {
		direction = -1
	}
	current = State{current.Position * direction, current.Velocity * direction}
	goal = State{goal.Position * direction, goal.Velocity * direction}

	maxV, maxA := p.c.MaxVelocity, p.c.MaxAcceleration
	if current.Velocity > maxV {
		current.Velocity = maxV
	}

	cutoffBegin := current.Velocity / maxA
	cutoffDistBegin := cutoffBegin * cutoffBegin * maxA / 2
	cutoffEnd := goal.Velocity / maxA
	cutoffDistEnd := cutoffEnd * cutoffEnd * maxA / 2

	fullTrapezoidDist := cutoffDistBegin + (goal.Position - current.Position) + cutoffDistEnd
	accelTime := maxV / maxA
	fullSpeedDist := fullTrapezoidDist - accelTime*accelTime*maxA
	if fullSpeedDist < 0 {
		accelTime = math.Sqrt(fullTrapezoidDist / maxA)
		fullSpeedDist = 0
	}

	ph := phases{endAccel: accelTime - cutoffBegin}
	ph.endFullSpeed = ph.endAccel + fullSpeedDist/maxV
	ph.endDecel = ph.endFullSpeed + accelTime - cutoffEnd
	return ph, current, goal, direction
}

// Calculate returns the state t seconds after current on the way to goal.
func (p *TrapezoidProfile) Calculate(t float64, current, goal State) State {
	ph, cur, g, direction := p.plan(current, goal)
	maxV, maxA := p.c.MaxVelocity, p.c.MaxAcceleration

	result := cur
	switch {
	case t < ph.endAccel:
		result.Velocity += t * maxA
		result.Position += (cur.Velocity + t*maxA/2) * t
	case t < ph.endFullSpeed:
		result.Velocity = maxV
		result.Position += (cur.Velocity+ph.endAccel*maxA/2)*ph.endAccel + maxV*(t-ph.endAccel)
	case t <= ph.endDecel:
		left := ph.endDecel - t
		result.Velocity = g.Velocity + left*maxA
		result.Position = g.Position - (g.Velocity+left*maxA/2)*left
	default:
		result = g
	}

	return State{result.Position * direction, result.Velocity * direction}
}

// TotalTime returns the duration of the motion from current to goal.
func (p *TrapezoidProfile) TotalTime(current, goal State) float64 {
	ph, _, _, _ := p.plan(current, goal)
	return ph.endDecel
}
