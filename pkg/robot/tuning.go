package robot

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Feedforward holds the static, velocity and acceleration terms of a joint's
// open loop voltage model. Gravity terms live on the joint tuning because
// they differ per joint type.
type Feedforward struct {
	S float64 `yaml:"ks" env:"KS"`
	V float64 `yaml:"kv" env:"KV"`
	A float64 `yaml:"ka" env:"KA"`
}

// PID holds feedback gains.
type PID struct {
	P float64 `yaml:"kp" env:"KP"`
	I float64 `yaml:"ki" env:"KI"`
	D float64 `yaml:"kd" env:"KD"`
}

// JointTuning is shared by both joints. Motion limits are in the joint's
// configured units, see ProfileLimits on each joint.
type JointTuning struct {
	Feedforward     Feedforward `yaml:"feedforward" envPrefix:"FF_"`
	PID             PID         `yaml:"pid" envPrefix:"PID_"`
	MaxVelocity     float64     `yaml:"max_velocity" env:"MAX_VELOCITY"`
	MaxAcceleration float64     `yaml:"max_acceleration" env:"MAX_ACCELERATION"`
}

func (t JointTuning) validate(subject string) error {
	var err error
	finite := func(name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			err = multierr.Append(err, invalid(subject, "%s is not finite", name))
		}
	}
	finite("kS", t.Feedforward.S)
	finite("kV", t.Feedforward.V)
	finite("kA", t.Feedforward.A)

	for name, v := range map[string]float64{"kP": t.PID.P, "kI": t.PID.I, "kD": t.PID.D} {
		if !(v >= 0) || math.IsInf(v, 0) {
			err = multierr.Append(err, invalid(subject, "%s %g must be finite and non-negative", name, v))
		}
	}
	if !(t.MaxVelocity > 0) || math.IsInf(t.MaxVelocity, 0) {
		err = multierr.Append(err, invalid(subject, "max velocity %g must be positive", t.MaxVelocity))
	}
	if !(t.MaxAcceleration > 0) || math.IsInf(t.MaxAcceleration, 0) {
		err = multierr.Append(err, invalid(subject, "max acceleration %g must be positive", t.MaxAcceleration))
	}
	return err
}

// StageTwoThresholdMeters is the carriage height above which the carriage
// itself is extending and the stage 2 gravity gain applies.
const StageTwoThresholdMeters = MinCarriageHeightMeters

// ElevatorTuning is the elevator control law. MaxVelocity is m/s and
// MaxAcceleration m/s².
type ElevatorTuning struct {
	JointTuning   `yaml:",inline"`
	GravityStage1 float64 `yaml:"kg_stage1" env:"KG_STAGE1"`
	GravityStage2 float64 `yaml:"kg_stage2" env:"KG_STAGE2"`
	// StageThreshold is the carriage height, in meters, where gravity
	// compensation switches from stage 1 to stage 2.
	StageThreshold float64 `yaml:"stage_threshold" env:"STAGE_THRESHOLD"`
}

// SelectGravityFF returns the gravity gain for the current carriage height.
func (t ElevatorTuning) SelectGravityFF(carriageHeight float64) float64 {
	if carriageHeight > t.StageThreshold {
		return t.GravityStage2
	}
	return t.GravityStage1
}

// ProfileLimits returns max velocity (m/s) and acceleration (m/s²).
func (t ElevatorTuning) ProfileLimits() (maxVelocity, maxAcceleration float64) {
	return t.MaxVelocity, t.MaxAcceleration
}

// Validate checks gains, limits and the stage threshold.
func (t ElevatorTuning) Validate() error {
	const subject = "elevator tuning"
	err := t.validate(subject)
	if math.IsNaN(t.GravityStage1) || math.IsNaN(t.GravityStage2) {
		err = multierr.Append(err, invalid(subject, "gravity gains must be numbers"))
	}
	if !(t.StageThreshold >= 0) {
		err = multierr.Append(err, invalid(subject, "stage threshold %g must be non-negative", t.StageThreshold))
	}
	return err
}

// WristTuning is the wrist control law. MaxVelocity is output shaft RPM and
// MaxAcceleration RPM per second. The angle bounds are the operational
// envelope in degrees.
type WristTuning struct {
	JointTuning `yaml:",inline"`
	Gravity     float64 `yaml:"kg" env:"KG"`
	MinAngleDeg float64 `yaml:"min_angle_deg" env:"MIN_ANGLE_DEG"`
	MaxAngleDeg float64 `yaml:"max_angle_deg" env:"MAX_ANGLE_DEG"`
}

// OperationalBounds returns the operational envelope in radians.
func (t WristTuning) OperationalBounds() Bounds {
	return Bounds{Min: mgl64.DegToRad(t.MinAngleDeg), Max: mgl64.DegToRad(t.MaxAngleDeg)}
}

// ProfileLimits returns max velocity (rad/s) and acceleration (rad/s²).
func (t WristTuning) ProfileLimits() (maxVelocity, maxAcceleration float64) {
	return RPMToRadiansPerSecond(t.MaxVelocity), RPMToRadiansPerSecond(t.MaxAcceleration)
}

// Validate checks gains, limits and the operational envelope.
func (t WristTuning) Validate() error {
	const subject = "wrist tuning"
	err := t.validate(subject)
	if math.IsNaN(t.Gravity) || math.IsInf(t.Gravity, 0) {
		err = multierr.Append(err, invalid(subject, "kG is not finite"))
	}
	if !(t.MinAngleDeg < t.MaxAngleDeg) {
		err = multierr.Append(err, invalid(subject, "min angle %g° must be below max angle %g°", t.MinAngleDeg, t.MaxAngleDeg))
	}
	return err
}

// Tuning groups the joint control laws.
type Tuning struct {
	Elevator ElevatorTuning `yaml:"elevator" envPrefix:"SUPERSTRUCTURE_ELEVATOR_"`
	Wrist    WristTuning    `yaml:"wrist" envPrefix:"SUPERSTRUCTURE_WRIST_"`
}

// DefaultTuning returns the characterized gains.
func DefaultTuning() Tuning {
	return Tuning{
		Elevator: ElevatorTuning{
			JointTuning: JointTuning{
				Feedforward:     Feedforward{S: 0.8672, V: 1.5766, A: 0.42745},
				PID:             PID{P: 33.899, I: 0, D: 3.9366},
				MaxVelocity:     4,
				MaxAcceleration: 3,
			},
			GravityStage1:  0.78141,
			GravityStage2:  0.9465,
			StageThreshold: StageTwoThresholdMeters,
		},
		Wrist: WristTuning{
			JointTuning: JointTuning{
				Feedforward:     Feedforward{S: 0.45126, V: 1.0745, A: 0.61657},
				PID:             PID{P: 19.6, I: 0, D: 0.4},
				MaxVelocity:     15,
				MaxAcceleration: 10,
			},
			Gravity:     0.39721,
			MinAngleDeg: 0,
			MaxAngleDeg: 110,
		},
	}
}

// Validate checks both joints.
func (t Tuning) Validate() error {
	return multierr.Combine(t.Elevator.Validate(), t.Wrist.Validate())
}

// ForRole returns the shared joint tuning of the joint driven by role.
func (t Tuning) ForRole(role Role) (JointTuning, error) {
	switch role {
	case ElevatorPrimary, ElevatorFollower:
		return t.Elevator.JointTuning, nil
	case Wrist:
		return t.Wrist.JointTuning, nil
	default:
		return JointTuning{}, errors.Wrapf(ErrUnknownRole, "tuning %q", role)
	}
}
