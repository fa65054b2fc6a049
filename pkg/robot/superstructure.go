package robot

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Superstructure is the validated, read-only description of the elevator
// and wrist. It is safe for concurrent use.
type Superstructure struct {
	registry *Registry
	presets  *Presets
	tuning   Tuning
	physical PhysicalModel
}

// New validates cfg and builds the superstructure. All defects are reported
// together; nothing is returned on error.
func New(cfg *Config, logger golog.Logger) (*Superstructure, error) {
	if cfg == nil {
		return nil, invalid("superstructure", "nil config")
	}

	reg, err := NewRegistry(cfg.CANIDs)
	err = multierr.Append(err, cfg.Physical.Validate())
	err = multierr.Append(err, cfg.Tuning.Validate())
	err = multierr.Append(err, checkEnvelopes(cfg.Tuning, cfg.Physical))

	var presets *Presets
	if reg != nil {
		var perr error
		presets, perr = DefaultPresets(reg)
		err = multierr.Append(err, perr)
	}
	if err != nil {
		return nil, errors.Wrap(err, "build superstructure")
	}

	s := &Superstructure{
		registry: reg,
		presets:  presets,
		tuning:   cfg.Tuning,
		physical: cfg.Physical,
	}
	if logger != nil {
		logger.Infow("superstructure configured",
			"actuators", len(reg.Roles()),
			"elevator_travel_m", cfg.Physical.ElevatorTravel().Max,
			"wrist_envelope_deg", []float64{cfg.Tuning.Wrist.MinAngleDeg, cfg.Tuning.Wrist.MaxAngleDeg},
		)
	}
	return s, nil
}

// Default builds the superstructure from DefaultConfig.
func Default(logger golog.Logger) (*Superstructure, error) {
	return New(DefaultConfig(), logger)
}

func checkEnvelopes(t Tuning, m PhysicalModel) error {
	var err error
	op := t.Wrist.OperationalBounds()
	if !m.WristLimits.Contains(op.Min) || !m.WristLimits.Contains(op.Max) {
		err = multierr.Append(err, invalid("wrist tuning", "operational envelope exceeds mechanical limits"))
	}
	th := t.Elevator.StageThreshold
	if th < m.Carriage.MinHeight || th > m.Carriage.MaxHeight {
		err = multierr.Append(err, invalid("elevator tuning",
			"stage threshold %g outside carriage range [%g, %g]", th, m.Carriage.MinHeight, m.Carriage.MaxHeight))
	}
	return err
}

func (s *Superstructure) Registry() *Registry { return s.registry }
func (s *Superstructure) Presets() *Presets { return s.presets }
func (s *Superstructure) Tuning() Tuning { return s.tuning }
func (s *Superstructure) Physical() PhysicalModel { return s.physical }

// Resolve returns the actuator id for role.
func (s *Superstructure) Resolve(role Role) (ActuatorID, error) {
	return s.registry.Resolve(role)
}

// Preset returns the controller preset for role.
func (s *Superstructure) Preset(role Role) (ControllerConfig, error) {
	return s.presets.Get(role)
}

// JointTuning returns the joint tuning for role.
func (s *Superstructure) JointTuning(role Role) (JointTuning, error) {
	if _, err := s.registry.Resolve(role); err != nil {
		return JointTuning{}, err
	}
	return s.tuning.ForRole(role)
}

// WristAngle converts wrist motor rotations to radians. An angle outside the
// operational envelope is still returned, together with a RangeError.
func (s *Superstructure) WristAngle(rotations float64) (float64, error) {
	angle := s.physical.ToAngularPosition(rotations)
	return angle, s.CheckWristAngle(angle, Operational)
}

// CheckWristAngle checks radians against the requested envelope.
func (s *Superstructure) CheckWristAngle(radians float64, env Envelope) error {
	switch env {
	case Operational:
		return s.tuning.Wrist.OperationalBounds().Check("wrist angle", env, radians)
	case Mechanical:
		return s.physical.WristLimits.Check("wrist angle", env, radians)
	default:
		return errors.Errorf("unknown envelope %q", env)
	}
}

// ElevatorExtension converts elevator motor rotations to meters of travel.
// An extension outside the travel range is returned with a RangeError.
func (s *Superstructure) ElevatorExtension(rotations float64) (float64, error) {
	ext := s.physical.ToLinearPosition(rotations)
	return ext, s.physical.ElevatorTravel().Check("elevator extension", Mechanical, ext)
}
