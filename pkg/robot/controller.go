package robot

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// IdleMode is the motor behavior when no output is commanded.
type IdleMode int

const (
	IdleCoast IdleMode = iota
	IdleBrake
)

func (m IdleMode) String() string {
	switch m {
	case IdleCoast:
		return "coast"
	case IdleBrake:
		return "brake"
	default:
		return "unknown"
	}
}

// LimitSwitchType is the electrical polarity of a limit switch.
type LimitSwitchType string

const (
	NormallyOpen   LimitSwitchType = "normally_open"
	NormallyClosed LimitSwitchType = "normally_closed"
)

// Controller defaults applied when a builder leaves a setting untouched.
const (
	DefaultCurrentLimit        = 80.0 // A
	DefaultVoltageCompensation = 12.0 // V
)

// PIDF holds on-controller closed loop gains.
type PIDF struct {
	P  float64 `yaml:"p"`
	I  float64 `yaml:"i"`
	D  float64 `yaml:"d"`
	FF float64 `yaml:"ff"`
}

// LimitSwitch is the forward limit switch policy.
type LimitSwitch struct {
	Type    LimitSwitchType
	Enabled bool
}

// Follow makes a controller mirror the output of Leader.
type Follow struct {
	Leader   ActuatorID
	Inverted bool
}

// AbsoluteEncoder is the attached absolute encoder policy.
type AbsoluteEncoder struct {
	Inverted     bool
	ZeroCentered bool
}

// Signals selects telemetry frames that are always published.
type Signals struct {
	PositionAlwaysOn bool
	VelocityAlwaysOn bool
}

// ControllerConfig is an immutable motor controller preset. Build one with
// NewControllerBuilder.
type ControllerConfig struct {
	name                string
	idleMode            IdleMode
	inverted            bool
	currentLimit        float64
	voltageCompensation float64

	closedLoop    PIDF
	hasClosedLoop bool

	limitSwitch    LimitSwitch
	hasLimitSwitch bool

	follow    Follow
	hasFollow bool

	absEncoder    AbsoluteEncoder
	hasAbsEncoder bool

	signals Signals
}

func (c ControllerConfig) Name() string { return c.name }
func (c ControllerConfig) IdleMode() IdleMode { return c.idleMode }
func (c ControllerConfig) Inverted() bool { return c.inverted }
func (c ControllerConfig) CurrentLimit() float64 { return c.currentLimit }
func (c ControllerConfig) VoltageCompensation() float64 { return c.voltageCompensation }
func (c ControllerConfig) Signals() Signals { return c.signals }

// ClosedLoop returns the on-controller gains, if any.
func (c ControllerConfig) ClosedLoop() (PIDF, bool) { return c.closedLoop, c.hasClosedLoop }

// LimitSwitch returns the forward limit switch policy, if any.
func (c ControllerConfig) LimitSwitch() (LimitSwitch, bool) { return c.limitSwitch, c.hasLimitSwitch }

// Follow returns the follower relationship, if any.
func (c ControllerConfig) Follow() (Follow, bool) { return c.follow, c.hasFollow }

// AbsoluteEncoder returns the absolute encoder policy, if any.
func (c ControllerConfig) AbsoluteEncoder() (AbsoluteEncoder, bool) {
	return c.absEncoder, c.hasAbsEncoder
}

// ControllerBuilder assembles a ControllerConfig. Every method returns a new
// builder, so a base builder can be reused without aliasing.
type ControllerBuilder struct {
	cfg ControllerConfig
}

// NewControllerBuilder starts a preset with controller defaults.
func NewControllerBuilder(name string) ControllerBuilder {
	return ControllerBuilder{cfg: ControllerConfig{
		name:                name,
		idleMode:            IdleCoast,
		currentLimit:        DefaultCurrentLimit,
		voltageCompensation: DefaultVoltageCompensation,
	}}
}

func (b ControllerBuilder) IdleMode(m IdleMode) ControllerBuilder {
	b.cfg.idleMode = m
	return b
}

func (b ControllerBuilder) Inverted(inverted bool) ControllerBuilder {
	b.cfg.inverted = inverted
	return b
}

// SmartCurrentLimit sets the current limit in amps.
func (b ControllerBuilder) SmartCurrentLimit(amps float64) ControllerBuilder {
	b.cfg.currentLimit = amps
	return b
}

// VoltageCompensation sets the nominal voltage outputs are scaled against.
func (b ControllerBuilder) VoltageCompensation(volts float64) ControllerBuilder {
	b.cfg.voltageCompensation = volts
	return b
}

func (b ControllerBuilder) ClosedLoop(gains PIDF) ControllerBuilder {
	b.cfg.closedLoop = gains
	b.cfg.hasClosedLoop = true
	return b
}

func (b ControllerBuilder) ForwardLimitSwitch(t LimitSwitchType, enabled bool) ControllerBuilder {
	b.cfg.limitSwitch = LimitSwitch{Type: t, Enabled: enabled}
	b.cfg.hasLimitSwitch = true
	return b
}

func (b ControllerBuilder) Follow(leader ActuatorID, inverted bool) ControllerBuilder {
	b.cfg.follow = Follow{Leader: leader, Inverted: inverted}
	b.cfg.hasFollow = true
	return b
}

func (b ControllerBuilder) AbsoluteEncoder(inverted, zeroCentered bool) ControllerBuilder {
	b.cfg.absEncoder = AbsoluteEncoder{Inverted: inverted, ZeroCentered: zeroCentered}
	b.cfg.hasAbsEncoder = true
	return b
}

func (b ControllerBuilder) Signals(position, velocity bool) ControllerBuilder {
	b.cfg.signals = Signals{PositionAlwaysOn: position, VelocityAlwaysOn: velocity}
	return b
}

// Build validates the preset. No config is returned on error.
func (b ControllerBuilder) Build() (ControllerConfig, error) {
	c := b.cfg
	subject := "controller " + c.name
	if c.name == "" {
		subject = "controller"
	}

	var err error
	if c.idleMode != IdleCoast && c.idleMode != IdleBrake {
		err = multierr.Append(err, invalid(subject, "unknown idle mode %d", int(c.idleMode)))
	}
	if !(c.currentLimit > 0) || math.IsInf(c.currentLimit, 0) {
		err = multierr.Append(err, invalid(subject, "current limit %.1f A must be positive", c.currentLimit))
	}
	if !(c.voltageCompensation > 0) || math.IsInf(c.voltageCompensation, 0) {
		err = multierr.Append(err, invalid(subject, "voltage compensation %.1f V must be positive", c.voltageCompensation))
	}
	if c.hasLimitSwitch && c.limitSwitch.Type != NormallyOpen && c.limitSwitch.Type != NormallyClosed {
		err = multierr.Append(err, invalid(subject, "unknown limit switch type %q", c.limitSwitch.Type))
	}
	if c.hasFollow && c.hasClosedLoop {
		err = multierr.Append(err, invalid(subject, "follower cannot define closed loop gains"))
	}
	if err != nil {
		return ControllerConfig{}, err
	}
	return c, nil
}

// Presets holds one validated ControllerConfig per role.
type Presets struct {
	byRole map[Role]ControllerConfig
}

// NewPresets checks every preset against the registry: each role must be
// registered, and a follower must follow another registered actuator.
func NewPresets(reg *Registry, configs map[Role]ControllerConfig) (*Presets, error) {
	var err error
	byRole := make(map[Role]ControllerConfig, len(configs))
	for role, cfg := range configs {
		own, rerr := reg.Resolve(role)
		if rerr != nil {
			err = multierr.Append(err, errors.Wrap(rerr, "preset"))
			continue
		}
		if f, ok := cfg.Follow(); ok {
			if _, known := reg.ByID(f.Leader); !known {
				err = multierr.Append(err, invalid("controller "+cfg.Name(), "leader id %d is not registered", f.Leader))
			}
			if f.Leader == own {
				err = multierr.Append(err, invalid("controller "+cfg.Name(), "cannot follow itself"))
			}
		}
		byRole[role] = cfg
	}
	if err != nil {
		return nil, err
	}
	return &Presets{byRole: byRole}, nil
}

// DefaultPresets builds the production presets.
func DefaultPresets(reg *Registry) (*Presets, error) {
	leader, err := reg.Resolve(ElevatorPrimary)
	if err != nil {
		return nil, errors.Wrap(err, "elevator follower leader")
	}

	builders := map[Role]ControllerBuilder{
		Wrist: NewControllerBuilder("wrist").
			IdleMode(IdleBrake).
			SmartCurrentLimit(40).
			VoltageCompensation(12).
			AbsoluteEncoder(true, false),
		ElevatorPrimary: NewControllerBuilder("elevator").
			IdleMode(IdleBrake).
			Inverted(true).
			SmartCurrentLimit(60).
			VoltageCompensation(12),
		ElevatorFollower: NewControllerBuilder("elevator_follower").
			SmartCurrentLimit(60).
			Follow(leader, true),
		Take: NewControllerBuilder("take").
			IdleMode(IdleBrake).
			ForwardLimitSwitch(NormallyOpen, false).
			ClosedLoop(PIDF{P: 5, I: 0, D: 0, FF: 1.1}).
			Signals(true, true),
	}

	configs := make(map[Role]ControllerConfig, len(builders))
	for role, b := range builders {
		cfg, berr := b.Build()
		if berr != nil {
			err = multierr.Append(err, berr)
			continue
		}
		configs[role] = cfg
	}
	if err != nil {
		return nil, err
	}
	return NewPresets(reg, configs)
}

// Get returns the preset for role.
func (p *Presets) Get(role Role) (ControllerConfig, error) {
	cfg, ok := p.byRole[role]
	if !ok {
		return ControllerConfig{}, errors.Wrapf(ErrUnknownRole, "preset %q", role)
	}
	return cfg, nil
}

// Roles returns the roles that have a preset, in bus order.
func (p *Presets) Roles() []Role {
	ids := make(map[Role]ActuatorID, len(p.byRole))
	for role := range p.byRole {
		ids[role] = 0
	}
	return sortedRoles(ids)
}
