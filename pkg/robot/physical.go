package robot

import (
	"math"

	"go.uber.org/multierr"
)

// Unit factors.
const (
	MetersPerInch  = 0.0254
	KilogramsPerLb = 0.45359237
)

// Elevator and wrist dimensions.
const (
	ElevatorGearing = 5.0
	CarriageMassKg  = 6.80388555

	// Drum pitch diameter plus rope thickness on both sides, halved.
	ElevatorDrumRadiusMeters = (2.808*MetersPerInch + 0.125*MetersPerInch*2) / 2.0

	MinCarriageHeightMeters = 0.2286
	MaxCarriageHeightMeters = 0.9144
	MinStage1HeightMeters   = 0.9652
	MaxStage1HeightMeters   = 1.72794689

	CarriageTravelHeightMeters = MaxCarriageHeightMeters - MinCarriageHeightMeters
	Stage1TravelHeightMeters   = MaxStage1HeightMeters - MinStage1HeightMeters

	WristLengthMeters = 0.45076397
	WristMassLbs      = 7.5258052
	WristMassKg       = WristMassLbs * KilogramsPerLb
	// TODO: confirm 32:1 against the gearbox build sheet.
	WristReduction = 32.0

	MinWristAngleRads = -8 * math.Pi
	MaxWristAngleRads = 8 * math.Pi
)

// Bounds is a closed interval.
type Bounds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Clamp limits v to [Min, Max].
func (b Bounds) Clamp(v float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, v))
}

// Span returns Max - Min.
func (b Bounds) Span() float64 {
	return b.Max - b.Min
}

// Check returns a RangeError if v is outside the bounds.
func (b Bounds) Check(subject string, env Envelope, v float64) error {
	if b.Contains(v) {
		return nil
	}
	return &RangeError{Subject: subject, Value: v, Bounds: b, Envelope: env}
}

// Stage is the height range of one elevator stage, in meters.
type Stage struct {
	MinHeight float64 `yaml:"min_height"`
	MaxHeight float64 `yaml:"max_height"`
}

// Travel returns the usable extension of the stage.
func (s Stage) Travel() float64 {
	return s.MaxHeight - s.MinHeight
}

// PhysicalModel holds the mechanism dimensions used for unit conversion and
// pose derivation. Lengths are meters, masses kilograms, angles radians.
type PhysicalModel struct {
	ElevatorGearing float64 `yaml:"elevator_gearing"`
	CarriageMass    float64 `yaml:"carriage_mass"`
	DrumRadius      float64 `yaml:"drum_radius"`
	Stage1          Stage   `yaml:"stage1"`
	Carriage        Stage   `yaml:"carriage"`

	WristLength    float64 `yaml:"wrist_length"`
	WristMass      float64 `yaml:"wrist_mass"`
	WristReduction float64 `yaml:"wrist_reduction"`
	// WristLimits is the mechanical safety envelope of the wrist.
	WristLimits Bounds `yaml:"wrist_limits"`
}

// DefaultPhysicalModel returns the measured robot dimensions.
func DefaultPhysicalModel() PhysicalModel {
	return PhysicalModel{
		ElevatorGearing: ElevatorGearing,
		CarriageMass:    CarriageMassKg,
		DrumRadius:      ElevatorDrumRadiusMeters,
		Stage1:          Stage{MinHeight: MinStage1HeightMeters, MaxHeight: MaxStage1HeightMeters},
		Carriage:        Stage{MinHeight: MinCarriageHeightMeters, MaxHeight: MaxCarriageHeightMeters},
		WristLength:     WristLengthMeters,
		WristMass:       WristMassKg,
		WristReduction:  WristReduction,
		WristLimits:     Bounds{Min: MinWristAngleRads, Max: MaxWristAngleRads},
	}
}

// Validate checks the model's derived invariants.
func (m PhysicalModel) Validate() error {
	const subject = "physical model"
	var err error
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			err = multierr.Append(err, invalid(subject, "%s %g must be positive", name, v))
		}
	}
	positive("elevator gearing", m.ElevatorGearing)
	positive("carriage mass", m.CarriageMass)
	positive("drum radius", m.DrumRadius)
	positive("wrist length", m.WristLength)
	positive("wrist mass", m.WristMass)
	positive("wrist reduction", m.WristReduction)

	if m.Stage1.Travel() < 0 {
		err = multierr.Append(err, invalid(subject, "stage 1 max height below min height"))
	}
	if m.Carriage.Travel() < 0 {
		err = multierr.Append(err, invalid(subject, "carriage max height below min height"))
	}
	if !(m.WristLimits.Min < m.WristLimits.Max) {
		err = multierr.Append(err, invalid(subject, "wrist limits [%g, %g] are empty", m.WristLimits.Min, m.WristLimits.Max))
	}
	return err
}

// ElevatorTravel returns the range of total elevator extension in meters,
// measured from the fully retracted position.
func (m PhysicalModel) ElevatorTravel() Bounds {
	return Bounds{Min: 0, Max: m.Stage1.Travel() + m.Carriage.Travel()}
}

// SplitHeight maps a total elevator extension to per-stage heights. Stage 1
// extends first; the carriage only leaves its minimum once stage 1 is at
// full travel. Extension is not clamped to the travel range.
func (m PhysicalModel) SplitHeight(extension float64) (stage1, carriage float64) {
	s1 := m.Stage1.Travel()
	if extension <= s1 {
		return m.Stage1.MinHeight + extension, m.Carriage.MinHeight
	}
	return m.Stage1.MaxHeight, m.Carriage.MinHeight + (extension - s1)
}
