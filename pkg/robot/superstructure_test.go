package robot

import (
	"math"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

func TestDefault(t *testing.T) {
	s, err := Default(golog.NewTestLogger(t))
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	for _, role := range AllRoles() {
		if _, err := s.Resolve(role); err != nil {
			t.Errorf("Resolve(%s): %v", role, err)
		}
		if _, err := s.Preset(role); err != nil {
			t.Errorf("Preset(%s): %v", role, err)
		}
	}

	jt, err := s.JointTuning(ElevatorPrimary)
	if err != nil || jt.MaxVelocity != 4 {
		t.Errorf("JointTuning(elevator) = %+v, %v", jt, err)
	}
	if _, err := s.JointTuning("climber"); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("JointTuning(climber) error = %v, want ErrUnknownRole", err)
	}
}

func TestNew_ReportsAllDefects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CANIDs[Take] = 9
	cfg.Tuning.Elevator.MaxAcceleration = 0
	cfg.Physical.DrumRadius = -1

	s, err := New(cfg, nil)
	if s != nil {
		t.Fatal("New returned a superstructure alongside an error")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("New error = %v, want ErrInvalidConfig", err)
	}
	for _, want := range []string{"registry", "elevator tuning", "physical model"} {
		if !containsSubject(err, want) {
			t.Errorf("error does not mention %q: %v", want, err)
		}
	}
}

func TestNew_EnvelopeOutsideMechanicalLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Physical.WristLimits = Bounds{Min: 0, Max: math.Pi / 2}

	if _, err := New(cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New error = %v, want ErrInvalidConfig", err)
	}

	cfg = DefaultConfig()
	cfg.Tuning.Elevator.StageThreshold = 2
	if _, err := New(cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New error = %v, want ErrInvalidConfig", err)
	}

	if _, err := New(nil, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New(nil) error = %v, want ErrInvalidConfig", err)
	}
}

func TestSuperstructure_WristAngle(t *testing.T) {
	s, err := Default(nil)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	// 8 motor rotations is a quarter turn of the wrist.
	angle, err := s.WristAngle(8)
	if err != nil {
		t.Errorf("WristAngle(8) error = %v", err)
	}
	if math.Abs(angle-math.Pi/2) > 1e-12 {
		t.Errorf("WristAngle(8) = %f, want π/2", angle)
	}

	// Beyond 110° the value is reported unclamped with a range error.
	angle, err = s.WristAngle(16)
	if math.Abs(angle-math.Pi) > 1e-12 {
		t.Errorf("WristAngle(16) = %f, want π", angle)
	}
	var rerr *RangeError
	if !errors.As(err, &rerr) || rerr.Envelope != Operational {
		t.Fatalf("WristAngle(16) error = %v, want operational RangeError", err)
	}
	if !errors.Is(err, ErrOutOfRange) {
		t.Error("RangeError does not match ErrOutOfRange")
	}

	if err := s.CheckWristAngle(math.Pi, Mechanical); err != nil {
		t.Errorf("π inside mechanical envelope, got %v", err)
	}
	if err := s.CheckWristAngle(9*math.Pi, Mechanical); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("9π error = %v, want ErrOutOfRange", err)
	}
	if err := s.CheckWristAngle(0, "loose"); err == nil {
		t.Error("unknown envelope accepted")
	}
}

func TestSuperstructure_ElevatorExtension(t *testing.T) {
	s, err := Default(nil)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	m := s.Physical()
	ext, err := s.ElevatorExtension(m.ToRotations(0.5))
	if err != nil || math.Abs(ext-0.5) > 1e-12 {
		t.Errorf("ElevatorExtension = %f, %v", ext, err)
	}
	if _, err := s.ElevatorExtension(m.ToRotations(-0.1)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("negative extension error = %v, want ErrOutOfRange", err)
	}
}

func containsSubject(err error, subject string) bool {
	var found bool
	for _, e := range multierr.Errors(errors.Cause(err)) {
		var cerr *ConfigError
		if errors.As(e, &cerr) && cerr.Subject == subject {
			found = true
		}
	}
	return found
}
