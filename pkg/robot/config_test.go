package robot

import (
	"os"
	"path/filepath"
	"testing"
)

const testYAML = `
can_ids:
  wrist: 21
tuning:
  elevator:
    pid:
      kp: 40
    max_velocity: 2.5
  wrist:
    max_angle_deg: 95
physical:
  wrist_reduction: 48
`

func TestParseConfig_Overlay(t *testing.T) {
	cfg, err := ParseConfig([]byte(testYAML))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	if cfg.CANIDs[Wrist] != 21 {
		t.Errorf("wrist id = %d, want 21", cfg.CANIDs[Wrist])
	}
	if cfg.CANIDs[ElevatorPrimary] != 9 {
		t.Errorf("elevator id = %d, want default 9", cfg.CANIDs[ElevatorPrimary])
	}
	if cfg.Tuning.Elevator.PID.P != 40 {
		t.Errorf("elevator kP = %f, want 40", cfg.Tuning.Elevator.PID.P)
	}
	if cfg.Tuning.Elevator.PID.D != 3.9366 {
		t.Errorf("elevator kD = %f, want default 3.9366", cfg.Tuning.Elevator.PID.D)
	}
	if cfg.Tuning.Elevator.MaxVelocity != 2.5 {
		t.Errorf("elevator max velocity = %f, want 2.5", cfg.Tuning.Elevator.MaxVelocity)
	}
	if cfg.Tuning.Elevator.GravityStage2 != 0.9465 {
		t.Errorf("elevator kG stage 2 = %f, want default", cfg.Tuning.Elevator.GravityStage2)
	}
	if cfg.Tuning.Wrist.MaxAngleDeg != 95 || cfg.Tuning.Wrist.MinAngleDeg != 0 {
		t.Errorf("wrist envelope = [%f, %f]", cfg.Tuning.Wrist.MinAngleDeg, cfg.Tuning.Wrist.MaxAngleDeg)
	}
	if cfg.Physical.WristReduction != 48 || cfg.Physical.DrumRadius != ElevatorDrumRadiusMeters {
		t.Errorf("physical = %+v", cfg.Physical)
	}
}

func TestParseConfig_JSON(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"tuning": {"wrist": {"kg": 0.5}}}`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Tuning.Wrist.Gravity != 0.5 {
		t.Errorf("wrist kG = %f, want 0.5", cfg.Tuning.Wrist.Gravity)
	}
}

func TestParseConfig_Malformed(t *testing.T) {
	if _, err := ParseConfig([]byte("tuning: [")); err == nil {
		t.Error("ParseConfig accepted malformed YAML")
	}
}

func TestLoadConfigFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "superstructure.yaml")
	if err := os.WriteFile(path, []byte(testYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.CANIDs[Wrist] != 21 {
		t.Errorf("wrist id = %d, want 21", cfg.CANIDs[Wrist])
	}

	if _, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfigFrom(missing) returned nil error")
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("SUPERSTRUCTURE_ELEVATOR_PID_KP", "12.5")
	t.Setenv("SUPERSTRUCTURE_ELEVATOR_KG_STAGE2", "1.1")
	t.Setenv("SUPERSTRUCTURE_WRIST_FF_KS", "0.3")
	t.Setenv("SUPERSTRUCTURE_WRIST_MAX_ANGLE_DEG", "90")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.Tuning.Elevator.PID.P != 12.5 {
		t.Errorf("elevator kP = %f, want 12.5", cfg.Tuning.Elevator.PID.P)
	}
	if cfg.Tuning.Elevator.GravityStage2 != 1.1 {
		t.Errorf("elevator kG stage 2 = %f, want 1.1", cfg.Tuning.Elevator.GravityStage2)
	}
	if cfg.Tuning.Wrist.Feedforward.S != 0.3 {
		t.Errorf("wrist kS = %f, want 0.3", cfg.Tuning.Wrist.Feedforward.S)
	}
	if cfg.Tuning.Wrist.MaxAngleDeg != 90 {
		t.Errorf("wrist max angle = %f, want 90", cfg.Tuning.Wrist.MaxAngleDeg)
	}
	if cfg.Tuning.Wrist.PID.P != 19.6 {
		t.Errorf("wrist kP = %f, want untouched 19.6", cfg.Tuning.Wrist.PID.P)
	}
}

func TestConfig_ApplyEnvMalformed(t *testing.T) {
	t.Setenv("SUPERSTRUCTURE_WRIST_PID_KD", "fast")

	if err := DefaultConfig().ApplyEnv(); err == nil {
		t.Error("ApplyEnv accepted a non-numeric gain")
	}
}
