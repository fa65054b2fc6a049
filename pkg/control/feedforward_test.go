package control

import (
	"math"
	"testing"
)

func TestElevatorFeedforward(t *testing.T) {
	ff := ElevatorFeedforward{S: 0.8672, G: 0.78141, V: 1.5766, A: 0.42745}

	tests := []struct {
		velocity, accel float64
		expected        float64
	}{
		{0, 0, 0.78141},
		{1, 0, 0.8672 + 0.78141 + 1.5766},
		{-1, 0, -0.8672 + 0.78141 - 1.5766},
		{0.5, 2, 0.8672 + 0.78141 + 0.5*1.5766 + 2*0.42745},
	}

	for _, tt := range tests {
		got := ff.Calculate(tt.velocity, tt.accel)
		if math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Calculate(%f, %f) = %f, want %f", tt.velocity, tt.accel, got, tt.expected)
		}
		if back := ff.Acceleration(got, tt.velocity); math.Abs(back-tt.accel) > 1e-9 {
			t.Errorf("Acceleration(%f, %f) = %f, want %f", got, tt.velocity, back, tt.accel)
		}
	}
}

func TestArmFeedforward(t *testing.T) {
	ff := ArmFeedforward{S: 0.45126, G: 0.39721, V: 1.0745, A: 0.61657}

	if got := ff.Calculate(0, 0, 0); math.Abs(got-0.39721) > 1e-12 {
		t.Errorf("horizontal hold = %f, want kG", got)
	}
	if got := ff.Calculate(math.Pi/2, 0, 0); math.Abs(got) > 1e-12 {
		t.Errorf("vertical hold = %f, want 0", got)
	}

	v := ff.Calculate(math.Pi/4, 0.3, 1.2)
	if back := ff.Acceleration(v, math.Pi/4, 0.3); math.Abs(back-1.2) > 1e-9 {
		t.Errorf("Acceleration = %f, want 1.2", back)
	}
	if got := (ArmFeedforward{}).Acceleration(5, 0, 0); got != 0 {
		t.Errorf("zero kA Acceleration = %f, want 0", got)
	}
}
