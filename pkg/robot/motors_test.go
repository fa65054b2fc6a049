package robot

import (
	"testing"

	"github.com/pkg/errors"
)

func TestRegistry_Resolve(t *testing.T) {
	reg, err := NewRegistry(DefaultActuatorIDs())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tests := []struct {
		role     Role
		expected ActuatorID
	}{
		{ElevatorPrimary, 9},
		{ElevatorFollower, 10},
		{Wrist, 11},
		{Take, 12},
	}

	for _, tt := range tests {
		for i := 0; i < 3; i++ {
			got, err := reg.Resolve(tt.role)
			if err != nil {
				t.Fatalf("Resolve(%s): %v", tt.role, err)
			}
			if got != tt.expected {
				t.Errorf("Resolve(%s) = %d, want %d", tt.role, got, tt.expected)
			}
		}
	}
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	reg, err := NewRegistry(DefaultActuatorIDs())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	for _, role := range []Role{"", "climber", "Wrist"} {
		_, err := reg.Resolve(role)
		if !errors.Is(err, ErrUnknownRole) {
			t.Errorf("Resolve(%q) error = %v, want ErrUnknownRole", role, err)
		}
	}
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		ids  map[Role]ActuatorID
	}{
		{"empty", map[Role]ActuatorID{}},
		{"duplicate", map[Role]ActuatorID{Wrist: 11, Take: 11}},
		{"negative", map[Role]ActuatorID{Wrist: -1}},
		{"too high", map[Role]ActuatorID{Wrist: 63}},
		{"empty role", map[Role]ActuatorID{"": 3}},
	}

	for _, tt := range tests {
		reg, err := NewRegistry(tt.ids)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: error = %v, want ErrInvalidConfig", tt.name, err)
		}
		if reg != nil {
			t.Errorf("%s: registry returned alongside error", tt.name)
		}
	}
}

func TestRegistry_CopiesInput(t *testing.T) {
	ids := DefaultActuatorIDs()
	reg, err := NewRegistry(ids)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	ids[Wrist] = 40

	got, _ := reg.Resolve(Wrist)
	if got != 11 {
		t.Errorf("Resolve(wrist) = %d after caller mutation, want 11", got)
	}
}

func TestRegistry_IDs(t *testing.T) {
	reg, err := NewRegistry(map[Role]ActuatorID{
		Take:             12,
		"climber":        20,
		ElevatorPrimary:  9,
		Wrist:            11,
		ElevatorFollower: 10,
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	ids := reg.IDs()
	expected := []ActuatorID{9, 10, 11, 12, 20}

	if len(ids) != len(expected) {
		t.Fatalf("IDs returned %d IDs, want %d", len(ids), len(expected))
	}
	for i, id := range ids {
		if id != expected[i] {
			t.Errorf("IDs()[%d] = %d, want %d", i, id, expected[i])
		}
	}
}

func TestRegistry_ByID(t *testing.T) {
	reg, err := NewRegistry(DefaultActuatorIDs())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	role, ok := reg.ByID(11)
	if !ok {
		t.Fatal("ByID(11) returned false")
	}
	if role != Wrist {
		t.Errorf("ByID(11) returned %s, want wrist", role)
	}

	if _, ok := reg.ByID(99); ok {
		t.Error("ByID(99) should return false")
	}
}
