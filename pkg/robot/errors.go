package robot

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidConfig is matched by every construction-time validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrUnknownRole is returned when a role has no registered actuator.
	ErrUnknownRole = errors.New("unknown role")
	// ErrOutOfRange is matched by RangeError.
	ErrOutOfRange = errors.New("out of range")
)

// ConfigError describes why a preset, tuning or model was rejected.
type ConfigError struct {
	Subject string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Subject, e.Reason)
}

// Is reports whether target is ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func invalid(subject, format string, args ...any) error {
	return &ConfigError{Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

// Envelope names the bound set a range check was made against.
type Envelope string

const (
	// Operational is the envelope commanded motion is clamped to.
	Operational Envelope = "operational"
	// Mechanical is the safety envelope; leaving it is a fault.
	Mechanical Envelope = "mechanical"
)

// RangeError reports a value outside an envelope. The value is never clamped.
type RangeError struct {
	Subject  string
	Value    float64
	Bounds   Bounds
	Envelope Envelope
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %.4f outside %s envelope [%.4f, %.4f]",
		e.Subject, e.Value, e.Envelope, e.Bounds.Min, e.Bounds.Max)
}

// Is reports whether target is ErrOutOfRange.
func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
