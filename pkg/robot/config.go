package robot

import (
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "superstructure.yaml"

// Config holds everything the superstructure is built from. Values loaded
// from a file or the environment overlay the defaults.
type Config struct {
	CANIDs   map[Role]ActuatorID `yaml:"can_ids,omitempty"`
	Tuning   Tuning              `yaml:"tuning"`
	Physical PhysicalModel       `yaml:"physical"`
}

// DefaultConfig returns the production configuration.
func DefaultConfig() *Config {
	return &Config{
		CANIDs:   DefaultActuatorIDs(),
		Tuning:   DefaultTuning(),
		Physical: DefaultPhysicalModel(),
	}
}

// LoadConfig loads the default config file, falling back to defaults when
// it does not exist.
func LoadConfig() (*Config, error) {
	if !ConfigExists() {
		return DefaultConfig(), nil
	}
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom overlays a YAML or JSON file onto the defaults.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	return ParseConfig(data)
}

// ParseConfig overlays YAML (or JSON) data onto the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}

// ApplyEnv overlays tuning values set in the environment, for example
// SUPERSTRUCTURE_ELEVATOR_PID_KP or SUPERSTRUCTURE_WRIST_MAX_ANGLE_DEG.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return errors.Wrap(err, "parse environment")
	}
	return nil
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}
