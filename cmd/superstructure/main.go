package main

import (
	"fmt"
	"os"

	"github.com/edaniels/golog"
	"github.com/jessevdk/go-flags"

	"github.com/gwillem/superstructure/pkg/robot"
)

type Options struct {
	Config  string `short:"c" long:"config" description:"Configuration file (default: superstructure.yaml if present)"`
	Verbose bool   `short:"v" long:"verbose" description:"Log configuration details"`

	Presets  PresetsCommand  `command:"presets" description:"Show actuator ids and controller presets"`
	Tuning   TuningCommand   `command:"tuning" description:"Show control-law constants and envelopes"`
	Pose     PoseCommand     `command:"pose" description:"Print mechanism segments for a joint state"`
	Render   RenderCommand   `command:"render" description:"Draw the mechanism pose to a PNG file"`
	Simulate SimulateCommand `command:"simulate" alias:"sim" description:"Run the control loops against a simulated plant"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Superstructure - elevator and wrist configuration and control model"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

// loadSuperstructure reads the configuration file and environment overrides
// and validates the result.
func loadSuperstructure(logger golog.Logger) (*robot.Superstructure, error) {
	var (
		cfg *robot.Config
		err error
	)
	if opts.Config == "" {
		cfg, err = robot.LoadConfig()
	} else {
		cfg, err = robot.LoadConfigFrom(opts.Config)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if logger == nil && opts.Verbose {
		logger = golog.NewDevelopmentLogger("superstructure")
	}
	return robot.New(cfg, logger)
}

func mustLoad(logger golog.Logger) *robot.Superstructure {
	s, err := loadSuperstructure(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	return s
}
