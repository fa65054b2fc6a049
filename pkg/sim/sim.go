// Package sim runs the elevator and wrist control loops against a simulated
// plant and publishes the resulting mechanism pose.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/gwillem/superstructure/pkg/control"
	"github.com/gwillem/superstructure/pkg/mechanism"
	"github.com/gwillem/superstructure/pkg/robot"
)

// DefaultHz is the control loop rate used when none is configured.
const DefaultHz = 50

// State is one published loop iteration.
type State struct {
	Elevator    control.State // measured extension, meters
	Wrist       control.State // measured angle, radians
	ElevatorOut control.Output
	WristOut    control.Output
	Pose        mechanism.Pose
	AtGoal      bool
	Elapsed     time.Duration
	Timestamp   time.Time
	Error       error
}

// Config holds configuration for the simulator.
type Config struct {
	Hz     int
	Logger golog.Logger
}

// Simulator closes the loop between the joint controllers and a plant
// modelled by the same feedforward constants.
type Simulator struct {
	s      *robot.Superstructure
	hz     int
	logger golog.Logger

	elevator  *control.Elevator
	wrist     *control.Wrist
	mechanism *mechanism.Mechanism
	travel    robot.Bounds

	mu      sync.RWMutex
	state   State
	running bool
	elapsed time.Duration
	stateCh chan State
	logCh   chan string
	faulted bool
}

// New creates a simulator with both joints at rest: elevator fully retracted
// and wrist horizontal.
func New(s *robot.Superstructure, cfg Config) (*Simulator, error) {
	elevator, err := control.NewElevator(s)
	if err != nil {
		return nil, errors.Wrap(err, "create elevator")
	}
	wrist, err := control.NewWrist(s)
	if err != nil {
		return nil, errors.Wrap(err, "create wrist")
	}

	if cfg.Hz <= 0 {
		cfg.Hz = DefaultHz
	}

	sim := &Simulator{
		s:         s,
		hz:        cfg.Hz,
		logger:    cfg.Logger,
		elevator:  elevator,
		wrist:     wrist,
		mechanism: mechanism.New(s.Physical()),
		travel:    s.Physical().ElevatorTravel(),
		stateCh:   make(chan State, 1),
		logCh:     make(chan string, 10),
	}
	sim.reset(control.State{}, control.State{})
	return sim, nil
}

func (sim *Simulator) reset(elevator, wrist control.State) {
	sim.elevator.Reset(elevator)
	sim.wrist.Reset(wrist)
	sim.elapsed = 0
	sim.faulted = false
	sim.state = State{
		Elevator:  elevator,
		Wrist:     wrist,
		Pose:      sim.mechanism.UpdateExtension(elevator.Position, wrist.Position),
		AtGoal:    true,
		Timestamp: time.Now(),
	}
}

// Reset places both joints at the given measured states and holds there.
func (sim *Simulator) Reset(elevator, wrist control.State) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.reset(elevator, wrist)
}

// Hz returns the control frequency.
func (sim *Simulator) Hz() int {
	return sim.hz
}

// Mechanism returns the pose store updated by the loop.
func (sim *Simulator) Mechanism() *mechanism.Mechanism {
	return sim.mechanism
}

// States returns a channel that receives the latest state. Older states are
// replaced if the reader falls behind.
func (sim *Simulator) States() <-chan State {
	return sim.stateCh
}

// Logs returns a channel that receives log messages.
func (sim *Simulator) Logs() <-chan string {
	return sim.logCh
}

// State returns the most recent state.
func (sim *Simulator) State() State {
	sim.mu.RLock()
	defer sim.mu.RUnlock()
	return sim.state
}

// SetGoal sets the elevator extension (meters) and wrist angle (radians)
// targets. Goals are clamped; the returned values are the ones in effect.
func (sim *Simulator) SetGoal(extension, angle float64) (float64, float64) {
	sim.mu.Lock()
	defer sim.mu.Unlock()

	e := sim.elevator.SetGoal(extension)
	w := sim.wrist.SetGoal(angle)
	sim.state.AtGoal = false
	sim.faulted = false
	sim.log("goal: elevator %.3f m, wrist %.1f°", e, mgl64.RadToDeg(w))
	if e != extension || w != angle {
		sim.log("goal clamped from %.3f m, %.1f°", extension, mgl64.RadToDeg(angle))
	}
	return e, w
}

func (sim *Simulator) log(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if sim.logger != nil {
		sim.logger.Debug(msg)
	}
	msg = fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), msg)
	select {
	case sim.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Start runs the control loop until ctx is cancelled.
func (sim *Simulator) Start(ctx context.Context) error {
	sim.mu.Lock()
	if sim.running {
		sim.mu.Unlock()
		return errors.New("already running")
	}
	sim.running = true
	sim.mu.Unlock()

	sim.log("simulation started at %d Hz", sim.hz)

	period := time.Second / time.Duration(sim.hz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sim.shutdown()
			return ctx.Err()
		case <-ticker.C:
			sim.sendState(sim.Step(period))
		}
	}
}

// Close marks the simulator stopped. Cancel the context passed to Start to
// end the loop itself.
func (sim *Simulator) Close() error {
	sim.mu.Lock()
	sim.running = false
	sim.mu.Unlock()
	return nil
}

// Step advances controllers and plant by dt and returns the new state.
func (sim *Simulator) Step(dt time.Duration) State {
	sim.mu.Lock()
	defer sim.mu.Unlock()

	seconds := dt.Seconds()
	prev := sim.state
	next := State{Elevator: prev.Elevator, Wrist: prev.Wrist}

	eOut, eErr := sim.elevator.Calculate(prev.Elevator, seconds)
	wOut, wErr := sim.wrist.Calculate(prev.Wrist, seconds)
	next.ElevatorOut, next.WristOut = eOut, wOut
	next.Error = multierr.Combine(eErr, wErr)

	if next.Error != nil && !sim.faulted {
		sim.log("fault: %v", next.Error)
		if sim.logger != nil {
			sim.logger.Warnw("control fault", "error", next.Error)
		}
	}
	sim.faulted = next.Error != nil

	if eErr == nil {
		next.Elevator = sim.integrateElevator(prev.Elevator, eOut, seconds)
	}
	if wErr == nil {
		next.Wrist = sim.integrateWrist(prev.Wrist, wOut, seconds)
	}

	sim.elapsed += dt
	next.Elapsed = sim.elapsed
	next.AtGoal = sim.elevator.AtGoal() && sim.wrist.AtGoal()
	if next.AtGoal && !prev.AtGoal {
		sim.log("at goal after %s", sim.elapsed.Round(time.Millisecond))
	}
	next.Pose = sim.mechanism.UpdateExtension(next.Elevator.Position, next.Wrist.Position)
	next.Timestamp = time.Now()

	sim.state = next
	return next
}

// integrateElevator applies voltage to the elevator plant. The ends of travel
// are hard stops.
func (sim *Simulator) integrateElevator(x control.State, out control.Output, dt float64) control.State {
	t := sim.s.Tuning().Elevator
	plant := control.ElevatorFeedforward{S: t.Feedforward.S, G: out.Gravity, V: t.Feedforward.V, A: t.Feedforward.A}
	accel := plant.Acceleration(out.Voltage, x.Velocity)

	x.Velocity += accel * dt
	x.Position += x.Velocity * dt
	if !sim.travel.Contains(x.Position) {
		x.Position = sim.travel.Clamp(x.Position)
		x.Velocity = 0
	}
	return x
}

func (sim *Simulator) integrateWrist(x control.State, out control.Output, dt float64) control.State {
	t := sim.s.Tuning().Wrist
	plant := control.ArmFeedforward{S: t.Feedforward.S, G: t.Gravity, V: t.Feedforward.V, A: t.Feedforward.A}
	accel := plant.Acceleration(out.Voltage, x.Position, x.Velocity)

	x.Velocity += accel * dt
	x.Position += x.Velocity * dt
	return x
}

func (sim *Simulator) sendState(s State) {
	select {
	case sim.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-sim.stateCh:
		default:
		}
		sim.stateCh <- s
	}
}

func (sim *Simulator) shutdown() {
	sim.mu.Lock()
	sim.running = false
	sim.mu.Unlock()
	sim.log("simulation stopped")
}
