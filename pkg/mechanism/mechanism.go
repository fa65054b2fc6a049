// Package mechanism keeps the 2D pose of the elevator and wrist for
// dashboards and telemetry.
package mechanism

import (
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gwillem/superstructure/pkg/robot"
)

// Canvas layout.
const (
	CanvasWidth  = 10
	CanvasHeight = 10

	RootName = "ElevatorWrist Root"
	RootX    = 25
	RootY    = 0

	Stage1Name   = "Elevator Stage 1"
	CarriageName = "Elevator Carriage"
	WristName    = "Wrist"

	Stage1AngleDeg   = 90
	CarriageAngleDeg = 0
)

// Ligament is a rigid segment. Angle is in degrees relative to the parent
// segment.
type Ligament struct {
	Name   string
	Length float64
	Angle  float64
}

// Pose is an immutable snapshot of the mechanism: root, then stage 1, then
// carriage, then wrist.
type Pose struct {
	Root     mgl64.Vec2
	Stage1   Ligament
	Carriage Ligament
	Wrist    Ligament

	// Seq counts updates; zero is the initial pose.
	Seq     uint64
	Updated time.Time
}

// Ligaments returns the segments from the root outward.
func (p Pose) Ligaments() []Ligament {
	return []Ligament{p.Stage1, p.Carriage, p.Wrist}
}

// Segment is a ligament placed in canvas coordinates.
type Segment struct {
	Name  string
	Start mgl64.Vec2
	End   mgl64.Vec2
	Angle float64 // absolute, degrees
}

// Segments accumulates ligament angles from the root to place every segment.
func (p Pose) Segments() []Segment {
	segments := make([]Segment, 0, 3)
	start := p.Root
	var angle float64
	for _, l := range p.Ligaments() {
		angle += l.Angle
		dir := mgl64.Rotate2D(mgl64.DegToRad(angle)).Mul2x1(mgl64.Vec2{1, 0})
		end := start.Add(dir.Mul(l.Length))
		segments = append(segments, Segment{Name: l.Name, Start: start, End: end, Angle: angle})
		start = end
	}
	return segments
}

// End returns the tip of the wrist in canvas coordinates.
func (p Pose) End() mgl64.Vec2 {
	s := p.Segments()
	return s[len(s)-1].End
}

// WristAngleOffset is the wrist ligament's orientation relative to the
// carriage before any wrist rotation: 180° - deg(min wrist angle) - 180°.
func WristAngleOffset(m robot.PhysicalModel) float64 {
	return 180 - mgl64.RadToDeg(m.WristLimits.Min) - 180
}

// Mechanism owns the current pose. UpdatePose must be called from a single
// goroutine; Pose may be called from any number of readers and always sees
// a complete snapshot.
type Mechanism struct {
	model  robot.PhysicalModel
	offset float64
	pose   atomic.Pointer[Pose]
}

// New creates a mechanism in its initial pose: stages at minimum height and
// the wrist at its offset orientation.
func New(model robot.PhysicalModel) *Mechanism {
	m := &Mechanism{
		model:  model,
		offset: WristAngleOffset(model),
	}
	initial := m.build(model.Stage1.MinHeight, model.Carriage.MinHeight, 0)
	m.pose.Store(&initial)
	return m
}

func (m *Mechanism) build(stage1Height, carriageHeight, wristAngle float64) Pose {
	return Pose{
		Root:     mgl64.Vec2{RootX, RootY},
		Stage1:   Ligament{Name: Stage1Name, Length: stage1Height, Angle: Stage1AngleDeg},
		Carriage: Ligament{Name: CarriageName, Length: carriageHeight, Angle: CarriageAngleDeg},
		Wrist:    Ligament{Name: WristName, Length: m.model.WristLength, Angle: m.offset + mgl64.RadToDeg(wristAngle)},
	}
}

// UpdatePose publishes a new pose from stage heights (meters) and the wrist
// angle (radians). Values are not range checked.
func (m *Mechanism) UpdatePose(stage1Height, carriageHeight, wristAngle float64) Pose {
	p := m.build(stage1Height, carriageHeight, wristAngle)
	p.Seq = m.pose.Load().Seq + 1
	p.Updated = time.Now()
	m.pose.Store(&p)
	return p
}

// UpdateExtension publishes a pose from total elevator extension.
func (m *Mechanism) UpdateExtension(extension, wristAngle float64) Pose {
	stage1, carriage := m.model.SplitHeight(extension)
	return m.UpdatePose(stage1, carriage, wristAngle)
}

// Pose returns the latest snapshot.
func (m *Mechanism) Pose() Pose {
	return *m.pose.Load()
}
