package mechanism

import (
	"bytes"
	"image/png"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/plot/vg"

	"github.com/gwillem/superstructure/pkg/robot"
)

func TestWristAngleOffset(t *testing.T) {
	Convey("the default model", t, func() {
		model := robot.DefaultPhysicalModel()

		Convey("offsets the wrist by the unwrapped minimum angle", func() {
			So(WristAngleOffset(model), ShouldAlmostEqual, 1440, 1e-9)
		})

		Convey("follows a reconfigured minimum", func() {
			model.WristLimits.Min = -mgl64.DegToRad(90)
			So(WristAngleOffset(model), ShouldAlmostEqual, 90, 1e-9)
		})
	})
}

func TestMechanism_Pose(t *testing.T) {
	Convey("a new mechanism", t, func() {
		model := robot.DefaultPhysicalModel()
		m := New(model)
		p := m.Pose()

		Convey("starts at minimum heights", func() {
			So(p.Seq, ShouldEqual, uint64(0))
			So(p.Root, ShouldResemble, mgl64.Vec2{RootX, RootY})
			So(p.Stage1.Name, ShouldEqual, Stage1Name)
			So(p.Stage1.Length, ShouldEqual, robot.MinStage1HeightMeters)
			So(p.Stage1.Angle, ShouldEqual, float64(Stage1AngleDeg))
			So(p.Carriage.Name, ShouldEqual, CarriageName)
			So(p.Carriage.Length, ShouldEqual, robot.MinCarriageHeightMeters)
			So(p.Carriage.Angle, ShouldEqual, float64(CarriageAngleDeg))
			So(p.Wrist.Name, ShouldEqual, WristName)
			So(p.Wrist.Length, ShouldEqual, robot.WristLengthMeters)
			So(p.Wrist.Angle, ShouldAlmostEqual, WristAngleOffset(model), 1e-9)
		})

		Convey("updating with a zero wrist angle keeps the offset", func() {
			updated := m.UpdatePose(0.9652, 0.2286, 0)
			So(updated.Wrist.Angle, ShouldAlmostEqual, WristAngleOffset(model), 1e-9)
			So(updated.Seq, ShouldEqual, uint64(1))

			Convey("regardless of stage heights", func() {
				again := m.UpdatePose(1.5, 0.8, 0)
				So(again.Wrist.Angle, ShouldAlmostEqual, updated.Wrist.Angle, 1e-9)
				So(again.Stage1.Length, ShouldEqual, 1.5)
				So(again.Carriage.Length, ShouldEqual, 0.8)
			})
		})

		Convey("wrist rotation adds to the offset in degrees", func() {
			updated := m.UpdatePose(1, 0.5, mgl64.DegToRad(45))
			So(updated.Wrist.Angle, ShouldAlmostEqual, WristAngleOffset(model)+45, 1e-9)
		})

		Convey("out of range values are accepted", func() {
			updated := m.UpdatePose(-3, 12, 100)
			So(updated.Stage1.Length, ShouldEqual, -3.0)
			So(updated.Carriage.Length, ShouldEqual, 12.0)
			So(m.Pose(), ShouldResemble, updated)
		})

		Convey("extension splits across the stages", func() {
			updated := m.UpdateExtension(model.Stage1.Travel()+0.1, 0)
			So(updated.Stage1.Length, ShouldEqual, model.Stage1.MaxHeight)
			So(updated.Carriage.Length, ShouldAlmostEqual, model.Carriage.MinHeight+0.1, 1e-9)
		})

		Convey("earlier snapshots are not modified", func() {
			before := m.Pose()
			m.UpdatePose(1.2, 0.4, 0.3)
			So(before.Seq, ShouldEqual, uint64(0))
			So(before.Stage1.Length, ShouldEqual, robot.MinStage1HeightMeters)
		})
	})
}

func TestPose_Segments(t *testing.T) {
	Convey("segments of the initial pose", t, func() {
		p := New(robot.DefaultPhysicalModel()).Pose()
		segments := p.Segments()
		So(segments, ShouldHaveLength, 3)

		Convey("stage 1 rises from the root", func() {
			s := segments[0]
			So(s.Start, ShouldResemble, mgl64.Vec2{RootX, RootY})
			So(s.End.X(), ShouldAlmostEqual, RootX, 1e-9)
			So(s.End.Y(), ShouldAlmostEqual, robot.MinStage1HeightMeters, 1e-9)
		})

		Convey("the carriage continues straight up", func() {
			s := segments[1]
			So(s.Start, ShouldResemble, segments[0].End)
			So(s.Angle, ShouldEqual, 90.0)
			So(s.End.Y(), ShouldAlmostEqual, robot.MinStage1HeightMeters+robot.MinCarriageHeightMeters, 1e-9)
		})

		Convey("the wrist ends one wrist length further", func() {
			s := segments[2]
			So(s.Start, ShouldResemble, segments[1].End)
			So(s.End.Sub(s.Start).Len(), ShouldAlmostEqual, robot.WristLengthMeters, 1e-9)
			So(p.End(), ShouldResemble, s.End)
		})
	})
}

func TestMechanism_ConcurrentReaders(t *testing.T) {
	Convey("readers always see a complete snapshot", t, func() {
		m := New(robot.DefaultPhysicalModel())
		const updates = 2000

		var wg sync.WaitGroup
		torn := make(chan Pose, 1)
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				var last uint64
				for {
					p := m.Pose()
					if p.Seq > 0 && p.Stage1.Length != p.Carriage.Length || p.Seq < last {
						select {
						case torn <- p:
						default:
						}
						return
					}
					last = p.Seq
					if p.Seq == updates {
						return
					}
				}
			}()
		}

		for i := 1; i <= updates; i++ {
			m.UpdatePose(float64(i), float64(i), 0)
		}
		wg.Wait()

		So(torn, ShouldBeEmpty)
		So(m.Pose().Seq, ShouldEqual, uint64(updates))
	})
}

func TestPose_WritePNG(t *testing.T) {
	Convey("rendering a pose", t, func() {
		m := New(robot.DefaultPhysicalModel())
		m.UpdateExtension(0.6, 0.5)

		var buf bytes.Buffer
		err := m.Pose().WritePNG(&buf, 4*vg.Inch, 4*vg.Inch)
		So(err, ShouldBeNil)

		Convey("produces a decodable image", func() {
			img, err := png.Decode(&buf)
			So(err, ShouldBeNil)
			So(img.Bounds().Dx(), ShouldBeGreaterThan, 0)
		})
	})
}
