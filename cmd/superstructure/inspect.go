package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/plot/vg"

	"github.com/gwillem/superstructure/pkg/mechanism"
	"github.com/gwillem/superstructure/pkg/robot"
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableRoleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 0:
				return tableRoleStyle
			default:
				return tableCellStyle
			}
		})
	return t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

type PresetsCommand struct{}

func (c *PresetsCommand) Execute(args []string) error {
	s := mustLoad(nil)

	fmt.Println(headerStyle.Render("Controller presets"))
	fmt.Println()

	var rows [][]string
	for _, role := range s.Presets().Roles() {
		id, err := s.Resolve(role)
		if err != nil {
			return err
		}
		p, err := s.Preset(role)
		if err != nil {
			return err
		}

		gains := "-"
		if g, ok := p.ClosedLoop(); ok {
			gains = fmt.Sprintf("P %g I %g D %g FF %g", g.P, g.I, g.D, g.FF)
		}
		limit := "-"
		if l, ok := p.LimitSwitch(); ok {
			state := "disabled"
			if l.Enabled {
				state = "enabled"
			}
			limit = fmt.Sprintf("%s, %s", l.Type, state)
		}
		follow := "-"
		if f, ok := p.Follow(); ok {
			follow = fmt.Sprintf("#%d", f.Leader)
			if f.Inverted {
				follow += " inverted"
			}
		}
		encoder := "-"
		if e, ok := p.AbsoluteEncoder(); ok {
			encoder = fmt.Sprintf("inverted %s, zero-centered %s", yesNo(e.Inverted), yesNo(e.ZeroCentered))
		}
		var signals []string
		if p.Signals().PositionAlwaysOn {
			signals = append(signals, "position")
		}
		if p.Signals().VelocityAlwaysOn {
			signals = append(signals, "velocity")
		}

		rows = append(rows, []string{
			string(role),
			fmt.Sprintf("%d", id),
			p.IdleMode().String(),
			yesNo(p.Inverted()),
			fmt.Sprintf("%g A", p.CurrentLimit()),
			fmt.Sprintf("%g V", p.VoltageCompensation()),
			gains,
			limit,
			follow,
			encoder,
			strings.Join(signals, ", "),
		})
	}

	fmt.Println(renderTable(
		[]string{"Role", "CAN", "Idle", "Inverted", "Current", "Voltage", "Closed loop", "Limit switch", "Follows", "Abs encoder", "Signals"},
		rows,
	))
	return nil
}

type TuningCommand struct{}

func (c *TuningCommand) Execute(args []string) error {
	s := mustLoad(nil)
	t := s.Tuning()
	m := s.Physical()

	fmt.Println(headerStyle.Render("Control laws"))
	fmt.Println()

	ev, ea := t.Elevator.ProfileLimits()
	wv, wa := t.Wrist.ProfileLimits()
	fmt.Println(renderTable(
		[]string{"Joint", "kS", "kG", "kV", "kA", "kP", "kI", "kD", "Max vel", "Max accel"},
		[][]string{
			{
				"elevator",
				fmt.Sprintf("%g", t.Elevator.Feedforward.S),
				fmt.Sprintf("%g / %g", t.Elevator.GravityStage1, t.Elevator.GravityStage2),
				fmt.Sprintf("%g", t.Elevator.Feedforward.V),
				fmt.Sprintf("%g", t.Elevator.Feedforward.A),
				fmt.Sprintf("%g", t.Elevator.PID.P),
				fmt.Sprintf("%g", t.Elevator.PID.I),
				fmt.Sprintf("%g", t.Elevator.PID.D),
				fmt.Sprintf("%.3f m/s", ev),
				fmt.Sprintf("%.3f m/s²", ea),
			},
			{
				"wrist",
				fmt.Sprintf("%g", t.Wrist.Feedforward.S),
				fmt.Sprintf("%g", t.Wrist.Gravity),
				fmt.Sprintf("%g", t.Wrist.Feedforward.V),
				fmt.Sprintf("%g", t.Wrist.Feedforward.A),
				fmt.Sprintf("%g", t.Wrist.PID.P),
				fmt.Sprintf("%g", t.Wrist.PID.I),
				fmt.Sprintf("%g", t.Wrist.PID.D),
				fmt.Sprintf("%.3f rad/s", wv),
				fmt.Sprintf("%.3f rad/s²", wa),
			},
		},
	))
	fmt.Println()

	fmt.Println(headerStyle.Render("Envelopes"))
	fmt.Println()
	op := t.Wrist.OperationalBounds()
	travel := m.ElevatorTravel()
	fmt.Println(renderTable(
		[]string{"Range", "Min", "Max", "Enforced as"},
		[][]string{
			{"elevator travel", fmt.Sprintf("%.4f m", travel.Min), fmt.Sprintf("%.4f m", travel.Max), "goal clamp, fault"},
			{"stage 1 height", fmt.Sprintf("%.4f m", m.Stage1.MinHeight), fmt.Sprintf("%.4f m", m.Stage1.MaxHeight), "geometry"},
			{"carriage height", fmt.Sprintf("%.4f m", m.Carriage.MinHeight), fmt.Sprintf("%.4f m", m.Carriage.MaxHeight), "geometry"},
			{"wrist " + string(robot.Operational), fmt.Sprintf("%.1f°", mgl64.RadToDeg(op.Min)), fmt.Sprintf("%.1f°", mgl64.RadToDeg(op.Max)), "goal clamp"},
			{"wrist " + string(robot.Mechanical), fmt.Sprintf("%.1f°", mgl64.RadToDeg(m.WristLimits.Min)), fmt.Sprintf("%.1f°", mgl64.RadToDeg(m.WristLimits.Max)), "fault"},
		},
	))
	fmt.Println()

	fmt.Println(dimStyle.Render(fmt.Sprintf(
		"elevator: gearing %g:1, drum radius %.5f m (%.5f m/rot)  wrist: %g:1, %.4f m, %.3f kg",
		m.ElevatorGearing, m.DrumRadius, m.ToLinearPosition(1), m.WristReduction, m.WristLength, m.WristMass,
	)))
	return nil
}

// JointArgs is an elevator extension and wrist angle given on the command
// line.
type JointArgs struct {
	Extension float64 `short:"e" long:"extension" default:"0" description:"Elevator extension from fully retracted (m)"`
	Angle     float64 `short:"a" long:"angle" default:"0" description:"Wrist angle from horizontal (degrees)"`
}

// apply publishes the pose and reports values outside the envelopes.
func (j JointArgs) apply(s *robot.Superstructure, mech *mechanism.Mechanism) mechanism.Pose {
	rad := mgl64.DegToRad(j.Angle)
	if err := s.Physical().ElevatorTravel().Check("elevator extension", robot.Mechanical, j.Extension); err != nil {
		fmt.Println(warnStyle.Render("warning: " + err.Error()))
	}
	if err := s.CheckWristAngle(rad, robot.Operational); err != nil {
		fmt.Println(warnStyle.Render("warning: " + err.Error()))
	}
	return mech.UpdateExtension(j.Extension, rad)
}

type PoseCommand struct {
	JointArgs
}

func (c *PoseCommand) Execute(args []string) error {
	s := mustLoad(nil)
	mech := mechanism.New(s.Physical())
	pose := c.apply(s, mech)

	fmt.Println(headerStyle.Render(mechanism.RootName))
	fmt.Println()

	var rows [][]string
	ligaments := pose.Ligaments()
	for i, seg := range pose.Segments() {
		rows = append(rows, []string{
			seg.Name,
			fmt.Sprintf("%.4f", ligaments[i].Length),
			fmt.Sprintf("%.2f°", ligaments[i].Angle),
			fmt.Sprintf("%.2f°", seg.Angle),
			fmt.Sprintf("(%.4f, %.4f)", seg.Start.X(), seg.Start.Y()),
			fmt.Sprintf("(%.4f, %.4f)", seg.End.X(), seg.End.Y()),
		})
	}
	fmt.Println(renderTable(
		[]string{"Ligament", "Length (m)", "Relative", "Absolute", "Start", "End"},
		rows,
	))
	return nil
}

type RenderCommand struct {
	JointArgs
	Out  string  `short:"o" long:"out" default:"superstructure.png" description:"Output PNG file"`
	Size float64 `long:"size" default:"6" description:"Image size (inches)"`
}

func (c *RenderCommand) Execute(args []string) error {
	s := mustLoad(nil)
	mech := mechanism.New(s.Physical())
	pose := c.apply(s, mech)

	f, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("create %s: %w", c.Out, err)
	}
	defer f.Close()

	size := vg.Length(c.Size) * vg.Inch
	if err := pose.WritePNG(f, size, size); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", c.Out, err)
	}

	abs, _ := filepath.Abs(c.Out)
	fmt.Println(successStyle.Render("Wrote " + abs))
	return nil
}
