package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/superstructure/pkg/robot"
	"github.com/gwillem/superstructure/pkg/sim"
)

type SimulateCommand struct {
	Height *float64 `long:"height" description:"Elevator goal extension (m); prompts when omitted"`
	Angle  *float64 `long:"angle" description:"Wrist goal angle (degrees); prompts when omitted"`
	Hz     int      `long:"hz" default:"50" description:"Control loop frequency"`
}

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	statusHeight = 2 // joint readout + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

const (
	seriesGoal     = "goal"
	seriesSetpoint = "setpoint"
	seriesMeasured = "measured"
)

var seriesColors = map[string]string{
	seriesGoal:     "241", // grey
	seriesSetpoint: "226", // yellow
	seriesMeasured: "46",  // green
}

var allSeries = []string{seriesGoal, seriesSetpoint, seriesMeasured}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	faultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type simModel struct {
	sim      *sim.Simulator
	elevator *streamlinechart.Model
	wrist    *streamlinechart.Model
	goal     [2]float64 // extension m, angle rad
	last     sim.State
	width    int // terminal width
	height   int // terminal height
	logs     []string
	quitting bool
}

func (m *simModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the simulator
type stateMsg sim.State
type logMsg string

func waitForState(s *sim.Simulator) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-s.States())
	}
}

func waitForLog(s *sim.Simulator) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-s.Logs())
	}
}

// chartSize splits the space below the header between the two charts.
func (m *simModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 10 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = (m.height-headerHeight-legendHeight-statusHeight-footerHeight)/2 - borderSize
	if height < 6 {
		height = 6
	}
	return width, height
}

func (m *simModel) resizeCharts() {
	w, h := m.chartSize()
	m.elevator.Resize(w, h)
	m.wrist.Resize(w, h)
}

func newChart(minY, maxY float64) *streamlinechart.Model {
	chart := streamlinechart.New(80, 10,
		streamlinechart.WithYRange(minY, maxY),
	)
	for _, name := range allSeries {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name]))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}
	return &chart
}

func initialSimModel(s *sim.Simulator, p robot.PhysicalModel, t robot.WristTuning, extension, angle float64) simModel {
	op := t.OperationalBounds()
	return simModel{
		sim:      s,
		elevator: newChart(0, p.ElevatorTravel().Max),
		wrist:    newChart(mgl64.RadToDeg(op.Min)-10, mgl64.RadToDeg(op.Max)+10),
		goal:     [2]float64{extension, angle},
	}
}

func (m simModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.sim),
		waitForLog(m.sim),
	)
}

func (m simModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeCharts()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "h":
			e, a := m.sim.SetGoal(0, 0)
			m.goal = [2]float64{e, a}
		case "g":
			e, a := m.sim.SetGoal(m.goal[0], m.goal[1])
			m.goal = [2]float64{e, a}
		}

	case stateMsg:
		state := sim.State(msg)
		// Freeze the charts once settled
		if !(state.AtGoal && m.last.AtGoal) {
			m.elevator.PushDataSet(seriesGoal, m.goal[0])
			m.elevator.PushDataSet(seriesSetpoint, state.ElevatorOut.Setpoint.Position)
			m.elevator.PushDataSet(seriesMeasured, state.Elevator.Position)
			m.elevator.DrawAll()

			m.wrist.PushDataSet(seriesGoal, mgl64.RadToDeg(m.goal[1]))
			m.wrist.PushDataSet(seriesSetpoint, mgl64.RadToDeg(state.WristOut.Setpoint.Position))
			m.wrist.PushDataSet(seriesMeasured, mgl64.RadToDeg(state.Wrist.Position))
			m.wrist.DrawAll()
		}
		m.last = state
		return m, waitForState(m.sim)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.sim)
	}

	return m, nil
}

func (m simModel) View() string {
	if m.quitting {
		return "Simulation stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("Superstructure Simulate"))
	sb.WriteString(fmt.Sprintf(" - %d Hz", m.sim.Hz()))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(statusStyle.Render("Elevator extension (m)"))
	sb.WriteString("\n")
	sb.WriteString(chartStyle.Render(m.elevator.View()))
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render("Wrist angle (°)"))
	sb.WriteString("\n")
	sb.WriteString(chartStyle.Render(m.wrist.View()))
	sb.WriteString("\n")

	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	status := fmt.Sprintf("elevator %.3f m  %+.2f V   wrist %.1f°  %+.2f V   t=%s",
		m.last.Elevator.Position, m.last.ElevatorOut.Voltage,
		mgl64.RadToDeg(m.last.Wrist.Position), m.last.WristOut.Voltage,
		m.last.Elapsed.Round(10*time.Millisecond))
	if m.last.AtGoal {
		status += "  at goal"
	}
	sb.WriteString(status)
	sb.WriteString("\n")
	if m.last.Error != nil {
		sb.WriteString(faultStyle.Render(m.last.Error.Error()))
	}
	sb.WriteString("\n")

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width - 4)

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'g' to replay the goal, 'h' to home, 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend() string {
	var items []string
	for _, name := range allSeries {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+name)
	}
	return strings.Join(items, "  ")
}

func parseFloat(s string) error {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err
}

// promptGoal asks for the goals that were not given as flags.
func promptGoal(height, angle *float64) (float64, float64) {
	hs, as := "0", "0"
	if height != nil {
		hs = strconv.FormatFloat(*height, 'f', -1, 64)
	}
	if angle != nil {
		as = strconv.FormatFloat(*angle, 'f', -1, 64)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Elevator goal (m)").
				Description("Extension from fully retracted").
				Value(&hs).
				Validate(parseFloat),
			huh.NewInput().
				Title("Wrist goal (degrees)").
				Description("Angle from horizontal").
				Value(&as).
				Validate(parseFloat),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	h, _ := strconv.ParseFloat(strings.TrimSpace(hs), 64)
	a, _ := strconv.ParseFloat(strings.TrimSpace(as), 64)
	return h, a
}

func (c *SimulateCommand) Execute(args []string) error {
	s := mustLoad(nil)

	var height, angle float64
	if c.Height == nil || c.Angle == nil {
		height, angle = promptGoal(c.Height, c.Angle)
	} else {
		height, angle = *c.Height, *c.Angle
	}

	simulator, err := sim.New(s, sim.Config{Hz: c.Hz})
	if err != nil {
		log.Fatalf("Failed to create simulator: %v", err)
	}
	defer simulator.Close()

	extension, rad := simulator.SetGoal(height, mgl64.DegToRad(angle))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := simulator.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Simulator error: %v", err)
		}
	}()

	p := tea.NewProgram(initialSimModel(simulator, s.Physical(), s.Tuning().Wrist, extension, rad), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}

	return nil
}
