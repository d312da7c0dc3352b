package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/trajsim/internal/dynamo"
)

const (
	canvasCols  = 60
	canvasRows  = 22
	trailLength = 120
	maxSpeed    = 64
)

// Skeleton maps a state to a chain of world points joined by links.
type Skeleton func(x dynamo.State) []mgl64.Vec3

// Run is one recorded trajectory to replay.
type Run struct {
	Label  string
	States []dynamo.State
	Energy []float64
	Dt     float64
}

type TickMsg time.Time

// Model replays recorded runs. Frames are indexed by head; scrubbing and
// restarting never recompute dynamics.
type Model struct {
	title    string
	runs     []Run
	skeleton Skeleton
	active   int
	head     int
	speed    int
	running  bool
	showHelp bool
	frame    time.Duration
	canvas   *Canvas
	camera   *Camera
}

// NewModel validates the runs and frames the camera around every recorded pose.
func NewModel(title string, skeleton Skeleton, runs ...Run) (Model, error) {
	if len(runs) == 0 {
		return Model{}, fmt.Errorf("%w: nothing to play", dynamo.ErrInvalidArgument)
	}
	for _, r := range runs {
		if len(r.States) == 0 {
			return Model{}, fmt.Errorf("%w: run %q has no states", dynamo.ErrInvalidArgument, r.Label)
		}
		if len(r.Energy) != 0 && len(r.Energy) != len(r.States) {
			return Model{}, fmt.Errorf("%w: run %q has %d states and %d energies",
				dynamo.ErrDimensionMismatch, r.Label, len(r.States), len(r.Energy))
		}
	}
	if skeleton == nil {
		skeleton = bars
	}

	extent := 0.0
	for _, r := range runs {
		for _, x := range r.States {
			for _, p := range skeleton(x) {
				extent = math.Max(extent, p.Len())
			}
		}
	}

	return Model{
		title:    title,
		runs:     runs,
		skeleton: skeleton,
		speed:    1,
		running:  true,
		frame:    time.Second / 30,
		canvas:   NewCanvas(canvasCols, canvasRows),
		camera:   NewCamera(extent * 1.1),
	}, nil
}

// bars draws each coordinate as a vertical offset along the x axis.
func bars(x dynamo.State) []mgl64.Vec3 {
	pts := make([]mgl64.Vec3, len(x))
	for i, v := range x {
		pts[i] = mgl64.Vec3{float64(i), 0, v}
	}
	return pts
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			if m.atEnd() {
				m.head = 0
			}
			m.running = !m.running
		case "r":
			m.head, m.running = 0, true
		case "[", "left":
			m.scrub(-10)
		case "]", "right":
			m.scrub(10)
		case "tab":
			m.active = (m.active + 1) % len(m.runs)
			m.head = min(m.head, m.last())
		case ">", ".":
			m.speed = min(maxSpeed, m.speed*2)
		case "<", ",":
			m.speed = max(1, m.speed/2)
		case "a":
			m.camera.Turn(-0.1)
		case "d":
			m.camera.Turn(0.1)
		case "w":
			m.camera.Tilt(0.1)
		case "s":
			m.camera.Tilt(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.head = min(m.head+m.speed, m.last())
			if m.atEnd() {
				m.running = false
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) run() Run    { return m.runs[m.active] }
func (m Model) last() int   { return len(m.run().States) - 1 }
func (m Model) atEnd() bool { return m.head >= m.last() }

// scrub moves the play head and pauses playback.
func (m *Model) scrub(frames int) {
	m.running = false
	m.head = max(0, min(m.last(), m.head+frames))
}

func (m Model) draw() {
	m.canvas.Clear()
	w, h := m.canvas.Dots()
	run := m.run()

	for i := max(0, m.head-trailLength); i < m.head; i++ {
		pts := m.skeleton(run.States[i])
		if len(pts) == 0 {
			continue
		}
		if x, y, _, ok := m.camera.Project(pts[len(pts)-1], w, h); ok {
			m.canvas.Set(x, y)
		}
	}

	pts := m.skeleton(run.States[m.head])
	for i, p := range pts {
		x, y, _, _ := m.camera.Project(p, w, h)
		m.canvas.Cross(x, y)
		if i+1 < len(pts) {
			x1, y1, _, _ := m.camera.Project(pts[i+1], w, h)
			m.canvas.Line(x, y, x1, y1)
		}
	}
}

func (m Model) status() string {
	switch {
	case m.running:
		return playingStyle.Render(fmt.Sprintf("PLAYING x%d", m.speed))
	case m.atEnd():
		return pausedStyle.Render("FINISHED")
	default:
		return pausedStyle.Render("PAUSED")
	}
}

func (m Model) View() string {
	m.draw()
	run := m.run()
	t := float64(m.head) * run.Dt

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	for i, r := range m.runs {
		if i == m.active {
			s.WriteString(activeStyle.Render("> "+r.Label) + "\n")
		} else {
			s.WriteString(labelStyle.Render("  "+r.Label) + "\n")
		}
	}
	s.WriteString("\n" + m.status() + "\n\n")

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("t=%.3fs", t)) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d/%d", m.head, m.last())) + "\n")
	if len(run.Energy) > 0 {
		e0, e := run.Energy[0], run.Energy[m.head]
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.6g J", e)) + "\n")
		s.WriteString(labelStyle.Render("Drift") + valueStyle.Render(fmt.Sprintf("%+.3e J", e-e0)) + "\n")
	}
	s.WriteString(ProgressBar(float64(m.head)/float64(max(1, m.last())), 30) + "\n")

	if chart := m.energyChart(); chart != "" {
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Play R:Restart Q:Quit\n[ ]:Scrub Tab:Run <>:Speed\nWASD:Orbit +-:Zoom ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), panelStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

// energyChart plots every run up to the play head.
func (m Model) energyChart() string {
	var data [][]float64
	var legends []string
	for _, r := range m.runs {
		end := min(m.head+1, len(r.Energy))
		if end < 2 {
			continue
		}
		data = append(data, r.Energy[:end])
		legends = append(legends, r.Label)
	}
	if len(data) == 0 {
		return ""
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(6),
		asciigraph.Width(36),
		asciigraph.Caption("Energy"),
		asciigraph.SeriesColors(colorsFor(len(data))...),
		asciigraph.SeriesLegends(legends...),
	)
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Aqua, asciigraph.Orange, asciigraph.LimeGreen, asciigraph.HotPink,
	asciigraph.Gold, asciigraph.Violet, asciigraph.Salmon, asciigraph.SkyBlue,
}

func colorsFor(n int) []asciigraph.AnsiColor {
	colors := make([]asciigraph.AnsiColor, n)
	for i := range colors {
		colors[i] = seriesColors[i%len(seriesColors)]
	}
	return colors
}

const helpText = `
  Space    play / pause
  R        restart from t=0
  [ ]      scrub 10 frames
  Tab      switch run
  < >      halve / double speed
  W A S D  orbit camera
  + -      zoom
  Q        quit`
