package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/geo/r3"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/navcore/internal/scenario"
	"github.com/san-kum/navcore/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailCapacity   = 2000
	frameRate       = 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// LiveModel steps a scenario frame by frame and draws it.
type LiveModel struct {
	setup    *scenario.Setup
	runner   *sim.Runner
	cfg      sim.Config
	ticks    int
	done     bool
	err      error
	last     sim.Sample
	speeds   []float64
	goalDist []float64
	trail    []r3.Vector
	canvas   *Canvas
	camera   *Camera
	follow   bool
	running  bool
	perFrame int
	theme    Theme
	showHelp bool

	recording bool
	frames    []*image.Paletted
	gifPath   string
}

// NewLive prepares a live view. The camera starts top-down, fitted to the
// vehicle, the obstacles and the mission goal.
func NewLive(setup *scenario.Setup, opts scenario.Options, theme Theme) *LiveModel {
	m := &LiveModel{
		setup:    setup,
		runner:   setup.Runner(opts),
		cfg:      setup.Config.Sim.Runner(),
		canvas:   NewCanvas(width, height),
		camera:   NewCamera(),
		running:  true,
		perFrame: 1,
		theme:    theme,
		gifPath:  setup.Scenario.Name + ".gif",
	}
	m.fit()
	return m
}

func (m *LiveModel) fit() {
	scene := m.scene()
	points := scene.Static().Points()
	points = append(points, scene.Vehicle.Position)
	if goal, ok := m.setup.Controller.Goal(); ok {
		points = append(points, goal)
	}
	if t := m.setup.Scenario.Mission.Target; t.Norm() > 0 {
		points = append(points, t)
	}
	m.camera.Fit(points)
}

func (m *LiveModel) scene() Scene {
	goal, ok := m.setup.Controller.Goal()
	return SceneOf(m.setup.World, m.trail).WithGoal(goal, ok)
}

// Done reports whether the mission finished or failed.
func (m *LiveModel) Done() bool { return m.done }

func (m *LiveModel) Err() error { return m.err }

// Ticks is the number of simulated ticks so far.
func (m *LiveModel) Ticks() int { return m.ticks }

// Outcome is the mission's summary of how it went.
func (m *LiveModel) Outcome() string { return m.setup.Controller.Outcome() }

func (m *LiveModel) Init() tea.Cmd {
	return tick()
}

func (m *LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			m.step()
		case "f":
			m.perFrame = min(m.perFrame*2, 64)
		case "s":
			m.perFrame = max(m.perFrame/2, 1)
		case "c":
			m.follow = !m.follow
		case "v":
			m.camera.ResetView()
			m.fit()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "t":
			m.theme = m.theme.Next()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			for i := 0; i < m.perFrame && !m.done; i++ {
				m.step()
			}
		}
		if m.recording {
			m.draw()
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

// step advances the scenario by one tick.
func (m *LiveModel) step() {
	if m.done {
		return
	}
	s, done, err := m.runner.Step(m.ticks, m.cfg.Dt)
	if err != nil {
		m.err, m.done = err, true
		return
	}
	m.ticks++
	m.last = s
	m.done = done || m.ticks >= m.cfg.MaxTicks

	m.speeds = appendCapped(m.speeds, s.Speed, historyCapacity)
	m.goalDist = appendCapped(m.goalDist, s.GoalDistance, historyCapacity)
	if n := len(m.trail); n == 0 || m.trail[n-1].Distance(s.Position) > 0.25 {
		m.trail = appendCapped(m.trail, s.Position, trailCapacity)
	}
}

func appendCapped[T any](s []T, v T, capacity int) []T {
	s = append(s, v)
	if len(s) > capacity {
		s = s[len(s)-capacity:]
	}
	return s
}

func (m *LiveModel) draw() {
	if m.follow {
		m.camera.Center = m.setup.World.Body().Position()
	}
	m.scene().Draw(m.canvas, m.camera)
}

func (m *LiveModel) View() string {
	m.draw()
	st := m.theme.styles()
	sc := m.setup.Scenario

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(sc.Name)) + "\n")
	s.WriteString(st.muted.Render(fmt.Sprintf("%s mission, %s layout", sc.Mission.Kind, m.setup.Config.Sim.Layout)) + "\n\n")
	s.WriteString(m.status(st) + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	p := m.last.Position
	row("Time", fmt.Sprintf("%.1fs", m.last.Time))
	row("Tick", fmt.Sprintf("%d/%d x%d", m.ticks, m.cfg.MaxTicks, m.perFrame))
	row("State", m.setup.Controller.State())
	row("Position", fmt.Sprintf("%.1f %.1f %.1f", p.X, p.Y, p.Z))
	row("Speed", fmt.Sprintf("%.2f m/s", m.last.Speed))
	row("Thrust", fmt.Sprintf("%.0f N", m.last.Thrust))
	if _, ok := m.setup.Controller.Goal(); ok {
		row("Goal", fmt.Sprintf("%.2f m", m.last.GoalDistance))
	}
	s.WriteString("\n" + ProgressBar(float64(m.ticks)/float64(m.cfg.MaxTicks), 30, m.theme) + "\n")
	s.WriteString(Sparkline(m.speeds, 30, m.theme) + "\n")

	if len(m.goalDist) > 1 {
		chart := asciigraph.Plot(m.goalDist, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("goal distance"))
		s.WriteString("\n" + st.value.Render(chart) + "\n")
	}

	metrics := m.runner.MetricValues()
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	s.WriteString("\n")
	for _, name := range names {
		s.WriteString(st.muted.Render(fmt.Sprintf("%-18s %10.2f", name, metrics[name])) + "\n")
	}

	s.WriteString("\n" + Separator(40, m.theme) + "\n")
	s.WriteString(st.muted.Render("SP:Pause N:Step F/S:Speed C:Follow\nV:Fit X/Y:Rotate +/-:Zoom T:Theme\nG:Record ?:Help Q:Quit"))

	canvasView := lipgloss.NewStyle().Foreground(m.theme.Accent).Padding(1, 2).Render(m.canvas.String())
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

func (m *LiveModel) status(st styles) string {
	switch {
	case m.err != nil:
		return st.bad.Render("FAILED " + m.err.Error())
	case m.done:
		return st.good.Render("DONE " + m.Outcome())
	case m.recording:
		return st.bad.Render(fmt.Sprintf("REC %d frames", len(m.frames)))
	case !m.running:
		return st.warn.Render("PAUSED")
	}
	return st.good.Render("RUNNING")
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  N        - Single tick              ║
║  F / S    - Faster / slower          ║
║  C        - Follow the vehicle       ║
║  V        - Top-down view, refit     ║
║  X / Y    - Rotate view              ║
║  + / -    - Zoom                     ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
`

func (m *LiveModel) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = m.frames[:0]
		return
	}
	m.recording = false
	if err := m.saveGIF(m.gifPath); err != nil {
		m.err = err
	}
	m.frames = nil
}

// captureFrame rasterises the canvas, one 4x4 pixel block per dot.
func (m *LiveModel) captureFrame() {
	const dot = 4
	cw, ch := m.canvas.Dots()
	img := image.NewPaletted(image.Rect(0, 0, cw*dot, ch*dot), color.Palette{color.Black, color.White})
	m.canvas.EachDot(func(x, y int) {
		for py := 0; py < dot-1; py++ {
			for px := 0; px < dot-1; px++ {
				img.SetColorIndex(x*dot+px, y*dot+py, 1)
			}
		}
	})
	m.frames = append(m.frames, img)
}

func (m *LiveModel) saveGIF(path string) error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 100/frameRate)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// RunLive shows a single scenario until the user quits.
func RunLive(setup *scenario.Setup, opts scenario.Options, theme Theme) (*LiveModel, error) {
	m := NewLive(setup, opts, theme)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return nil, err
	}
	return m, nil
}
