package viz

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/geo/r3"
	"github.com/rs/zerolog"
	"github.com/san-kum/navcore/internal/config"
	"github.com/san-kum/navcore/internal/scenario"
	"github.com/san-kum/navcore/internal/sim"
)

func TestCanvasDots(t *testing.T) {
	c := NewCanvas(2, 1)
	if w, h := c.Dots(); w != 4 || h != 4 {
		t.Fatalf("dots %dx%d, want 4x4", w, h)
	}

	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)
	if got := c.String(); got != "⠁⢀\n" {
		t.Errorf("canvas %q", got)
	}
	if !c.IsSet(3, 3) || c.IsSet(1, 1) {
		t.Error("IsSet disagrees with Set")
	}

	c.Unset(0, 0)
	var lit [][2]int
	c.EachDot(func(x, y int) { lit = append(lit, [2]int{x, y}) })
	if len(lit) != 1 || lit[0] != [2]int{3, 3} {
		t.Errorf("lit dots %v", lit)
	}

	c.Clear()
	if strings.Trim(c.String(), "\n⠀") != "" {
		t.Error("clear left dots behind")
	}
}

func TestDrawLine(t *testing.T) {
	c := NewCanvas(10, 3)
	c.DrawLine(0, 0, 19, 11)
	if !c.IsSet(0, 0) || !c.IsSet(19, 11) {
		t.Error("line endpoints missing")
	}
	count := 0
	c.EachDot(func(int, int) { count++ })
	if count != 20 {
		t.Errorf("line has %d dots, want 20", count)
	}
}

func TestTopDownProjection(t *testing.T) {
	cam := NewCamera()
	cam.Span = 40
	if !cam.TopDown() {
		t.Fatal("new camera should look down")
	}

	x, y, _, ok := cam.Project(r3.Vector{Z: -10}, 160, 96)
	if !ok || x != 80 || y >= 48 {
		t.Errorf("forward should project up the screen, got (%d, %d)", x, y)
	}
	x, _, _, _ = cam.Project(r3.Vector{X: 10}, 160, 96)
	if x <= 80 {
		t.Errorf("right should project right, got %d", x)
	}
	if _, _, _, ok := cam.Project(r3.Vector{X: 1000}, 160, 96); ok {
		t.Error("far point should be off screen")
	}

	p := cam.Unproject(100, 30, 160, 96)
	x, y, _, _ = cam.Project(p, 160, 96)
	if x != 100 || y != 30 {
		t.Errorf("unproject round trip gave (%d, %d)", x, y)
	}

	cam.RotateX(0.1)
	if cam.TopDown() {
		t.Error("rotated camera is not top-down")
	}
	cam.ResetView()
	if !cam.TopDown() || cam.Zoom != 1 {
		t.Error("reset should restore the top-down view")
	}
}

func TestCameraFit(t *testing.T) {
	cam := NewCamera()
	cam.Fit([]r3.Vector{{X: -10, Z: -40}, {X: 30, Y: 5}})
	if cam.Center != (r3.Vector{X: 10, Y: 2.5, Z: -20}) {
		t.Errorf("center %v", cam.Center)
	}
	if math.Abs(cam.Span-48) > 1e-9 {
		t.Errorf("span %v, want 48", cam.Span)
	}

	cam.Fit([]r3.Vector{{X: 1}})
	if cam.Span != 10 {
		t.Errorf("a single point should use the minimum span, got %v", cam.Span)
	}
}

func TestTrackDrawsPath(t *testing.T) {
	env := sim.Environment{Obstacles: []sim.Obstacle{{Center: r3.Vector{X: 5, Z: -20}, Radius: 3}}}
	c := NewCanvas(40, 20)
	cam := Track(c, env, []r3.Vector{{}, {Z: -40}})
	if cam.Span < 40 {
		t.Errorf("camera should fit the path, span %v", cam.Span)
	}
	w, h := c.Dots()
	sx, sy, _, _ := cam.Project(r3.Vector{Z: -20}, w, h)
	if !c.IsSet(sx, sy) {
		t.Error("midpoint of the path should be drawn")
	}
}

func TestCycleString(t *testing.T) {
	opts := []string{"a", "b"}
	if got := cycleString(opts, "", 1); got != "a" {
		t.Errorf("got %q", got)
	}
	if got := cycleString(opts, "b", 1); got != "" {
		t.Errorf("got %q", got)
	}
	if got := cycleString(opts, "", -1); got != "b" {
		t.Errorf("got %q", got)
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("ocean").Name != "ocean" || GetTheme("nope").Name != Themes[0].Name {
		t.Error("theme lookup")
	}
	th := Themes[len(Themes)-1]
	if th.Next().Name != Themes[0].Name {
		t.Error("themes should wrap around")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names")
	}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLiveRunsToCompletion(t *testing.T) {
	sc, err := scenario.Parse([]byte(`
name: live
layout: drone
max_ticks: 2000
mission:
  kind: goto
  target: {x: 0, y: 0, z: -20}
  speed: 10
`))
	if err != nil {
		t.Fatal(err)
	}
	setup, err := scenario.Build(sc, config.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	m := NewLive(setup, scenario.Options{Log: zerolog.Nop()}, ThemeMinimal)

	m.Update(key(" "))
	m.Update(TickMsg{})
	if m.Ticks() != 0 {
		t.Fatal("paused model should not step")
	}
	m.Update(key("n"))
	if m.Ticks() != 1 {
		t.Fatalf("single step gave %d ticks", m.Ticks())
	}
	m.Update(key(" "))

	for i := 0; i < 6; i++ {
		m.Update(key("f"))
	}
	for i := 0; i < 100 && !m.Done(); i++ {
		m.Update(TickMsg{})
	}
	if !m.Done() || m.Err() != nil {
		t.Fatalf("done=%v err=%v after %d ticks", m.Done(), m.Err(), m.Ticks())
	}
	if m.Outcome() != "arrived" {
		t.Errorf("outcome %q", m.Outcome())
	}

	view := m.View()
	for _, want := range []string{"LIVE", "DONE arrived", "goal distance", "distance_travelled"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q", want)
		}
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestLiveRecordsGIF(t *testing.T) {
	sc, err := scenario.Parse([]byte("name: rec\nmission: {kind: goto, target: {z: -5}}\n"))
	if err != nil {
		t.Fatal(err)
	}
	setup, err := scenario.Build(sc, config.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	m := NewLive(setup, scenario.Options{Log: zerolog.Nop()}, ThemeRetro)
	m.gifPath = filepath.Join(t.TempDir(), "rec.gif")

	m.Update(key("g"))
	for i := 0; i < 3; i++ {
		m.Update(TickMsg{})
	}
	if len(m.frames) != 3 {
		t.Fatalf("captured %d frames", len(m.frames))
	}
	m.Update(key("g"))
	if m.Err() != nil {
		t.Fatal(m.Err())
	}
	if info, err := os.Stat(m.gifPath); err != nil || info.Size() == 0 {
		t.Errorf("gif not written: %v", err)
	}
}
