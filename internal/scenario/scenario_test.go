package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/san-kum/navcore/internal/config"
	"github.com/san-kum/navcore/internal/geom"
	"github.com/san-kum/navcore/internal/path"
)

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no name", "mission: {kind: goto}"},
		{"unknown kind", "name: x\nmission: {kind: teleport}"},
		{"path without waypoints", "name: x\nmission: {kind: path}"},
		{"path file without name", "name: x\nmission: {kind: path, path_file: a.txt}"},
		{"probe without span", "name: x\nmission: {kind: probe}"},
		{"drive without ground", "name: x\nmission: {kind: drive}"},
		{"unknown preset", "name: x\npreset: gen9\nmission: {kind: goto}"},
		{"flat obstacle", "name: x\nobstacles: [{center: {x: 1}, radius: 0}]\nmission: {kind: goto}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("expected invalid scenario, got %v", err)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte("name: [")); err == nil {
		t.Error("expected a YAML error")
	}
}

func TestLoadExamples(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "scenarios", "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no example scenarios found")
	}
	for _, f := range files {
		if _, err := Load(f); err != nil {
			t.Errorf("%s: %v", f, err)
		}
	}
}

func TestConfigure(t *testing.T) {
	sc := &Scenario{Preset: "lifter", Dt: 0.05, MaxTicks: 10}
	base := config.DefaultConfig()
	cfg := sc.Configure(base)

	if cfg.Sim.Layout != "lifter" || !cfg.Nav.FactorGravity {
		t.Errorf("preset not applied: %+v", cfg.Sim)
	}
	if cfg.Sim.Dt != 0.05 || cfg.Sim.MaxTicks != 10 {
		t.Errorf("overrides not applied: %+v", cfg.Sim)
	}
	if base.Sim.Dt != config.DefaultDt || base.Nav.FactorGravity {
		t.Error("base config was modified")
	}
}

func TestPoseFrame(t *testing.T) {
	f := Pose{Position: r3.Vector{X: 1}}.Frame()
	if f != geom.Identity(r3.Vector{X: 1}) {
		t.Errorf("zero forward should give identity, got %v", f)
	}
	f = Pose{Forward: r3.Vector{X: 2}}.Frame()
	if f.Forward != geom.UnitX || f.Up != geom.UnitY {
		t.Errorf("unexpected frame %v", f)
	}
}

func TestPathFromFile(t *testing.T) {
	dir := t.TempDir()
	p := &path.Path{Name: "route", Speed: 12, Waypoints: []path.Waypoint{
		{Frame: geom.Identity(r3.Vector{Z: -5})},
		{Frame: geom.Identity(r3.Vector{Z: -15})},
	}}
	if err := os.WriteFile(filepath.Join(dir, "paths.txt"), []byte(path.Marshal([]*path.Path{p})), 0644); err != nil {
		t.Fatal(err)
	}
	yaml := "name: replay\nmission: {kind: path, path: route, path_file: paths.txt}\n"
	file := filepath.Join(dir, "replay.yaml")
	if err := os.WriteFile(file, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := Load(file)
	if err != nil {
		t.Fatal(err)
	}
	got, err := sc.Path()
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "route" || got.Speed != 12 || len(got.Waypoints) != 2 {
		t.Errorf("unexpected path %+v", got)
	}

	sc.Mission.Path = "other"
	if _, err := sc.Path(); !errors.Is(err, path.ErrUnknownPath) {
		t.Errorf("expected unknown path, got %v", err)
	}
}

func TestInlinePath(t *testing.T) {
	sc := &Scenario{Name: "inline", Mission: Mission{Kind: KindPath, Waypoints: []WaypointSpec{
		{Pose: Pose{Position: r3.Vector{Z: -3}}, Docking: true, DockingDir: r3.Vector{Z: 1}},
	}}}
	p, err := sc.Path()
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "inline" || p.Speed != path.DefaultSpeed {
		t.Errorf("unexpected header %q %v", p.Name, p.Speed)
	}
	if !p.Waypoints[0].Docking || p.Waypoints[0].DockingDir != (r3.Vector{Z: 1}) {
		t.Errorf("unexpected waypoint %+v", p.Waypoints[0])
	}
}
