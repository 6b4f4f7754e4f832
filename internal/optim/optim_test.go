package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/navcore/internal/config"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch([]Param{
		{Name: "a", Values: []float64{-1, 0, 1, 2}},
		{Name: "b", Values: []float64{0, 5, 10}},
	})
	if g.Size() != 12 {
		t.Fatalf("size %d, want 12", g.Size())
	}

	best, trials, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		return (p["a"]-1)*(p["a"]-1) + math.Abs(p["b"]-5), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 12 {
		t.Errorf("ran %d trials, want 12", len(trials))
	}
	if best.Params["a"] != 1 || best.Params["b"] != 5 || best.Score != 0 {
		t.Errorf("unexpected best %+v", best)
	}
}

func TestGridSearchKeepsFailures(t *testing.T) {
	boom := errors.New("boom")
	g := NewGridSearch([]Param{{Name: "a", Values: []float64{1, 2, 3}}})

	best, trials, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		if p["a"] == 1 {
			return 0, boom
		}
		return p["a"], nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if best.Params["a"] != 2 {
		t.Errorf("best %v, want a=2", best.Params)
	}
	if !errors.Is(trials[0].Err, boom) {
		t.Errorf("first trial error %v", trials[0].Err)
	}

	_, _, err = g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return 0, boom
	})
	if !errors.Is(err, ErrNoTrial) || !errors.Is(err, boom) {
		t.Errorf("expected ErrNoTrial carrying the trial errors, got %v", err)
	}
}

func TestGridSearchInfiniteScores(t *testing.T) {
	g := NewGridSearch([]Param{{Name: "a", Values: []float64{1, 2}}})
	best, _, err := g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return math.Inf(1), nil
	})
	if err != nil || best.Params["a"] != 1 {
		t.Errorf("expected the first unfinished trial to win, got %+v, %v", best, err)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := NewGridSearch([]Param{{Name: "a", Values: []float64{1, 2, 3}}})

	calls := 0
	_, trials, err := g.Search(ctx, func(context.Context, map[string]float64) (float64, error) {
		calls++
		cancel()
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 || len(trials) != 0 {
		t.Errorf("expected the search to stop after one call, got %d calls and %d trials", calls, len(trials))
	}
}

func TestParseParam(t *testing.T) {
	p, err := ParseParam("nav.kp=1, 2.5,4")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "nav.kp" || len(p.Values) != 3 || p.Values[1] != 2.5 {
		t.Errorf("unexpected param %+v", p)
	}

	p, err = ParseParam("align.kp=5:10:2.5")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{5, 7.5, 10}
	if len(p.Values) != len(want) {
		t.Fatalf("range values %v, want %v", p.Values, want)
	}
	for i := range want {
		if math.Abs(p.Values[i]-want[i]) > 1e-12 {
			t.Errorf("range values %v, want %v", p.Values, want)
		}
	}

	for _, bad := range []string{"nav.kp", "=1", "warp.kp=1", "nav.kp=1,x", "nav.kp=3:1:1", "nav.kp=1:2:0"} {
		if _, err := ParseParam(bad); err == nil {
			t.Errorf("ParseParam(%q) should fail", bad)
		}
	}
}

func TestApply(t *testing.T) {
	base := config.DefaultConfig()
	cfg, err := Apply(base, map[string]float64{"nav.kp": 9, "align.kd": 0.5, "rover.kp": 2})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Nav.Gains.Kp != 9 || cfg.Align.Gains.Kd != 0.5 || cfg.Rover.Heading.Kp != 2 {
		t.Errorf("parameters not applied: %+v", cfg)
	}
	if base.Nav.Gains.Kp == 9 {
		t.Error("base config was modified")
	}
	if _, err := Apply(base, map[string]float64{"nav.kq": 1}); err == nil {
		t.Error("expected an unknown parameter error")
	}
}
