package optim

import (
	"context"
	"errors"
	"math"

	"go.uber.org/multierr"
)

var ErrNoTrial = errors.New("optim: no trial succeeded")

// Param is one searched dimension and the values it takes.
type Param struct {
	Name   string
	Values []float64
}

// Objective scores one parameter combination; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// GridSearch evaluates every combination of its parameters' values.
type GridSearch struct {
	params []Param
}

func NewGridSearch(params []Param) *GridSearch {
	return &GridSearch{params: params}
}

// Size is the number of combinations Search evaluates.
func (g *GridSearch) Size() int {
	if len(g.params) == 0 {
		return 0
	}
	n := 1
	for _, p := range g.params {
		n *= len(p.Values)
	}
	return n
}

// Search returns the lowest scoring trial along with every trial in
// evaluation order. Failed trials are kept with their error; only when all of
// them fail is an error returned.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (Trial, []Trial, error) {
	best := Trial{Score: math.Inf(1)}
	var trials []Trial

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, &best, &trials); err != nil {
		return best, trials, err
	}

	if best.Params == nil {
		var err error
		for _, t := range trials {
			err = multierr.Append(err, t.Err)
		}
		if err == nil {
			return best, trials, ErrNoTrial
		}
		return best, trials, multierr.Append(ErrNoTrial, err)
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	best *Trial,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.params) {
		if depth == 0 {
			return nil
		}
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}

		score, err := objective(ctx, params)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t := Trial{Params: params, Score: score, Err: err}
		*trials = append(*trials, t)
		if err == nil && (best.Params == nil || score < best.Score) {
			*best = t
		}
		return nil
	}

	p := g.params[depth]
	for _, val := range p.Values {
		current[p.Name] = val
		if err := g.searchRecursive(ctx, depth+1, current, objective, best, trials); err != nil {
			return err
		}
	}
	delete(current, p.Name)
	return nil
}
