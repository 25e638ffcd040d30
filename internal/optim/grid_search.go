// Package optim scans parameter grids by running one simulation per grid
// point.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/sim"
)

// GridSearch enumerates the cartesian product of named parameter values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, md.Configf("grid needs one value list per parameter, got %d names and %d lists", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, md.Configf("parameter %s has no values", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Points returns every grid point, the last parameter varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var points []map[string]float64
	g.collect(0, make(map[string]float64), &points)
	return points
}

func (g *GridSearch) collect(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		point := make(map[string]float64, len(current))
		for k, v := range current {
			point[k] = v
		}
		*out = append(*out, point)
		return
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		g.collect(depth+1, current, out)
	}
	delete(current, name)
}

// Evaluation is the outcome of one grid point. A point whose build or run
// failed has Err set and a NaN Value; Result holds whatever the run
// recorded before failing and Sim is nil when the build failed.
type Evaluation struct {
	Params map[string]float64
	Value  float64
	Result *sim.Result
	Sim    *sim.Simulator
	Err    error
}

// Search runs build(point) for every grid point concurrently, at most limit
// at a time, and ranks the points by the named metric, smallest first.
// Failed points rank last and do not stop the others. Search returns an
// error only when ctx is cancelled or no point succeeded.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*sim.Simulator, error),
	nSteps int,
	metricName string,
	limit int,
) ([]Evaluation, error) {
	points := g.Points()

	ens, err := sim.NewEnsemble(func(member int) (*sim.Simulator, error) {
		return build(points[member])
	}, len(points), limit)
	if err != nil {
		return nil, err
	}

	results, sims, errs := ens.RunAll(ctx, nSteps)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	evals := make([]Evaluation, len(points))
	var failures []error
	for i, p := range points {
		e := Evaluation{Params: p, Value: math.NaN(), Result: results[i], Sim: sims[i], Err: errs[i]}
		if e.Err == nil {
			val, ok := results[i].Metrics[metricName]
			if !ok {
				return nil, fmt.Errorf("metric %q not recorded", metricName)
			}
			e.Value = val
		} else {
			failures = append(failures, e.Err)
		}
		evals[i] = e
	}
	if len(failures) == len(points) {
		return evals, errors.Join(failures...)
	}

	sort.SliceStable(evals, func(i, j int) bool {
		vi, vj := evals[i].Value, evals[j].Value
		if math.IsNaN(vj) {
			return !math.IsNaN(vi)
		}
		return vi < vj
	})
	return evals, nil
}
