// Package optim searches run settings for the fastest configuration.
package optim

import (
	"context"
	"math"
	"sort"

	"github.com/san-kum/gravsim/internal/experiment"
)

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs an experiment for every combination of parameter values and
// scores it; lower is better. Points whose build or run fails are kept in
// the trial list with their error and never win. The returned trials are
// sorted best first.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	score func(*experiment.Report) float64,
) (best Trial, trials []Trial, err error) {

	best = Trial{Score: math.Inf(1)}
	g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, score, &trials)
	if err := ctx.Err(); err != nil {
		return best, trials, err
	}

	sort.SliceStable(trials, func(i, j int) bool {
		if (trials[i].Err == nil) != (trials[j].Err == nil) {
			return trials[i].Err == nil
		}
		return trials[i].Score < trials[j].Score
	})
	if len(trials) > 0 && trials[0].Err == nil {
		best = trials[0]
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	score func(*experiment.Report) float64,
	trials *[]Trial,
) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.paramNames) {
		trial := Trial{Params: current, Score: math.Inf(1)}

		exp, err := buildExperiment(current)
		if err != nil {
			trial.Err = err
			*trials = append(*trials, trial)
			return
		}
		report, err := exp.Run(ctx)
		if err != nil {
			trial.Err = err
			*trials = append(*trials, trial)
			return
		}

		trial.Score = score(report)
		*trials = append(*trials, trial)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, buildExperiment, score, trials)
	}
}

// Elapsed scores a run by its wall-clock simulation time.
func Elapsed(r *experiment.Report) float64 { return r.Elapsed.Seconds() }

// EnergyDrift scores a run by its relative energy error.
func EnergyDrift(r *experiment.Report) float64 { return r.EnergyDrift }
