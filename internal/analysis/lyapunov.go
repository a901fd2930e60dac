package analysis

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
)

// Trajectory is the distance between a reference run and a perturbed run
// at each sampled time.
type Trajectory struct {
	Times      []float64
	Separation []float64
}

// Divergence runs a copy of st and a second copy with body 0 shifted by
// delta along x, and returns the distance between the two position series
// at every sampled row. The runs happen one after the other on sim, so
// its observers see both. st itself is not modified.
func Divergence(ctx context.Context, sim *dynamo.Simulator, st *body.State, cfg dynamo.Config, delta float64) (*Trajectory, error) {
	ref, err := sim.Run(ctx, st.Clone(), cfg)
	if err != nil {
		return nil, err
	}

	perturbed := st.Clone()
	perturbed.Positions.Add(0, body.X, delta)
	alt, err := sim.Run(ctx, perturbed, cfg)
	if err != nil {
		return nil, err
	}

	rows := ref.Plan.NumOutputs
	tr := &Trajectory{
		Times:      make([]float64, rows),
		Separation: make([]float64, rows),
	}
	for r := 0; r < rows; r++ {
		tr.Times[r] = ref.Plan.RowTime(r, cfg.Dt)
		tr.Separation[r] = RowDistance(ref.Output, alt.Output, r)
	}
	return tr, nil
}

// LyapunovExponent estimates the largest Lyapunov exponent as the slope
// of ln(separation) over time. A positive value indicates chaos. Rows with
// zero separation are skipped; fewer than two usable rows give 0.
//
// No renormalisation happens between samples, so the estimate saturates
// once the separation reaches the size of the system. Keep delta small
// and the run short relative to the crossing time.
func LyapunovExponent(tr *Trajectory) float64 {
	xs := make([]float64, 0, len(tr.Times))
	ys := make([]float64, 0, len(tr.Times))
	for i, sep := range tr.Separation {
		if sep > 0 && !math.IsInf(sep, 0) && !math.IsNaN(sep) {
			xs = append(xs, tr.Times[i])
			ys = append(ys, math.Log(sep))
		}
	}
	if len(xs) < 2 || xs[0] == xs[len(xs)-1] {
		return 0
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return slope
}
