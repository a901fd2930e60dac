package dynamo

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/metrics"
)

type Simulator struct {
	model      ForceModel
	integrator Integrator
	pool       *Pool
	observers  []Observer
}

func New(model ForceModel, integrator Integrator, pool *Pool) *Simulator {
	if pool == nil {
		pool = NewPool(1)
	}
	return &Simulator{
		model:      model,
		integrator: integrator,
		pool:       pool,
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Pool() *Pool { return s.pool }

// Run advances st in place and returns the sampled position series.
//
// Row 0 holds the initial positions. After every step that is a nonzero
// multiple of the plan stride the positions go to row step/stride, and if
// the last step is not such a multiple the final positions are written to
// the last row, so the series always ends with the final state.
func (s *Simulator) Run(ctx context.Context, st *body.State, cfg Config) (*Result, error) {
	plan, err := NewPlan(cfg.Dt, cfg.Duration, cfg.Outputs)
	if err != nil {
		return nil, err
	}
	if st == nil || st.Len() == 0 {
		return nil, ErrNoBodies
	}

	n := st.Len()
	result := &Result{
		Output: mat.NewDense(plan.NumOutputs, 3*n, nil),
		Plan:   plan,
	}
	st.SnapshotPositions(result.Output.RawRowView(0))

	var (
		p0 r3.Vec
		e0 float64
	)
	if cfg.Diagnostics {
		p0 = metrics.Momentum(st)
		e0 = s.computeEnergy(st)
	}

	dt := cfg.Dt
	q := s.model.Quantity()
	for step := 1; step < plan.NumSteps; step++ {
		select {
		case <-ctx.Done():
			return result, &SimulationError{
				Step:    step,
				Time:    float64(step-1) * dt,
				Wrapped: fmt.Errorf("%w: %v", ErrContextCanceled, ctx.Err()),
			}
		default:
		}

		s.model.Compute(st, s.pool)
		s.integrator.UpdateVelocities(st, q, dt, s.pool)
		s.integrator.UpdatePositions(st, dt, s.pool)
		result.StepsTaken++

		if cfg.ValidateState {
			if err := s.validate(st); err != nil {
				return result, &SimulationError{Step: step, Time: float64(step) * dt, Wrapped: err}
			}
		}

		if row, ok := plan.SampleRow(step); ok {
			st.SnapshotPositions(result.Output.RawRowView(row))
		}

		for _, obs := range s.observers {
			obs.OnStep(step, float64(step)*dt, st)
		}
	}

	if plan.NeedsFinalRow() {
		st.SnapshotPositions(result.Output.RawRowView(plan.NumOutputs - 1))
	}

	if cfg.Diagnostics {
		result.MomentumDrift = r3.Norm(r3.Sub(metrics.Momentum(st), p0))
		if e0 != 0 {
			result.EnergyDrift = math.Abs(s.computeEnergy(st)-e0) / math.Abs(e0)
		}
	}

	return result, nil
}

func (s *Simulator) computeEnergy(st *body.State) float64 {
	if h, ok := s.model.(Hamiltonian); ok {
		return h.Energy(st)
	}
	return 0
}

func (s *Simulator) validate(st *body.State) error {
	return s.pool.ForErr(st.Len(), st.Positions.BlockSize(), func(_, start, end int) error {
		for i := start; i < end; i++ {
			x, y, z := st.Positions.Vec(i)
			if !finite(x) || !finite(y) || !finite(z) {
				return fmt.Errorf("%w: body %d", ErrInvalidState, i)
			}
		}
		return nil
	})
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
