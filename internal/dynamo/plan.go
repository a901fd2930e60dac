package dynamo

import "fmt"

// Plan is the step count and output sampling of one run.
type Plan struct {
	NumSteps   int
	Stride     int
	NumOutputs int
}

// NewPlan validates the time parameters and derives the sampling plan.
//
// NumSteps is total/dt rounded half up. When fewer steps than requested
// outputs exist the request collapses to a single output. The realised
// output count is ceil(NumSteps/Stride) and may differ from the request
// because Stride is an integer quotient.
func NewPlan(dt, total float64, outputs int) (Plan, error) {
	if !(dt > 0) {
		return Plan{}, fmt.Errorf("%w, got %g", ErrTimeStep, dt)
	}
	if !(total > 0) {
		return Plan{}, fmt.Errorf("%w, got %g", ErrTotalTime, total)
	}
	if total < dt {
		return Plan{}, fmt.Errorf("%w (%g < %g)", ErrTotalBelowStep, total, dt)
	}
	if outputs <= 0 {
		return Plan{}, fmt.Errorf("%w, got %d", ErrOutputs, outputs)
	}

	steps := int(total/dt + 0.5)
	if steps < outputs {
		outputs = 1
	}
	stride := steps / outputs

	return Plan{
		NumSteps:   steps,
		Stride:     stride,
		NumOutputs: (steps + stride - 1) / stride,
	}, nil
}

// SampleRow reports the output row that receives the positions after the
// given step, if any. Row 0 is reserved for the initial state.
func (p Plan) SampleRow(step int) (int, bool) {
	if step <= 0 || step%p.Stride != 0 {
		return 0, false
	}
	return step / p.Stride, true
}

// LastStep is the index of the final executed step. Steps run from 1 to
// NumSteps-1; with NumSteps == 1 no step runs and LastStep is 0.
func (p Plan) LastStep() int { return p.NumSteps - 1 }

// NeedsFinalRow reports whether the final state misses the regular
// sampling and must be written to the last row explicitly.
func (p Plan) NeedsFinalRow() bool {
	return p.LastStep()%p.Stride != 0
}

// RowTime is the simulated time of the state stored in the given row.
func (p Plan) RowTime(row int, dt float64) float64 {
	if row == p.NumOutputs-1 && p.NeedsFinalRow() {
		return float64(p.LastStep()) * dt
	}
	return float64(row*p.Stride) * dt
}
