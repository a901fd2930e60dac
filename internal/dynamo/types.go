package dynamo

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/gravsim/internal/body"
)

// Quantity tells the integrator what a force model wrote into
// body.State.Forces.
type Quantity int

const (
	// Acceleration entries are already divided by the body's own mass.
	Acceleration Quantity = iota
	// Force entries must be divided by the body's mass before use.
	Force
)

func (q Quantity) String() string {
	if q == Force {
		return "force"
	}
	return "acceleration"
}

// ForceModel fills st.Forces from the current positions and masses. Every
// slot is overwritten on each call; nothing from a previous step survives.
type ForceModel interface {
	Name() string
	Quantity() Quantity
	Compute(st *body.State, pool *Pool)
}

// Integrator advances kinematic state from the forces of the same step.
type Integrator interface {
	UpdateVelocities(st *body.State, q Quantity, dt float64, pool *Pool)
	UpdatePositions(st *body.State, dt float64, pool *Pool)
}

// Hamiltonian is implemented by force models that can report the total
// energy matching their force law.
type Hamiltonian interface {
	Energy(st *body.State) float64
}

// Observer is notified after every completed step, outside any pool stage.
type Observer interface {
	OnStep(step int, t float64, st *body.State)
}

type Config struct {
	Dt       float64
	Duration float64
	// Outputs is the requested number of position snapshots.
	Outputs       int
	ValidateState bool
	// Diagnostics enables the momentum and energy drift figures. Both
	// need extra passes over all bodies, so they are off by default.
	Diagnostics bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		Outputs:       100,
		ValidateState: false,
	}
}

type Result struct {
	// Output has Plan.NumOutputs rows of interleaved x,y,z per body.
	Output     *mat.Dense
	Plan       Plan
	StepsTaken int
	// MomentumDrift is |P_final - P_initial|. Zero unless
	// Config.Diagnostics is set.
	MomentumDrift float64
	// EnergyDrift is relative; zero when the model is not Hamiltonian or
	// diagnostics are off.
	EnergyDrift float64
}
