package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/gravsim/internal/body"
)

// Momentum returns the total linear momentum sum(m_i * v_i).
func Momentum(st *body.State) r3.Vec {
	var p r3.Vec
	for i, m := range st.Masses {
		vx, vy, vz := st.Velocities.Vec(i)
		p.X += m * vx
		p.Y += m * vy
		p.Z += m * vz
	}
	return p
}

func KineticEnergy(st *body.State) float64 {
	ke := 0.0
	for i, m := range st.Masses {
		vx, vy, vz := st.Velocities.Vec(i)
		ke += 0.5 * m * (vx*vx + vy*vy + vz*vz)
	}
	return ke
}

// PotentialEnergy is the pairwise potential of the softened force law,
// -G m_i m_j / sqrt(r^2 + softening).
func PotentialEnergy(st *body.State, g, softening float64) float64 {
	n := st.Len()
	pe := 0.0
	for i := 0; i < n; i++ {
		xi, yi, zi := st.Positions.Vec(i)
		for j := i + 1; j < n; j++ {
			xj, yj, zj := st.Positions.Vec(j)
			dx, dy, dz := xj-xi, yj-yi, zj-zi
			r := math.Sqrt(dx*dx + dy*dy + dz*dz + softening)
			pe -= g * st.Masses[i] * st.Masses[j] / r
		}
	}
	return pe
}

func Energy(st *body.State, g, softening float64) float64 {
	return KineticEnergy(st) + PotentialEnergy(st, g, softening)
}

// EnergyDrift tracks the largest relative energy deviation from the first
// observed step. It satisfies dynamo.Observer.
type EnergyDrift struct {
	name          string
	energy        func(*body.State) float64
	every         int
	initialEnergy float64
	maxDrift      float64
	samples       int
}

// NewEnergyDrift samples energy on every step that is a multiple of every.
func NewEnergyDrift(energy func(*body.State) float64, every int) *EnergyDrift {
	if every < 1 {
		every = 1
	}
	return &EnergyDrift{
		name:   "energy_drift",
		energy: energy,
		every:  every,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

// Prime records the reference energy before the first step.
func (e *EnergyDrift) Prime(st *body.State) {
	e.Reset()
	e.initialEnergy = e.energy(st)
	e.samples = 1
}

func (e *EnergyDrift) OnStep(step int, t float64, st *body.State) {
	if step%e.every != 0 && e.samples > 0 {
		return
	}

	energy := e.energy(st)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Samples() int { return e.samples }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
