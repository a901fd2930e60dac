package integrators

import (
	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
)

// SemiImplicitEuler updates velocities from the current forces and then
// positions from the updated velocities. Both updates touch only body i's
// own slots, so each is a single pool stage with no write conflicts.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

// UpdateVelocities applies v += a*dt. Entries of st.Forces are divided by
// the body's mass first when q is dynamo.Force.
func (e *SemiImplicitEuler) UpdateVelocities(st *body.State, q dynamo.Quantity, dt float64, pool *dynamo.Pool) {
	vel := st.Velocities
	pool.For(st.Len(), vel.BlockSize(), func(_, start, end int) {
		for i := start; i < end; i++ {
			for c := body.X; c <= body.Z; c++ {
				a := st.Forces[i*3+int(c)]
				if q == dynamo.Force {
					a /= st.Masses[i]
				}
				vel.Add(i, c, a*dt)
			}
		}
	})
}

// UpdatePositions applies x += v*dt.
func (e *SemiImplicitEuler) UpdatePositions(st *body.State, dt float64, pool *dynamo.Pool) {
	pos, vel := st.Positions, st.Velocities
	pool.For(st.Len(), pos.BlockSize(), func(_, start, end int) {
		for i := start; i < end; i++ {
			for c := body.X; c <= body.Z; c++ {
				pos.Add(i, c, vel.Get(i, c)*dt)
			}
		}
	})
}
