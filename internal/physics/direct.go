package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
)

// Direct evaluates all n(n-1) ordered pairs. The mass of body i cancels
// out, so the value written for i is its acceleration. Each body's slot is
// written only by the worker that owns i, which makes the outer loop safe
// to split without synchronisation.
type Direct struct {
	params Params
}

func NewDirect(p Params) *Direct {
	return &Direct{params: p}
}

func (d *Direct) Name() string                  { return "direct" }
func (d *Direct) Quantity() dynamo.Quantity     { return dynamo.Acceleration }
func (d *Direct) Params() Params                { return d.params }
func (d *Direct) Energy(st *body.State) float64 { return energy(st, d.params) }

func (d *Direct) Compute(st *body.State, pool *dynamo.Pool) {
	pos := st.Positions
	pool.For(st.Len(), pos.BlockSize(), func(_, start, end int) {
		for i := start; i < end; i++ {
			fx, fy, fz := d.accelerationOn(st, i)
			st.Forces[i*3] = fx
			st.Forces[i*3+1] = fy
			st.Forces[i*3+2] = fz
		}
	})
}

func (d *Direct) accelerationOn(st *body.State, i int) (fx, fy, fz float64) {
	g, eps := d.params.G, d.params.Softening
	pos := st.Positions
	size := pos.BlockSize()
	xi, yi, zi := pos.Vec(i)

	for grp := 0; grp < pos.NumGroups(); grp++ {
		xs, ys, zs := pos.Group(grp)
		masses := st.Masses[grp*size : grp*size+len(xs)]
		for k := range xs {
			if grp*size+k == i {
				continue
			}
			dx := xs[k] - xi
			dy := ys[k] - yi
			dz := zs[k] - zi
			r := math.Sqrt(dx*dx + dy*dy + dz*dz + eps)
			f := g * masses[k] / (r * r * r)
			fx += f * dx
			fy += f * dy
			fz += f * dz
		}
	}
	return fx, fy, fz
}
