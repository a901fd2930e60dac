// Package models builds initial body tables (one row per body: mass,
// x, y, z, vx, vy, vz) for the simulator.
package models

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/gravsim/internal/body"
)

// Options parameterises the generators. Zero fields take defaults.
type Options struct {
	N      int
	Seed   uint64
	G      float64
	Mass   float64
	Radius float64
}

func (o Options) withDefaults() Options {
	if o.N <= 0 {
		o.N = 2
	}
	if o.G == 0 {
		o.G = 1
	}
	if o.Mass == 0 {
		o.Mass = 1
	}
	if o.Radius == 0 {
		o.Radius = 1
	}
	return o
}

type Generator func(Options) (*mat.Dense, error)

var registry = map[string]Generator{
	"ring":  func(o Options) (*mat.Dense, error) { return Ring(o), nil },
	"cloud": func(o Options) (*mat.Dense, error) { return Cloud(o), nil },
	"binary": func(o Options) (*mat.Dense, error) {
		return Binary(o.Mass, o.Mass, 2*o.Radius, o.G), nil
	},
	"earth-moon": func(Options) (*mat.Dense, error) { return EarthMoon(), nil },
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Generate(name string, o Options) (*mat.Dense, error) {
	gen, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("models: unknown model %q (available: %v)", name, Names())
	}
	return gen(o.withDefaults())
}

func row(t *mat.Dense, i int, m, x, y, z, vx, vy, vz float64) {
	t.SetRow(i, []float64{m, x, y, z, vx, vy, vz})
}

// Ring places N equal masses on a circle in the XY plane, each moving on
// the circular orbit that the pull of the other N-1 sustains.
func Ring(o Options) *mat.Dense {
	o = o.withDefaults()
	n, r, m := o.N, o.Radius, o.Mass

	// pull is the inward acceleration in units of G m / r^2.
	pull := 0.0
	for k := 1; k < n; k++ {
		pull += 1 / (4 * math.Sin(math.Pi*float64(k)/float64(n)))
	}
	v := math.Sqrt(o.G * m * pull / r)

	t := mat.NewDense(n, body.NumColumns, nil)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		s, c := math.Sincos(theta)
		row(t, i, m, r*c, r*s, 0, -v*s, v*c, 0)
	}
	return t
}

// Cloud scatters N bodies uniformly inside a sphere with masses in
// [0.5, 1.5] times Mass and small random velocities. The same seed always
// yields the same table.
func Cloud(o Options) *mat.Dense {
	o = o.withDefaults()
	rng := rand.New(rand.NewSource(o.Seed))

	sigma := 0.1 * math.Sqrt(o.G*o.Mass*float64(o.N)/o.Radius)
	t := mat.NewDense(o.N, body.NumColumns, nil)
	for i := 0; i < o.N; i++ {
		var x, y, z float64
		for {
			x, y, z = 2*rng.Float64()-1, 2*rng.Float64()-1, 2*rng.Float64()-1
			if x*x+y*y+z*z <= 1 {
				break
			}
		}
		m := o.Mass * (0.5 + rng.Float64())
		row(t, i, m,
			o.Radius*x, o.Radius*y, o.Radius*z,
			sigma*rng.NormFloat64(), sigma*rng.NormFloat64(), sigma*rng.NormFloat64())
	}
	removeDrift(t)
	return t
}

// Binary puts two bodies sep apart on circular orbits around their common
// centre of mass, which sits at rest at the origin.
func Binary(m1, m2, sep, g float64) *mat.Dense {
	total := m1 + m2
	v := math.Sqrt(g * total / sep)

	t := mat.NewDense(2, body.NumColumns, nil)
	row(t, 0, m1, -sep*m2/total, 0, 0, 0, -v*m2/total, 0)
	row(t, 1, m2, sep*m1/total, 0, 0, 0, v*m1/total, 0)
	return t
}

// EarthMoon is the Earth and Moon in SI units at mean distance.
func EarthMoon() *mat.Dense {
	const (
		earth = 5.972e24
		moon  = 7.342e22
		dist  = 3.844e8
		g     = 6.6743015e-11
	)
	return Binary(earth, moon, dist, g)
}

// removeDrift shifts velocities so total momentum is zero.
func removeDrift(t *mat.Dense) {
	n, _ := t.Dims()
	var px, py, pz, total float64
	for i := 0; i < n; i++ {
		m := t.At(i, body.ColMass)
		px += m * t.At(i, body.ColVX)
		py += m * t.At(i, body.ColVY)
		pz += m * t.At(i, body.ColVZ)
		total += m
	}
	for i := 0; i < n; i++ {
		t.Set(i, body.ColVX, t.At(i, body.ColVX)-px/total)
		t.Set(i, body.ColVY, t.At(i, body.ColVY)-py/total)
		t.Set(i, body.ColVZ, t.At(i, body.ColVZ)-pz/total)
	}
}
