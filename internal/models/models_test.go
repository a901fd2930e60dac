package models

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

func momentum(t *mat.Dense) (px, py, pz float64) {
	n, _ := t.Dims()
	for i := 0; i < n; i++ {
		m := t.At(i, body.ColMass)
		px += m * t.At(i, body.ColVX)
		py += m * t.At(i, body.ColVY)
		pz += m * t.At(i, body.ColVZ)
	}
	return px, py, pz
}

func TestRingIsCircular(t *testing.T) {
	for _, n := range []int{2, 3, 8} {
		table := Ring(Options{N: n, Radius: 2, Mass: 3})
		st, err := body.FromTable(table, 4)
		if err != nil {
			t.Fatal(err)
		}

		physics.NewDirect(physics.Params{G: 1}).Compute(st, dynamo.NewPool(1))
		for i := 0; i < n; i++ {
			x, y, _ := st.Positions.Vec(i)
			vx, vy, _ := st.Velocities.Vec(i)
			ax, ay := st.Forces[3*i], st.Forces[3*i+1]

			r := math.Hypot(x, y)
			want := (vx*vx + vy*vy) / r
			got := -(ax*x + ay*y) / r
			if math.Abs(got-want) > 1e-12*want {
				t.Errorf("n=%d body %d: inward acceleration %g, centripetal %g", n, i, got, want)
			}
			if dot := x*vx + y*vy; math.Abs(dot) > 1e-12 {
				t.Errorf("n=%d body %d: velocity not tangential (%g)", n, i, dot)
			}
		}
	}
}

func TestBinary(t *testing.T) {
	table := Binary(3, 1, 4, 2)

	if px, py, pz := momentum(table); math.Abs(px)+math.Abs(py)+math.Abs(pz) > 1e-15 {
		t.Errorf("momentum = (%g,%g,%g)", px, py, pz)
	}
	com := 3*table.At(0, body.ColX) + 1*table.At(1, body.ColX)
	if math.Abs(com) > 1e-15 {
		t.Errorf("centre of mass at %g", com)
	}
	if sep := table.At(1, body.ColX) - table.At(0, body.ColX); sep != 4 {
		t.Errorf("separation = %g", sep)
	}

	vrel := table.At(1, body.ColVY) - table.At(0, body.ColVY)
	if want := math.Sqrt(2 * 4 / 4.0); math.Abs(vrel-want) > 1e-15 {
		t.Errorf("relative speed = %g, want %g", vrel, want)
	}
}

func TestCloud(t *testing.T) {
	a := Cloud(Options{N: 50, Seed: 7, Radius: 3})
	b := Cloud(Options{N: 50, Seed: 7, Radius: 3})
	c := Cloud(Options{N: 50, Seed: 8, Radius: 3})

	if !mat.Equal(a, b) {
		t.Error("same seed produced different tables")
	}
	if mat.Equal(a, c) {
		t.Error("different seeds produced the same table")
	}

	for i := 0; i < 50; i++ {
		m := a.At(i, body.ColMass)
		if m < 0.5 || m > 1.5 {
			t.Errorf("body %d mass %g", i, m)
		}
		r := math.Sqrt(a.At(i, body.ColX)*a.At(i, body.ColX) +
			a.At(i, body.ColY)*a.At(i, body.ColY) +
			a.At(i, body.ColZ)*a.At(i, body.ColZ))
		if r > 3 {
			t.Errorf("body %d outside the sphere: r=%g", i, r)
		}
	}

	if px, py, pz := momentum(a); math.Abs(px)+math.Abs(py)+math.Abs(pz) > 1e-12 {
		t.Errorf("momentum = (%g,%g,%g)", px, py, pz)
	}
}

func TestGenerate(t *testing.T) {
	for _, name := range Names() {
		table, err := Generate(name, Options{N: 5, Seed: 1})
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if _, err := body.FromTable(table, body.DefaultBlockSize); err != nil {
			t.Errorf("%s: table rejected: %v", name, err)
		}
	}

	if _, err := Generate("galaxy", Options{}); err == nil {
		t.Error("expected an error for an unknown model")
	}
}
