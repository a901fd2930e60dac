package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
)

func randomState(n, blockSize int, seed int64) *body.State {
	rng := rand.New(rand.NewSource(seed))
	st := body.NewState(n, blockSize)
	for i := 0; i < n; i++ {
		st.Masses[i] = 1e20 * (0.5 + rng.Float64())
		for c := body.X; c <= body.Z; c++ {
			st.Positions.Set(i, c, 1e6*(rng.Float64()-0.5))
			st.Velocities.Set(i, c, rng.NormFloat64())
		}
	}
	return st
}

func vecAt(f []float64, i int) (float64, float64, float64) {
	return f[i*3], f[i*3+1], f[i*3+2]
}

func norm(x, y, z float64) float64 { return math.Sqrt(x*x + y*y + z*z) }

func TestTwoBodyAnalyticForce(t *testing.T) {
	p := Params{G: GravitationalConstant, Softening: 0}
	m1, m2, r := 5.0e24, 7.0e22, 3.8e8

	st := body.NewState(2, body.DefaultBlockSize)
	st.Masses[0], st.Masses[1] = m1, m2
	st.Positions.Set(1, body.X, r)

	want := p.G * m1 * m2 / (r * r)
	pool := dynamo.NewPool(1)

	sym := NewSymmetric(p)
	sym.Compute(st, pool)
	fx, fy, fz := vecAt(st.Forces, 0)
	if math.Abs(fx-want)/want > 1e-12 || fy != 0 || fz != 0 {
		t.Errorf("symmetric force on body 0 = (%g,%g,%g), want (%g,0,0)", fx, fy, fz, want)
	}
	if gx, _, _ := vecAt(st.Forces, 1); math.Abs(gx+want)/want > 1e-12 {
		t.Errorf("symmetric force on body 1 = %g, want %g", gx, -want)
	}

	direct := NewDirect(p)
	direct.Compute(st, pool)
	ax, _, _ := vecAt(st.Forces, 0)
	if math.Abs(ax*m1-want)/want > 1e-12 {
		t.Errorf("direct acceleration * m1 = %g, want %g", ax*m1, want)
	}
}

func TestSingleBodyHasNoForce(t *testing.T) {
	st := randomState(1, 4, 1)
	for _, model := range []dynamo.ForceModel{NewDirect(DefaultParams()), NewSymmetric(DefaultParams())} {
		st.Forces[0] = 42
		model.Compute(st, dynamo.NewPool(1))
		if x, y, z := vecAt(st.Forces, 0); x != 0 || y != 0 || z != 0 {
			t.Errorf("%s: force on lone body = (%g,%g,%g)", model.Name(), x, y, z)
		}
	}
}

// Direct and Symmetric must agree once Direct's accelerations are scaled
// by mass, whatever the worker count and block size.
func TestDirectSymmetricEquivalence(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		blockSize int
		workers   int
	}{
		{"serial", 37, 8, 1},
		{"two workers", 37, 8, 2},
		{"odd block", 50, 7, 3},
		{"one worker per body", 23, 4, 23},
		{"default block", 130, body.DefaultBlockSize, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := randomState(tt.n, tt.blockSize, 7)
			pool := dynamo.NewPool(tt.workers)

			NewDirect(DefaultParams()).Compute(st, pool)
			acc := append([]float64(nil), st.Forces...)

			NewSymmetric(DefaultParams()).Compute(st, pool)

			for i := 0; i < tt.n; i++ {
				ax, ay, az := vecAt(acc, i)
				m := st.Masses[i]
				fx, fy, fz := vecAt(st.Forces, i)
				diff := norm(ax*m-fx, ay*m-fy, az*m-fz)
				if rel := diff / norm(fx, fy, fz); rel > 1e-10 {
					t.Errorf("body %d: relative difference %g", i, rel)
				}
			}
		})
	}
}

// The parallel symmetric path must match the serial one. Running it with
// one worker per body maximises the number of workers that write the same
// F[j]; without private accumulators this test also fails under -race.
func TestSymmetricParallelMatchesSerial(t *testing.T) {
	const n = 64
	st := randomState(n, 8, 11)

	model := NewSymmetric(DefaultParams())
	model.Compute(st, dynamo.NewPool(1))
	serial := append([]float64(nil), st.Forces...)

	for _, workers := range []int{2, 5, n} {
		model.Compute(st, dynamo.NewPool(workers))
		for i := 0; i < n; i++ {
			sx, sy, sz := vecAt(serial, i)
			px, py, pz := vecAt(st.Forces, i)
			if rel := norm(sx-px, sy-py, sz-pz) / norm(sx, sy, sz); rel > 1e-10 {
				t.Errorf("workers=%d body %d: relative difference %g", workers, i, rel)
			}
		}
	}
}

func TestSymmetricNetForceIsZero(t *testing.T) {
	st := randomState(40, 8, 3)
	NewSymmetric(DefaultParams()).Compute(st, dynamo.NewPool(4))

	var sx, sy, sz, scale float64
	for i := 0; i < st.Len(); i++ {
		x, y, z := vecAt(st.Forces, i)
		sx, sy, sz = sx+x, sy+y, sz+z
		scale = math.Max(scale, norm(x, y, z))
	}
	if net := norm(sx, sy, sz); net > 1e-10*scale*float64(st.Len()) {
		t.Errorf("net force %g is not negligible against %g", net, scale)
	}
}

func TestComputeDoesNotAccumulateAcrossCalls(t *testing.T) {
	st := randomState(20, 4, 5)
	for _, model := range []dynamo.ForceModel{NewDirect(DefaultParams()), NewSymmetric(DefaultParams())} {
		for _, workers := range []int{1, 3} {
			pool := dynamo.NewPool(workers)
			model.Compute(st, pool)
			first := append([]float64(nil), st.Forces...)
			model.Compute(st, pool)
			for k := range first {
				if st.Forces[k] != first[k] {
					t.Fatalf("%s workers=%d: Forces[%d] changed from %g to %g on recompute",
						model.Name(), workers, k, first[k], st.Forces[k])
				}
			}
		}
	}
}

func TestSymmetricDeterministicForWorkerCount(t *testing.T) {
	st := randomState(33, 8, 9)
	a := NewSymmetric(DefaultParams())
	b := NewSymmetric(DefaultParams())

	a.Compute(st, dynamo.NewPool(4))
	first := append([]float64(nil), st.Forces...)
	b.Compute(st, dynamo.NewPool(4))

	for k := range first {
		if first[k] != st.Forces[k] {
			t.Fatalf("Forces[%d]: %g != %g", k, first[k], st.Forces[k])
		}
	}
}

func TestSofteningBoundsCoincidentBodies(t *testing.T) {
	st := body.NewState(2, 4)
	st.Masses[0], st.Masses[1] = 1, 1

	NewSymmetric(Params{G: 1, Softening: 1e-9}).Compute(st, dynamo.NewPool(1))
	for k, f := range st.Forces {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Errorf("Forces[%d] = %v for coincident bodies", k, f)
		}
	}
}
