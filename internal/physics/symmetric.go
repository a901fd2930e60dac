package physics

import (
	"math"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
)

// lineFloats is the number of float64 values in one cache line.
var lineFloats = int(unsafe.Sizeof(cpu.CacheLinePad{})) / 8

// Symmetric evaluates each unordered pair once and applies the result to
// both bodies with opposite signs. The value written for i is a true
// force and must be divided by m_i to get an acceleration.
//
// With more than one worker, rows i are dealt to workers cyclically
// (worker w takes i = w, w+W, ...), which balances the shrinking
// triangular rows. Each worker accumulates into its own region of buf;
// regions are padded to whole cache lines so neighbours never share one.
// After the pair stage a second stage sums the regions per body in
// worker order, which makes the result independent of scheduling for a
// fixed worker count.
type Symmetric struct {
	params Params
	buf    []float64
	stride int
}

func NewSymmetric(p Params) *Symmetric {
	return &Symmetric{params: p}
}

func (s *Symmetric) Name() string                  { return "symmetric" }
func (s *Symmetric) Quantity() dynamo.Quantity     { return dynamo.Force }
func (s *Symmetric) Params() Params                { return s.params }
func (s *Symmetric) Energy(st *body.State) float64 { return energy(st, s.params) }

func (s *Symmetric) Compute(st *body.State, pool *dynamo.Pool) {
	n := st.Len()
	workers := pool.Workers()
	if workers == 1 || n < 2 {
		st.ResetForces()
		for i := 0; i < n; i++ {
			s.accumulateRow(st, i, st.Forces)
		}
		return
	}

	s.ensure(workers, n)

	pool.Each(func(w int) {
		acc := s.local(w, n)
		clear(acc)
		for i := w; i < n; i += workers {
			s.accumulateRow(st, i, acc)
		}
	})

	pool.For(n, st.Positions.BlockSize(), func(_, start, end int) {
		for k := start * 3; k < end*3; k++ {
			sum := 0.0
			for w := 0; w < workers; w++ {
				sum += s.buf[w*s.stride+k]
			}
			st.Forces[k] = sum
		}
	})
}

// accumulateRow adds the forces of every pair (i, j>i) into f.
func (s *Symmetric) accumulateRow(st *body.State, i int, f []float64) {
	g, eps := s.params.G, s.params.Softening
	pos := st.Positions
	n := st.Len()
	mi := st.Masses[i]
	xi, yi, zi := pos.Vec(i)

	var fx, fy, fz float64
	for j := i + 1; j < n; j++ {
		xj, yj, zj := pos.Vec(j)
		dx := xj - xi
		dy := yj - yi
		dz := zj - zi
		r := math.Sqrt(dx*dx + dy*dy + dz*dz + eps)
		mag := g * mi * st.Masses[j] / (r * r * r)
		fx += mag * dx
		fy += mag * dy
		fz += mag * dz
		f[j*3] -= mag * dx
		f[j*3+1] -= mag * dy
		f[j*3+2] -= mag * dz
	}
	f[i*3] += fx
	f[i*3+1] += fy
	f[i*3+2] += fz
}

func (s *Symmetric) ensure(workers, n int) {
	stride := (3*n + lineFloats - 1) / lineFloats * lineFloats
	if s.stride == stride && len(s.buf) == workers*stride {
		return
	}
	s.stride = stride
	s.buf = make([]float64, workers*stride)
}

func (s *Symmetric) local(w, n int) []float64 {
	off := w * s.stride
	return s.buf[off : off+3*n]
}
