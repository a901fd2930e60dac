package body

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Columns of an input table row.
const (
	ColMass = iota
	ColX
	ColY
	ColZ
	ColVX
	ColVY
	ColVZ
	NumColumns
)

var (
	ErrNoBodies = errors.New("body: dataset must have at least 1 row")
	ErrColumns  = fmt.Errorf("body: dataset must have %d columns", NumColumns)
	ErrMass     = errors.New("body: masses must be positive")
)

// State is the mutable per-body state of one simulation run.
type State struct {
	Masses     []float64
	Positions  *Blocked
	Velocities *Blocked
	// Forces holds x,y,z per body, flat. Whether the entries are forces or
	// accelerations depends on the engine that last wrote them.
	Forces []float64
}

func NewState(n, blockSize int) *State {
	return &State{
		Masses:     make([]float64, n),
		Positions:  NewBlocked(n, blockSize),
		Velocities: NewBlocked(n, blockSize),
		Forces:     make([]float64, 3*n),
	}
}

// FromTable builds a state from an n x 7 table of mass, position and
// velocity columns.
func FromTable(table mat.Matrix, blockSize int) (*State, error) {
	n, cols := table.Dims()
	if cols != NumColumns {
		return nil, fmt.Errorf("%w, got %d", ErrColumns, cols)
	}
	if n == 0 {
		return nil, ErrNoBodies
	}

	st := NewState(n, blockSize)
	for i := 0; i < n; i++ {
		m := table.At(i, ColMass)
		if !(m > 0) {
			return nil, fmt.Errorf("%w: body %d has mass %g", ErrMass, i, m)
		}
		st.Masses[i] = m
		for c := X; c <= Z; c++ {
			st.Positions.Set(i, c, table.At(i, ColX+int(c)))
			st.Velocities.Set(i, c, table.At(i, ColVX+int(c)))
		}
	}
	return st, nil
}

func (s *State) Len() int { return len(s.Masses) }

func (s *State) ResetForces() {
	clear(s.Forces)
}

// SnapshotPositions writes the positions interleaved per body into dst.
func (s *State) SnapshotPositions(dst []float64) {
	s.Positions.CopyTo(dst)
}

// Table converts the state back to the n x 7 input layout.
func (s *State) Table() *mat.Dense {
	n := s.Len()
	t := mat.NewDense(n, NumColumns, nil)
	for i := 0; i < n; i++ {
		t.Set(i, ColMass, s.Masses[i])
		for c := X; c <= Z; c++ {
			t.Set(i, ColX+int(c), s.Positions.Get(i, c))
			t.Set(i, ColVX+int(c), s.Velocities.Get(i, c))
		}
	}
	return t
}

func (s *State) Clone() *State {
	c := &State{
		Masses:     make([]float64, len(s.Masses)),
		Positions:  s.Positions.Clone(),
		Velocities: s.Velocities.Clone(),
		Forces:     make([]float64, len(s.Forces)),
	}
	copy(c.Masses, s.Masses)
	copy(c.Forces, s.Forces)
	return c
}
