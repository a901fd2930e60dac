package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/gravsim/internal/body"
)

// NumBodies returns how many bodies an output matrix holds.
func NumBodies(m mat.Matrix) int {
	_, c := m.Dims()
	return c / 3
}

// Column returns one coordinate of one body across all sampled rows.
func Column(m mat.Matrix, i int, axis body.Axis) ([]float64, error) {
	if i < 0 || i >= NumBodies(m) {
		return nil, fmt.Errorf("analysis: body %d out of range [0, %d)", i, NumBodies(m))
	}
	return mat.Col(nil, 3*i+int(axis), m), nil
}

// Separation returns the distance between bodies i and j in every row.
func Separation(m mat.Matrix, i, j int) ([]float64, error) {
	n := NumBodies(m)
	if i < 0 || i >= n || j < 0 || j >= n {
		return nil, fmt.Errorf("analysis: bodies (%d, %d) out of range [0, %d)", i, j, n)
	}

	rows, _ := m.Dims()
	out := make([]float64, rows)
	for r := 0; r < rows; r++ {
		dx := m.At(r, 3*j) - m.At(r, 3*i)
		dy := m.At(r, 3*j+1) - m.At(r, 3*i+1)
		dz := m.At(r, 3*j+2) - m.At(r, 3*i+2)
		out[r] = math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return out, nil
}

// RowDistance is the Euclidean distance between row r of a and of b.
func RowDistance(a, b mat.Matrix, r int) float64 {
	_, cols := a.Dims()
	sum := 0.0
	for c := 0; c < cols; c++ {
		d := a.At(r, c) - b.At(r, c)
		sum += d * d
	}
	return math.Sqrt(sum)
}
