package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var ErrShape = errors.New("analysis: unequal shapes")

type Tolerance struct {
	Atol  float64
	Rtol  float64
	Exact bool
}

func DefaultTolerance() Tolerance {
	return Tolerance{Atol: 1e-8, Rtol: 1e-5}
}

// Diff locates one element of a comparison.
type Diff struct {
	Row, Col int
	A, B     float64
	Value    float64
}

type Comparison struct {
	Equal    bool
	AllClose bool
	Close    int
	Size     int
	NaNA     int
	NaNB     int
	MaxAbs   Diff
	MaxRel   Diff
}

// OK reports whether the comparison passes under the tolerance it was run
// with.
func (c Comparison) OK(tol Tolerance) bool {
	if tol.Exact {
		return c.Equal
	}
	return c.AllClose
}

func (c Comparison) Verdict(tol Tolerance) string {
	switch {
	case c.Equal:
		return "equal"
	case !tol.Exact && c.AllClose:
		return "all-close"
	default:
		return "not equal/allclose"
	}
}

func (c Comparison) String() string {
	var sb strings.Builder
	if c.NaNA > 0 {
		fmt.Fprintf(&sb, "a has %d NANs\n", c.NaNA)
	}
	if c.NaNB > 0 {
		fmt.Fprintf(&sb, "b has %d NANs\n", c.NaNB)
	}
	fmt.Fprintf(&sb, "there are %d (%.2f%%) close values\n", c.Close, 100*float64(c.Close)/float64(max(c.Size, 1)))
	fmt.Fprintf(&sb, "max absolute difference is %g at (%d, %d) with %g and %g\n",
		c.MaxAbs.Value, c.MaxAbs.Row, c.MaxAbs.Col, c.MaxAbs.A, c.MaxAbs.B)
	fmt.Fprintf(&sb, "max relative difference is %g at (%d, %d) with %g and %g",
		c.MaxRel.Value, c.MaxRel.Row, c.MaxRel.Col, c.MaxRel.A, c.MaxRel.B)
	return sb.String()
}

// Compare checks a against b element by element. The relative difference
// divides by max(|a|, |b|) and is zero where both values are zero.
func Compare(a, b mat.Matrix, tol Tolerance) (Comparison, error) {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb || ca != cb {
		return Comparison{}, fmt.Errorf("%w: (%d, %d) (%d, %d)", ErrShape, ra, ca, rb, cb)
	}

	c := Comparison{Equal: true, Size: ra * ca}
	first := true
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			x, y := a.At(i, j), b.At(i, j)
			if math.IsNaN(x) {
				c.NaNA++
			}
			if math.IsNaN(y) {
				c.NaNB++
			}
			if x != y {
				c.Equal = false
			}
			if IsClose(x, y, tol) {
				c.Close++
			}

			diff := math.Abs(x - y)
			scale := math.Max(math.Abs(x), math.Abs(y))
			rel := 0.0
			if scale != 0 {
				rel = diff / scale
			}
			if first || greater(diff, c.MaxAbs.Value) {
				c.MaxAbs = Diff{Row: i, Col: j, A: x, B: y, Value: diff}
			}
			if first || greater(rel, c.MaxRel.Value) {
				c.MaxRel = Diff{Row: i, Col: j, A: x, B: y, Value: rel}
			}
			first = false
		}
	}
	c.AllClose = c.Close == c.Size
	return c, nil
}

func IsClose(a, b float64, tol Tolerance) bool {
	if a == b {
		return true
	}
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	return math.Abs(a-b) <= tol.Atol+tol.Rtol*math.Abs(b)
}

// greater orders NaN above every number, so the first NaN difference is
// the reported maximum.
func greater(v, cur float64) bool {
	if math.IsNaN(cur) {
		return false
	}
	return math.IsNaN(v) || v > cur
}
