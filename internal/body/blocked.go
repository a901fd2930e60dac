package body

// Axis indexes one Cartesian component of a 3-vector.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// DefaultBlockSize is the number of bodies whose same-axis components are
// stored contiguously in one block.
const DefaultBlockSize = 64

// Blocked stores one 3-vector per body in blocked structure-of-arrays form.
//
// Bodies are grouped in runs of B. For every run the backing slice holds
// B x-components, then B y-components, then B z-components, so component
// c of body i lives in block (i/B)*3 + c at slot i%B. Callers never index
// the backing slice directly; all access goes through Get/Set/Add or
// through whole-block views.
type Blocked struct {
	data []float64
	n    int
	size int
}

// NewBlocked allocates a zeroed blocked array for n bodies with block size b.
func NewBlocked(n, b int) *Blocked {
	if b <= 0 {
		b = DefaultBlockSize
	}
	groups := (n + b - 1) / b
	return &Blocked{
		data: make([]float64, groups*3*b),
		n:    n,
		size: b,
	}
}

func (a *Blocked) Len() int       { return a.n }
func (a *Blocked) BlockSize() int { return a.size }
func (a *Blocked) NumBlocks() int { return len(a.data) / a.size }

func (a *Blocked) index(i int, c Axis) int {
	return ((i/a.size)*3+int(c))*a.size + i%a.size
}

// Get returns component c of body i.
func (a *Blocked) Get(i int, c Axis) float64 { return a.data[a.index(i, c)] }

// Set overwrites component c of body i.
func (a *Blocked) Set(i int, c Axis, v float64) { a.data[a.index(i, c)] = v }

// Add increments component c of body i by v.
func (a *Blocked) Add(i int, c Axis, v float64) { a.data[a.index(i, c)] += v }

// Vec returns all three components of body i.
func (a *Blocked) Vec(i int) (x, y, z float64) {
	base := (i/a.size)*3*a.size + i%a.size
	return a.data[base], a.data[base+a.size], a.data[base+2*a.size]
}

// Block returns a view of block b. Slots past Len() in the last run of
// bodies are padding and hold zero unless written through the view.
func (a *Blocked) Block(b int) []float64 {
	return a.data[b*a.size : (b+1)*a.size]
}

// NumGroups is the number of runs of BlockSize() bodies.
func (a *Blocked) NumGroups() int { return len(a.data) / (3 * a.size) }

// Group returns the x, y and z blocks of run g, trimmed to the bodies that
// exist. Body g*BlockSize()+k is at index k of each slice.
func (a *Blocked) Group(g int) (xs, ys, zs []float64) {
	base := g * 3 * a.size
	m := min(a.size, a.n-g*a.size)
	return a.data[base : base+m],
		a.data[base+a.size : base+a.size+m],
		a.data[base+2*a.size : base+2*a.size+m]
}

// CopyTo writes the components interleaved per body (x0,y0,z0,x1,...) into
// dst, which must hold at least 3*Len() values.
func (a *Blocked) CopyTo(dst []float64) {
	for i := 0; i < a.n; i++ {
		dst[i*3], dst[i*3+1], dst[i*3+2] = a.Vec(i)
	}
}

func (a *Blocked) Clone() *Blocked {
	c := &Blocked{
		data: make([]float64, len(a.data)),
		n:    a.n,
		size: a.size,
	}
	copy(c.data, a.data)
	return c
}
