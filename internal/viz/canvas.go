package viz

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = []rune(strings.Repeat(string(rune(blank)), w))
	}
	return c
}

// Set lights the dot at sub-pixel (x, y). The canvas is Width*2 by
// Height*4 dots; out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Orbits draws the XY path of every body in an output matrix, one segment
// per pair of consecutive rows. Both axes share one scale so circles stay
// round (a cell is two dots wide and four tall).
func Orbits(output mat.Matrix, w, h int) *Canvas {
	c := NewCanvas(w, h)
	rows, cols := output.Dims()
	if rows == 0 || cols < 3 {
		return c
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for r := 0; r < rows; r++ {
		for k := 0; k+1 < cols; k += 3 {
			x, y := output.At(r, k), output.At(r, k+1)
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}

	dotsX, dotsY := float64(2*w-1), float64(4*h-1)
	span := math.Max((maxX-minX)/dotsX, (maxY-minY)/dotsY)
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		span = 1
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	project := func(x, y float64) (int, int) {
		px := int(math.Round(dotsX/2 + (x-cx)/span))
		py := int(math.Round(dotsY/2 - (y-cy)/span))
		return px, py
	}

	for k := 0; k+1 < cols; k += 3 {
		px, py := project(output.At(0, k), output.At(0, k+1))
		c.Set(px, py)
		for r := 1; r < rows; r++ {
			nx, ny := project(output.At(r, k), output.At(r, k+1))
			c.DrawLine(px, py, nx, ny)
			px, py = nx, ny
		}
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
