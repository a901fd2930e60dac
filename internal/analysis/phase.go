package analysis

import (
	"strings"

	"gonum.org/v1/gonum/mat"
)

type Point struct{ X, Y float64 }

// Portrait holds the XY projection of every body over the sampled rows.
type Portrait struct {
	Bodies [][]Point
}

// Project extracts the x/y coordinates of each body from an output matrix.
func Project(m mat.Matrix) *Portrait {
	rows, _ := m.Dims()
	n := NumBodies(m)
	p := &Portrait{Bodies: make([][]Point, n)}
	for i := 0; i < n; i++ {
		pts := make([]Point, rows)
		for r := 0; r < rows; r++ {
			pts[r] = Point{X: m.At(r, 3*i), Y: m.At(r, 3*i+1)}
		}
		p.Bodies[i] = pts
	}
	return p
}

// Bounds returns the extent of all points padded by 10% on each side.
func (p *Portrait) Bounds() (minX, maxX, minY, maxY float64) {
	first := true
	for _, pts := range p.Bodies {
		for _, pt := range pts {
			if first {
				minX, maxX, minY, maxY = pt.X, pt.X, pt.Y, pt.Y
				first = false
				continue
			}
			minX = min(minX, pt.X)
			maxX = max(maxX, pt.X)
			minY = min(minY, pt.Y)
			maxY = max(maxY, pt.Y)
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return minX - rangeX*0.1, maxX + rangeX*0.1, minY - rangeY*0.1, maxY + rangeY*0.1
}

// glyphs mark bodies 0..9; later bodies reuse the last glyph.
var glyphs = []rune("•o+x*#@%&~")

// PortraitToASCII draws the projection on a width x height canvas.
func PortraitToASCII(p *Portrait, width, height int) string {
	if p == nil || len(p.Bodies) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX, minY, maxY := p.Bounds()
	rangeX := maxX - minX
	rangeY := maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			canvas[row][col] = '─'
		}
	}

	for i, pts := range p.Bodies {
		g := glyphs[min(i, len(glyphs)-1)]
		for _, pt := range pts {
			col := int((pt.X - minX) / rangeX * float64(width-1))
			row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
			if row >= 0 && row < height && col >= 0 && col < width {
				canvas[row][col] = g
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
