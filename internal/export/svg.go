// Package export writes trajectory plots as SVG.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/viz"
)

var palette = []string{"#00ffcc", "#ff6688", "#ffcc00", "#66aaff", "#cc88ff", "#88ff44"}

const header = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// TrajectoriesToSVG draws one polyline per body of the XY projection, and
// marks each body's final position.
func TrajectoriesToSVG(w io.Writer, p *analysis.Portrait, width, height int) error {
	if p == nil || len(p.Bodies) == 0 {
		return fmt.Errorf("export: no trajectories")
	}

	minX, maxX, minY, maxY := p.Bounds()
	rangeX, rangeY := maxX-minX, maxY-minY
	project := func(pt analysis.Point) (float64, float64) {
		return (pt.X - minX) / rangeX * float64(width),
			float64(height) - (pt.Y-minY)/rangeY*float64(height)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, header, width, height, width, height)

	for i, pts := range p.Bodies {
		if len(pts) == 0 {
			continue
		}
		color := palette[i%len(palette)]

		if len(pts) > 1 {
			fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color)
			for k, pt := range pts {
				x, y := project(pt)
				if k == 0 {
					fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
				} else {
					fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
				}
			}
			sb.WriteString("\"/>\n")
		}

		x, y := project(pts[len(pts)-1])
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", x, y, color)
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// CanvasToSVG converts a Braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(w io.Writer, canvas *viz.Canvas, scale float64) error {
	if canvas == nil {
		return fmt.Errorf("export: nil canvas")
	}

	width := int(float64(canvas.Width) * scale * 2)
	height := int(float64(canvas.Height) * scale * 4)

	var sb strings.Builder
	fmt.Fprintf(&sb, header, width, height, width, height)
	sb.WriteString("<g fill=\"#00ff00\">\n")

	dots := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	radius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			pattern := int(canvas.Grid[row][col] - 0x2800)
			if pattern <= 0 {
				continue
			}
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&dots[dy][dx] != 0 {
						fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
							baseX+float64(dx)*scale+scale/2, baseY+float64(dy)*scale+scale/2, radius)
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
