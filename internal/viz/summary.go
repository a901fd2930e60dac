package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/gravsim/internal/experiment"
)

// Summary renders the figures of a finished run as a panel.
func Summary(r *experiment.Report) string {
	rows := [][2]string{
		{"algorithm", r.Algorithm},
		{"bodies", fmt.Sprint(r.Bodies)},
		{"workers", fmt.Sprint(r.Workers)},
		{"block size", fmt.Sprint(r.BlockSize)},
		{"steps", fmt.Sprint(r.StepsTaken)},
		{"output rows", fmt.Sprint(r.Plan.NumOutputs)},
		{"stride", fmt.Sprint(r.Plan.Stride)},
		{"elapsed", fmt.Sprintf("%f secs", r.Elapsed.Seconds())},
	}
	if r.Diagnostics {
		rows = append(rows,
			[2]string{"momentum drift", fmt.Sprintf("%.3e", r.MomentumDrift)},
			[2]string{"energy drift", fmt.Sprintf("%.3e", r.EnergyDrift)},
			[2]string{"max energy error", fmt.Sprintf("%.3e", r.EnergyError)},
		)
	}

	var b strings.Builder
	b.WriteString(Title.Render("run summary"))
	for _, row := range rows {
		b.WriteString("\n" + MetricLabel.Render(row[0]) + " " + MetricValue.Render(row[1]))
	}
	return Panel.Render(b.String())
}
