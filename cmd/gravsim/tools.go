package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/models"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
)

func parseAxis(s string) (body.Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return body.X, nil
	case "y":
		return body.Y, nil
	case "z":
		return body.Z, nil
	}
	return 0, fmt.Errorf("unknown axis %q (want x, y or z)", s)
}

func generateCmd() *cobra.Command {
	var (
		bodies int
		seed   uint64
		mass   float64
		radius float64
	)
	cmd := &cobra.Command{
		Use:   "generate [model] output.npy",
		Short: "write an initial body table (models: " + strings.Join(models.Names(), ", ") + ")",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ic := cfg.Init
			out := args[len(args)-1]
			if len(args) == 2 {
				ic.Model = args[0]
			}
			if cmd.Flags().Changed("bodies") {
				ic.Bodies = bodies
			}
			if cmd.Flags().Changed("seed") {
				ic.Seed = seed
			}
			if cmd.Flags().Changed("mass") {
				ic.Mass = mass
			}
			if cmd.Flags().Changed("radius") {
				ic.Radius = radius
			}

			table, err := models.Generate(ic.Model, models.Options{
				N:      ic.Bodies,
				Seed:   ic.Seed,
				G:      cfg.Physics.G,
				Mass:   ic.Mass,
				Radius: ic.Radius,
			})
			if err != nil {
				return err
			}
			if err := storage.SaveOutput(out, table); err != nil {
				return err
			}
			n, _ := table.Dims()
			log.WithFields(logrus.Fields{"model": ic.Model, "bodies": n, "path": out}).Info("generated")
			return nil
		},
	}
	cmd.Flags().IntVar(&bodies, "bodies", 100, "number of bodies")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&mass, "mass", 1, "body mass")
	cmd.Flags().Float64Var(&radius, "radius", 1, "system radius")
	return cmd
}

func compareCmd() *cobra.Command {
	tol := analysis.DefaultTolerance()
	cmd := &cobra.Command{
		Use:   "compare a.npy b.npy",
		Short: "check that two output files are (almost) equal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := storage.LoadMatrix(args[0])
			if err != nil {
				return err
			}
			b, err := storage.LoadMatrix(args[1])
			if err != nil {
				return err
			}

			c, err := analysis.Compare(a, b, tol)
			if err != nil {
				return &exitError{code: 2, msg: err.Error()}
			}
			fmt.Println(c.Verdict(tol))
			if c.OK(tol) {
				return nil
			}
			fmt.Println(c)
			return &exitError{code: 1, msg: "files differ"}
		},
	}
	cmd.Flags().BoolVar(&tol.Exact, "exact", false, "must be exactly equal instead of close")
	cmd.Flags().Float64Var(&tol.Atol, "abs-tol", tol.Atol, "absolute tolerance")
	cmd.Flags().Float64Var(&tol.Rtol, "rel-tol", tol.Rtol, "relative tolerance")
	return cmd
}

func plotCmd() *cobra.Command {
	var (
		bodyIdx int
		axis    string
		orbits  bool
		width   int
		height  int
	)
	cmd := &cobra.Command{
		Use:   "plot output.npy",
		Short: "plot a coordinate series or the XY orbits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := storage.LoadMatrix(args[0])
			if err != nil {
				return err
			}
			if orbits {
				fmt.Print(viz.Orbits(m, width, height))
				return nil
			}

			ax, err := parseAxis(axis)
			if err != nil {
				return err
			}
			data, err := analysis.Column(m, bodyIdx, ax)
			if err != nil {
				return err
			}
			fmt.Println(asciigraph.Plot(data,
				asciigraph.Height(height),
				asciigraph.Width(width),
				asciigraph.Caption(fmt.Sprintf("body %d %s vs row", bodyIdx, axis)),
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&bodyIdx, "body", 0, "body index")
	cmd.Flags().StringVar(&axis, "axis", "x", "coordinate (x, y, z)")
	cmd.Flags().BoolVar(&orbits, "orbits", false, "draw XY orbits of all bodies")
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 20, "plot height")
	return cmd
}

func analyzeCmd() *cobra.Command {
	var (
		bodyIdx  int
		axis     string
		interval float64
		other    int
	)
	cmd := &cobra.Command{
		Use:   "analyze output.npy",
		Short: "frequency analysis of one coordinate series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := storage.LoadMatrix(args[0])
			if err != nil {
				return err
			}
			ax, err := parseAxis(axis)
			if err != nil {
				return err
			}

			data, err := analysis.Column(m, bodyIdx, ax)
			if other >= 0 {
				data, err = analysis.Separation(m, bodyIdx, other)
			}
			if err != nil {
				return err
			}

			ps := analysis.PowerSpectrum(data)
			if len(ps) < 2 {
				return fmt.Errorf("need at least 4 rows, got %d", len(data))
			}
			fmt.Println(asciigraph.Plot(ps[1:],
				asciigraph.Height(15),
				asciigraph.Width(80),
				asciigraph.Caption("power spectrum"),
			))

			freq, _ := analysis.DominantFrequency(data, interval)
			fmt.Printf("dominant frequency: %.6g per time unit\n", freq)
			if freq > 0 {
				fmt.Printf("period: %.6g\n", 1/freq)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&bodyIdx, "body", 0, "body index")
	cmd.Flags().StringVar(&axis, "axis", "x", "coordinate (x, y, z)")
	cmd.Flags().Float64Var(&interval, "interval", 1, "simulated time between rows")
	cmd.Flags().IntVar(&other, "separation-to", -1, "analyse the distance to this body instead")
	return cmd
}

func lyapunovCmd() *cobra.Command {
	var delta float64
	cmd := &cobra.Command{
		Use:   "lyapunov time-step total-time outputs-per-body input.npy",
		Short: "estimate the largest Lyapunov exponent of a body table",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := parseTimeArgs(args[:3], cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			table, err := storage.LoadInput(args[3])
			if err != nil {
				return err
			}

			exp := experiment.New(cfg, log)
			if err := exp.Setup(table); err != nil {
				return err
			}
			tr, err := analysis.Divergence(cmd.Context(), exp.Simulator(), exp.State(), cfg.RunConfig(), delta)
			if err != nil {
				return err
			}

			logSep := make([]float64, 0, len(tr.Separation))
			for _, s := range tr.Separation {
				if s > 0 {
					logSep = append(logSep, math.Log10(s))
				}
			}
			if len(logSep) > 1 {
				fmt.Println(asciigraph.Plot(logSep,
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption("log10 separation"),
				))
			}
			fmt.Printf("lyapunov exponent: %.6g\n", analysis.LyapunovExponent(tr))
			return nil
		},
	}
	cmd.Flags().Float64Var(&delta, "delta", 1e-8, "initial perturbation of body 0 along x")
	return cmd
}

func exportCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv output.npy [file.csv]",
		Short: "export an output file as CSV (stdout by default)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := storage.LoadMatrix(args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return storage.ExportCSV(os.Stdout, m)
			}

			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			if err := storage.ExportCSV(f, m); err != nil {
				return err
			}
			return f.Close()
		},
	}
}

func exportSVGCmd() *cobra.Command {
	var (
		width  int
		height int
		dots   bool
	)
	cmd := &cobra.Command{
		Use:   "export-svg output.npy file.svg",
		Short: "export the XY trajectories as SVG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := storage.LoadMatrix(args[0])
			if err != nil {
				return err
			}
			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			if dots {
				err = export.CanvasToSVG(f, viz.Orbits(m, width/8, height/16), 4)
			} else {
				err = export.TrajectoriesToSVG(f, analysis.Project(m), width, height)
			}
			if err != nil {
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().IntVar(&width, "width", 800, "image width")
	cmd.Flags().IntVar(&height, "height", 800, "image height")
	cmd.Flags().BoolVar(&dots, "dots", false, "render the Braille dot canvas instead of paths")
	return cmd
}

func benchCmd() *cobra.Command {
	var (
		sizes   []int
		threads []int
		steps   int
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "time both algorithms over body counts and worker counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ALGORITHM\tBODIES\tWORKERS\tSTEPS\tTIME\tPAIRS/SEC")

			for _, n := range sizes {
				table := models.Cloud(models.Options{N: n, Seed: 42})
				for _, alg := range experiment.NewRegistry().ListEngines() {
					for _, t := range threads {
						cfg := config.DefaultConfig()
						cfg.Algorithm = alg
						cfg.Threads = t
						cfg.Physics.G = 1
						cfg.Dt = 1e-3
						cfg.Duration = float64(steps+1) * cfg.Dt
						cfg.Outputs = 1

						exp := experiment.New(cfg, log)
						if err := exp.Setup(table); err != nil {
							return err
						}
						report, err := exp.Run(cmd.Context())
						if err != nil {
							return err
						}

						pairs := float64(n) * float64(n-1) * float64(report.StepsTaken)
						if alg == config.AlgorithmSymmetric {
							pairs /= 2
						}
						fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%v\t%.3g\n",
							alg, n, report.Workers, report.StepsTaken,
							report.Elapsed.Round(time.Microsecond), pairs/report.Elapsed.Seconds())
					}
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntSliceVar(&sizes, "bodies", []int{256, 1024}, "body counts")
	cmd.Flags().IntSliceVar(&threads, "threads", []int{1, 0}, "worker counts (0 = default)")
	cmd.Flags().IntVar(&steps, "steps", 10, "steps per run")
	return cmd
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg := config.GetPreset(args[0])
				if cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
				}
				return yaml.NewEncoder(os.Stdout).Encode(cfg)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tALGORITHM\tMODEL\tBODIES\tDT\tDURATION\tOUTPUTS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%g\t%d\n",
					name, p.Algorithm, p.Init.Model, p.Init.Bodies, p.Dt, p.Duration, p.Outputs)
			}
			return w.Flush()
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tALGORITHM\tTIME\tBODIES\tWORKERS\tSTEPS\tELAPSED")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.3fs\n",
					run.ID,
					run.Algorithm,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Bodies,
					run.Workers,
					run.Steps,
					run.ElapsedSecs,
				)
			}
			return w.Flush()
		},
	}
}
