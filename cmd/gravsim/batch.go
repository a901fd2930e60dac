package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/optim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
)

func scenarioCmd() *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "scenario file.yaml",
		Short: "run the steps of a scenario file in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			reports, err := automation.RunScenario(cmd.Context(), sc, log)
			for i, r := range reports {
				name := sc.Steps[i].Name
				if name == "" {
					name = fmt.Sprintf("step %d", i+1)
				}
				if summary {
					fmt.Println(viz.Title.Render(name))
					fmt.Println(viz.Summary(r))
					continue
				}
				fmt.Printf("%-20s %-10s %5d bodies %8d steps  %f secs\n",
					name, r.Algorithm, r.Bodies, r.StepsTaken, r.Elapsed.Seconds())
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print a panel per step")
	return cmd
}

func sweepCmd() *cobra.Command {
	var (
		param    string
		from, to float64
		points   int
	)
	cmd := &cobra.Command{
		Use:   "sweep input.npy",
		Short: "rerun one input over a range of softening, gravity or dt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			table, err := storage.LoadInput(args[0])
			if err != nil {
				return err
			}

			results, err := automation.RunSweep(cmd.Context(), cfg, table, param, from, to, points)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tSTEPS\tENERGY DRIFT\tMOMENTUM DRIFT\n", strings.ToUpper(param))
			for _, r := range results {
				fmt.Fprintf(w, "%g\t%d\t%.3e\t%.3e\n", r.ParamValue, r.Steps, r.EnergyDrift, r.MomentumDrift)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&param, "param", automation.ParamDt, "parameter to sweep (softening, gravity, dt)")
	cmd.Flags().Float64Var(&from, "from", 1e-4, "first value")
	cmd.Flags().Float64Var(&to, "to", 1e-2, "last value")
	cmd.Flags().IntVar(&points, "points", 5, "number of values")
	return cmd
}

func monteCarloCmd() *cobra.Command {
	mc := automation.MonteCarloConfig{Perturbation: 1e-3, NumTrials: 10, Seed: 1, Bound: 10}
	var verbose bool
	cmd := &cobra.Command{
		Use:   "montecarlo input.npy",
		Short: "rerun an input with randomly perturbed positions and count escapes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			table, err := storage.LoadInput(args[0])
			if err != nil {
				return err
			}

			results, err := automation.RunMonteCarlo(cmd.Context(), cfg, table, mc)
			if err != nil {
				return err
			}
			if verbose {
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TRIAL\tMAX RADIUS\tENERGY DRIFT\tSTABLE")
				for _, r := range results {
					fmt.Fprintf(w, "%d\t%g\t%.3e\t%t\n", r.TrialID, r.MaxRadius, r.EnergyDrift, r.Stable)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			stable, unstable := automation.MonteCarloStats(results)
			fmt.Printf("stable: %d  unstable: %d\n", stable, unstable)
			return nil
		},
	}
	cmd.Flags().Float64Var(&mc.Perturbation, "perturbation", mc.Perturbation, "max position offset per axis")
	cmd.Flags().IntVar(&mc.NumTrials, "trials", mc.NumTrials, "number of trials")
	cmd.Flags().Uint64Var(&mc.Seed, "seed", mc.Seed, "random seed")
	cmd.Flags().Float64Var(&mc.Bound, "bound", mc.Bound, "radius beyond which a trial counts as unstable")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every trial")
	return cmd
}

func tuneCmd() *cobra.Command {
	var (
		threads []int
		blocks  []int
	)
	cmd := &cobra.Command{
		Use:   "tune input.npy",
		Short: "find the fastest worker count and block size for an input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			table, err := storage.LoadInput(args[0])
			if err != nil {
				return err
			}

			toFloats := func(xs []int) []float64 {
				out := make([]float64, len(xs))
				for i, x := range xs {
					out[i] = float64(x)
				}
				return out
			}
			gs := optim.NewGridSearch(
				[]string{"threads", "block_size"},
				[][]float64{toFloats(threads), toFloats(blocks)},
			)
			quiet := logrus.New()
			quiet.SetLevel(logrus.WarnLevel)
			best, trials, err := gs.Search(cmd.Context(), func(p map[string]float64) (*experiment.Experiment, error) {
				c := *cfg
				c.Threads = int(p["threads"])
				c.BlockSize = int(p["block_size"])
				c.Diagnostics = false
				exp := experiment.New(&c, quiet)
				return exp, exp.Setup(table)
			}, optim.Elapsed)
			if err != nil {
				return err
			}

			sort.SliceStable(trials, func(i, j int) bool {
				return trials[i].Params["threads"] < trials[j].Params["threads"]
			})
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "THREADS\tBLOCK\tTIME")
			for _, t := range trials {
				res := time.Duration(t.Score * float64(time.Second)).Round(time.Microsecond).String()
				if t.Err != nil {
					res = "error: " + t.Err.Error()
				}
				fmt.Fprintf(w, "%g\t%g\t%s\n", t.Params["threads"], t.Params["block_size"], res)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if best.Params == nil {
				return fmt.Errorf("no configuration succeeded")
			}
			fmt.Printf("best: --threads %g --block-size %g\n", best.Params["threads"], best.Params["block_size"])
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&threads, "threads", []int{1, 2, 4}, "worker counts to try")
	cmd.Flags().IntSliceVar(&blocks, "block-size", []int{16, 32, 64}, "block sizes to try")
	return cmd
}
