// Package automation runs batches of simulations: scripted scenarios,
// parameter sweeps and Monte Carlo ensembles.
package automation

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/models"
	"github.com/san-kum/gravsim/internal/storage"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Bodies come from Input if set, otherwise from
// the generator named in Init. Zero fields keep the preset's value.
type ScenarioStep struct {
	Name        string            `yaml:"name"`
	Preset      string            `yaml:"preset"`
	Algorithm   string            `yaml:"algorithm"`
	Threads     int               `yaml:"threads"`
	BlockSize   int               `yaml:"block_size"`
	Dt          float64           `yaml:"dt"`
	Duration    float64           `yaml:"duration"`
	Outputs     int               `yaml:"outputs"`
	Input       string            `yaml:"input"`
	Init        config.InitConfig `yaml:"init"`
	SaveAs      string            `yaml:"save_as"`
	Diagnostics bool              `yaml:"diagnostics"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

func (s ScenarioStep) config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Algorithm != "" {
		cfg.Algorithm = s.Algorithm
	}
	if s.Threads != 0 {
		cfg.Threads = s.Threads
	}
	if s.BlockSize != 0 {
		cfg.BlockSize = s.BlockSize
	}
	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.Duration != 0 {
		cfg.Duration = s.Duration
	}
	if s.Outputs != 0 {
		cfg.Outputs = s.Outputs
	}
	if s.Init.Model != "" {
		cfg.Init = s.Init
	}
	if s.Diagnostics {
		cfg.Diagnostics = true
	}
	return cfg, nil
}

func (s ScenarioStep) table(cfg *config.Config) (*mat.Dense, error) {
	if s.Input != "" {
		return storage.LoadInput(s.Input)
	}
	return models.Generate(cfg.Init.Model, models.Options{
		N:      cfg.Init.Bodies,
		Seed:   cfg.Init.Seed,
		G:      cfg.Physics.G,
		Mass:   cfg.Init.Mass,
		Radius: cfg.Init.Radius,
	})
}

// RunScenario executes all steps in order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, log logrus.FieldLogger) ([]*experiment.Report, error) {
	reports := make([]*experiment.Report, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		stepLog := log.WithFields(logrus.Fields{"scenario": scenario.Name, "step": i + 1, "name": step.Name})
		stepLog.Infof("running step %d/%d", i+1, len(scenario.Steps))

		cfg, err := step.config()
		if err != nil {
			return reports, fmt.Errorf("step %d: %w", i+1, err)
		}
		table, err := step.table(cfg)
		if err != nil {
			return reports, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg, stepLog)
		if err := exp.Setup(table); err != nil {
			return reports, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		report, err := exp.Run(ctx)
		if err != nil {
			return reports, fmt.Errorf("step %d run: %w", i+1, err)
		}

		if step.SaveAs != "" {
			if err := storage.SaveOutput(step.SaveAs, report.Output); err != nil {
				return reports, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Sweepable parameters.
const (
	ParamSoftening = "softening"
	ParamGravity   = "gravity"
	ParamDt        = "dt"
)

func apply(cfg *config.Config, param string, v float64) error {
	switch param {
	case ParamSoftening:
		cfg.Physics.Softening = v
	case ParamGravity:
		cfg.Physics.G = v
	case ParamDt:
		cfg.Dt = v
	default:
		return fmt.Errorf("parameter %q is not sweepable", param)
	}
	return nil
}

// SweepResult holds the conservation figures of one sweep point.
type SweepResult struct {
	ParamValue    float64
	Steps         int
	EnergyDrift   float64
	MomentumDrift float64
}

// RunSweep runs the same body table once for each of n evenly spaced
// values of param in [lo, hi].
func RunSweep(ctx context.Context, base *config.Config, table mat.Matrix, param string, lo, hi float64, n int) ([]SweepResult, error) {
	if n < 1 {
		return nil, fmt.Errorf("sweep needs at least one point")
	}
	results := make([]SweepResult, 0, n)

	for i := 0; i < n; i++ {
		v := lo
		if n > 1 {
			v = lo + float64(i)*(hi-lo)/float64(n-1)
		}
		cfg := *base
		cfg.Diagnostics = true
		if err := apply(&cfg, param, v); err != nil {
			return nil, err
		}

		exp := experiment.New(&cfg, logrus.StandardLogger())
		if err := exp.Setup(table); err != nil {
			return nil, err
		}
		report, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue:    v,
			Steps:         report.StepsTaken,
			EnergyDrift:   report.EnergyDrift,
			MomentumDrift: report.MomentumDrift,
		})
	}
	return results, nil
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Perturbation float64
	NumTrials    int
	Seed         uint64
	// Bound is the largest final distance from the origin at which a trial
	// still counts as stable.
	Bound        float64
}

// MonteCarloResult is the outcome of one perturbed trial.
type MonteCarloResult struct {
	TrialID     int
	// MaxRadius is the largest final distance of any body from the origin.
	MaxRadius   float64
	EnergyDrift float64
	Stable      bool
}

// RunMonteCarlo runs NumTrials copies of table with every position
// displaced by a uniform random offset in [-Perturbation, Perturbation].
func RunMonteCarlo(ctx context.Context, base *config.Config, table mat.Matrix, mc MonteCarloConfig) ([]MonteCarloResult, error) {
	rng := rand.New(rand.NewSource(mc.Seed))
	results := make([]MonteCarloResult, 0, mc.NumTrials)
	cfg := *base
	cfg.Diagnostics = true

	for trial := 0; trial < mc.NumTrials; trial++ {
		perturbed := mat.DenseCopyOf(table)
		n, _ := perturbed.Dims()
		for i := 0; i < n; i++ {
			for c := body.ColX; c <= body.ColZ; c++ {
				perturbed.Set(i, c, perturbed.At(i, c)+(rng.Float64()-0.5)*2*mc.Perturbation)
			}
		}

		exp := experiment.New(&cfg, logrus.StandardLogger())
		if err := exp.Setup(perturbed); err != nil {
			return nil, err
		}
		report, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		maxR := 0.0
		st := exp.State()
		for i := 0; i < st.Len(); i++ {
			x, y, z := st.Positions.Vec(i)
			maxR = math.Max(maxR, math.Sqrt(x*x+y*y+z*z))
		}

		results = append(results, MonteCarloResult{
			TrialID:     trial,
			MaxRadius:   maxR,
			EnergyDrift: report.EnergyDrift,
			Stable:      !math.IsNaN(maxR) && maxR <= mc.Bound,
		})
	}
	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
