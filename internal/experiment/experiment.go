package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/compute"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/storage"
)

// Experiment wires a configuration and an initial body table into a
// ready-to-run simulator.
type Experiment struct {
	cfg       *config.Config
	log       logrus.FieldLogger
	registry  *Registry
	engine    Engine
	state     *body.State
	simulator *dynamo.Simulator
	plan      dynamo.Plan
	drift     []*metrics.EnergyDrift
	workers   int
	blockSize int
}

// Report is the outcome of one run. Elapsed covers the simulation loop
// only, not loading or saving. The drift figures and EnergyError are only
// filled when Diagnostics is set.
type Report struct {
	*dynamo.Result
	Elapsed     time.Duration
	Algorithm   string
	Workers     int
	BlockSize   int
	Bodies      int
	Diagnostics bool
	EnergyError float64
}

func New(cfg *config.Config, log logrus.FieldLogger) *Experiment {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Experiment{
		cfg:      cfg,
		log:      log,
		registry: NewRegistry(),
	}
}

// Setup validates the configuration and builds state, engine, pool and
// simulator for table. Nothing is allocated when validation fails.
func (e *Experiment) Setup(table mat.Matrix) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	plan, err := e.cfg.Plan()
	if err != nil {
		return err
	}
	if err := storage.CheckInput(table); err != nil {
		return err
	}

	n, _ := table.Dims()
	e.workers = compute.ClampWorkers(e.cfg.Threads, n)
	e.blockSize = e.cfg.ResolvedBlockSize(e.workers)

	st, err := body.FromTable(table, e.blockSize)
	if err != nil {
		return err
	}

	engine, err := e.registry.GetEngine(e.cfg.Algorithm, e.cfg.Physics)
	if err != nil {
		return err
	}
	integ, err := e.registry.GetIntegrator("euler")
	if err != nil {
		return err
	}

	e.state = st
	e.engine = engine
	e.plan = plan
	e.simulator = dynamo.New(engine, integ, dynamo.NewPool(e.workers))

	e.drift = nil
	if e.cfg.Diagnostics {
		e.drift = e.registry.DefaultObservers(engine, plan.Stride)
		for _, d := range e.drift {
			e.simulator.AddObserver(d)
		}
	}

	e.log.WithFields(logrus.Fields{
		"algorithm":  engine.Name(),
		"bodies":     n,
		"workers":    e.workers,
		"block_size": e.blockSize,
		"gravity":    e.cfg.Physics.G,
		"softening":  e.cfg.Physics.Softening,
		"steps":      plan.NumSteps,
		"rows":       plan.NumOutputs,
	}).Debug("experiment ready")
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Report, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	for _, d := range e.drift {
		d.Prime(e.state)
	}

	start := time.Now()
	res, err := e.simulator.Run(ctx, e.state, e.cfg.RunConfig())
	elapsed := time.Since(start)
	if err != nil {
		e.log.WithError(err).WithField("elapsed", elapsed).Error("simulation failed")
		return nil, err
	}

	report := &Report{
		Result:      res,
		Elapsed:     elapsed,
		Algorithm:   e.engine.Name(),
		Workers:     e.workers,
		BlockSize:   e.blockSize,
		Bodies:      e.state.Len(),
		Diagnostics: e.cfg.Diagnostics,
	}
	for _, d := range e.drift {
		report.EnergyError = max(report.EnergyError, d.Value())
	}

	e.log.WithFields(logrus.Fields{
		"steps":          res.StepsTaken,
		"rows":           res.Plan.NumOutputs,
		"elapsed":        elapsed,
		"momentum_drift": res.MomentumDrift,
		"energy_drift":   res.EnergyDrift,
	}).Info("simulation finished")
	return report, nil
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *dynamo.Simulator { return e.simulator }

func (e *Experiment) State() *body.State { return e.state }

// Plan is the step and output schedule fixed by Setup.
func (e *Experiment) Plan() dynamo.Plan { return e.plan }

// Metadata describes a finished run for the storage sidecar.
func (e *Experiment) Metadata(r *Report, input string) storage.RunMetadata {
	return storage.RunMetadata{
		Algorithm:     r.Algorithm,
		Timestamp:     time.Now(),
		Input:         input,
		Bodies:        r.Bodies,
		Workers:       r.Workers,
		BlockSize:     r.BlockSize,
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		Outputs:       e.cfg.Outputs,
		Steps:         r.StepsTaken,
		Rows:          r.Plan.NumOutputs,
		ElapsedSecs:   r.Elapsed.Seconds(),
		MomentumDrift: r.MomentumDrift,
		EnergyDrift:   r.EnergyDrift,
		Metrics: map[string]float64{
			"max_energy_error": r.EnergyError,
		},
	}
}
