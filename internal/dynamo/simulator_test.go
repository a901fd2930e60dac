package dynamo_test

import (
	"context"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
)

var unitParams = physics.Params{G: 1, Softening: 1e-2}

func cloud(n, blockSize int, seed int64) *body.State {
	rng := rand.New(rand.NewSource(seed))
	st := body.NewState(n, blockSize)
	for i := 0; i < n; i++ {
		st.Masses[i] = 0.5 + rng.Float64()
		for c := body.X; c <= body.Z; c++ {
			st.Positions.Set(i, c, 10*(rng.Float64()-0.5))
			st.Velocities.Set(i, c, 0.1*rng.NormFloat64())
		}
	}
	return st
}

func positions(st *body.State) []float64 {
	p := make([]float64, 3*st.Len())
	st.SnapshotPositions(p)
	return p
}

func newSim(model dynamo.ForceModel, workers int) *dynamo.Simulator {
	return dynamo.New(model, integrators.NewSemiImplicitEuler(), dynamo.NewPool(workers))
}

// recorder keeps the positions after every step.
type recorder struct {
	steps map[int][]float64
}

func (r *recorder) OnStep(step int, t float64, st *body.State) {
	r.steps[step] = positions(st)
}

// nanModel poisons every force slot.
type nanModel struct{}

func (nanModel) Name() string              { return "nan" }
func (nanModel) Quantity() dynamo.Quantity { return dynamo.Acceleration }
func (nanModel) Compute(st *body.State, _ *dynamo.Pool) {
	for i := range st.Forces {
		st.Forces[i] = math.NaN()
	}
}

// countingModel counts the energy evaluations made on it.
type countingModel struct {
	*physics.Symmetric
	energyCalls int
}

func (c *countingModel) Energy(st *body.State) float64 {
	c.energyCalls++
	return c.Symmetric.Energy(st)
}

var _ = Describe("Simulator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("output sampling", func() {
		DescribeTable("shape, first row and last row",
			func(dt, total float64, outputs, wantRows int) {
				st := cloud(7, 4, 1)
				initial := positions(st)
				rec := &recorder{steps: map[int][]float64{}}

				s := newSim(physics.NewSymmetric(unitParams), 3)
				s.AddObserver(rec)
				res, err := s.Run(ctx, st, dynamo.Config{Dt: dt, Duration: total, Outputs: outputs})
				Expect(err).NotTo(HaveOccurred())

				rows, cols := res.Output.Dims()
				Expect(rows).To(Equal(wantRows))
				Expect(cols).To(Equal(3 * st.Len()))
				Expect(res.Output.RawRowView(rows - 1)).To(Equal(positions(st)))
				if rows > 1 {
					Expect(res.Output.RawRowView(0)).To(Equal(initial))
				}

				for step, snap := range rec.steps {
					row, ok := res.Plan.SampleRow(step)
					if res.Plan.NeedsFinalRow() && row == rows-1 {
						continue
					}
					if ok {
						Expect(res.Output.RawRowView(row)).To(Equal(snap), "row %d", row)
					}
				}
				Expect(res.StepsTaken).To(Equal(res.Plan.NumSteps - 1))
				Expect(rec.steps).To(HaveLen(res.StepsTaken))
			},
			Entry("stride divides the step count", 1.0, 10.0, 2, 2),
			Entry("stride leaves a remainder", 1.0, 10.0, 3, 4),
			Entry("one output per step", 1.0, 6.0, 6, 6),
			Entry("more outputs than steps", 1.0, 5.0, 10, 1),
			Entry("no step to run", 1.0, 1.0, 1, 1),
		)

		It("holds only the final state when outputs collapse to one row", func() {
			st := cloud(5, 4, 2)
			initial := positions(st)

			res, err := newSim(physics.NewDirect(unitParams), 2).Run(ctx, st,
				dynamo.Config{Dt: 1, Duration: 5, Outputs: 10})
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Plan.NumOutputs).To(Equal(1))
			Expect(res.Output.RawRowView(0)).To(Equal(positions(st)))
			Expect(res.Output.RawRowView(0)).NotTo(Equal(initial))
		})

		It("keeps the initial state in row 0 when every step is sampled", func() {
			st := cloud(5, 4, 3)
			initial := positions(st)

			res, err := newSim(physics.NewDirect(unitParams), 1).Run(ctx, st,
				dynamo.Config{Dt: 0.5, Duration: 2, Outputs: 4})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Output.RawRowView(0)).To(Equal(initial))
		})
	})

	Describe("physics", func() {
		It("leaves a lone body at rest", func() {
			st := body.NewState(1, body.DefaultBlockSize)
			st.Masses[0] = 5
			st.Positions.Set(0, body.X, 1)
			st.Positions.Set(0, body.Y, 2)
			st.Positions.Set(0, body.Z, 3)

			for _, model := range []dynamo.ForceModel{physics.NewDirect(unitParams), physics.NewSymmetric(unitParams)} {
				res, err := newSim(model, 1).Run(ctx, st.Clone(), dynamo.Config{Dt: 0.1, Duration: 10, Outputs: 20})
				Expect(err).NotTo(HaveOccurred())
				rows, _ := res.Output.Dims()
				for r := 0; r < rows; r++ {
					Expect(res.Output.RawRowView(r)).To(Equal([]float64{1, 2, 3}))
				}
			}
		})

		It("moves two bodies by a*dt^2 in one step", func() {
			p := physics.Params{G: physics.GravitationalConstant, Softening: 0}
			m1, m2, r, dt := 6.0e24, 1000.0, 7.0e6, 10.0

			for _, model := range []dynamo.ForceModel{physics.NewDirect(p), physics.NewSymmetric(p)} {
				st := body.NewState(2, body.DefaultBlockSize)
				st.Masses[0], st.Masses[1] = m1, m2
				st.Positions.Set(1, body.X, r)

				res, err := newSim(model, 2).Run(ctx, st, dynamo.Config{Dt: dt, Duration: 2 * dt, Outputs: 1})
				Expect(err).NotTo(HaveOccurred())
				Expect(res.StepsTaken).To(Equal(1))

				a1 := p.G * m2 / (r * r)
				a2 := p.G * m1 / (r * r)
				row := res.Output.RawRowView(0)
				Expect(row[0]).To(BeNumerically("~", a1*dt*dt, a1*dt*dt*1e-12), model.Name())
				Expect(row[3]).To(BeNumerically("~", r-a2*dt*dt, a2*dt*dt*1e-9), model.Name())
				Expect(st.Velocities.Get(1, body.X)).To(BeNumerically("~", -a2*dt, a2*dt*1e-12))
			}
		})

		It("conserves momentum with the symmetric model on many workers", func() {
			st := cloud(48, 8, 4)
			scale := 0.0
			for i, m := range st.Masses {
				vx, vy, vz := st.Velocities.Vec(i)
				scale += m * math.Sqrt(vx*vx+vy*vy+vz*vz)
			}

			res, err := newSim(physics.NewSymmetric(unitParams), 48).Run(ctx, st,
				dynamo.Config{Dt: 0.01, Duration: 5, Outputs: 10, Diagnostics: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.MomentumDrift).To(BeNumerically("<", 1e-10*scale))
		})

		It("gives the same trajectories for both force models", func() {
			st := cloud(30, 8, 5)
			cfg := dynamo.Config{Dt: 0.01, Duration: 0.5, Outputs: 5}

			a, err := newSim(physics.NewDirect(unitParams), 4).Run(ctx, st.Clone(), cfg)
			Expect(err).NotTo(HaveOccurred())
			b, err := newSim(physics.NewSymmetric(unitParams), 4).Run(ctx, st.Clone(), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(floats.EqualApprox(a.Output.RawMatrix().Data, b.Output.RawMatrix().Data, 1e-8)).To(BeTrue())
		})

		DescribeTable("re-runs bit-identically",
			func(newModel func() dynamo.ForceModel, workers int) {
				st := cloud(40, 8, 6)
				cfg := dynamo.Config{Dt: 0.01, Duration: 1, Outputs: 7}

				a, err := newSim(newModel(), workers).Run(ctx, st.Clone(), cfg)
				Expect(err).NotTo(HaveOccurred())
				b, err := newSim(newModel(), workers).Run(ctx, st.Clone(), cfg)
				Expect(err).NotTo(HaveOccurred())
				Expect(mat.Equal(a.Output, b.Output)).To(BeTrue())
			},
			Entry("direct", func() dynamo.ForceModel { return physics.NewDirect(unitParams) }, 4),
			Entry("symmetric", func() dynamo.ForceModel { return physics.NewSymmetric(unitParams) }, 4),
			Entry("symmetric, one worker per body", func() dynamo.ForceModel { return physics.NewSymmetric(unitParams) }, 40),
		)
	})

	Describe("diagnostics", func() {
		DescribeTable("energy is only evaluated when asked for",
			func(outputs int, diagnostics bool, wantCalls int) {
				model := &countingModel{Symmetric: physics.NewSymmetric(unitParams)}
				res, err := newSim(model, 2).Run(ctx, cloud(9, 4, 10),
					dynamo.Config{Dt: 0.1, Duration: 4, Outputs: outputs, Diagnostics: diagnostics})
				Expect(err).NotTo(HaveOccurred())
				Expect(model.energyCalls).To(Equal(wantCalls))
				if !diagnostics {
					Expect(res.MomentumDrift).To(BeZero())
					Expect(res.EnergyDrift).To(BeZero())
				} else {
					Expect(res.EnergyDrift).To(BeNumerically(">", 0))
				}
			},
			Entry("off, one row", 1, false, 0),
			Entry("off, one row per step", 40, false, 0),
			Entry("on, one row", 1, true, 2),
			Entry("on, one row per step", 40, true, 2),
		)
	})

	Describe("errors", func() {
		DescribeTable("rejects invalid runs before stepping",
			func(cfg dynamo.Config, want error) {
				st := cloud(3, 4, 7)
				before := positions(st)
				res, err := newSim(physics.NewDirect(unitParams), 1).Run(ctx, st, cfg)
				Expect(err).To(MatchError(want))
				Expect(res).To(BeNil())
				Expect(positions(st)).To(Equal(before))
			},
			Entry("zero dt", dynamo.Config{Dt: 0, Duration: 1, Outputs: 1}, dynamo.ErrTimeStep),
			Entry("negative total", dynamo.Config{Dt: 0.1, Duration: -1, Outputs: 1}, dynamo.ErrTotalTime),
			Entry("total below dt", dynamo.Config{Dt: 1, Duration: 0.5, Outputs: 1}, dynamo.ErrTotalBelowStep),
			Entry("no outputs", dynamo.Config{Dt: 0.1, Duration: 1, Outputs: 0}, dynamo.ErrOutputs),
		)

		It("rejects an empty state", func() {
			_, err := newSim(physics.NewDirect(unitParams), 1).Run(ctx, body.NewState(0, 4),
				dynamo.Config{Dt: 0.1, Duration: 1, Outputs: 1})
			Expect(err).To(MatchError(dynamo.ErrNoBodies))
		})

		It("stops on a canceled context", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := newSim(physics.NewDirect(unitParams), 1).Run(canceled, cloud(3, 4, 8),
				dynamo.Config{Dt: 0.1, Duration: 1, Outputs: 1})
			Expect(err).To(MatchError(dynamo.ErrContextCanceled))
		})

		It("reports non-finite positions when validation is on", func() {
			res, err := newSim(nanModel{}, 2).Run(ctx, cloud(6, 2, 9),
				dynamo.Config{Dt: 0.1, Duration: 1, Outputs: 1, ValidateState: true})
			Expect(err).To(MatchError(dynamo.ErrInvalidState))

			var simErr *dynamo.SimulationError
			Expect(err).To(BeAssignableToTypeOf(simErr))
			Expect(res.StepsTaken).To(Equal(1))
		})
	})
})
