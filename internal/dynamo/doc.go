// Package dynamo drives direct-sum N-body simulations.
//
// The package defines the interfaces the time-stepping loop is written
// against and the loop itself:
//
//   - [ForceModel]: computes per-body forces or accelerations
//   - [Integrator]: advances velocities, then positions
//   - [Pool]: fixed-size worker pool; every call is a barrier
//   - [Plan]: step count and output sampling derived from the run config
//   - [Simulator]: orchestrates a run and fills the output series
//
// # Example
//
//	pool := dynamo.NewPool(compute.ClampWorkers(threads, st.Len()))
//	engine := physics.NewSymmetric(physics.DefaultParams())
//	s := dynamo.New(engine, integrators.NewSemiImplicitEuler(), pool)
//	result, _ := s.Run(ctx, st, dynamo.Config{Dt: 0.01, Duration: 10, Outputs: 100})
//
// # Thread Safety
//
// A step is three pool stages (forces, velocities, positions) and each
// stage returns only after every worker is done, so no stage of step t+1
// overlaps any stage of step t. Output rows are copied by the driver
// goroutine between steps. Simulator instances are NOT safe for concurrent
// use.
package dynamo
