// Package physics provides the direct-sum gravitational force models.
//
// Each model implements [dynamo.ForceModel] and [dynamo.Hamiltonian]:
//
//   - [Direct]: every ordered pair, one writer per body, output is an
//     acceleration
//   - [Symmetric]: every unordered pair once via Newton's third law, output
//     is a force
//
// Both use r = sqrt(dx²+dy²+dz²+Softening). The softening term keeps the
// force finite when two bodies coincide; it is an approximation of the
// physical law, not part of it.
//
// # Write Conflicts
//
// Symmetric writes both F[i] and F[j] inside one pair evaluation, so two
// workers handling different i can hit the same j at once. Splitting its
// outer loop across goroutines and writing into one shared force slice is
// a data race that silently corrupts forces. Symmetric therefore gives
// every worker a private accumulator and reduces them after a barrier.
package physics
