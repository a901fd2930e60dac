// Package analysis inspects sampled position series.
//
//   - [Compare]: shape check plus exact or allclose comparison of two
//     output matrices, with NaN counts and the largest differences
//   - [Column], [Separation]: per-body coordinate and distance series
//   - [PowerSpectrum], [DominantFrequency]: orbital periods from a series
//   - [Divergence], [LyapunovExponent]: growth of a small perturbation
//   - [Project], [PortraitToASCII]: XY projection of trajectories
//
// # Closeness
//
// Two values are close when |a-b| <= Atol + Rtol*|b|, the same asymmetric
// rule numpy.isclose applies. NaN is never close to anything.
package analysis
