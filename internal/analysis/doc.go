// Package analysis measures integrators and the systems they drive.
//
//   - [ConvergenceOrder]: empirical order from (step size, error) pairs
//   - [Study]: convergence study of a tableau on dy/dt = -y
//   - [LyapunovExponent]: largest Lyapunov exponent via renormalised separation
//   - [GeneratePhasePortrait]: 2D phase space trajectories
//   - [GeneratePoincareSection]: crossings of a threshold plane
//   - [DominantFrequency]: strongest non-DC frequency of a sampled signal
//
// # Convergence
//
// A method of order p has global error C*h^p, so log(err) against log(h) is a
// line of slope p:
//
//	study, err := analysis.Study(ctx, tab, []float64{1.0 / 8, 1.0 / 16, 1.0 / 32})
//	fmt.Printf("%s: order %.2f\n", study.Method, study.Order)
package analysis
