// Package analysis provides divergence and chaos diagnostics for Lorenz runs.
//
// The package works on finished trajectories:
//
//   - [Separation], [AxisSeparation]: per-sample distance between two runs
//   - [Diverge]: first threshold crossing and log-growth rate of the separation
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [PowerSpectrum]: FFT magnitude of a series
//   - [PhasePortrait], [ReturnMap]: 2D projections for terminal plots
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(sys, x0, 0, dt, duration, 1e-8)
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
