// Package analysis provides chaos and signal diagnostics for pendulums.
//
//   - [Divergence]: normalised a1 separation of the first and last instance
//   - [LyapunovExponent]: largest exponent via two-trajectory renormalisation
//   - [DivergenceScan]: divergence across a swept parameter, in parallel
//   - [PowerSpectrum], [DominantFrequency]: spectrum of an angle series
//   - [GeneratePhasePortrait], [GeneratePoincareSection]: phase space views
//   - [Summarize]: statistics of an energy history
//
// # Chaos Detection
//
// Two pendulums started 1e-6 rad apart stay close in the regular regime and
// separate exponentially in the chaotic one:
//
//	d, err := analysis.Divergence(batch.Pendulums())
//	if err == nil && d > 0.1 {
//	    // trajectories have decorrelated
//	}
package analysis
