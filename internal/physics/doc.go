// Package physics models the planar double pendulum.
//
// A [DoublePendulum] carries its coefficients, its angles and angular
// velocities, and the bounded trace of recent tip positions:
//
//   - [Accelerations]: closed-form Lagrangian angular accelerations
//   - [Advance]: semi-implicit Euler with mandatory sub-stepping
//   - [AdvanceRK4]: classical Runge-Kutta, for accuracy comparisons only
//   - [KineticEnergy], [PotentialEnergy]: standard energy forms
//   - [Tips]: bob positions derived from angles, lengths and origin
//
// Angles are never wrapped into [0, 2π). Their unbounded growth is what the
// divergence metric measures.
//
// # Degenerate Parameters
//
// Lengths and masses must stay positive. The integrator does not check them:
// a vanishing denominator yields NaN or Inf accelerations. Editing goes
// through [DoublePendulum.SetParam] and [Limits.Clamp], which keep values in
// range.
package physics
