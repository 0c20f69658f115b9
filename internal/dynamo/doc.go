// Package dynamo provides the core data types of a Lorenz divergence run.
//
// The package defines the values that flow between the integrator, the
// analysis helpers and the frame renderer:
//
//   - [State]: a point (x, y, z) in phase space
//   - [Horizon]: the fixed time grid shared by every integration of a run
//   - [Trajectory]: four equal-length sequences (t, x, y, z)
//   - [SimulationError]: an error annotated with step and time
//
// # Example
//
//	h := dynamo.Horizon{Start: 0, End: 50, Dt: 0.02}
//	traj, err := integrators.Integrate(physics.NewLorenz(), dynamo.State{12, 12, 12}, h)
//	if errors.Is(err, dynamo.ErrInvalidHorizon) {
//	    // reject the run before anything was computed
//	}
//
// # Thread Safety
//
// Trajectories are written once by the integrator and never mutated again,
// so they can be shared freely between rendering workers.
package dynamo
