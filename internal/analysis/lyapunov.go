package analysis

import (
	"math"

	"github.com/san-kum/lorenz/internal/dynamo"
	"github.com/san-kum/lorenz/internal/integrators"
	"github.com/san-kum/lorenz/internal/physics"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
// 1. Run two trajectories δ0 apart along axis with the staggered RK4 step
// 2. After every step add ln(|δx|/δ0) and pull the perturbed state back to distance δ0
// 3. λ ≈ Σ ln(|δx|/δ0) / (steps·dt)
func LyapunovExponent(
	sys *physics.Lorenz,
	x0 dynamo.State,
	axis int,
	dt, duration float64,
	perturbation float64,
) float64 {
	if sys == nil || len(x0) != sys.StateDim() || axis < 0 || axis >= len(x0) || !(perturbation > 0) {
		return 0
	}
	h := dynamo.Horizon{Start: 0, End: duration, Dt: dt}
	if h.Validate() != nil {
		return 0
	}
	steps := h.Steps()
	if steps == 0 {
		return 0
	}

	stepper := integrators.NewStaggered()

	x := x0.Clone()
	xp := x0.Clone()
	xp[axis] += perturbation
	d0 := perturbation

	sumLog := 0.0

	for i := 0; i < steps; i++ {
		x = stepper.Step(sys, x, dt)
		xp = stepper.Step(sys, xp, dt)

		sep := xp.Sub(x).Norm()
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)

		scale := d0 / sep
		for j := range xp {
			xp[j] = x[j] + (xp[j]-x[j])*scale
		}
	}

	return sumLog / (float64(steps) * dt)
}
