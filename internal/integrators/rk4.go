package integrators

import (
	"fmt"

	"github.com/san-kum/lorenz/internal/dynamo"
	"github.com/san-kum/lorenz/internal/physics"
)

// Staggered is a fixed-step RK4 that advances one axis at a time.
//
// x is advanced with y frozen at its pre-step value. y is then advanced
// using the already-updated x and the pre-step z. z is advanced last using
// the updated x and y. Each axis runs its own four stages over its own
// coordinate only. This is not the textbook coupled RK4; keep the order.
type Staggered struct{}

func NewStaggered() *Staggered {
	return &Staggered{}
}

// Step advances s by dt and returns the new state. s is not modified.
func (r *Staggered) Step(sys *physics.Lorenz, s dynamo.State, dt float64) dynamo.State {
	x, y, z := s[0], s[1], s[2]

	k1x := sys.DX(x, y)
	k2x := sys.DX(x+0.5*k1x*dt, y)
	k3x := sys.DX(x+0.5*k2x*dt, y)
	k4x := sys.DX(x+k3x*dt, y)
	x = x + (k1x+2*k2x+2*k3x+k4x)/6*dt

	k1y := sys.DY(x, y, z)
	k2y := sys.DY(x, y+0.5*k1y*dt, z)
	k3y := sys.DY(x, y+0.5*k2y*dt, z)
	k4y := sys.DY(x, y+k3y*dt, z)
	y = y + (k1y+2*k2y+2*k3y+k4y)/6*dt

	k1z := sys.DZ(x, y, z)
	k2z := sys.DZ(x, y, z+0.5*k1z*dt)
	k3z := sys.DZ(x, y, z+0.5*k2z*dt)
	k4z := sys.DZ(x, y, z+k3z*dt)
	z = z + (k1z+2*k2z+2*k3z+k4z)/6*dt

	return dynamo.State{x, y, z}
}

// Integrate runs the staggered RK4 over h starting from x0 and returns
// N = h.Steps() samples. Sample i is the state before step i. The time
// stored at index i is the value t held when the sample was recorded:
// t starts at h.Start and is only reassigned to h.Start+i*dt after sample
// i is taken, so t[0] = t[1] = h.Start and t[i] = h.Start+(i-1)*dt after
// that.
//
// Inputs are checked before any stepping; on error nothing is returned.
func Integrate(sys *physics.Lorenz, x0 dynamo.State, h dynamo.Horizon) (*dynamo.Trajectory, error) {
	if err := checkInputs(sys, x0, h); err != nil {
		return nil, err
	}

	n := h.Steps()
	traj := dynamo.NewTrajectory(n)
	stepper := NewStaggered()

	t := h.Start
	s := x0.Clone()
	for i := 0; i < n; i++ {
		traj.T[i] = t
		traj.X[i] = s[0]
		traj.Y[i] = s[1]
		traj.Z[i] = s[2]

		s = stepper.Step(sys, s, h.Dt)
		t = h.Start + float64(i)*h.Dt
	}

	return traj, nil
}

func checkInputs(sys *physics.Lorenz, x0 dynamo.State, h dynamo.Horizon) error {
	if sys == nil {
		return fmt.Errorf("integrate: nil system")
	}
	if err := sys.Validate(); err != nil {
		return fmt.Errorf("integrate: %w", err)
	}
	if len(x0) != sys.StateDim() {
		return fmt.Errorf("integrate: %w: got %d coordinates", dynamo.ErrDimensionMismatch, len(x0))
	}
	if !x0.IsValid() {
		return fmt.Errorf("integrate: %w: initial state %v", dynamo.ErrNonFiniteInput, x0)
	}
	if err := h.Validate(); err != nil {
		return fmt.Errorf("integrate: %w", err)
	}
	return nil
}
