package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/lorenz/internal/dynamo"
)

// Lorenz holds the parameters of the Lorenz system. A value is never
// mutated once constructed, so both runs of an experiment can share it.
type Lorenz struct{ sigma, beta, rho float64 }

// NewLorenz returns the classic chaotic regime used by the reference run.
func NewLorenz() *Lorenz { return &Lorenz{10.0, 2.67, 28.0} }

func NewLorenzWith(sigma, beta, rho float64) *Lorenz { return &Lorenz{sigma, beta, rho} }

func (l *Lorenz) Sigma() float64 { return l.sigma }
func (l *Lorenz) Beta() float64  { return l.beta }
func (l *Lorenz) Rho() float64   { return l.rho }
func (l *Lorenz) StateDim() int  { return 3 }

// DX is dx/dt = -σ(x - y).
func (l *Lorenz) DX(x, y float64) float64 { return -l.sigma * (x - y) }

// DY is dy/dt = x(ρ - z) - y.
func (l *Lorenz) DY(x, y, z float64) float64 { return x*(l.rho-z) - y }

// DZ is dz/dt = xy - βz.
func (l *Lorenz) DZ(x, y, z float64) float64 { return x*y - l.beta*z }

func (l *Lorenz) GetParams() map[string]float64 {
	return map[string]float64{"sigma": l.sigma, "beta": l.beta, "rho": l.rho}
}

// Validate reports a NaN or Inf parameter.
func (l *Lorenz) Validate() error {
	for name, v := range l.GetParams() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s = %v", dynamo.ErrNonFiniteInput, name, v)
		}
	}
	return nil
}

func (l *Lorenz) String() string {
	return fmt.Sprintf("lorenz(sigma=%g, beta=%g, rho=%g)", l.sigma, l.beta, l.rho)
}
