package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lorenz/internal/dynamo"
)

func TestLorenzDerivatives(t *testing.T) {
	l := NewLorenzWith(10, 8.0/3.0, 28)

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"dx at x=y", l.DX(3, 3), 0},
		{"dx", l.DX(1, 2), 10},
		{"dy", l.DY(1, 2, 3), 1*(28-3) - 2},
		{"dz", l.DZ(1, 2, 3), 2 - 8.0},
	}

	for _, tt := range tests {
		if math.Abs(tt.got-tt.expected) > 1e-12 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
		}
	}
}

func TestNewLorenzDefaults(t *testing.T) {
	l := NewLorenz()
	if l.Sigma() != 10 || l.Beta() != 2.67 || l.Rho() != 28 {
		t.Errorf("unexpected defaults: %v", l)
	}
	if l.StateDim() != 3 {
		t.Errorf("StateDim() = %d, want 3", l.StateDim())
	}
	p := l.GetParams()
	if p["rho"] != 28 || len(p) != 3 {
		t.Errorf("GetParams() = %v", p)
	}
}

func TestLorenzValidate(t *testing.T) {
	if err := NewLorenz().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	bad := []*Lorenz{
		NewLorenzWith(math.NaN(), 1, 1),
		NewLorenzWith(1, math.Inf(1), 1),
		NewLorenzWith(1, 1, math.Inf(-1)),
	}
	for _, l := range bad {
		if err := l.Validate(); !errors.Is(err, dynamo.ErrNonFiniteInput) {
			t.Errorf("Validate(%v) = %v, want ErrNonFiniteInput", l, err)
		}
	}
}
