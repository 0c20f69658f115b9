package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"with NaN", State{1.0, math.NaN(), 0}, false},
		{"with +Inf", State{1.0, math.Inf(1), 0}, false},
		{"with -Inf", State{math.Inf(-1), 0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_SubNorm(t *testing.T) {
	a := State{4, 6, 3}
	b := State{1, 2, 3}
	if got := a.Sub(b).Norm(); math.Abs(got-5.0) > 1e-12 {
		t.Errorf("|a-b| = %v, want 5", got)
	}
}

func TestHorizon_Steps(t *testing.T) {
	tests := []struct {
		name string
		h    Horizon
		want int
	}{
		{"reference experiment", Horizon{0, 50, 0.02}, 2500},
		{"short", Horizon{0, 10, 0.02}, 500},
		{"single step", Horizon{0, 0.03, 0.02}, 1},
		{"empty", Horizon{1, 1, 0.02}, 0},
		{"dt larger than horizon", Horizon{0, 1, 2}, 0},
		{"reversed", Horizon{1, 0, 0.1}, 0},
		{"zero dt", Horizon{0, 1, 0}, 0},
		{"tiny dt clamps", Horizon{0, 1, 1e-300}, MaxSteps},
		{"overflowing quotient clamps", Horizon{-1e308, 1e308, 1e-10}, MaxSteps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.h.Steps(); got != tt.want {
				t.Errorf("Steps() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHorizon_Validate(t *testing.T) {
	valid := []Horizon{{0, 50, 0.02}, {3, 3, 0.1}, {0, 1, 5}, {0, MaxSteps, 1}}
	for _, h := range valid {
		if err := h.Validate(); err != nil {
			t.Errorf("Validate(%+v) = %v, want nil", h, err)
		}
	}

	invalid := []Horizon{
		{0, 1, 0},
		{0, 1, -0.1},
		{1, 0, 0.1},
		{math.NaN(), 1, 0.1},
		{0, math.Inf(1), 0.1},
		{0, 1, 1e-300},
		{-1e308, 1e308, 1},
		{0, MaxSteps + 1, 1},
	}
	for _, h := range invalid {
		if err := h.Validate(); !errors.Is(err, ErrInvalidHorizon) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidHorizon", h, err)
		}
	}
}

func TestTrajectory_Accessors(t *testing.T) {
	tr := NewTrajectory(2)
	tr.X[1], tr.Y[1], tr.Z[1] = 1, 2, 3

	if tr.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tr.Len())
	}
	s := tr.At(1)
	if s[0] != 1 || s[1] != 2 || s[2] != 3 {
		t.Errorf("At(1) = %v", s)
	}
	if tr.Axis(2)[1] != 3 {
		t.Errorf("Axis(2) did not return z")
	}
	if tr.Axis(7) != nil {
		t.Errorf("Axis(7) should be nil")
	}

	var nilTraj *Trajectory
	if nilTraj.Len() != 0 {
		t.Errorf("nil trajectory should have length 0")
	}
}

func TestSameGrid(t *testing.T) {
	if err := SameGrid(NewTrajectory(3), NewTrajectory(3)); err != nil {
		t.Errorf("SameGrid equal lengths: %v", err)
	}
	if err := SameGrid(NewTrajectory(3), NewTrajectory(4)); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("SameGrid = %v, want ErrLengthMismatch", err)
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Step: 150, Time: 1.5, Wrapped: ErrEmptyTrajectory}
	expected := "step 150 (t=1.5000): dynamo: empty trajectory"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrEmptyTrajectory) {
		t.Error("SimulationError should unwrap to the wrapped error")
	}
}
