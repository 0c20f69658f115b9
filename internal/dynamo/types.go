package dynamo

import (
	"fmt"
	"math"
)

// State is a point in phase space. Lorenz states are always (x, y, z).
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Horizon is the fixed time grid of a run.
type Horizon struct {
	Start float64 `yaml:"start" json:"start"`
	End   float64 `yaml:"end" json:"end"`
	Dt    float64 `yaml:"dt" json:"dt"`
}

// MaxSteps caps the number of samples in one run. Four float64 columns
// of this length take about 512 MiB.
const MaxSteps = 1 << 24

// Steps returns floor((End-Start)/Dt) clamped to [0, MaxSteps].
func (h Horizon) Steps() int {
	if h.Dt <= 0 || h.End <= h.Start {
		return 0
	}
	q := math.Floor((h.End - h.Start) / h.Dt)
	if math.IsNaN(q) {
		return 0
	}
	if q > MaxSteps {
		return MaxSteps
	}
	return int(q)
}

// Validate rejects horizons that cannot be stepped. End == Start is valid
// and simply yields zero steps.
func (h Horizon) Validate() error {
	for _, v := range []float64{h.Start, h.End, h.Dt} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bound %v", ErrInvalidHorizon, v)
		}
	}
	if h.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidHorizon, h.Dt)
	}
	if h.End < h.Start {
		return fmt.Errorf("%w: end %g before start %g", ErrInvalidHorizon, h.End, h.Start)
	}
	if q := math.Floor((h.End - h.Start) / h.Dt); math.IsInf(q, 0) || q > MaxSteps {
		return fmt.Errorf("%w: %g steps exceeds the limit of %d", ErrInvalidHorizon, q, MaxSteps)
	}
	return nil
}

// Trajectory holds the samples of one integration. Index i is the state
// before the i-th step was applied, so sample 0 is the initial state.
type Trajectory struct {
	T []float64
	X []float64
	Y []float64
	Z []float64
}

// NewTrajectory preallocates a trajectory of n samples.
func NewTrajectory(n int) *Trajectory {
	return &Trajectory{
		T: make([]float64, n),
		X: make([]float64, n),
		Y: make([]float64, n),
		Z: make([]float64, n),
	}
}

func (tr *Trajectory) Len() int {
	if tr == nil {
		return 0
	}
	return len(tr.X)
}

// At returns sample i as a fresh State.
func (tr *Trajectory) At(i int) State {
	return State{tr.X[i], tr.Y[i], tr.Z[i]}
}

// Axis returns the series for axis 0 (x), 1 (y) or 2 (z).
func (tr *Trajectory) Axis(axis int) []float64 {
	switch axis {
	case 0:
		return tr.X
	case 1:
		return tr.Y
	case 2:
		return tr.Z
	}
	return nil
}

// SameGrid reports whether two trajectories can be compared sample by sample.
func SameGrid(a, b *Trajectory) error {
	if a.Len() != b.Len() {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, a.Len(), b.Len())
	}
	return nil
}
