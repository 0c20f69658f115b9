package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/lorenz/internal/dynamo"
)

// Separation returns the Euclidean distance between a and b at every sample.
func Separation(a, b *dynamo.Trajectory) ([]float64, error) {
	if err := dynamo.SameGrid(a, b); err != nil {
		return nil, err
	}
	sep := make([]float64, a.Len())
	for i := range sep {
		dx := a.X[i] - b.X[i]
		dy := a.Y[i] - b.Y[i]
		dz := a.Z[i] - b.Z[i]
		sep[i] = math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return sep, nil
}

// AxisSeparation returns |a - b| along a single axis (0=x, 1=y, 2=z).
func AxisSeparation(a, b *dynamo.Trajectory, axis int) ([]float64, error) {
	if err := dynamo.SameGrid(a, b); err != nil {
		return nil, err
	}
	sa, sb := a.Axis(axis), b.Axis(axis)
	if sa == nil {
		return nil, fmt.Errorf("analysis: unknown axis %d", axis)
	}
	out := make([]float64, len(sa))
	floats.SubTo(out, sa, sb)
	for i, v := range out {
		out[i] = math.Abs(v)
	}
	return out, nil
}

// FirstExceed returns the first index whose value is strictly above threshold.
func FirstExceed(series []float64, threshold float64) (int, bool) {
	for i, v := range series {
		if v > threshold {
			return i, true
		}
	}
	return -1, false
}

// Divergence summarizes how two runs of an experiment drift apart.
type Divergence struct {
	Threshold       float64
	FirstExceed     int // -1 if never exceeded
	FirstExceedTime float64
	MaxSeparation   float64
	FinalSeparation float64
	// GrowthRate is the slope of ln(separation) against time up to the
	// first threshold crossing; for a chaotic regime it approximates the
	// largest Lyapunov exponent.
	GrowthRate float64
}

// Diverge computes the Divergence of b from a along the x axis, matching
// the |x1 - x2| criterion of the reference experiment.
func Diverge(a, b *dynamo.Trajectory, threshold float64) (*Divergence, error) {
	if a.Len() == 0 {
		return nil, dynamo.ErrEmptyTrajectory
	}
	dx, err := AxisSeparation(a, b, 0)
	if err != nil {
		return nil, err
	}
	sep, err := Separation(a, b)
	if err != nil {
		return nil, err
	}

	d := &Divergence{
		Threshold:       threshold,
		FirstExceed:     -1,
		MaxSeparation:   floats.Max(sep),
		FinalSeparation: sep[len(sep)-1],
	}
	end := len(sep)
	if idx, ok := FirstExceed(dx, threshold); ok {
		d.FirstExceed = idx
		d.FirstExceedTime = a.T[idx]
		end = idx + 1
	}
	d.GrowthRate = growthRate(a.T[:end], sep[:end])
	return d, nil
}

// growthRate fits ln(sep) = alpha + beta*t over samples with a positive
// separation and returns beta.
func growthRate(t, sep []float64) float64 {
	xs := make([]float64, 0, len(sep))
	ys := make([]float64, 0, len(sep))
	for i, s := range sep {
		if s > 0 {
			xs = append(xs, t[i])
			ys = append(ys, math.Log(s))
		}
	}
	if len(xs) < 2 || floats.Max(xs) == floats.Min(xs) {
		return 0
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta
}
