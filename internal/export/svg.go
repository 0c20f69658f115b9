package export

import (
	"fmt"
	"image/color"
	"io"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/san-kum/lorenz/internal/dynamo"
)

var axisNames = [3]string{"x", "y", "z"}

// PhaseOptions configures PhaseSVG. Width and Height are in points.
type PhaseOptions struct {
	XAxis, YAxis int // 0, 1 or 2
	Width        int
	Height       int
	BaseColor    string
	PertColor    string
}

// PhaseSVG draws both trajectories projected on two state axes, one line
// per trajectory, on shared axes.
func PhaseSVG(w io.Writer, base, pert *dynamo.Trajectory, opts PhaseOptions) error {
	if err := dynamo.SameGrid(base, pert); err != nil {
		return err
	}
	if base.Len() < 2 {
		return fmt.Errorf("%w: need at least 2 samples", ErrTooFewPoints)
	}
	bx, by := base.Axis(opts.XAxis), base.Axis(opts.YAxis)
	px, py := pert.Axis(opts.XAxis), pert.Axis(opts.YAxis)
	if bx == nil || by == nil {
		return fmt.Errorf("invalid axes %d, %d", opts.XAxis, opts.YAxis)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", opts.Width, opts.Height)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s-%s projection", axisNames[opts.XAxis], axisNames[opts.YAxis])
	p.X.Label.Text = axisNames[opts.XAxis]
	p.Y.Label.Text = axisNames[opts.YAxis]

	for _, run := range []struct {
		xs, ys []float64
		hex    string
	}{{bx, by, opts.BaseColor}, {px, py, opts.PertColor}} {
		col, err := lineColor(run.hex)
		if err != nil {
			return err
		}
		pts := make(plotter.XYs, len(run.xs))
		for i := range run.xs {
			pts[i].X, pts[i].Y = run.xs[i], run.ys[i]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Color = col
		line.LineStyle.Width = vg.Points(0.75)
		p.Add(line)
	}

	c := vgsvg.New(vg.Points(float64(opts.Width)), vg.Points(float64(opts.Height)))
	p.Draw(draw.New(c))
	_, err := c.WriteTo(w)
	return err
}

// lineColor parses a #rrggbb color; empty means black.
func lineColor(hex string) (color.Color, error) {
	if hex == "" {
		return color.Black, nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("color %q: %w", hex, err)
	}
	return c, nil
}
