package render

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/lorenz/internal/dynamo"
	"github.com/san-kum/lorenz/internal/viz"
)

var boxColor = color.Gray{Y: 150}

// scene is the read-only state shared by all frame workers.
type scene struct {
	base, pert *dynamo.Trajectory
	bounds     viz.Bounds
	title      string
	width      int
	height     int
	elevation  float64
	baseColor  color.Color
	pertColor  color.Color
}

// Plot builds frame i: the box, both paths through sample i and a marker on
// each current point, seen from azimuth i degrees.
func (s *scene) Plot(i int) (*plot.Plot, error) {
	cam := viz.NewCamera(s.elevation, float64(i))

	p := plot.New()
	p.Title.Text = s.title
	p.HideAxes()

	for _, e := range s.bounds.Edges() {
		l, err := plotter.NewLine(plotter.XYs{s.point(cam, e[0]), s.point(cam, e[1])})
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = boxColor
		l.LineStyle.Width = vg.Points(0.5)
		p.Add(l)
	}

	labels, err := s.axisLabels(cam)
	if err != nil {
		return nil, err
	}
	p.Add(labels)

	for _, run := range []struct {
		tr  *dynamo.Trajectory
		col color.Color
	}{{s.base, s.baseColor}, {s.pert, s.pertColor}} {
		path := s.path(cam, run.tr, i+1)

		line, err := plotter.NewLine(path)
		if err != nil {
			return nil, fmt.Errorf("path: %w", err)
		}
		line.LineStyle.Color = run.col
		line.LineStyle.Width = vg.Points(1)

		marker, err := plotter.NewScatter(path[len(path)-1:])
		if err != nil {
			return nil, fmt.Errorf("marker: %w", err)
		}
		marker.GlyphStyle.Color = run.col
		marker.GlyphStyle.Shape = draw.CircleGlyph{}
		marker.GlyphStyle.Radius = vg.Points(3)

		p.Add(line, marker)
	}

	// Fixed view window so the box keeps its size while rotating.
	aspect := float64(s.width) / float64(s.height)
	p.Y.Min, p.Y.Max = -0.95, 0.95
	p.X.Min, p.X.Max = -0.95*aspect, 0.95*aspect
	return p, nil
}

func (s *scene) point(cam *viz.Camera, v viz.Vec3) plotter.XY {
	u, w, _ := cam.Project(s.bounds.Normalize(v))
	return plotter.XY{X: u, Y: w}
}

func (s *scene) path(cam *viz.Camera, tr *dynamo.Trajectory, n int) plotter.XYs {
	xys := make(plotter.XYs, n)
	for k := range xys {
		xys[k] = s.point(cam, viz.Vec3{X: tr.X[k], Y: tr.Y[k], Z: tr.Z[k]})
	}
	return xys
}

// axisLabels puts x, y and z at the middle of the box edges leaving the
// minimum corner.
func (s *scene) axisLabels(cam *viz.Camera) (*plotter.Labels, error) {
	c := s.bounds.Corners()
	mid := func(a, b viz.Vec3) plotter.XY { return s.point(cam, a.Add(b).Scale(0.5)) }
	return plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{mid(c[0], c[1]), mid(c[0], c[2]), mid(c[0], c[4])},
		Labels: []string{"x", "y", "z"},
	})
}

// writePNG draws p onto a fresh canvas and stores it at path. The canvas
// image is returned for further use.
func writePNG(path string, p *plot.Plot, width, height int) (img image.Image, err error) {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(width), vg.Length(height)),
		vgimg.UseDPI(72),
		vgimg.UseBackgroundColor(color.White),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		return nil, err
	}
	return c.Image(), nil
}
