package viz

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/lorenz/internal/dynamo"
)

type Vec3 struct {
	X, Y, Z float64
}

// Vec3 methods.
func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Bounds is an axis-aligned box in data coordinates.
type Bounds struct {
	Min, Max Vec3
}

// BoundsOf returns the per-axis extent of tr. The margin is added to the
// upper end of every axis only.
func BoundsOf(tr *dynamo.Trajectory, margin float64) (Bounds, error) {
	if tr.Len() == 0 {
		return Bounds{}, dynamo.ErrEmptyTrajectory
	}
	return Bounds{
		Min: Vec3{floats.Min(tr.X), floats.Min(tr.Y), floats.Min(tr.Z)},
		Max: Vec3{floats.Max(tr.X) + margin, floats.Max(tr.Y) + margin, floats.Max(tr.Z) + margin},
	}, nil
}

// Normalize maps p into the unit box centered on the origin. Degenerate axes
// collapse to zero.
func (b Bounds) Normalize(p Vec3) Vec3 {
	return Vec3{
		unit(p.X, b.Min.X, b.Max.X),
		unit(p.Y, b.Min.Y, b.Max.Y),
		unit(p.Z, b.Min.Z, b.Max.Z),
	}
}

func unit(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return (v-lo)/(hi-lo) - 0.5
}

// Corners lists the eight box vertices, bit 0 selecting X, bit 1 Y, bit 2 Z.
func (b Bounds) Corners() [8]Vec3 {
	var out [8]Vec3
	for i := range out {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		out[i] = p
	}
	return out
}

var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Edges returns the twelve box edges as corner pairs.
func (b Bounds) Edges() [12][2]Vec3 {
	c := b.Corners()
	var out [12][2]Vec3
	for i, e := range boxEdges {
		out[i] = [2]Vec3{c[e[0]], c[e[1]]}
	}
	return out
}

// Camera is an orthographic view of the unit box. Elevation is measured up
// from the x-y plane and Azimuth around the z axis from +x, both in degrees.
type Camera struct {
	Elevation float64
	Azimuth   float64
	Zoom      float64
}

func NewCamera(elevation, azimuth float64) *Camera {
	return &Camera{Elevation: elevation, Azimuth: azimuth, Zoom: 1.0}
}

func (c *Camera) basis() (right, up, eye Vec3) {
	e := c.Elevation * math.Pi / 180
	a := c.Azimuth * math.Pi / 180
	se, ce := math.Sin(e), math.Cos(e)
	sa, ca := math.Sin(a), math.Cos(a)
	right = Vec3{-sa, ca, 0}
	up = Vec3{-se * ca, -se * sa, ce}
	eye = Vec3{ce * ca, ce * sa, se}
	return
}

// Project maps a normalized point to view coordinates. u grows to the right,
// v grows upward and depth grows toward the viewer.
func (c *Camera) Project(p Vec3) (u, v, depth float64) {
	right, up, eye := c.basis()
	zoom := c.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return p.Dot(right) * zoom, p.Dot(up) * zoom, p.Dot(eye)
}

// ProjectToScreen maps a normalized point onto a sw x sh pixel grid with the
// origin at the top left. The unit box always fits inside the grid.
func (c *Camera) ProjectToScreen(p Vec3, sw, sh int) (int, int, float64, bool) {
	u, v, d := c.Project(p)
	scale := float64(min(sw, sh)) / 1.8
	sx := int(math.Round(u*scale)) + sw/2
	sy := int(math.Round(-v*scale)) + sh/2
	return sx, sy, d, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End Vec3
	Layer      int
}

// Wireframe is a set of segments in data coordinates.
type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe                   { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e Vec3, layer int) { w.Edges = append(w.Edges, Edge{s, e, layer}) }
func (w *Wireframe) AddPoint(p Vec3, layer int)   { w.Edges = append(w.Edges, Edge{p, p, layer}) }

// AddPath adds consecutive segments through the first n samples of tr.
func (w *Wireframe) AddPath(tr *dynamo.Trajectory, n, layer int) {
	n = min(n, tr.Len())
	for i := 1; i < n; i++ {
		w.AddEdge(Vec3{tr.X[i-1], tr.Y[i-1], tr.Z[i-1]}, Vec3{tr.X[i], tr.Y[i], tr.Z[i]}, layer)
	}
	if n == 1 {
		w.AddPoint(Vec3{tr.X[0], tr.Y[0], tr.Z[0]}, layer)
	}
}

// BoxWireframe returns the outline of b on the given layer.
func BoxWireframe(b Bounds, layer int) *Wireframe {
	w := NewWireframe()
	for _, e := range b.Edges() {
		w.AddEdge(e[0], e[1], layer)
	}
	return w
}

type ProjectedEdge struct {
	X1, Y1, X2, Y2 int
	Depth          float64
	Layer          int
}

// Render3D draws the wireframe onto one canvas per layer, far edges first.
// Edges whose layer has no canvas are skipped.
func Render3D(layers []*Canvas, w *Wireframe, b Bounds, cam *Camera) {
	if len(layers) == 0 || w == nil || cam == nil {
		return
	}
	sw, sh := layers[0].Width*2, layers[0].Height*4
	proj := make([]ProjectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		if e.Layer < 0 || e.Layer >= len(layers) {
			continue
		}
		x1, y1, d1, v1 := cam.ProjectToScreen(b.Normalize(e.Start), sw, sh)
		x2, y2, d2, v2 := cam.ProjectToScreen(b.Normalize(e.End), sw, sh)
		if v1 || v2 {
			proj = append(proj, ProjectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Layer})
		}
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].Depth < proj[j].Depth })
	for _, e := range proj {
		c := layers[e.Layer]
		if e.X1 == e.X2 && e.Y1 == e.Y2 {
			c.Set(e.X1, e.Y1)
		} else {
			c.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		}
	}
}
