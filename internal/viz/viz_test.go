package viz

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lorenz/internal/dynamo"
)

func sampleTrajectory() *dynamo.Trajectory {
	tr := dynamo.NewTrajectory(3)
	copy(tr.T, []float64{0, 0, 1})
	copy(tr.X, []float64{-1, 2, 0})
	copy(tr.Y, []float64{4, -3, 1})
	copy(tr.Z, []float64{10, 20, 15})
	return tr
}

func TestBoundsOf(t *testing.T) {
	b, err := BoundsOf(sampleTrajectory(), 5)
	require.NoError(t, err)

	assert.Equal(t, Vec3{-1, -3, 10}, b.Min)
	assert.Equal(t, Vec3{7, 9, 25}, b.Max)

	_, err = BoundsOf(dynamo.NewTrajectory(0), 5)
	assert.ErrorIs(t, err, dynamo.ErrEmptyTrajectory)
}

func TestNormalize(t *testing.T) {
	b := Bounds{Min: Vec3{0, -10, 5}, Max: Vec3{10, 10, 5}}

	assert.Equal(t, Vec3{-0.5, -0.5, 0}, b.Normalize(Vec3{0, -10, 5}))
	assert.Equal(t, Vec3{0.5, 0, 0}, b.Normalize(Vec3{10, 0, 5}))
}

func TestEdges(t *testing.T) {
	b := Bounds{Max: Vec3{1, 1, 1}}
	for _, e := range b.Edges() {
		d := e[1].Sub(e[0])
		assert.InDelta(t, 1.0, d.Dot(d), 1e-12, "edge %v should have unit length", e)
	}
}

func TestCameraProject(t *testing.T) {
	front := NewCamera(0, 0)
	u, v, d := front.Project(Vec3{0, 0.5, 0})
	assert.InDelta(t, 0.5, u, 1e-12)
	assert.InDelta(t, 0.0, v, 1e-12)
	assert.InDelta(t, 0.0, d, 1e-12)

	_, v, _ = front.Project(Vec3{0, 0, 0.5})
	assert.InDelta(t, 0.5, v, 1e-12)

	_, _, d = front.Project(Vec3{0.5, 0, 0})
	assert.InDelta(t, 0.5, d, 1e-12)

	side := NewCamera(0, 90)
	u, _, _ = side.Project(Vec3{0.5, 0, 0})
	assert.InDelta(t, -0.5, u, 1e-12)

	top := NewCamera(90, 0)
	_, v, _ = top.Project(Vec3{-0.5, 0, 0})
	assert.InDelta(t, 0.5, v, 1e-12)
}

func TestProjectToScreen_BoxAlwaysVisible(t *testing.T) {
	b := Bounds{Min: Vec3{-1, -1, -1}, Max: Vec3{1, 1, 1}}
	for az := 0.0; az < 360; az += 17 {
		cam := NewCamera(30, az)
		for _, c := range b.Corners() {
			_, _, _, ok := cam.ProjectToScreen(b.Normalize(c), 120, 96)
			assert.True(t, ok, "corner %v hidden at azimuth %v", c, az)
		}
	}

	x, y, _, ok := NewCamera(30, 45).ProjectToScreen(Vec3{}, 120, 96)
	assert.True(t, ok)
	assert.Equal(t, 60, x)
	assert.Equal(t, 48, y)
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(4, 2)
	assert.False(t, c.Lit(0, 0))

	c.Set(0, 0)
	c.Set(1, 3)
	assert.Equal(t, rune(brailleBlank|0x1|0x80), c.Grid[0][0])
	assert.True(t, c.Lit(0, 0))

	c.Set(-1, 0)
	c.Set(100, 100)

	c.DrawLine(0, 4, 7, 4)
	for col := 0; col < 4; col++ {
		assert.True(t, c.Lit(col, 1))
	}

	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	assert.Len(t, lines, 2)

	c.Clear()
	assert.False(t, c.Lit(0, 0))
}

func TestPreview(t *testing.T) {
	base := sampleTrajectory()
	pert := sampleTrajectory()
	pert.X[2] = 1

	out, err := Preview(base, pert, PreviewOptions{
		Width: 30, Height: 12, Frame: 2, Elevation: 30, Azimuth: 40, Margin: 5, Plain: true,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 12)
	for _, l := range lines {
		assert.Equal(t, 30, utf8.RuneCountInString(l))
	}
	assert.NotEqual(t, strings.Repeat(string(rune(brailleBlank)), 30*12), strings.ReplaceAll(out, "\n", ""))

	_, err = Preview(dynamo.NewTrajectory(0), pert, PreviewOptions{})
	assert.ErrorIs(t, err, dynamo.ErrEmptyTrajectory)
}

func TestProgressModel(t *testing.T) {
	m := NewProgressModel("rendering", 10)
	require.NotNil(t, m.Init())

	next, _ := m.Update(FrameMsg{Done: 3, Total: 10})
	m = next.(ProgressModel)
	assert.Contains(t, m.View(), "3/10 frames")

	failure := errors.New("disk full")
	next, cmd := m.Update(DoneMsg{Err: failure})
	m = next.(ProgressModel)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "✗")
	assert.False(t, m.Interrupted())
}

func TestProgressModel_Quit(t *testing.T) {
	m := NewProgressModel("rendering", 10)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(ProgressModel)
	assert.NotNil(t, cmd)
	assert.True(t, m.Interrupted())
}

func TestSummary(t *testing.T) {
	out := Summary("divergence", []Metric{{"first exceed", "420"}, {"rate", "0.91"}})
	assert.Contains(t, out, "divergence")
	assert.Contains(t, out, "first exceed")
	assert.Contains(t, out, "0.91")

	assert.NotEmpty(t, ProgressBar(0.5, 10))
}
