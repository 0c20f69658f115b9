package analysis

import (
	"strings"

	"github.com/san-kum/lorenz/internal/dynamo"
)

// Point is a 2D sample of a projected trajectory.
type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// PhasePortrait projects a trajectory onto two of its axes (0=x, 1=y, 2=z).
func PhasePortrait(tr *dynamo.Trajectory, xIdx, yIdx int) *PhasePortrait2D {
	xs, ys := tr.Axis(xIdx), tr.Axis(yIdx)
	if xs == nil || ys == nil {
		return nil
	}
	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, len(xs)),
	}
	for i := range xs {
		portrait.Points[i] = Point{xs[i], ys[i]}
	}
	return portrait
}

// ReturnMap collects successive local maxima of z and pairs each with the
// next one: the Lorenz map z_n -> z_{n+1}.
func ReturnMap(tr *dynamo.Trajectory) *PhasePortrait2D {
	var maxima []float64
	for i := 1; i+1 < tr.Len(); i++ {
		if tr.Z[i] > tr.Z[i-1] && tr.Z[i] >= tr.Z[i+1] {
			maxima = append(maxima, tr.Z[i])
		}
	}
	m := &PhasePortrait2D{XIndex: 2, YIndex: 2}
	for i := 0; i+1 < len(maxima); i++ {
		m.Points = append(m.Points, Point{maxima[i], maxima[i+1]})
	}
	return m
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
