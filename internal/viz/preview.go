package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/lorenz/internal/dynamo"
)

const (
	layerBox = iota
	layerBase
	layerPert
)

// PreviewOptions controls the terminal rendering of a frame.
type PreviewOptions struct {
	Width, Height int // in terminal cells
	Frame         int // samples drawn are 0..Frame
	Elevation     float64
	Azimuth       float64
	Margin        float64
	BaseColor     string
	PertColor     string
	Plain         bool // no ANSI colors
}

// Preview draws one frame of the two-trajectory animation with braille dots:
// the bounding box, both paths up to Frame and nothing else. The box is taken
// from base exactly as the PNG frames are.
func Preview(base, pert *dynamo.Trajectory, opts PreviewOptions) (string, error) {
	b, err := BoundsOf(base, opts.Margin)
	if err != nil {
		return "", err
	}
	if opts.Width <= 0 {
		opts.Width = 60
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}

	layers := []*Canvas{
		NewCanvas(opts.Width, opts.Height),
		NewCanvas(opts.Width, opts.Height),
		NewCanvas(opts.Width, opts.Height),
	}
	w := BoxWireframe(b, layerBox)
	w.AddPath(base, opts.Frame+1, layerBase)
	w.AddPath(pert, opts.Frame+1, layerPert)
	Render3D(layers, w, b, NewCamera(opts.Elevation, opts.Azimuth))

	if opts.Plain {
		return merge(layers, nil), nil
	}
	styles := []lipgloss.Style{
		Subtle,
		lipgloss.NewStyle().Foreground(lipgloss.Color(opts.BaseColor)),
		lipgloss.NewStyle().Foreground(lipgloss.Color(opts.PertColor)),
	}
	return merge(layers, styles), nil
}

// merge ORs the layers cell by cell. A cell takes the style of the topmost
// layer that lit it.
func merge(layers []*Canvas, styles []lipgloss.Style) string {
	top := layers[0]
	var sb strings.Builder
	for row := 0; row < top.Height; row++ {
		for col := 0; col < top.Width; col++ {
			r := rune(brailleBlank)
			owner := -1
			for i, l := range layers {
				if l.Lit(col, row) {
					r |= l.Grid[row][col]
					owner = i
				}
			}
			if owner < 0 || styles == nil {
				sb.WriteRune(r)
				continue
			}
			sb.WriteString(styles[owner].Render(string(r)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
