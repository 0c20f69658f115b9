package render

import (
	"fmt"
	"image/color"
	"path/filepath"
	"runtime"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/lorenz/internal/config"
)

// TitleFormat is applied to rho for every frame title.
const TitleFormat = "Lorenz model with r = %3.1f"

type Options struct {
	Dir       string
	Prefix    string
	Width     int // pixels
	Height    int
	Margin    float64
	Elevation float64
	Every     int
	Workers   int // 0 means GOMAXPROCS
	BaseColor string
	PertColor string

	// GIF, when set, is the path of an animated GIF assembled from every
	// GIFEvery-th written frame at half size.
	GIF      string
	GIFEvery int

	// OnFrame is called after each frame is written with the number of
	// frames done so far. It may be called from several goroutines.
	OnFrame func(done, total int)
}

// FromConfig copies the output section of cfg.
func FromConfig(cfg *config.Config) Options {
	out := cfg.Output
	return Options{
		Dir:       out.Dir,
		Prefix:    out.Prefix,
		Width:     out.Width,
		Height:    out.Height,
		Margin:    out.Margin,
		Elevation: out.Elevation,
		Every:     out.Every,
		Workers:   out.Workers,
		BaseColor: out.BaseColor,
		PertColor: out.PertColor,
		GIF:       out.GIF,
		GIFEvery:  10,
	}
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// FramePath returns <Dir>/<Prefix>_<i>.png with i zero-padded to five digits.
func (o Options) FramePath(i int) string {
	return filepath.Join(o.Dir, fmt.Sprintf("%s_%05d.png", o.Prefix, i))
}

// FrameIndices lists the sample indices that get a frame: 0, every,
// 2*every, ... below n.
func FrameIndices(n, every int) []int {
	if every < 1 {
		every = 1
	}
	if n <= 0 {
		return nil
	}
	out := make([]int, 0, (n+every-1)/every)
	for i := 0; i < n; i += every {
		out = append(out, i)
	}
	return out
}

func parseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("color %q: %w", hex, err)
	}
	return c, nil
}
