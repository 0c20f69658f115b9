package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrTooFewPoints is returned when a series is too short to draw.
var ErrTooFewPoints = errors.New("export: too few points")

// ChartOptions configures DivergenceChart.
type ChartOptions struct {
	Title     string
	Width     int
	Height    int
	Color     string // hex, with or without '#'
	Threshold float64
	Log       bool // plot log10 of the separation
}

// DivergenceChart renders a separation series against time as a PNG, with
// a horizontal line at the threshold when it is positive.
func DivergenceChart(w io.Writer, times, sep []float64, opts ChartOptions) error {
	if len(times) != len(sep) {
		return fmt.Errorf("export: %d times for %d values", len(times), len(sep))
	}

	xs := make([]float64, 0, len(sep))
	ys := make([]float64, 0, len(sep))
	for i, v := range sep {
		if opts.Log {
			if v <= 0 {
				continue
			}
			v = math.Log10(v)
		}
		xs = append(xs, times[i])
		ys = append(ys, v)
	}
	if len(xs) < 2 {
		return fmt.Errorf("%w: %d usable samples", ErrTooFewPoints, len(xs))
	}

	yName := "separation"
	if opts.Log {
		yName = "log10 separation"
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    yName,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex(strings.TrimPrefix(opts.Color, "#")),
				StrokeWidth: 1.5,
			},
		},
	}
	if opts.Threshold > 0 {
		level := opts.Threshold
		if opts.Log {
			level = math.Log10(level)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "threshold",
			XValues: []float64{xs[0], xs[len(xs)-1]},
			YValues: []float64{level, level},
			Style: chart.Style{
				StrokeColor:     chart.ColorRed,
				StrokeWidth:     1.0,
				StrokeDashArray: []float64{5, 5},
			},
		})
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		XAxis: chart.XAxis{
			Name:  "t",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		YAxis: chart.YAxis{
			Name:  yName,
			Style: chart.Style{FontSize: 10.0},
		},
		Series: series,
	}
	return graph.Render(chart.PNG, w)
}
