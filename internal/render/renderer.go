package render

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/lorenz/internal/dynamo"
	"github.com/san-kum/lorenz/internal/logger"
	"github.com/san-kum/lorenz/internal/viz"
)

// ErrInvalidOptions is wrapped by every New failure.
var ErrInvalidOptions = errors.New("render: invalid options")

type Renderer struct {
	opts      Options
	baseColor color.Color
	pertColor color.Color
	log       zerolog.Logger
}

// Report summarizes a finished render.
type Report struct {
	Dir     string
	Frames  int
	First   string
	Last    string
	GIF     string
	Elapsed time.Duration
}

func New(opts Options) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: frame size %dx%d", ErrInvalidOptions, opts.Width, opts.Height)
	}
	if opts.Prefix == "" {
		return nil, fmt.Errorf("%w: empty prefix", ErrInvalidOptions)
	}
	if opts.Every < 1 {
		opts.Every = 1
	}
	base, err := parseColor(opts.BaseColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	pert, err := parseColor(opts.PertColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return &Renderer{
		opts:      opts,
		baseColor: base,
		pertColor: pert,
		log:       logger.With("render"),
	}, nil
}

// Render writes one PNG per selected sample of the two trajectories. The
// view box comes from base alone. Frames are independent and are drawn by a
// bounded pool of workers; the first failure or a cancelled ctx stops the
// pool. The output directory must already exist.
func (r *Renderer) Render(ctx context.Context, base, pert *dynamo.Trajectory, rho float64) (*Report, error) {
	if err := dynamo.SameGrid(base, pert); err != nil {
		return nil, err
	}
	info, err := os.Stat(r.opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("output directory: %s is not a directory", r.opts.Dir)
	}

	start := time.Now()
	report := &Report{Dir: r.opts.Dir}
	idx := FrameIndices(base.Len(), r.opts.Every)
	if len(idx) == 0 {
		r.log.Info().Msg("empty trajectory, nothing to render")
		return report, nil
	}

	bounds, err := viz.BoundsOf(base, r.opts.Margin)
	if err != nil {
		return nil, err
	}
	sc := &scene{
		base:      base,
		pert:      pert,
		bounds:    bounds,
		title:     fmt.Sprintf(TitleFormat, rho),
		width:     r.opts.Width,
		height:    r.opts.Height,
		elevation: r.opts.Elevation,
		baseColor: r.baseColor,
		pertColor: r.pertColor,
	}

	var gifs *gifCollector
	if r.opts.GIF != "" {
		gifs = newGIFCollector(len(idx), r.opts.GIFEvery)
	}

	r.log.Info().
		Int("frames", len(idx)).
		Int("workers", r.opts.workers()).
		Str("dir", r.opts.Dir).
		Msg("rendering frames")

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.workers())
	for pos, i := range idx {
		if gctx.Err() != nil {
			break
		}
		pos, i := pos, i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := r.opts.FramePath(i)
			p, err := sc.Plot(i)
			if err != nil {
				return &dynamo.SimulationError{Step: i, Time: base.T[i], Wrapped: err}
			}
			img, err := writePNG(path, p, sc.width, sc.height)
			if err != nil {
				return &dynamo.SimulationError{Step: i, Time: base.T[i], Wrapped: err}
			}
			gifs.add(pos, img)

			n := int(done.Add(1))
			r.log.Debug().Int("frame", i).Str("path", path).Msg("frame written")
			if r.opts.OnFrame != nil {
				r.opts.OnFrame(n, len(idx))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Frames = len(idx)
	report.First = r.opts.FramePath(idx[0])
	report.Last = r.opts.FramePath(idx[len(idx)-1])

	if gifs != nil {
		if err := gifs.write(r.opts.GIF); err != nil {
			return nil, fmt.Errorf("write gif: %w", err)
		}
		report.GIF = r.opts.GIF
	}

	report.Elapsed = time.Since(start)
	r.log.Info().
		Int("frames", report.Frames).
		Dur("elapsed", report.Elapsed).
		Msg("render complete")
	return report, nil
}
