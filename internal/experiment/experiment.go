package experiment

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/lorenz/internal/config"
	"github.com/san-kum/lorenz/internal/dynamo"
	"github.com/san-kum/lorenz/internal/integrators"
	"github.com/san-kum/lorenz/internal/logger"
	"github.com/san-kum/lorenz/internal/physics"
)

// Result holds the two runs of an experiment on a shared time grid.
type Result struct {
	System    *physics.Lorenz
	Horizon   dynamo.Horizon
	Initial   dynamo.State
	Perturbed dynamo.State
	Base      *dynamo.Trajectory
	Pert      *dynamo.Trajectory
	Elapsed   time.Duration
}

// Steps returns the common trajectory length.
func (r *Result) Steps() int { return r.Base.Len() }

type Experiment struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Run integrates the base and perturbed initial states concurrently. The two
// runs share only the read-only system, so the result is the same as running
// them one after the other.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.cfg == nil {
		return nil, fmt.Errorf("experiment not configured")
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.With("experiment")
	sys := e.cfg.System()
	h := e.cfg.Horizon
	x0, x0p := e.cfg.InitialStates()

	res := &Result{System: sys, Horizon: h, Initial: x0, Perturbed: x0p}
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tr, err := integrate(ctx, sys, x0, h)
		res.Base = tr
		return err
	})
	g.Go(func() error {
		tr, err := integrate(ctx, sys, x0p, h)
		res.Pert = tr
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := dynamo.SameGrid(res.Base, res.Pert); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)

	log.Info().
		Str("system", sys.String()).
		Int("steps", res.Steps()).
		Dur("elapsed", res.Elapsed).
		Msg("integration complete")
	return res, nil
}

func integrate(ctx context.Context, sys *physics.Lorenz, x0 dynamo.State, h dynamo.Horizon) (*dynamo.Trajectory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return integrators.Integrate(sys, x0, h)
}
