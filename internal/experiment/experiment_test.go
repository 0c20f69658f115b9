package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lorenz/internal/config"
	"github.com/san-kum/lorenz/internal/dynamo"
	"github.com/san-kum/lorenz/internal/integrators"
)

func TestRun(t *testing.T) {
	cfg := config.DefaultConfig()

	res, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if res.Steps() != 2500 || res.Pert.Len() != 2500 {
		t.Fatalf("expected 2500 samples per run, got %d and %d", res.Base.Len(), res.Pert.Len())
	}
	if res.Base.X[0] != 12 || res.Pert.X[0] != 12.001 {
		t.Errorf("unexpected initial samples %v %v", res.Base.At(0), res.Pert.At(0))
	}
	if res.System.Rho() != 28 {
		t.Errorf("unexpected rho %f", res.System.Rho())
	}
}

func TestRun_MatchesSequential(t *testing.T) {
	cfg := config.GetPreset("short")

	res, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	base, pert := cfg.InitialStates()
	wantBase, err := integrators.Integrate(cfg.System(), base, cfg.Horizon)
	if err != nil {
		t.Fatal(err)
	}
	wantPert, err := integrators.Integrate(cfg.System(), pert, cfg.Horizon)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < wantBase.Len(); i++ {
		if res.Base.X[i] != wantBase.X[i] || res.Pert.Z[i] != wantPert.Z[i] {
			t.Fatalf("concurrent run differs from sequential at %d", i)
		}
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"invalid horizon", func(c *config.Config) { c.Horizon.Dt = 0 }, dynamo.ErrInvalidHorizon},
		{"nan rho", func(c *config.Config) { c.Params.Rho = math.NaN() }, dynamo.ErrNonFiniteInput},
		{"bad initial", func(c *config.Config) { c.Initial = []float64{1} }, config.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			res, err := New(cfg).Run(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
			if res != nil {
				t.Error("expected no partial result")
			}
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(config.DefaultConfig()).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRun_NotConfigured(t *testing.T) {
	if _, err := New(nil).Run(context.Background()); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestRun_EmptyHorizon(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Horizon.End = cfg.Horizon.Start

	res, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Steps() != 0 || res.Pert.Len() != 0 {
		t.Errorf("expected empty trajectories")
	}
}
