package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/lorenz/internal/dynamo"
	"github.com/san-kum/lorenz/internal/physics"
)

const (
	DefaultSigma        = 10.0
	DefaultBeta         = 2.67
	DefaultRho          = 28.0
	DefaultStart        = 0.0
	DefaultEnd          = 50.0
	DefaultDt           = 0.02
	DefaultPerturbation = 0.001
	DefaultThreshold    = 1.0
	DefaultOutputDir    = "images/chaos"
	DefaultPrefix       = "lorenz"
	DefaultWidth        = 640
	DefaultHeight       = 480
	DefaultMargin       = 5.0
	DefaultElevation    = 30.0
	DefaultBaseColor    = "#DAA520" // Goldenrod
	DefaultPertColor    = "#1E90FF" // DodgerBlue
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Params       ParamsConfig       `yaml:"params"`
	Initial      []float64          `yaml:"initial"`
	Perturbation PerturbationConfig `yaml:"perturbation"`
	Horizon      dynamo.Horizon     `yaml:"horizon"`
	Threshold    float64            `yaml:"threshold"`
	Output       OutputConfig       `yaml:"output"`
}

type ParamsConfig struct {
	Sigma float64 `yaml:"sigma"`
	Beta  float64 `yaml:"beta"`
	Rho   float64 `yaml:"rho"`
}

// PerturbationConfig shifts one coordinate of the initial state for the
// second run.
type PerturbationConfig struct {
	Axis  int     `yaml:"axis"`
	Delta float64 `yaml:"delta"`
}

type OutputConfig struct {
	Dir       string  `yaml:"dir"`
	Prefix    string  `yaml:"prefix"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Margin    float64 `yaml:"margin"`
	Elevation float64 `yaml:"elevation"`
	Every     int     `yaml:"every"`
	Workers   int     `yaml:"workers"`
	GIF       string  `yaml:"gif"`
	BaseColor string  `yaml:"base_color"`
	PertColor string  `yaml:"perturbed_color"`
}

func DefaultConfig() *Config {
	return &Config{
		Params:       ParamsConfig{Sigma: DefaultSigma, Beta: DefaultBeta, Rho: DefaultRho},
		Initial:      []float64{12.0, 12.0, 12.0},
		Perturbation: PerturbationConfig{Axis: 0, Delta: DefaultPerturbation},
		Horizon:      dynamo.Horizon{Start: DefaultStart, End: DefaultEnd, Dt: DefaultDt},
		Threshold:    DefaultThreshold,
		Output: OutputConfig{
			Dir:       DefaultOutputDir,
			Prefix:    DefaultPrefix,
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			Margin:    DefaultMargin,
			Elevation: DefaultElevation,
			Every:     1,
			BaseColor: DefaultBaseColor,
			PertColor: DefaultPertColor,
		},
	}
}

// LoadWith reads path on top of base: keys missing from the file keep the
// values already in base. base is modified and returned.
func LoadWith(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields the integrator does not check itself, plus the
// horizon so an oversized grid is refused before anything is allocated.
// Parameter finiteness is left to the integrator.
func (c *Config) Validate() error {
	if len(c.Initial) != 3 {
		return fmt.Errorf("%w: initial state needs 3 coordinates, got %d", ErrInvalidConfig, len(c.Initial))
	}
	if c.Perturbation.Axis < 0 || c.Perturbation.Axis > 2 {
		return fmt.Errorf("%w: perturbation axis %d out of range", ErrInvalidConfig, c.Perturbation.Axis)
	}
	if math.IsNaN(c.Perturbation.Delta) || math.IsInf(c.Perturbation.Delta, 0) {
		return fmt.Errorf("%w: perturbation delta must be finite", ErrInvalidConfig)
	}
	if err := c.Horizon.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalidConfig, c.Output.Width, c.Output.Height)
	}
	if c.Output.Every < 1 {
		return fmt.Errorf("%w: every must be at least 1", ErrInvalidConfig)
	}
	if c.Output.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if c.Output.Prefix == "" {
		return fmt.Errorf("%w: empty frame prefix", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) System() *physics.Lorenz {
	return physics.NewLorenzWith(c.Params.Sigma, c.Params.Beta, c.Params.Rho)
}

// InitialStates returns the base state and the perturbed copy.
func (c *Config) InitialStates() (dynamo.State, dynamo.State) {
	base := dynamo.State(c.Initial).Clone()
	pert := base.Clone()
	if c.Perturbation.Axis >= 0 && c.Perturbation.Axis < len(pert) {
		pert[c.Perturbation.Axis] += c.Perturbation.Delta
	}
	return base, pert
}
