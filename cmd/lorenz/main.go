package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/san-kum/lorenz/internal/config"
	"github.com/san-kum/lorenz/internal/logger"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFormat  string

	// experiment overrides
	sigma     float64
	beta      float64
	rho       float64
	initial   []float64
	pertAxis  int
	delta     float64
	tStart    float64
	tEnd      float64
	dt        float64
	threshold float64

	// frame output
	outDir    string
	prefix    string
	width     int
	height    int
	elevation float64
	every     int
	workers   int
	gifPath   string
	progress  bool
	save      bool
	saveCfg   string

	// analysis and export
	axis      int
	xAxis     int
	yAxis     int
	outPath   string
	chartPath string
	logScale  bool
	both      bool
	returnMap bool

	// preview
	frame   int
	azimuth float64
	cols    int
	rows    int
	plain   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lorenz",
		Short: "sensitive dependence on initial conditions in the Lorenz system",
		Long: "lorenz integrates two Lorenz trajectories that start a small distance apart\n" +
			"and renders their divergence as a numbered sequence of PNG frames.",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runRender,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".lorenz", "data directory for saved runs")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a preset configuration")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	addExperimentFlags(rootCmd)
	addRenderFlags(rootCmd)

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "integrate both runs and write the frame sequence",
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
	addExperimentFlags(renderCmd)
	addRenderFlags(renderCmd)

	integrateCmd := &cobra.Command{
		Use:   "integrate",
		Short: "integrate the base run and print it as CSV",
		Args:  cobra.NoArgs,
		RunE:  runIntegrate,
	}
	addExperimentFlags(integrateCmd)
	integrateCmd.Flags().BoolVar(&both, "both", false, "include the perturbed run")

	divergeCmd := &cobra.Command{
		Use:   "diverge",
		Short: "measure how fast the two runs separate",
		Args:  cobra.NoArgs,
		RunE:  runDiverge,
	}
	addExperimentFlags(divergeCmd)
	divergeCmd.Flags().StringVar(&chartPath, "chart", "", "write a PNG chart of the separation")
	divergeCmd.Flags().BoolVar(&logScale, "log", true, "plot the separation on a log scale")
	divergeCmd.Flags().BoolVar(&save, "save", false, "save the run under the data directory")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum",
		Short: "power spectrum of one coordinate of the base run",
		Args:  cobra.NoArgs,
		RunE:  runSpectrum,
	}
	addExperimentFlags(spectrumCmd)
	spectrumCmd.Flags().IntVar(&axis, "axis", 0, "coordinate to analyze (0=x, 1=y, 2=z)")

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "draw one frame in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runPreview,
	}
	addExperimentFlags(previewCmd)
	previewCmd.Flags().IntVar(&frame, "frame", -1, "frame index (default: last sample)")
	previewCmd.Flags().Float64Var(&azimuth, "azimuth", -1, "view azimuth in degrees (default: frame index)")
	previewCmd.Flags().Float64Var(&elevation, "elevation", config.DefaultElevation, "view elevation in degrees")
	previewCmd.Flags().IntVar(&cols, "cols", 72, "preview width in terminal cells")
	previewCmd.Flags().IntVar(&rows, "rows", 28, "preview height in terminal cells")
	previewCmd.Flags().BoolVar(&plain, "plain", false, "disable colors")

	phaseCmd := &cobra.Command{
		Use:   "phase",
		Short: "ASCII phase portrait of the base run",
		Args:  cobra.NoArgs,
		RunE:  runPhase,
	}
	addExperimentFlags(phaseCmd)
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "horizontal coordinate (0=x, 1=y, 2=z)")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 2, "vertical coordinate (0=x, 1=y, 2=z)")
	phaseCmd.Flags().BoolVar(&returnMap, "return-map", false, "plot successive z maxima instead")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json",
		Short: "export both runs as JSON",
		Args:  cobra.NoArgs,
		RunE:  runExportJSON,
	}
	addExperimentFlags(exportJSONCmd)
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg",
		Short: "export a 2D projection of both runs as SVG",
		Args:  cobra.NoArgs,
		RunE:  runExportSVG,
	}
	addExperimentFlags(exportSVGCmd)
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&xAxis, "x-axis", 0, "horizontal coordinate (0=x, 1=y, 2=z)")
	exportSVGCmd.Flags().IntVar(&yAxis, "y-axis", 2, "vertical coordinate (0=x, 1=y, 2=z)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id | export.json]",
		Short: "summarize a saved run or a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(renderCmd, integrateCmd, divergeCmd, spectrumCmd, previewCmd,
		phaseCmd, exportJSONCmd, exportSVGCmd, listCmd, showCmd, presetsCmd)
	return rootCmd
}

func addExperimentFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&sigma, "sigma", config.DefaultSigma, "Prandtl number σ")
	f.Float64Var(&beta, "beta", config.DefaultBeta, "geometric factor β")
	f.Float64Var(&rho, "rho", config.DefaultRho, "Rayleigh number ρ")
	f.Float64SliceVar(&initial, "initial", []float64{12, 12, 12}, "initial state x,y,z")
	f.IntVar(&pertAxis, "perturb-axis", 0, "coordinate shifted for the second run")
	f.Float64Var(&delta, "delta", config.DefaultPerturbation, "perturbation of the second run")
	f.Float64Var(&tStart, "start", config.DefaultStart, "start time")
	f.Float64Var(&tEnd, "end", config.DefaultEnd, "end time")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.Float64Var(&threshold, "threshold", config.DefaultThreshold, "divergence threshold on |x1 - x2|")
}

func addRenderFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&outDir, "out-dir", config.DefaultOutputDir, "frame directory (created if missing)")
	f.StringVar(&prefix, "prefix", config.DefaultPrefix, "frame file prefix")
	f.IntVar(&width, "width", config.DefaultWidth, "frame width in pixels")
	f.IntVar(&height, "height", config.DefaultHeight, "frame height in pixels")
	f.Float64Var(&elevation, "elevation", config.DefaultElevation, "view elevation in degrees")
	f.IntVar(&every, "every", 1, "render every n-th sample")
	f.IntVar(&workers, "workers", 0, "parallel frame workers (0 = all CPUs)")
	f.StringVar(&gifPath, "gif", "", "also write an animated GIF to this path")
	f.BoolVar(&progress, "progress", false, "show an interactive progress bar")
	f.BoolVar(&save, "save", false, "save the run under the data directory")
	f.StringVar(&saveCfg, "save-config", "", "write the resolved configuration to this yaml file")
}

// setup loads .env, then configures logging. Explicit flags beat
// LORENZ_LOG_LEVEL and LORENZ_LOG_FORMAT.
func setup(cmd *cobra.Command, args []string) error {
	envErr := godotenv.Load()
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", envErr)
	}
	if v := os.Getenv("LORENZ_LOG_LEVEL"); v != "" && !cmd.Flags().Changed("log-level") {
		logLevel = v
	}
	if v := os.Getenv("LORENZ_LOG_FORMAT"); v != "" && !cmd.Flags().Changed("log-format") {
		logFormat = v
	}
	if err := logger.Init(logLevel, logFormat, cmd.ErrOrStderr()); err != nil {
		return err
	}
	logger.L().Debug().
		Str("command", cmd.Name()).
		Bool("dotenv", envErr == nil).
		Msg("starting")
	return nil
}

// resolveConfig layers defaults, preset, config file and the flags the user
// actually set, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		if cfg, err = config.LoadWith(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Lookup(name) != nil && f.Changed(name) {
			apply()
		}
	}
	set("sigma", func() { cfg.Params.Sigma = sigma })
	set("beta", func() { cfg.Params.Beta = beta })
	set("rho", func() { cfg.Params.Rho = rho })
	set("initial", func() { cfg.Initial = append([]float64(nil), initial...) })
	set("perturb-axis", func() { cfg.Perturbation.Axis = pertAxis })
	set("delta", func() { cfg.Perturbation.Delta = delta })
	set("start", func() { cfg.Horizon.Start = tStart })
	set("end", func() { cfg.Horizon.End = tEnd })
	set("dt", func() { cfg.Horizon.Dt = dt })
	set("threshold", func() { cfg.Threshold = threshold })
	set("out-dir", func() { cfg.Output.Dir = outDir })
	set("prefix", func() { cfg.Output.Prefix = prefix })
	set("width", func() { cfg.Output.Width = width })
	set("height", func() { cfg.Output.Height = height })
	set("elevation", func() { cfg.Output.Elevation = elevation })
	set("every", func() { cfg.Output.Every = every })
	set("workers", func() { cfg.Output.Workers = workers })
	set("gif", func() { cfg.Output.GIF = gifPath })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
