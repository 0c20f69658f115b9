package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/lorenz/internal/analysis"
	"github.com/san-kum/lorenz/internal/config"
	"github.com/san-kum/lorenz/internal/dynamo"
	"github.com/san-kum/lorenz/internal/export"
	"github.com/san-kum/lorenz/internal/experiment"
	"github.com/san-kum/lorenz/internal/integrators"
	"github.com/san-kum/lorenz/internal/logger"
	"github.com/san-kum/lorenz/internal/render"
	"github.com/san-kum/lorenz/internal/storage"
	"github.com/san-kum/lorenz/internal/viz"
)

// runExperiment resolves the configuration and integrates both runs.
func runExperiment(cmd *cobra.Command) (*config.Config, *experiment.Result, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	res, err := experiment.New(cfg).Run(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return cfg, res, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	cmd.SetContext(ctx)

	cfg, res, err := runExperiment(cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return err
	}
	if saveCfg != "" {
		if err := config.Save(saveCfg, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}

	opts := render.FromConfig(cfg)
	var report *render.Report
	if progress {
		report, err = renderWithProgress(ctx, opts, res)
	} else {
		report, err = renderPlain(ctx, opts, res)
	}
	if err != nil {
		return err
	}

	div, err := analysis.Diverge(res.Base, res.Pert, cfg.Threshold)
	if err != nil && res.Steps() > 0 {
		return err
	}

	rows := []viz.Metric{
		{Label: "system", Value: res.System.String()},
		{Label: "samples", Value: strconv.Itoa(res.Steps())},
		{Label: "frames", Value: strconv.Itoa(report.Frames)},
		{Label: "directory", Value: report.Dir},
		{Label: "elapsed", Value: report.Elapsed.String()},
	}
	if report.GIF != "" {
		rows = append(rows, viz.Metric{Label: "gif", Value: report.GIF})
	}
	if div != nil {
		rows = append(rows, viz.Metric{Label: "diverged at", Value: exceedText(div)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), viz.Summary("render complete", rows))

	if save {
		return saveRun(cmd, res, div)
	}
	return nil
}

func renderPlain(ctx context.Context, opts render.Options, res *experiment.Result) (*render.Report, error) {
	log := logger.With("cli")
	opts.OnFrame = func(done, total int) {
		if done%250 == 0 || done == total {
			log.Info().Int("done", done).Int("total", total).Msg("frames written")
		}
	}
	r, err := render.New(opts)
	if err != nil {
		return nil, err
	}
	return r.Render(ctx, res.Base, res.Pert, res.System.Rho())
}

// renderWithProgress runs the renderer in the background and follows it
// with a Bubble Tea progress bar on stderr. Quitting the bar cancels the
// render.
func renderWithProgress(ctx context.Context, opts render.Options, res *experiment.Result) (*render.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	total := len(render.FrameIndices(res.Steps(), opts.Every))
	p := tea.NewProgram(viz.NewProgressModel("rendering frames", total), tea.WithOutput(os.Stderr))
	opts.OnFrame = func(done, total int) { p.Send(viz.FrameMsg{Done: done, Total: total}) }

	r, err := render.New(opts)
	if err != nil {
		return nil, err
	}

	var (
		report    *render.Report
		renderErr error
		finished  = make(chan struct{})
	)
	go func() {
		defer close(finished)
		report, renderErr = r.Render(ctx, res.Base, res.Pert, res.System.Rho())
		p.Send(viz.DoneMsg{Err: renderErr})
	}()

	final, err := p.Run()
	if m, ok := final.(viz.ProgressModel); err != nil || (ok && m.Interrupted()) {
		cancel()
	}
	<-finished
	if err != nil {
		return nil, err
	}
	return report, renderErr
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	base, pert := cfg.InitialStates()

	tr, err := integrators.Integrate(cfg.System(), base, cfg.Horizon)
	if err != nil {
		return err
	}
	if !both {
		return storage.WriteCSV(cmd.OutOrStdout(), tr)
	}
	tp, err := integrators.Integrate(cfg.System(), pert, cfg.Horizon)
	if err != nil {
		return err
	}
	return storage.WriteCSV(cmd.OutOrStdout(), tr, tp)
}

func runDiverge(cmd *cobra.Command, args []string) error {
	cfg, res, err := runExperiment(cmd)
	if err != nil {
		return err
	}
	div, err := analysis.Diverge(res.Base, res.Pert, cfg.Threshold)
	if err != nil {
		return err
	}
	dx, err := analysis.AxisSeparation(res.Base, res.Pert, 0)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	plotted, caption := dx, "|x1 - x2| vs sample"
	if logScale {
		plotted, caption = log10Series(dx), "log10 |x1 - x2| vs sample"
	}
	if len(plotted) > 0 {
		fmt.Fprintln(out, asciigraph.Plot(plotted,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		))
		fmt.Fprintln(out)
	}

	lambda := analysis.LyapunovExponent(res.System, res.Initial, cfg.Perturbation.Axis,
		cfg.Horizon.Dt, cfg.Horizon.End-cfg.Horizon.Start, math.Abs(cfg.Perturbation.Delta))

	fmt.Fprintln(out, viz.Summary("divergence", []viz.Metric{
		{Label: "threshold", Value: fmt.Sprintf("%g", div.Threshold)},
		{Label: "first exceed", Value: exceedText(div)},
		{Label: "max separation", Value: fmt.Sprintf("%.4f", div.MaxSeparation)},
		{Label: "final separation", Value: fmt.Sprintf("%.4f", div.FinalSeparation)},
		{Label: "growth rate", Value: fmt.Sprintf("%.4f", div.GrowthRate)},
		{Label: "lyapunov estimate", Value: fmt.Sprintf("%.4f", lambda)},
	}))

	if chartPath != "" {
		sep, err := analysis.Separation(res.Base, res.Pert)
		if err != nil {
			return err
		}
		if err := writeFile(chartPath, func(w io.Writer) error {
			return export.DivergenceChart(w, res.Base.T, sep, export.ChartOptions{
				Title:     fmt.Sprintf("separation, r = %3.1f", res.System.Rho()),
				Width:     960,
				Height:    480,
				Color:     cfg.Output.PertColor,
				Threshold: cfg.Threshold,
				Log:       logScale,
			})
		}); err != nil {
			return err
		}
		fmt.Fprintf(out, "chart written to %s\n", chartPath)
	}

	if save {
		return saveRun(cmd, res, div)
	}
	return nil
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	base, _ := cfg.InitialStates()
	tr, err := integrators.Integrate(cfg.System(), base, cfg.Horizon)
	if err != nil {
		return err
	}
	series := tr.Axis(axis)
	if series == nil {
		return fmt.Errorf("axis %d out of range", axis)
	}
	if len(series) == 0 {
		return fmt.Errorf("empty trajectory")
	}

	ps := analysis.PowerSpectrum(series)
	if len(ps) > 1 {
		shown := ps[1:min(len(ps), 257)]
		fmt.Fprintln(cmd.OutOrStdout(), asciigraph.Plot(log10Series(shown),
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("log10 power, axis %d, low frequencies", axis)),
		))
	}

	freq := analysis.DominantFrequency(ps, cfg.Horizon.Dt)
	period := math.Inf(1)
	if freq > 0 {
		period = 1 / freq
	}
	fmt.Fprintln(cmd.OutOrStdout(), viz.Summary("spectrum", []viz.Metric{
		{Label: "samples", Value: strconv.Itoa(len(series))},
		{Label: "bins", Value: strconv.Itoa(len(ps))},
		{Label: "dominant frequency", Value: fmt.Sprintf("%.4f", freq)},
		{Label: "period", Value: fmt.Sprintf("%.3f", period)},
	}))
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, res, err := runExperiment(cmd)
	if err != nil {
		return err
	}
	i := frame
	if i < 0 || i >= res.Steps() {
		i = res.Steps() - 1
	}
	az := azimuth
	if az < 0 {
		az = float64(i)
	}

	out, err := viz.Preview(res.Base, res.Pert, viz.PreviewOptions{
		Width:     cols,
		Height:    rows,
		Frame:     i,
		Elevation: cfg.Output.Elevation,
		Azimuth:   az,
		Margin:    cfg.Output.Margin,
		BaseColor: cfg.Output.BaseColor,
		PertColor: cfg.Output.PertColor,
		Plain:     plain,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), render.TitleFormat+"  (frame %d)\n", res.System.Rho(), i)
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runPhase(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	base, _ := cfg.InitialStates()
	tr, err := integrators.Integrate(cfg.System(), base, cfg.Horizon)
	if err != nil {
		return err
	}

	var portrait *analysis.PhasePortrait2D
	title := "return map z(n) -> z(n+1)"
	if returnMap {
		portrait = analysis.ReturnMap(tr)
	} else {
		portrait = analysis.PhasePortrait(tr, xAxis, yAxis)
		title = fmt.Sprintf("phase portrait: axis %d vs axis %d", yAxis, xAxis)
	}
	if portrait == nil || len(portrait.Points) == 0 {
		return fmt.Errorf("nothing to plot")
	}
	fmt.Fprintln(cmd.OutOrStdout(), title)
	fmt.Fprint(cmd.OutOrStdout(), analysis.PhasePortraitToASCII(portrait, 72, 28))
	return nil
}

func runExportJSON(cmd *cobra.Command, args []string) error {
	_, res, err := runExperiment(cmd)
	if err != nil {
		return err
	}
	if outPath == "" {
		return storage.ExportJSON(cmd.OutOrStdout(), res)
	}
	return writeFile(outPath, func(w io.Writer) error { return storage.ExportJSON(w, res) })
}

func runExportSVG(cmd *cobra.Command, args []string) error {
	cfg, res, err := runExperiment(cmd)
	if err != nil {
		return err
	}
	opts := export.PhaseOptions{
		XAxis:     xAxis,
		YAxis:     yAxis,
		Width:     cfg.Output.Width,
		Height:    cfg.Output.Height,
		BaseColor: cfg.Output.BaseColor,
		PertColor: cfg.Output.PertColor,
	}
	if outPath == "" {
		return export.PhaseSVG(cmd.OutOrStdout(), res.Base, res.Pert, opts)
	}
	return writeFile(outPath, func(w io.Writer) error {
		return export.PhaseSVG(w, res.Base, res.Pert, opts)
	})
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tRHO\tHORIZON\tDT\tSTEPS\tEXCEED")
	for _, run := range runs {
		exceed := "-"
		if v, ok := run.Metrics["first_exceed"]; ok && v >= 0 {
			exceed = strconv.Itoa(int(v))
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%g..%g\t%g\t%d\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Params.Rho,
			run.Horizon.Start, run.Horizon.End,
			run.Horizon.Dt,
			run.Steps,
			exceed,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, base, pert, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rows := []viz.Metric{
		{Label: "run", Value: meta.ID},
		{Label: "saved", Value: meta.Timestamp.Format("2006-01-02 15:04:05")},
		{Label: "params", Value: fmt.Sprintf("σ=%g β=%g ρ=%g", meta.Params.Sigma, meta.Params.Beta, meta.Params.Rho)},
		{Label: "initial", Value: fmt.Sprint(meta.Initial)},
		{Label: "perturbed", Value: fmt.Sprint(meta.Perturbed)},
		{Label: "samples", Value: strconv.Itoa(base.Len())},
	}

	if base.Len() > 0 {
		th := config.DefaultThreshold
		if v, ok := meta.Metrics["threshold"]; ok {
			th = v
		}
		div, err := analysis.Diverge(base, pert, th)
		if err != nil {
			return err
		}
		rows = append(rows, viz.Metric{Label: "first exceed", Value: exceedText(div)})

		dx, err := analysis.AxisSeparation(base, pert, 0)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, asciigraph.Plot(log10Series(dx),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("log10 |x1 - x2| vs sample"),
		))
	}
	fmt.Fprintln(out, viz.Summary("saved run", rows))
	return nil
}

// loadRun reads a run from the data directory, or from a file written by
// export-json when ref names one.
func loadRun(ref string) (*storage.RunMetadata, *dynamo.Trajectory, *dynamo.Trajectory, error) {
	if strings.HasSuffix(ref, ".json") {
		f, err := os.Open(ref)
		if err != nil {
			return nil, nil, nil, err
		}
		defer f.Close()

		data, err := storage.DecodeExport(f)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("decode %s: %w", ref, err)
		}
		base, pert, err := data.Trajectories()
		if err != nil {
			return nil, nil, nil, err
		}
		return &data.RunMetadata, base, pert, nil
	}

	st := storage.New(dataDir)
	meta, err := st.Load(ref)
	if err != nil {
		return nil, nil, nil, err
	}
	base, pert, err := st.LoadTrajectories(ref)
	if err != nil {
		return nil, nil, nil, err
	}
	return meta, base, pert, nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRHO\tHORIZON\tDT\tSTEPS\tEVERY")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%g\t%g..%g\t%g\t%d\t%d\n",
			name, cfg.Params.Rho, cfg.Horizon.Start, cfg.Horizon.End, cfg.Horizon.Dt,
			cfg.Horizon.Steps(), cfg.Output.Every)
	}
	return w.Flush()
}

func saveRun(cmd *cobra.Command, res *experiment.Result, div *analysis.Divergence) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	metrics := map[string]float64{}
	if div != nil {
		metrics["threshold"] = div.Threshold
		metrics["first_exceed"] = float64(div.FirstExceed)
		metrics["max_separation"] = div.MaxSeparation
		metrics["growth_rate"] = div.GrowthRate
	}
	runID, err := st.Save(res, metrics)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved run %s to %s\n", runID, filepath.Join(dataDir, runID))
	return nil
}

func exceedText(div *analysis.Divergence) string {
	if div.FirstExceed < 0 {
		return "never"
	}
	return fmt.Sprintf("sample %d (t=%.2f)", div.FirstExceed, div.FirstExceedTime)
}

// log10Series maps values to log10, flooring zeros at the smallest positive
// value so the plot stays finite.
func log10Series(vals []float64) []float64 {
	floor := math.Inf(1)
	for _, v := range vals {
		if v > 0 && v < floor {
			floor = v
		}
	}
	if math.IsInf(floor, 1) {
		floor = 1
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = math.Log10(max(v, floor))
	}
	return out
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return write(f)
}
