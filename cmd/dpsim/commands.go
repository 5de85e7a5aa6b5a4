package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/dpsim/internal/analysis"
	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/experiment"
	"github.com/san-kum/dpsim/internal/export"
	"github.com/san-kum/dpsim/internal/optim"
	"github.com/san-kum/dpsim/internal/storage"
)

var (
	outFile     string
	strokeColor string
	pngSeries   string

	poincare bool
	outerArm bool

	lyapunovTime float64
	perturbation float64
	convergeTime float64
	substepList  []int

	scanParam        string
	scanMin, scanMax float64
	scanSteps        int

	concurrency int
	noSave      bool

	axes         []string
	searchMetric string
	maximize     bool
)

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	name := "run"
	switch {
	case len(args) > 0:
		name = args[0]
	case preset != "":
		name = preset
	}

	start := time.Now()
	result, err := experiment.New(name, cfg, nil, slog.Default()).Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	id, err := result.Save(openStore())
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", id)
	fmt.Printf("frames: %d in %v (%.0f frames/s)\n", cfg.Frames, elapsed.Round(time.Millisecond), float64(cfg.Frames)/elapsed.Seconds())
	fmt.Printf("final energy: %.4f\n", result.Final.Total)
	if result.Final.ChaosDefined {
		fmt.Printf("divergence: %.6f\n", result.Final.Chaos)
	}
	if result.Final.Invalid > 0 {
		fmt.Printf("unstable pendulums: %d\n", result.Final.Invalid)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSIZE\tA1\tA2\tOFFSET\tDT\tSUBSTEPS")
	for _, name := range config.ListPresets() {
		c := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%.3f\t%.3f\t%g\t%.4f\t%d\n",
			name, c.Size, c.Pendulum.A1, c.Pendulum.A2, c.AngleOffset, c.Dt, c.Substeps)
	}
	return w.Flush()
}

func listMetrics(cmd *cobra.Command, args []string) error {
	for _, name := range experiment.NewRegistry().ListMetrics() {
		fmt.Println(name)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := openStore().List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSIZE\tFRAMES\tDT\tSUBSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4f\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Size,
			run.Frames,
			run.Dt,
			run.Substeps,
		)
	}
	return w.Flush()
}

// loadRun returns the metadata and series of a stored run.
func loadRun(runID string) (*storage.RunMetadata, []storage.Sample, error) {
	st := openStore()
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("run %s: no samples", runID)
	}
	return meta, samples, nil
}

func column(samples []storage.Sample, get func(storage.Sample) float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = get(s)
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("pendulums: %d\n", meta.Size)
	fmt.Printf("samples: %d\n\n", len(samples))

	plots := []struct {
		caption string
		get     func(storage.Sample) float64
	}{
		{"a1 (inner angle)", func(s storage.Sample) float64 { return s.A1 }},
		{"a2 (outer angle)", func(s storage.Sample) float64 { return s.A2 }},
		{"total energy", storage.Sample.Total},
	}
	if meta.Size > 1 {
		plots = append(plots, struct {
			caption string
			get     func(storage.Sample) float64
		}{"divergence", func(s storage.Sample) float64 { return s.Chaos }})
	}

	for _, p := range plots {
		data := column(samples, p.get)
		if !allFinite(data) {
			fmt.Printf("%s: non-finite values, skipped\n\n", p.caption)
			continue
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		))
		fmt.Println()
	}
	return nil
}

func allFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	interval := meta.Dt * meta.TimeScale
	a1 := column(samples, func(s storage.Sample) float64 { return s.A1 })
	if !allFinite(a1) {
		return fmt.Errorf("run %s: a1 series is not finite", meta.ID)
	}

	fmt.Printf("frequency analysis: %s\n\n", meta.ID)

	ps := analysis.PowerSpectrum(a1)
	if len(ps) < 8 {
		return fmt.Errorf("run %s: %d samples are too few for a spectrum", meta.ID, len(samples))
	}
	fmt.Println(asciigraph.Plot(ps[:len(ps)/4],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (a1)"),
	))
	fmt.Println()

	freq := analysis.DominantFrequency(a1, interval)
	fmt.Printf("dominant frequency: %.4f per time unit\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f time units\n", 1/freq)
	}

	total := column(samples, storage.Sample.Total)
	s := analysis.Summarize(total)
	fmt.Printf("\nenergy mean: %.4f\n", s.Mean)
	fmt.Printf("energy std: %.4g\n", s.StdDev)
	fmt.Printf("energy range: [%.4f, %.4f]\n", s.Min, s.Max)
	fmt.Printf("drift band: %.3g%%\n", 100*s.Band)
	return nil
}

// output opens outFile, or stdout when it is empty.
func output(fallback string) (io.WriteCloser, error) {
	name := outFile
	if name == "" {
		name = fallback
	}
	if name == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(name)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, err := output("")
	if err != nil {
		return err
	}
	if err := storage.WriteSeriesCSV(w, samples); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, err := output("")
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, *meta, samples); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	trace, err := openStore().LoadTrace(args[0])
	if err != nil {
		return err
	}
	svg := export.TraceToSVG(trace, 800, 800, strokeColor)
	if svg == "" {
		return fmt.Errorf("run %s: trace too short", args[0])
	}

	w, err := output("")
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, svg); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportPNG(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	times := column(samples, func(s storage.Sample) float64 { return s.Time })
	opts := export.DefaultPlotOptions()
	opts.Title = meta.ID
	opts.XLabel = "time"

	var series []export.Series
	switch pngSeries {
	case "energy":
		opts.YLabel = "energy"
		series = []export.Series{
			{Name: "kinetic", X: times, Y: column(samples, func(s storage.Sample) float64 { return s.Kinetic })},
			{Name: "potential", X: times, Y: column(samples, func(s storage.Sample) float64 { return s.Potential })},
			{Name: "total", X: times, Y: column(samples, storage.Sample.Total)},
		}
	case "chaos":
		if meta.Size < 2 {
			return fmt.Errorf("run %s: divergence needs at least two pendulums", meta.ID)
		}
		opts.YLabel = "divergence"
		series = []export.Series{{Name: "divergence", X: times, Y: column(samples, func(s storage.Sample) float64 { return s.Chaos })}}
	case "angles":
		opts.YLabel = "angle (rad)"
		series = []export.Series{
			{Name: "a1", X: times, Y: column(samples, func(s storage.Sample) float64 { return s.A1 })},
			{Name: "a2", X: times, Y: column(samples, func(s storage.Sample) float64 { return s.A2 })},
		}
	default:
		return fmt.Errorf("unknown series %q (energy, chaos, angles)", pngSeries)
	}

	w, err := output(meta.ID + ".png")
	if err != nil {
		return err
	}
	if err := export.WritePlotPNG(w, opts, series...); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	slog.Info("plot written", "series", pngSeries, "samples", len(samples))
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	batch, _, err := newBatch(cfg)
	if err != nil {
		return err
	}
	p := batch.Pendulum(0)
	step := cfg.Dt * cfg.TimeScale

	var points []analysis.Point
	caption := "phase portrait"
	if poincare {
		points = analysis.GeneratePoincareSection(p, step, cfg.Substeps, cfg.Frames)
		caption = "Poincaré section (a2 vs a2v at a1 = 0)"
	} else {
		arm := analysis.Inner
		if outerArm {
			arm = analysis.Outer
		}
		points = analysis.GeneratePhasePortrait(p, arm, step, cfg.Substeps, cfg.Frames)
	}
	if len(points) == 0 {
		return fmt.Errorf("no points: the trajectory never crossed the section")
	}

	fmt.Printf("%s, %d points\n\n", caption, len(points))
	fmt.Print(analysis.PointsToASCII(points, 80, 24))
	return nil
}

func lyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	batch, _, err := newBatch(cfg)
	if err != nil {
		return err
	}
	p := batch.Pendulum(0)

	lambda := analysis.LyapunovExponent(p, cfg.Dt*cfg.TimeScale, cfg.Substeps, lyapunovTime, perturbation)
	fmt.Printf("initial angles: a1=%.4f a2=%.4f\n", p.A1, p.A2)
	fmt.Printf("largest Lyapunov exponent: %.4f per time unit\n", lambda)
	if lambda > 0.1 {
		fmt.Println("trajectory is chaotic")
	} else {
		fmt.Println("trajectory is regular")
	}
	return nil
}

func converge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	batch, _, err := newBatch(cfg)
	if err != nil {
		return err
	}

	rows := analysis.SubstepConvergence(batch.Pendulum(0), convergeTime, substepList)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUBSTEPS\tA1\tA2\tDELTA")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%.10f\t%.10f\t%.3e\n", r.Substeps, r.A1, r.A2, r.Delta)
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	batch, _, err := newBatch(cfg)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = []string{"euler", "rk4"}
	}
	step := cfg.Dt * cfg.TimeScale
	reports, err := analysis.CompareSteppers(batch.Pendulum(0), names, step, cfg.Substeps, cfg.Frames)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators (dt=%.4f, substeps=%d, frames=%d)\n\n", step, cfg.Substeps, cfg.Frames)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL_A1\tFINAL_A2\tENERGY_BAND\tTIME_MS")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.2e\t%.2f\n",
			r.Name, r.A1, r.A2, r.Energy.Band, float64(r.Elapsed.Microseconds())/1000)
	}
	return w.Flush()
}

func scan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	batch, _, err := newBatch(cfg)
	if err != nil {
		return err
	}

	offset := cfg.AngleOffset
	if offset == 0 {
		offset = 1e-6
	}
	points := analysis.DivergenceScan(batch.Pendulum(0), analysis.ScanConfig{
		Param:    scanParam,
		Min:      scanMin,
		Max:      scanMax,
		Steps:    scanSteps,
		Offset:   offset,
		Dt:       cfg.Dt * cfg.TimeScale,
		Substeps: cfg.Substeps,
		Frames:   cfg.Frames,
	})

	data := make([]float64, 0, len(points))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tDIVERGENCE\n", strings.ToUpper(scanParam))
	for _, pt := range points {
		fmt.Fprintf(w, "%.4f\t%.6f\n", pt.Param, pt.Divergence)
		if !math.IsNaN(pt.Divergence) {
			data = append(data, pt.Divergence)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(data) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("divergence vs "+scanParam),
		))
	}
	return nil
}

func sweep(cmd *cobra.Command, args []string) error {
	scenario, err := experiment.LoadScenario(args[0])
	if err != nil {
		return err
	}
	jobs, err := scenario.Jobs()
	if err != nil {
		return err
	}

	limit := scenario.Concurrency
	if cmd.Flags().Changed("concurrency") {
		limit = concurrency
	}

	slog.Info("sweep started", "scenario", scenario.Name, "runs", len(jobs), "concurrency", limit)
	results, err := experiment.Sweep(cmd.Context(), jobs, limit, nil, slog.Default())
	if err != nil {
		return err
	}

	st := openStore()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSIZE\tENERGY\tDIVERGENCE\tUNSTABLE\tID")
	for _, r := range results {
		id := "-"
		if !noSave {
			if id, err = r.Save(st); err != nil {
				return err
			}
		}
		chaos := "-"
		if r.Final.ChaosDefined {
			chaos = fmt.Sprintf("%.6f", r.Final.Chaos)
		}
		fmt.Fprintf(w, "%s\t%d\t%.4f\t%s\t%d\t%s\n",
			r.Meta.Name, r.Meta.Size, r.Final.Total, chaos, r.Final.Invalid, id)
	}
	return w.Flush()
}

func search(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(axes) == 0 {
		return fmt.Errorf("at least one --axis is required")
	}

	parsed := make([]optim.Axis, 0, len(axes))
	for _, s := range axes {
		a, err := optim.ParseAxis(s)
		if err != nil {
			return err
		}
		parsed = append(parsed, a)
	}

	g := optim.NewGridSearch(parsed...)
	g.Maximize = maximize
	g.Limit = concurrency
	slog.Info("search started", "points", g.Size(), "metric", searchMetric, "maximize", maximize)

	points, best, err := g.Search(cmd.Context(), cfg, searchMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(parsed)+1)
	for _, a := range parsed {
		header = append(header, strings.ToUpper(a.Name))
	}
	fmt.Fprintln(w, strings.Join(append(header, strings.ToUpper(searchMetric)), "\t"))
	for i, p := range points {
		row := make([]string, 0, len(parsed)+1)
		for _, a := range parsed {
			row = append(row, fmt.Sprintf("%.4f", p.Params[a.Name]))
		}
		mark := ""
		if i == best {
			mark = " *"
		}
		fmt.Fprintln(w, strings.Join(append(row, fmt.Sprintf("%.6g%s", p.Value, mark)), "\t"))
	}
	return w.Flush()
}
