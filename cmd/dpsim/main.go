package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/gui"
	"github.com/san-kum/dpsim/internal/logging"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/sim"
	"github.com/san-kum/dpsim/internal/storage"
	"github.com/san-kum/dpsim/internal/viz"
)

var (
	dataDir  string
	logLevel string

	// Config file and preset; individual flags override both.
	configFile string
	preset     string

	size        int
	frames      int
	dt          float64
	substeps    int
	seed        uint64
	randomize   bool
	failInvalid bool
	a1, a2      float64
	angleOffset float64
	timeScale   float64
)

// main registers the commands and runs the root command. With no subcommand
// it opens the interactive preset picker.
func main() {
	rootCmd := &cobra.Command{
		Use:           "dpsim",
		Short:         "double pendulum chaos lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logging.Setup(os.Stderr, level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			quietLogs()
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dpsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [name]",
		Short: "run a batch headless and store the series",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBatch,
	}
	addConfigFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a batch with live visualization",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run a batch in a raylib window (needs -tags gui)",
		RunE:  runGUI,
	}
	addConfigFlags(guiCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	metricsCmd := &cobra.Command{
		Use:   "metrics",
		Short: "list diagnostics available to runs",
		RunE:  listMetrics,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot angles, energy and divergence of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and energy analysis of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the run series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export the run series to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the tip trace as a faded SVG path",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringVar(&strokeColor, "color", "#008080", "stroke color")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "plot the energy or divergence history to PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.png)")
	exportPNGCmd.Flags().StringVar(&pngSeries, "series", "energy", "series to plot (energy, chaos, angles)")

	phaseCmd := &cobra.Command{
		Use:   "phase",
		Short: "phase portrait or Poincaré section",
		RunE:  phasePlot,
	}
	addConfigFlags(phaseCmd)
	phaseCmd.Flags().BoolVar(&poincare, "poincare", false, "plot the Poincaré section instead")
	phaseCmd.Flags().BoolVar(&outerArm, "outer", false, "sample the outer arm")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest Lyapunov exponent",
		RunE:  lyapunov,
	}
	addConfigFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&lyapunovTime, "time", 100, "simulated time")
	lyapunovCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial separation")

	convergeCmd := &cobra.Command{
		Use:   "converge",
		Short: "sub-step convergence table",
		RunE:  converge,
	}
	addConfigFlags(convergeCmd)
	convergeCmd.Flags().Float64Var(&convergeTime, "time", 1, "simulated time of one advance")
	convergeCmd.Flags().IntSliceVar(&substepList, "steps", []int{1, 2, 5, 10, 20, 50, 100, 200, 500}, "sub-step counts")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator]...",
		Short: "compare integrators on the same pendulum",
		RunE:  compareIntegrators,
	}
	addConfigFlags(compareCmd)

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "divergence as a function of one parameter",
		RunE:  scan,
	}
	addConfigFlags(scanCmd)
	scanCmd.Flags().StringVar(&scanParam, "param", "a1", "parameter to sweep (a1, a2, r1, r2, m1, m2, g)")
	scanCmd.Flags().Float64Var(&scanMin, "min", 0.1, "lower bound")
	scanCmd.Flags().Float64Var(&scanMax, "max", 3.0, "upper bound")
	scanCmd.Flags().IntVar(&scanSteps, "points", 30, "number of sweep points")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search for the run that extremizes a metric",
		RunE:  search,
	}
	addConfigFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&axes, "axis", nil, "searched parameter as name=min:max:n (repeatable)")
	searchCmd.Flags().StringVar(&searchMetric, "metric", "chaos", "metric to optimize")
	searchCmd.Flags().BoolVar(&maximize, "max", false, "maximize instead of minimize")
	searchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum concurrent runs")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario.yaml]",
		Short: "run the batches of a scenario concurrently",
		Args:  cobra.ExactArgs(1),
		RunE:  sweep,
	}
	sweepCmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum concurrent runs (default from scenario)")
	sweepCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store results")

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, presetsCmd, metricsCmd, listCmd, plotCmd, analyzeCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, exportPNGCmd,
		phaseCmd, lyapunovCmd, convergeCmd, compareCmd, scanCmd, searchCmd, sweepCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a preset ("+fmt.Sprint(config.ListPresets())+")")
	f.IntVar(&size, "size", 1, "number of pendulums")
	f.IntVar(&frames, "frames", config.DefaultFrames, "frames to run")
	f.Float64Var(&dt, "dt", config.DefaultDt, "frame time step")
	f.IntVar(&substeps, "substeps", sim.DefaultSubsteps, "integrator sub-steps per frame")
	f.Uint64Var(&seed, "seed", config.DefaultSeed, "random seed for resets")
	f.BoolVar(&randomize, "randomize", false, "draw random parameters before running")
	f.BoolVar(&failInvalid, "fail-on-invalid", false, "abort once any pendulum goes non-finite")
	f.Float64Var(&a1, "a1", physics.DefaultA1, "initial inner angle")
	f.Float64Var(&a2, "a2", physics.DefaultA2, "initial outer angle")
	f.Float64Var(&angleOffset, "offset", sim.DefaultAngleOffset, "a1 offset between neighbouring pendulums")
	f.Float64Var(&timeScale, "time-scale", sim.DefaultTimeScale, "simulated time per host second")
}

// loadConfig resolves the preset, then the config file, then every flag the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("size") {
		cfg.Size = size
	}
	if f.Changed("frames") {
		cfg.Frames = frames
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("randomize") {
		cfg.Randomize = randomize
	}
	if f.Changed("fail-on-invalid") {
		cfg.FailOnInvalid = failInvalid
	}
	if f.Changed("a1") {
		cfg.Pendulum.A1 = a1
	}
	if f.Changed("a2") {
		cfg.Pendulum.A2 = a2
	}
	if f.Changed("offset") {
		cfg.AngleOffset = angleOffset
	}
	if f.Changed("time-scale") {
		cfg.TimeScale = timeScale
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newBatch builds the batch for cfg, randomized from its seed when asked.
func newBatch(cfg *config.Config) (*sim.Batch, dynamo.Sampler, error) {
	batch, err := sim.New(cfg.BatchConfig())
	if err != nil {
		return nil, nil, err
	}
	sampler := dynamo.NewSampler(cfg.Seed)
	if cfg.Randomize {
		batch.Reset(sampler)
	}
	return batch, sampler, nil
}

func openStore() *storage.Store {
	return storage.New(dataDir, slog.Default())
}

// quietLogs drops records below error; anything else would tear the TUI's
// alternate screen.
func quietLogs() {
	logging.Setup(os.Stderr, slog.LevelError)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	quietLogs()

	batch, sampler, err := newBatch(cfg)
	if err != nil {
		return err
	}
	title := preset
	if title == "" {
		title = "dpsim"
	}
	return viz.RunLive(batch, sampler, cfg.Dt, cfg.Substeps, title)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	batch, sampler, err := newBatch(cfg)
	if err != nil {
		return err
	}
	title := "dpsim"
	if preset != "" {
		title += " :: " + preset
	}
	return gui.Run(batch, sampler, cfg.Dt, cfg.Substeps, title)
}
