package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/forces"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string
	edge       int
	element    string
	steps      int
	dt         float64
	sigma      float64
	epsilon    float64
	interval   int
	strategy   string
	output     string
	verbose    bool
	analysis   bool
	threshold  float64
	jitter     float64
	seed       int64
	streamAddr string
	saveRun    bool
	members    int

	jsonOut   bool
	svgOut    string
	snapshot  string
	speed     int
	theme     string
	benchReps int
	benchEdge int
	benchSeed int64

	sweepSigma   []float64
	sweepEpsilon []float64
	sweepMetric  string
	sweepLimit   int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// newRootCmd registers the mdsim commands. Registering resets every flag
// variable to its default. With no subcommand the root opens the preset menu
// of the live view.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mdsim",
		Short:         "lennard-jones molecular dynamics",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mdsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (info, debug, trace)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate a cubic cluster and write its trajectory",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSystemFlags(runCmd)
	runCmd.Flags().IntVarP(&steps, "steps", "n", config.DefaultSteps, "number of steps")
	runCmd.Flags().StringVarP(&output, "output", "o", config.DefaultOutput, "trajectory output file")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log progress at every recorded frame")
	runCmd.Flags().BoolVar(&analysis, "analysis", false, "report the break step after the run")
	runCmd.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "break detection threshold")
	runCmd.Flags().StringVar(&streamAddr, "stream", "", "serve recorded frames over websocket at this address")
	runCmd.Flags().BoolVar(&saveRun, "save", false, "record the run in the catalog")
	runCmd.Flags().IntVar(&members, "members", 1, "run this many independently seeded copies")
	runCmd.Flags().StringVar(&snapshot, "snapshot", "", "write an SVG rendering of the final positions")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [file.xyz]",
		Short: "find the break frame of a trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeFile,
	}
	analyzeCmd.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "break detection threshold")
	analyzeCmd.Flags().IntVar(&interval, "interval", config.DefaultInterval, "steps between recorded frames")
	analyzeCmd.Flags().StringVar(&svgOut, "svg", "", "write the displacement curve as SVG")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSystemFlags(liveCmd)
	liveCmd.Flags().IntVarP(&steps, "steps", "n", 0, "stop after this many steps (0 runs until quit)")
	liveCmd.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "break detection threshold")
	liveCmd.Flags().IntVar(&speed, "speed", 10, "steps per frame")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list cataloged runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a cataloged run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&jsonOut, "json", false, "export the run and its frames as JSON")
	showCmd.Flags().StringVar(&svgOut, "svg", "", "write the displacement curve as SVG")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "remove a run from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time the force strategies",
		Args:  cobra.NoArgs,
		RunE:  benchForces,
	}
	benchCmd.Flags().IntVarP(&benchEdge, "edge", "a", 5, "cube edge length")
	benchCmd.Flags().Float64Var(&sigma, "sigma", config.DefaultSigma, "LJ sigma")
	benchCmd.Flags().Float64Var(&epsilon, "epsilon", config.DefaultEpsilon, "LJ epsilon")
	benchCmd.Flags().IntVar(&benchReps, "reps", 20, "force evaluations per strategy")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 1, "lattice jitter seed")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a sigma/epsilon grid and rank it by a metric",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSystemFlags(sweepCmd)
	sweepCmd.Flags().IntVarP(&steps, "steps", "n", defaultSweepSteps, "steps per grid point")
	sweepCmd.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "stability threshold")
	sweepCmd.Flags().Float64SliceVar(&sweepSigma, "sigmas", []float64{0.8, 0.9, 1.0}, "sigma values")
	sweepCmd.Flags().Float64SliceVar(&sweepEpsilon, "epsilons", []float64{1, 10, 20}, "epsilon values")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "energy_drift", "metric to rank by, smallest first")
	sweepCmd.Flags().IntVar(&sweepLimit, "parallel", 0, "grid points run at once (0 uses every CPU)")

	presetsCmd := &cobra.Command{
		Use:   "presets [element]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, analyzeCmd, liveCmd, runsCmd, showCmd, deleteCmd, benchCmd, sweepCmd, presetsCmd)

	return rootCmd
}

// systemFlags are the flags addSystemFlags registers that describe the
// simulated system, plus the per-command overrides resolveConfig reads.
var systemFlags = []string{
	"config", "preset", "edge", "element", "dt", "sigma", "epsilon", "interval",
	"force", "jitter", "seed", "steps", "threshold",
}

// systemFlagsChanged reports whether any system flag was set explicitly.
func systemFlagsChanged(cmd *cobra.Command) bool {
	for _, name := range systemFlags {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func addSystemFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.IntVarP(&edge, "edge", "a", config.DefaultEdge, "cube edge length")
	f.StringVarP(&element, "element", "e", config.DefaultElement, "element symbol")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.Float64Var(&sigma, "sigma", config.DefaultSigma, "LJ sigma")
	f.Float64Var(&epsilon, "epsilon", config.DefaultEpsilon, "LJ epsilon")
	f.IntVar(&interval, "interval", config.DefaultInterval, "steps between recorded frames")
	f.StringVarP(&strategy, "force", "f", forces.StrategyReference.String(),
		fmt.Sprintf("force strategy %v", forces.StrategyNames()))
	f.Float64Var(&jitter, "jitter", 0, "random displacement amplitude applied to the lattice")
	f.Int64Var(&seed, "seed", 0, "jitter seed")
	f.StringVar(&theme, "theme", "ocean", "color theme")
}

// resolveConfig layers preset, config file and explicitly set flags, in that
// order, over the defaults.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(element, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available for %s: %v)", preset, element, config.ListPresets(element))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(cfg, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("edge") {
		cfg.System.Edge = edge
	}
	if flags.Changed("element") {
		cfg.System.Element = element
	}
	if flags.Changed("jitter") {
		cfg.System.Jitter = jitter
	}
	if flags.Changed("seed") {
		cfg.System.Seed = seed
	}
	if flags.Changed("force") {
		cfg.Force.Strategy = strategy
	}
	if flags.Changed("sigma") {
		cfg.Force.Sigma = sigma
	}
	if flags.Changed("epsilon") {
		cfg.Force.Epsilon = epsilon
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("interval") {
		cfg.Interval = interval
	}
	if flags.Changed("output") {
		cfg.Output = output
	}
	if flags.Changed("threshold") {
		cfg.Threshold = threshold
	}
	if flags.Changed("analysis") {
		cfg.Analysis = analysis
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
