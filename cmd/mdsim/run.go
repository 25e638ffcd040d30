package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/export"
	"github.com/san-kum/mdsim/internal/forces"
	"github.com/san-kum/mdsim/internal/integrators"
	"github.com/san-kum/mdsim/internal/logging"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/molecule"
	"github.com/san-kum/mdsim/internal/sim"
	"github.com/san-kum/mdsim/internal/storage"
	"github.com/san-kum/mdsim/internal/stream"
	"github.com/san-kum/mdsim/internal/trajectory"
	"github.com/san-kum/mdsim/internal/viz"
)

// newSystem builds the lattice, force field and integrator described by cfg.
// The lattice is jittered with rng seeded from seed when cfg asks for it.
func newSystem(cfg *config.Config, seed int64) (*molecule.Molecule, *forces.LJ, *integrators.Verlet, error) {
	mol, err := molecule.NewCube(cfg.System.Edge, cfg.System.Element, cfg.MassTable())
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.System.Jitter > 0 {
		mol.Jitter(rand.New(rand.NewSource(seed)), cfg.System.Jitter)
	}

	params, err := cfg.Params()
	if err != nil {
		return nil, nil, nil, err
	}
	s, err := forces.ParseStrategy(cfg.Force.Strategy)
	if err != nil {
		return nil, nil, nil, err
	}
	ff, err := forces.NewLJ(params, s)
	if err != nil {
		return nil, nil, nil, err
	}

	verlet, err := integrators.NewVerlet(cfg.Dt)
	if err != nil {
		return nil, nil, nil, err
	}
	return mol, ff, verlet, nil
}

func runMetrics(cfg *config.Config, ff *forces.LJ) []md.Metric {
	return []md.Metric{
		metrics.NewEnergy(ff.Params()),
		metrics.NewEnergyDrift(ff.Params()),
		metrics.NewStability(cfg.Threshold),
		metrics.NewMaxDisplacement(),
		metrics.NewNetForce(ff),
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	logger := logging.NewLogger(logLevel, os.Stderr)
	events := logging.NewEventLog(dataDir, logLevel)
	defer events.Close()

	ctx := cmd.Context()
	if members < 1 {
		return md.Configf("members must be positive, got %d", members)
	}
	if members > 1 {
		if err := checkEnsembleFlags(cmd); err != nil {
			return err
		}
		return runEnsemble(ctx, cfg, logger, events)
	}

	mol, ff, verlet, err := newSystem(cfg, cfg.System.Seed)
	if err != nil {
		return err
	}

	opts := []sim.Option{
		sim.WithInterval(cfg.Interval),
		sim.WithProgress(logging.NewProgressLogger(logger, cfg.Verbose)),
		sim.WithObserver(&logging.FrameLogger{Logger: logger, Labels: mol.Labels()}),
	}
	for _, m := range runMetrics(cfg, ff) {
		opts = append(opts, sim.WithMetric(m))
	}

	if streamAddr != "" {
		hub := stream.NewHub(mol.Labels())
		defer hub.Close()

		srv := &http.Server{Addr: streamAddr, Handler: hub.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("stream server failed", "addr", streamAddr, "error", err)
			}
		}()
		defer srv.Close()

		opts = append(opts, sim.WithObserver(hub))
		logger.Info("streaming frames", "url", "ws://"+streamAddr+stream.FramePath)
	}

	s, err := sim.New(mol, ff, verlet, opts...)
	if err != nil {
		return err
	}

	logger.Info("running simulation",
		"atoms", mol.Count(), "element", cfg.System.Element, "steps", cfg.Steps,
		"dt", cfg.Dt, "force", ff.Name(), "interval", cfg.Interval)
	events.Log(map[string]any{
		"event": "run_started", "atoms": mol.Count(), "steps": cfg.Steps,
		"force": ff.Name(), "sigma": ff.Params().Sigma, "epsilon": ff.Params().Epsilon,
	})

	result, runErr := s.Run(ctx, cfg.Steps)
	traj := s.Trajectory()

	if err := traj.Save(cfg.Output); err != nil {
		return errors.Join(runErr, err)
	}
	logger.Info("trajectory written", "path", cfg.Output, "frames", traj.Len())
	if runErr != nil {
		events.Log(map[string]any{"event": "run_failed", "step": s.CurrentStep(), "error": runErr.Error()})
		return runErr
	}
	events.Log(map[string]any{"event": "run_finished", "steps": result.StepsTaken, "frames": result.Frames})

	if snapshot != "" {
		if err := writeSnapshotFile(snapshot, mol.Positions()); err != nil {
			return err
		}
		logger.Info("snapshot written", "path", snapshot)
	}

	var breakFrame *int
	if cfg.Analysis {
		frame, ok := traj.DetectBreak(cfg.Threshold)
		if ok {
			breakFrame = &frame
		}
		// Without a break the step estimate is 0, as FindBreakFrame reports.
		fmt.Println(trajectory.StepOf(frame, cfg.Interval))
		if !ok {
			logger.Info("no frame exceeded the threshold", "threshold", cfg.Threshold)
		}
	}

	rows := [][2]string{
		{"Atoms", fmt.Sprintf("%d", mol.Count())},
		{"Steps", fmt.Sprintf("%d", result.StepsTaken)},
		{"Frames", fmt.Sprintf("%d", result.Frames)},
		{"Elapsed", result.Elapsed.Round(time.Millisecond).String()},
		{"Output", cfg.Output},
	}
	rows = append(rows, metricRows(result.Metrics)...)

	if saveRun {
		id, err := saveToCatalog(ctx, cfg, ff, result, traj, breakFrame)
		if err != nil {
			return err
		}
		rows = append(rows, [2]string{"Run ID", id})
		events.Log(map[string]any{"event": "run_saved", "id": id})
	}

	fmt.Fprintln(os.Stderr, viz.Title("SUMMARY"))
	fmt.Fprint(os.Stderr, viz.KeyValues(rows))
	return nil
}

func writeSnapshotFile(path string, pos md.Coords) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return export.WriteSnapshotSVG(f, pos, 60, 22, 6, string(viz.CurrentTheme.Secondary))
}

func metricRows(m map[string]float64) [][2]string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][2]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, [2]string{name, fmt.Sprintf("%.6g", m[name])})
	}
	return rows
}

func saveToCatalog(ctx context.Context, cfg *config.Config, ff *forces.LJ, result *sim.Result, traj *trajectory.Trajectory, breakFrame *int) (string, error) {
	st, err := storage.Open(dataDir)
	if err != nil {
		return "", err
	}
	defer st.Close()

	params := ff.Params()
	return st.Save(ctx, storage.RunMetadata{
		Element:    cfg.System.Element,
		Edge:       cfg.System.Edge,
		Steps:      result.StepsTaken,
		Dt:         cfg.Dt,
		Interval:   cfg.Interval,
		Sigma:      params.Sigma,
		Epsilon:    params.Epsilon,
		Strategy:   ff.Strategy().String(),
		Seed:       cfg.System.Seed,
		Jitter:     cfg.System.Jitter,
		Threshold:  cfg.Threshold,
		BreakFrame: breakFrame,
		Elapsed:    result.Elapsed,
		Metrics:    result.Metrics,
	}, traj)
}

// checkEnsembleFlags rejects run flags that only make sense for a single
// simulation.
func checkEnsembleFlags(cmd *cobra.Command) error {
	for _, name := range []string{"stream", "snapshot"} {
		if cmd.Flags().Changed(name) {
			return md.Configf("--%s cannot be combined with --members", name)
		}
	}
	return nil
}

// runEnsemble runs independently seeded copies of cfg concurrently and writes
// one trajectory per member next to cfg.Output. With --save every member is
// cataloged as its own run.
func runEnsemble(ctx context.Context, cfg *config.Config, logger *slog.Logger, events *logging.EventLog) error {
	if cfg.System.Jitter == 0 {
		logger.Warn("ensemble members are identical without --jitter", "members", members)
	}

	memberCfgs := make([]*config.Config, members)
	ffs := make([]*forces.LJ, members)
	for i := range memberCfgs {
		memberCfgs[i] = cfg.Clone()
		memberCfgs[i].System.Seed = cfg.System.Seed + int64(i)
	}

	factory := func(member int) (*sim.Simulator, error) {
		mc := memberCfgs[member]
		mol, ff, verlet, err := newSystem(mc, mc.System.Seed)
		if err != nil {
			return nil, err
		}
		ffs[member] = ff

		memberLogger := logger.With("member", member)
		opts := []sim.Option{
			sim.WithInterval(mc.Interval),
			sim.WithProgress(logging.NewProgressLogger(memberLogger, mc.Verbose)),
			sim.WithObserver(&logging.FrameLogger{Logger: memberLogger, Labels: mol.Labels()}),
		}
		for _, m := range runMetrics(mc, ff) {
			opts = append(opts, sim.WithMetric(m))
		}
		return sim.New(mol, ff, verlet, opts...)
	}

	ens, err := sim.NewEnsemble(factory, members, runtime.NumCPU())
	if err != nil {
		return err
	}

	logger.Info("running ensemble", "members", members, "steps", cfg.Steps)
	events.Log(map[string]any{"event": "ensemble_started", "members": members, "steps": cfg.Steps})
	results, sims, err := ens.Run(ctx, cfg.Steps)
	if err != nil {
		events.Log(map[string]any{"event": "ensemble_failed", "error": err.Error()})
		return err
	}

	ext := filepath.Ext(cfg.Output)
	base := strings.TrimSuffix(cfg.Output, ext)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := "MEMBER\tSEED\tFRAMES\tBREAK STEP\tSTABILITY\tDRIFT\tOUTPUT"
	if saveRun {
		header += "\tRUN ID"
	}
	fmt.Fprintln(w, header)

	for i, s := range sims {
		mc := memberCfgs[i]
		path := fmt.Sprintf("%s_%d%s", base, i, ext)
		traj := s.Trajectory()
		if err := traj.Save(path); err != nil {
			return fmt.Errorf("member %d: %w", i, err)
		}

		breakText := "-"
		var breakFrame *int
		if frame, ok := traj.DetectBreak(mc.Threshold); ok {
			breakFrame = &frame
			breakText = fmt.Sprintf("%d", trajectory.StepOf(frame, mc.Interval))
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%.3f\t%.3g\t%s",
			i,
			mc.System.Seed,
			results[i].Frames,
			breakText,
			results[i].Metrics["stability"],
			results[i].Metrics["energy_drift"],
			path,
		)

		if saveRun {
			id, err := saveToCatalog(ctx, mc, ffs[i], results[i], traj, breakFrame)
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			events.Log(map[string]any{"event": "run_saved", "id": id, "member": i})
			fmt.Fprintf(w, "\t%s", id)
		}
		fmt.Fprintln(w)
	}
	events.Log(map[string]any{"event": "ensemble_finished", "members": members})
	return w.Flush()
}
