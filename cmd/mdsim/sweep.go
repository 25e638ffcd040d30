package main

import (
	"fmt"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/mdsim/internal/logging"
	"github.com/san-kum/mdsim/internal/optim"
	"github.com/san-kum/mdsim/internal/sim"
	"github.com/san-kum/mdsim/internal/trajectory"
)

const defaultSweepSteps = 2000

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("steps") && preset == "" && configFile == "" {
		cfg.Steps = defaultSweepSteps
	}

	grid, err := optim.NewGridSearch([]string{"sigma", "epsilon"}, [][]float64{sweepSigma, sweepEpsilon})
	if err != nil {
		return err
	}

	build := func(params map[string]float64) (*sim.Simulator, error) {
		point := cfg.Clone()
		point.Force.Sigma = params["sigma"]
		point.Force.Epsilon = params["epsilon"]

		mol, ff, verlet, err := newSystem(point, point.System.Seed)
		if err != nil {
			return nil, err
		}
		opts := []sim.Option{sim.WithInterval(point.Interval)}
		for _, m := range runMetrics(point, ff) {
			opts = append(opts, sim.WithMetric(m))
		}
		return sim.New(mol, ff, verlet, opts...)
	}

	limit := sweepLimit
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	logger := logging.NewLogger(logLevel, os.Stderr)
	logger.Info("running sweep", "points", len(grid.Points()), "steps", cfg.Steps, "metric", sweepMetric)

	evals, err := grid.Search(cmd.Context(), build, cfg.Steps, sweepMetric, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\tSIGMA\tEPSILON\t%s\tSTABILITY\tBREAK STEP\n", sweepMetric)
	for i, e := range evals {
		if e.Err != nil {
			logger.Warn("grid point failed", "sigma", e.Params["sigma"], "epsilon", e.Params["epsilon"], "error", e.Err)
			fmt.Fprintf(w, "%d\t%g\t%g\tfailed\t-\t-\n", i+1, e.Params["sigma"], e.Params["epsilon"])
			continue
		}
		breakText := "-"
		if frame, ok := e.Sim.Trajectory().DetectBreak(cfg.Threshold); ok {
			breakText = fmt.Sprintf("%d", trajectory.StepOf(frame, cfg.Interval))
		}
		fmt.Fprintf(w, "%d\t%g\t%g\t%.4g\t%.3f\t%s\n",
			i+1,
			e.Params["sigma"],
			e.Params["epsilon"],
			e.Value,
			e.Result.Metrics["stability"],
			breakText,
		)
	}
	return w.Flush()
}

