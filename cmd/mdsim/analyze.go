package main

import (
	"fmt"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/export"
	"github.com/san-kum/mdsim/internal/forces"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/molecule"
	"github.com/san-kum/mdsim/internal/trajectory"
	"github.com/san-kum/mdsim/internal/viz"
)

func analyzeFile(cmd *cobra.Command, args []string) error {
	if threshold <= 0 {
		return md.Configf("threshold must be positive, got %g", threshold)
	}
	if interval <= 0 {
		return md.Configf("interval must be positive, got %d", interval)
	}

	traj, err := trajectory.LoadFile(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d atoms, %d frames\n", args[0], traj.NumAtoms(), traj.Len())
	if frame, ok := traj.DetectBreak(threshold); ok {
		fmt.Printf("break frame: %d (step %d)\n", frame, trajectory.StepOf(frame, interval))
	} else {
		fmt.Printf("no frame moved more than %g from the first\n", threshold)
	}

	disp := traj.MaxDisplacements()
	if svgOut != "" {
		if err := writeSeriesFile(svgOut, disp); err != nil {
			return err
		}
	}
	if len(disp) < 2 {
		return nil
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(disp,
		asciigraph.Height(12),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("max displacement per frame (every %d steps)", interval))))
	return nil
}

// writeSeriesFile writes the displacement curve as an SVG document.
func writeSeriesFile(path string, disp []float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return export.WriteSeriesSVG(f, disp, 640, 320, string(viz.CurrentTheme.Secondary))
}

func benchForces(cmd *cobra.Command, args []string) error {
	if benchReps <= 0 {
		return md.Configf("reps must be positive, got %d", benchReps)
	}

	mol, err := molecule.NewCube(benchEdge, config.DefaultElement, nil)
	if err != nil {
		return err
	}
	mol.Jitter(rand.New(rand.NewSource(benchSeed)), 0.05)
	pos := mol.Positions()

	params, err := forces.NewLJParams(sigma, epsilon)
	if err != nil {
		return err
	}
	ref := forces.ComputeReference(pos, params)

	fmt.Printf("benchmarking %d atoms, %d evaluations each\n\n", len(pos), benchReps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tTOTAL\tPER CALL\tCALLS/SEC\tMAX DEV")

	for _, name := range forces.StrategyNames() {
		s, err := forces.ParseStrategy(name)
		if err != nil {
			return err
		}
		ff, err := forces.NewLJ(params, s)
		if err != nil {
			return err
		}

		var out md.Coords
		start := time.Now()
		for i := 0; i < benchReps; i++ {
			if out, err = ff.Compute(pos); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%s\t%v\t%v\t%.0f\t%.3g\n",
			name,
			elapsed.Round(time.Microsecond),
			(elapsed / time.Duration(benchReps)).Round(time.Microsecond),
			float64(benchReps)/elapsed.Seconds(),
			out.MaxAbsDiff(ref))
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	elements := config.Elements()
	if len(args) > 0 {
		if len(config.ListPresets(args[0])) == 0 {
			fmt.Printf("no presets for element: %s\n", args[0])
			return nil
		}
		elements = []string{args[0]}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ELEMENT\tPRESET\tEDGE\tSIGMA\tEPSILON\tDT\tSTEPS\tJITTER")
	for _, el := range elements {
		for _, name := range config.ListPresets(el) {
			p := config.GetPreset(el, name)
			fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%g\t%g\t%d\t%g\n",
				el, name, p.System.Edge, p.Force.Sigma, p.Force.Epsilon, p.Dt, p.Steps, p.System.Jitter)
		}
	}
	return w.Flush()
}
