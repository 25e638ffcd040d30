package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mdsim/internal/storage"
	"github.com/san-kum/mdsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tELEMENT\tATOMS\tSTEPS\tDT\tFORCE\tFRAMES\tBREAK\tTIME")
	for _, run := range runs {
		breakText := "-"
		if step, ok := run.BreakStep(); ok {
			breakText = fmt.Sprintf("%d", step)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4g\t%s\t%d\t%s\t%s\n",
			run.ID,
			run.Element,
			run.Atoms,
			run.Steps,
			run.Dt,
			run.Strategy,
			run.Frames,
			breakText,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(meta.ID)
	if err != nil {
		return err
	}

	if jsonOut {
		return storage.ExportJSON(os.Stdout, meta, traj)
	}

	breakText := "none"
	if step, ok := meta.BreakStep(); ok {
		breakText = fmt.Sprintf("step %d (frame %d)", step, *meta.BreakFrame)
	}
	rows := [][2]string{
		{"Element", meta.Element},
		{"Atoms", fmt.Sprintf("%d (edge %d)", meta.Atoms, meta.Edge)},
		{"Steps", fmt.Sprintf("%d", meta.Steps)},
		{"dt", fmt.Sprintf("%g", meta.Dt)},
		{"Interval", fmt.Sprintf("%d", meta.Interval)},
		{"Sigma", fmt.Sprintf("%g", meta.Sigma)},
		{"Epsilon", fmt.Sprintf("%g", meta.Epsilon)},
		{"Force", meta.Strategy},
		{"Jitter", fmt.Sprintf("%g (seed %d)", meta.Jitter, meta.Seed)},
		{"Frames", fmt.Sprintf("%d", meta.Frames)},
		{"Break", breakText},
		{"Elapsed", meta.Elapsed.String()},
	}
	rows = append(rows, metricRows(meta.Metrics)...)

	fmt.Println(viz.Title(meta.ID))
	fmt.Print(viz.KeyValues(rows))

	disp := traj.MaxDisplacements()
	if svgOut != "" {
		if err := writeSeriesFile(svgOut, disp); err != nil {
			return err
		}
	}
	if len(disp) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(disp,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("max displacement from the first frame")))
	}
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}
