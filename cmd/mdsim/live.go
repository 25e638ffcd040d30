package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/forces"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/sim"
	"github.com/san-kum/mdsim/internal/viz"
)

// runLive opens the live view. When no system flag is set it first shows a
// menu of every preset.
func runLive(cmd *cobra.Command, args []string) error {
	viz.SetTheme(theme)

	if !systemFlagsChanged(cmd) {
		return viz.RunMenu(presetMenu())
	}

	factory, opts, err := liveConfig(cmd)
	if err != nil {
		return err
	}
	return viz.RunLive(factory, opts)
}

// liveConfig resolves the flags of cmd into a simulation factory and view
// options. --steps bounds the view only when given explicitly.
func liveConfig(cmd *cobra.Command) (viz.Factory, viz.LiveOptions, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, viz.LiveOptions{}, err
	}
	maxSteps := 0
	if cmd.Flags().Changed("steps") {
		maxSteps = cfg.Steps
	}
	opts, err := liveOptions(cfg, maxSteps)
	if err != nil {
		return nil, viz.LiveOptions{}, err
	}
	return liveFactory(cfg), opts, nil
}

func presetMenu() viz.Menu {
	var items []viz.MenuItem
	for _, el := range config.Elements() {
		for _, name := range config.ListPresets(el) {
			p := config.GetPreset(el, name)
			items = append(items, viz.MenuItem{
				Name: el + "/" + name,
				Description: fmt.Sprintf("%d atoms, σ=%g ε=%g dt=%g",
					p.System.Edge*p.System.Edge*p.System.Edge, p.Force.Sigma, p.Force.Epsilon, p.Dt),
			})
		}
	}

	return viz.NewMenu("LENNARD-JONES PRESETS", items, func(item viz.MenuItem) (tea.Model, error) {
		el, name, _ := strings.Cut(item.Name, "/")
		cfg := config.GetPreset(el, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", item.Name)
		}
		opts, err := liveOptions(cfg, 0)
		if err != nil {
			return nil, err
		}
		opts.Title = item.Name
		m, err := viz.NewLiveModel(liveFactory(cfg), opts)
		if err != nil {
			return nil, err
		}
		return m, nil
	})
}

func liveFactory(cfg *config.Config) viz.Factory {
	return func() (*sim.Simulator, error) {
		mol, ff, verlet, err := newSystem(cfg, cfg.System.Seed)
		if err != nil {
			return nil, err
		}
		return sim.New(mol, ff, verlet, sim.WithInterval(cfg.Interval))
	}
}

func liveOptions(cfg *config.Config, maxSteps int) (viz.LiveOptions, error) {
	params, err := cfg.Params()
	if err != nil {
		return viz.LiveOptions{}, err
	}
	return viz.LiveOptions{
		Title:        fmt.Sprintf("%s%d LJ cluster", cfg.System.Element, cfg.System.Edge),
		StepsPerTick: speed,
		MaxSteps:     maxSteps,
		Threshold:    cfg.Threshold,
		Energy: func(pos md.Coords) float64 {
			return forces.PotentialEnergy(pos, params)
		},
	}, nil
}
