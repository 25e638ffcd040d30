package config

import "sort"

func preset(edge int, element string, sigma, epsilon, dt float64, steps int, jitter float64) *Config {
	cfg := DefaultConfig()
	cfg.System.Edge = edge
	cfg.System.Element = element
	cfg.System.Jitter = jitter
	cfg.Force.Sigma = sigma
	cfg.Force.Epsilon = epsilon
	cfg.Dt = dt
	cfg.Steps = steps
	return cfg
}

// Presets holds named starting configurations per element.
var Presets = map[string]map[string]*Config{
	"He": {
		"default": preset(3, "He", 0.9, 20.0, 0.001, 10000, 0),
		"large":   preset(5, "He", 0.9, 20.0, 0.001, 10000, 0),
		"gentle":  preset(3, "He", 0.9, 1.0, 0.001, 20000, 0),
		"shaken":  preset(3, "He", 0.9, 20.0, 0.001, 10000, 0.05),
	},
	"H": {
		"default":    preset(3, "H", 0.9, 20.0, 0.0005, 20000, 0),
		"compressed": preset(3, "H", 1.1, 20.0, 0.0005, 5000, 0),
	},
}

// GetPreset returns a copy of the named preset, or nil when it does not exist.
func GetPreset(element, name string) *Config {
	elementPresets, ok := Presets[element]
	if !ok {
		return nil
	}
	cfg, ok := elementPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(element string) []string {
	elementPresets, ok := Presets[element]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(elementPresets))
	for name := range elementPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Elements returns the elements that have presets.
func Elements() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
