package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mdsim/internal/forces"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/molecule"
)

const (
	DefaultEdge      = 3
	DefaultElement   = "He"
	DefaultSteps     = 10000
	DefaultDt        = 0.001
	DefaultSigma     = 0.9
	DefaultEpsilon   = 20.0
	DefaultInterval  = 100
	DefaultThreshold = 0.1
	DefaultOutput    = "traj.xyz"
)

type Config struct {
	System    SystemConfig       `yaml:"system"`
	Force     ForceConfig        `yaml:"force"`
	Dt        float64            `yaml:"dt"`
	Steps     int                `yaml:"steps"`
	Interval  int                `yaml:"interval"`
	Output    string             `yaml:"output"`
	Analysis  bool               `yaml:"analysis"`
	Threshold float64            `yaml:"threshold"`
	Verbose   bool               `yaml:"verbose"`
	Masses    map[string]float64 `yaml:"masses,omitempty"`
}

type SystemConfig struct {
	Edge    int     `yaml:"edge"`
	Element string  `yaml:"element"`
	Jitter  float64 `yaml:"jitter"`
	Seed    int64   `yaml:"seed"`
}

type ForceConfig struct {
	Strategy string  `yaml:"strategy"`
	Sigma    float64 `yaml:"sigma"`
	Epsilon  float64 `yaml:"epsilon"`
}

func DefaultConfig() *Config {
	return &Config{
		System: SystemConfig{
			Edge:    DefaultEdge,
			Element: DefaultElement,
		},
		Force: ForceConfig{
			Strategy: forces.StrategyReference.String(),
			Sigma:    DefaultSigma,
			Epsilon:  DefaultEpsilon,
		},
		Dt:        DefaultDt,
		Steps:     DefaultSteps,
		Interval:  DefaultInterval,
		Output:    DefaultOutput,
		Threshold: DefaultThreshold,
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads a YAML file over a copy of base. Keys missing from the file
// keep base's values; base itself is not modified.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first invalid setting as an md.ErrConfiguration.
func (c *Config) Validate() error {
	if c.System.Edge <= 0 {
		return md.Configf("system.edge must be positive, got %d", c.System.Edge)
	}
	if c.System.Jitter < 0 {
		return md.Configf("system.jitter must not be negative, got %g", c.System.Jitter)
	}
	if _, err := c.MassTable().Mass(c.System.Element); err != nil {
		return err
	}
	if _, err := c.Params(); err != nil {
		return err
	}
	if _, err := forces.ParseStrategy(c.Force.Strategy); err != nil {
		return err
	}
	if c.Dt <= 0 {
		return md.Configf("dt must be positive, got %g", c.Dt)
	}
	if c.Steps < 0 {
		return md.Configf("steps must not be negative, got %d", c.Steps)
	}
	if c.Interval <= 0 {
		return md.Configf("interval must be positive, got %d", c.Interval)
	}
	if c.Threshold <= 0 {
		return md.Configf("threshold must be positive, got %g", c.Threshold)
	}
	return nil
}

func (c *Config) Params() (forces.LJParams, error) {
	return forces.NewLJParams(c.Force.Sigma, c.Force.Epsilon)
}

// MassTable returns the configured element masses, or the default table when
// the file names none.
func (c *Config) MassTable() molecule.MassTable {
	if len(c.Masses) == 0 {
		return molecule.DefaultMasses
	}
	return molecule.MassTable(c.Masses)
}

// Clone returns a copy that shares nothing with c.
func (c *Config) Clone() *Config {
	out := *c
	if c.Masses != nil {
		out.Masses = make(map[string]float64, len(c.Masses))
		for k, v := range c.Masses {
			out.Masses[k] = v
		}
	}
	return &out
}
