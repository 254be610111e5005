package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/tanksim/internal/experiment"
	"github.com/san-kum/tanksim/internal/sim"
)

const DefaultIntegrator = "rk4"

type Config struct {
	Horizon      float64     `yaml:"horizon"`
	StepCount    int         `yaml:"step_count"`
	Coefficient  float64     `yaml:"coefficient"`
	Density      float64     `yaml:"density"`
	Area         float64     `yaml:"area"`
	Valve        ValveConfig `yaml:"valve"`
	InitialLevel float64     `yaml:"initial_level"`
	Integrator   string      `yaml:"integrator"`
	Tolerance    float64     `yaml:"tolerance,omitempty"`
}

type ValveConfig struct {
	OpenStart int     `yaml:"open_start"`
	OpenEnd   int     `yaml:"open_end"`
	OpenValue float64 `yaml:"open_value"`
}

func DefaultConfig() *Config {
	return FromSim(sim.DefaultConfig(), DefaultIntegrator)
}

func FromSim(s sim.Config, integrator string) *Config {
	return &Config{
		Horizon:     s.Horizon,
		StepCount:   s.StepCount,
		Coefficient: s.Coefficient,
		Density:     s.Density,
		Area:        s.Area,
		Valve: ValveConfig{
			OpenStart: s.ValveOpenStart,
			OpenEnd:   s.ValveOpenEnd,
			OpenValue: s.ValveOpenValue,
		},
		InitialLevel: s.InitialLevel,
		Integrator:   integrator,
	}
}

// Load reads a YAML file over the defaults, so keys absent from the file
// keep their default values.
func Load(path string) (*Config, error) {
	return LoadWith(path, DefaultConfig())
}

// LoadWith reads a YAML file over a copy of base.
func LoadWith(path string, base *Config) (*Config, error) {
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

func Encode(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func (c *Config) Sim() sim.Config {
	return sim.Config{
		Horizon:        c.Horizon,
		StepCount:      c.StepCount,
		Coefficient:    c.Coefficient,
		Density:        c.Density,
		Area:           c.Area,
		ValveOpenStart: c.Valve.OpenStart,
		ValveOpenEnd:   c.Valve.OpenEnd,
		ValveOpenValue: c.Valve.OpenValue,
		InitialLevel:   c.InitialLevel,
	}
}

func (c *Config) Experiment() experiment.Config {
	return experiment.Config{
		Sim:        c.Sim(),
		Integrator: c.Integrator,
		Tolerance:  c.Tolerance,
	}
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
