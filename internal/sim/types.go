package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/tanksim/internal/dynamo"
	"github.com/san-kum/tanksim/internal/physics"
)

const (
	DefaultHorizon        = 10.0
	DefaultStepCount      = 100
	DefaultValveOpenStart = 21
	DefaultValveOpenEnd   = 70
	DefaultValveOpenValue = 100.0
	DefaultInitialLevel   = 0.0
)

// Config describes one tank run. The valve is open at grid indices in
// [ValveOpenStart, ValveOpenEnd). The end is exclusive, so ValveOpenEnd may
// be StepCount+1 to keep the valve open through the last grid point.
type Config struct {
	Horizon        float64
	StepCount      int
	Coefficient    float64
	Density        float64
	Area           float64
	ValveOpenStart int
	ValveOpenEnd   int
	ValveOpenValue float64
	InitialLevel   float64
}

func DefaultConfig() Config {
	return Config{
		Horizon:        DefaultHorizon,
		StepCount:      DefaultStepCount,
		Coefficient:    physics.DefaultCoefficient,
		Density:        physics.DefaultDensity,
		Area:           physics.DefaultArea,
		ValveOpenStart: DefaultValveOpenStart,
		ValveOpenEnd:   DefaultValveOpenEnd,
		ValveOpenValue: DefaultValveOpenValue,
		InitialLevel:   DefaultInitialLevel,
	}
}

// Dt is the fixed grid spacing.
func (c Config) Dt() float64 {
	return c.Horizon / float64(c.StepCount)
}

// Tank returns the model parameterised by this configuration.
func (c Config) Tank() *physics.Tank {
	return &physics.Tank{
		Density:     c.Density,
		Area:        c.Area,
		Coefficient: c.Coefficient,
	}
}

// ConfigError reports the first configuration field that cannot be run.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return dynamo.ErrConfiguration
}

func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"horizon", c.Horizon},
		{"coefficient", c.Coefficient},
		{"density", c.Density},
		{"area", c.Area},
		{"valve_open_value", c.ValveOpenValue},
		{"initial_level", c.InitialLevel},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &ConfigError{Field: f.name, Reason: "must be finite"}
		}
	}

	switch {
	case c.StepCount < 1:
		return &ConfigError{Field: "step_count", Reason: fmt.Sprintf("must be at least 1, got %d", c.StepCount)}
	case c.Horizon <= 0:
		return &ConfigError{Field: "horizon", Reason: fmt.Sprintf("must be positive, got %g", c.Horizon)}
	case c.Density <= 0:
		return &ConfigError{Field: "density", Reason: fmt.Sprintf("must be positive, got %g", c.Density)}
	case c.Area <= 0:
		return &ConfigError{Field: "area", Reason: fmt.Sprintf("must be positive, got %g", c.Area)}
	case c.ValveOpenStart < 0:
		return &ConfigError{Field: "valve_open_start", Reason: fmt.Sprintf("must not be negative, got %d", c.ValveOpenStart)}
	case c.ValveOpenEnd < 0:
		return &ConfigError{Field: "valve_open_end", Reason: fmt.Sprintf("must not be negative, got %d", c.ValveOpenEnd)}
	case c.ValveOpenStart > c.ValveOpenEnd:
		return &ConfigError{Field: "valve_open_start", Reason: fmt.Sprintf("%d is after valve_open_end %d", c.ValveOpenStart, c.ValveOpenEnd)}
	case c.ValveOpenStart > c.StepCount:
		return &ConfigError{Field: "valve_open_start", Reason: fmt.Sprintf("%d is beyond the last grid index %d", c.ValveOpenStart, c.StepCount)}
	case c.ValveOpenEnd > c.StepCount+1:
		return &ConfigError{Field: "valve_open_end", Reason: fmt.Sprintf("%d is beyond the grid of %d points", c.ValveOpenEnd, c.StepCount+1)}
	}
	return nil
}

// Result is the outcome of one run. The three series are aligned with the
// time grid and are only reachable through copying accessors.
type Result struct {
	ID         string
	Integrator string
	Metrics    map[string]float64

	times   []float64
	control []float64
	level   []float64
}

func (r *Result) Len() int { return len(r.times) }

func (r *Result) Times() []float64   { return clone(r.times) }
func (r *Result) Control() []float64 { return clone(r.control) }
func (r *Result) Level() []float64   { return clone(r.level) }

// FinalLevel returns the level at the last grid point.
func (r *Result) FinalLevel() float64 {
	return r.level[len(r.level)-1]
}

func clone(s []float64) []float64 {
	c := make([]float64, len(s))
	copy(c, s)
	return c
}
