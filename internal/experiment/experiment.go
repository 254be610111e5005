package experiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/tanksim/internal/sim"
)

type Config struct {
	Sim        sim.Config
	Integrator string
	Tolerance  float64
}

// Validate checks the run configuration and the integrator options.
// A zero tolerance selects the integrator default.
func (c Config) Validate() error {
	if err := c.Sim.Validate(); err != nil {
		return err
	}
	switch {
	case math.IsNaN(c.Tolerance) || math.IsInf(c.Tolerance, 0):
		return &sim.ConfigError{Field: "tolerance", Reason: "must be finite"}
	case c.Tolerance < 0:
		return &sim.ConfigError{Field: "tolerance", Reason: fmt.Sprintf("must not be negative, got %g", c.Tolerance)}
	}
	return nil
}

type Experiment struct {
	cfg       Config
	simulator *sim.Simulator
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup validates the configuration, resolves the integrator and attaches
// the default metrics.
func (e *Experiment) Setup(r *Registry) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	integ, err := r.GetIntegrator(e.cfg.Integrator, e.cfg.Tolerance)
	if err != nil {
		return err
	}
	e.simulator = sim.New(integ, e.cfg.Integrator)
	for _, m := range r.DefaultMetrics(e.cfg.Sim) {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.Sim)
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

type Comparison struct {
	Integrator string
	Result     *sim.Result
	Elapsed    time.Duration
	Err        error
}

// Compare runs cfg once per named integrator, in order. A failing
// integrator is reported in its entry and does not stop the others.
func Compare(ctx context.Context, r *Registry, cfg Config, names []string) []Comparison {
	out := make([]Comparison, 0, len(names))
	for _, name := range names {
		c := cfg
		c.Integrator = name

		entry := Comparison{Integrator: name}
		exp := New(c)
		if err := exp.Setup(r); err != nil {
			entry.Err = err
			out = append(out, entry)
			continue
		}

		start := time.Now()
		entry.Result, entry.Err = exp.Run(ctx)
		entry.Elapsed = time.Since(start)
		out = append(out, entry)
	}
	return out
}
