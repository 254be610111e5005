package sim

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/san-kum/tanksim/internal/control"
	"github.com/san-kum/tanksim/internal/dynamo"
)

// Simulator drives the tank model across the time grid. It holds no run
// state between calls, but integrators and metrics it was given may, so a
// Simulator must not be used from several goroutines at once.
type Simulator struct {
	integrator dynamo.Integrator
	name       string
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

func New(integrator dynamo.Integrator, name string) *Simulator {
	return &Simulator{
		integrator: integrator,
		name:       name,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run simulates cfg with the valve pulse it describes.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	profile := control.Pulse(cfg.StepCount+1, cfg.ValveOpenStart, cfg.ValveOpenEnd, cfg.ValveOpenValue)
	return s.run(ctx, cfg, profile)
}

// RunProfile simulates cfg with an explicit valve schedule in place of the
// configured pulse. The profile must have one value per grid point.
func (s *Simulator) RunProfile(ctx context.Context, cfg Config, profile control.Profile) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if profile.Len() != cfg.StepCount+1 {
		return nil, &ConfigError{
			Field:  "profile",
			Reason: fmt.Sprintf("has %d points, grid has %d", profile.Len(), cfg.StepCount+1),
		}
	}
	return s.run(ctx, cfg, profile)
}

// run integrates one grid interval per step. Step i applies the opening
// stored at index i+1, the end point of the interval, so a change in the
// profile takes effect one interval before its nominal grid time.
func (s *Simulator) run(ctx context.Context, cfg Config, profile control.Profile) (*Result, error) {
	tank := cfg.Tank()
	times := TimeGrid(cfg.Horizon, cfg.StepCount)
	dt := cfg.Dt()
	local := dynamo.IsAutonomous(tank)

	level := make([]float64, cfg.StepCount+1)
	level[0] = cfg.InitialLevel
	x := dynamo.State{cfg.InitialLevel}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < cfg.StepCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		u := profile.Control(i + 1)

		t0 := times[i]
		if local {
			t0 = 0
		}

		newX, err := s.step(tank, x, u, t0, dt)
		if err == nil && !newX.IsValid() {
			err = dynamo.ErrDivergence
		}
		if err != nil {
			return nil, &dynamo.SimulationError{Step: i, Time: times[i], State: x.Clone(), Wrapped: err}
		}

		x = newX
		level[i+1] = x[0]

		for _, m := range s.metrics {
			m.Observe(x, u, times[i+1])
		}
		for _, obs := range s.observers {
			obs.OnStep(i, x, u, times[i+1])
		}
	}

	result := &Result{
		ID:         uuid.NewString(),
		Integrator: s.name,
		Metrics:    make(map[string]float64, len(s.metrics)),
		times:      times,
		control:    profile.Values(),
		level:      level,
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t0, dt float64) (dynamo.State, error) {
	if ii, ok := s.integrator.(dynamo.IntervalIntegrator); ok {
		return ii.Integrate(dyn, x, u, t0, t0+dt)
	}
	return s.integrator.Step(dyn, x, u, t0, dt), nil
}
