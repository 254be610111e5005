package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/tanksim/internal/dynamo"
	"github.com/san-kum/tanksim/internal/integrators"
	"github.com/san-kum/tanksim/internal/metrics"
	"github.com/san-kum/tanksim/internal/sim"
)

var ErrUnknownIntegrator = errors.New("experiment: unknown integrator")

type Registry struct {
	integrators map[string]func(tol float64) dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func(float64) dynamo.Integrator),
	}

	r.integrators["euler"] = func(float64) dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func(float64) dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func(tol float64) dynamo.Integrator {
		if tol <= 0 {
			tol = integrators.DefaultTolerance
		}
		return integrators.NewRK45WithTolerance(tol)
	}

	return r
}

// GetIntegrator returns a fresh integrator. tol only applies to adaptive
// methods; zero selects their default.
func (r *Registry) GetIntegrator(name string, tol float64) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownIntegrator, name, r.ListIntegrators())
	}
	return fn(tol), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(cfg sim.Config) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewControlEffort(),
		metrics.NewPeakLevel(),
		metrics.NewInflowMass(cfg.Coefficient, cfg.Dt()),
	}
}
