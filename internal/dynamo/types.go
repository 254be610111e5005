package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Autonomous is implemented by systems whose derivative does not depend on
// time. Such systems may be integrated over local interval time.
type Autonomous interface {
	Autonomous() bool
}

// IsAutonomous reports whether dyn declares itself time-invariant.
func IsAutonomous(dyn System) bool {
	a, ok := dyn.(Autonomous)
	return ok && a.Autonomous()
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// IntervalIntegrator advances a state across [t0, t1], taking as many
// internal steps as its error control needs.
type IntervalIntegrator interface {
	Integrator
	Integrate(dyn System, x State, u Control, t0, t1 float64) (State, error)
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, x State, u Control, t float64)
}
