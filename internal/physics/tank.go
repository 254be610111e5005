package physics

import "github.com/san-kum/tanksim/internal/dynamo"

const (
	DefaultDensity     = 1000.0 // kg/m3, water
	DefaultArea        = 1.0    // m2
	DefaultCoefficient = 50.0   // (kg/s) per % open
)

type Tank struct {
	Density     float64
	Area        float64
	Coefficient float64
}

func NewTank() *Tank {
	return &Tank{
		Density:     DefaultDensity,
		Area:        DefaultArea,
		Coefficient: DefaultCoefficient,
	}
}

// LevelRate returns dLevel/dt for the given valve opening. level and t are
// accepted for parity with generic ODE right-hand sides and do not affect
// the result. Inputs are neither clamped nor validated.
func (k *Tank) LevelRate(level, t, coefficient, valve float64) float64 {
	return (coefficient / (k.Density * k.Area)) * valve
}

func (k *Tank) StateDim() int {
	return 1
}

func (k *Tank) ControlDim() int {
	return 1
}

// Derive evaluates the model with u[0] as the valve opening. A missing
// control is treated as a closed valve.
func (k *Tank) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	valve := 0.0
	if len(u) > 0 {
		valve = u[0]
	}
	return dynamo.State{k.LevelRate(x[0], t, k.Coefficient, valve)}
}

func (k *Tank) Autonomous() bool { return true }
