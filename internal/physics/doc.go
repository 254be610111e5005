// Package physics provides the tank level model driven by the simulator.
//
// [Tank] implements [dynamo.System] for the single-state ODE
//
//	dLevel/dt = (c / (rho * A)) * valve
//
// where c relates valve opening to inlet mass flow, rho is fluid density, A
// is the tank cross-sectional area and valve is the opening in percent.
// The model is time-invariant and reports so through [dynamo.Autonomous].
//
// # Example
//
//	tank := physics.NewTank()
//	rate := tank.LevelRate(0, 0, 50.0, 100.0) // 5.0
package physics
