// Package dynamo provides the simulation primitives shared by the tank
// model, the integrators and the simulation driver.
//
// The package defines the fundamental interfaces and types for stepping a
// first-order ordinary differential equation dX/dt = f(X, u, t):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE right-hand sides
//   - [Autonomous]: optional marker for time-invariant systems
//   - [Integrator]: numerical stepper over one interval
//   - [Metric], [Observer]: per-step hooks used by the driver
//
// # Errors
//
// Configuration problems wrap [ErrConfiguration]; an integrator producing a
// non-finite state wraps [ErrDivergence] inside a [SimulationError].
package dynamo
