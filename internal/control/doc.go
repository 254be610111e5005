// Package control builds the valve opening schedules that drive the tank.
//
// A [Profile] holds one valve opening (percent, 0-100) per time grid point
// and is immutable once built:
//
//   - [Pulse]: closed except over a half-open index range
//   - [FromValues]: an arbitrary schedule, copied on construction
//
// # Usage
//
//	p := control.Pulse(101, 21, 70, 100.0) // open between 2.1s and 7.0s
//	u := p.Control(22)                      // dynamo.Control{100}
package control
