package metrics

import "github.com/san-kum/tanksim/internal/dynamo"

// ControlEffort is the mean valve opening over the steps of a run. Only
// the first control channel is read; the tank has a single valve.
type ControlEffort struct {
	name  string
	total float64
	steps int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (c *ControlEffort) Name() string { return c.name }

func (c *ControlEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	c.steps++
	if len(u) > 0 {
		c.total += u[0]
	}
}

func (c *ControlEffort) Value() float64 {
	if c.steps == 0 {
		return 0
	}
	return c.total / float64(c.steps)
}

func (c *ControlEffort) Reset() {
	c.total = 0
	c.steps = 0
}
