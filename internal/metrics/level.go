package metrics

import (
	"math"

	"github.com/san-kum/tanksim/internal/dynamo"
)

// PeakLevel tracks the highest level reached by any step of a run.
type PeakLevel struct {
	name string
	peak float64
	seen bool
}

func NewPeakLevel() *PeakLevel {
	return &PeakLevel{name: "peak_level"}
}

func (p *PeakLevel) Name() string { return p.name }

func (p *PeakLevel) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) == 0 {
		return
	}
	if !p.seen {
		p.peak = x[0]
		p.seen = true
		return
	}
	p.peak = math.Max(p.peak, x[0])
}

func (p *PeakLevel) Value() float64 {
	return p.peak
}

func (p *PeakLevel) Reset() {
	p.peak = 0
	p.seen = false
}

// InflowMass integrates the inlet mass flow c*valve over the run, holding
// each step's opening for one grid interval.
type InflowMass struct {
	name        string
	coefficient float64
	dt          float64
	total       float64
}

func NewInflowMass(coefficient, dt float64) *InflowMass {
	return &InflowMass{
		name:        "inflow_mass",
		coefficient: coefficient,
		dt:          dt,
	}
}

func (m *InflowMass) Name() string { return m.name }

func (m *InflowMass) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(u) == 0 {
		return
	}
	m.total += m.coefficient * u[0] * m.dt
}

func (m *InflowMass) Value() float64 {
	return m.total
}

func (m *InflowMass) Reset() {
	m.total = 0
}
