package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/tanksim/internal/dynamo"
)

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()

	if m.Value() != 0 {
		t.Errorf("expected 0 with no samples, got %f", m.Value())
	}

	m.Observe(dynamo.State{0}, dynamo.Control{100}, 0.1)
	m.Observe(dynamo.State{0}, dynamo.Control{0}, 0.2)
	m.Observe(dynamo.State{0}, dynamo.Control{50}, 0.3)
	m.Observe(dynamo.State{0}, nil, 0.4)

	if math.Abs(m.Value()-37.5) > 1e-12 {
		t.Errorf("expected mean opening 37.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero effort after reset")
	}
}

func TestPeakLevel(t *testing.T) {
	m := NewPeakLevel()

	for _, lv := range []float64{-3, -1, -2} {
		m.Observe(dynamo.State{lv}, dynamo.Control{0}, 0)
	}
	if m.Value() != -1 {
		t.Errorf("expected peak -1, got %f", m.Value())
	}

	m.Reset()
	m.Observe(dynamo.State{4}, dynamo.Control{0}, 0)
	if m.Value() != 4 {
		t.Errorf("expected peak 4 after reset, got %f", m.Value())
	}
}

func TestInflowMass(t *testing.T) {
	m := NewInflowMass(50, 0.1)

	for i := 0; i < 49; i++ {
		m.Observe(dynamo.State{0}, dynamo.Control{100}, 0)
	}
	m.Observe(dynamo.State{0}, dynamo.Control{0}, 0)

	// 49 open intervals of 0.1s at 5000 kg/s
	if math.Abs(m.Value()-24500) > 1e-6 {
		t.Errorf("expected 24500 kg, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero mass after reset")
	}
}
