package control

import "github.com/san-kum/tanksim/internal/dynamo"

type Profile struct {
	values []float64
}

// Pulse returns a profile of n points that is zero everywhere except at
// indices in [start, end), which hold value. Indices outside [0, n) are
// ignored.
func Pulse(n, start, end int, value float64) Profile {
	values := make([]float64, n)
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	for i := start; i < end; i++ {
		values[i] = value
	}
	return Profile{values: values}
}

func FromValues(values []float64) Profile {
	c := make([]float64, len(values))
	copy(c, values)
	return Profile{values: c}
}

func (p Profile) Len() int {
	return len(p.values)
}

func (p Profile) At(i int) float64 {
	return p.values[i]
}

// Control wraps the opening at index i as a single-input control vector.
func (p Profile) Control(i int) dynamo.Control {
	return dynamo.Control{p.At(i)}
}

// Values returns a copy of the schedule.
func (p Profile) Values() []float64 {
	c := make([]float64, len(p.values))
	copy(c, p.values)
	return c
}

// OpenPoints counts grid points with a non-zero opening.
func (p Profile) OpenPoints() int {
	n := 0
	for _, v := range p.values {
		if v != 0 {
			n++
		}
	}
	return n
}
