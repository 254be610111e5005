package logger

import "github.com/san-kum/tanksim/internal/dynamo"

// StepObserver logs every completed simulation step at debug level.
type StepObserver struct {
	log *Logger
}

func NewStepObserver(l *Logger) *StepObserver {
	return &StepObserver{log: l}
}

func (o *StepObserver) OnStep(step int, x dynamo.State, u dynamo.Control, t float64) {
	var valve float64
	if len(u) > 0 {
		valve = u[0]
	}
	o.log.Debugw("step", "step", step, "t", t, "level", x[0], "valve", valve)
}
