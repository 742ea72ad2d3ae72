package sim

import (
	"fmt"

	"github.com/san-kum/orbitsim/internal/orbit"
)

// Metric accumulates a scalar observation over the course of a run.
type Metric interface {
	Name() string
	Observe(s *orbit.System, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every committed step.
type Observer interface {
	OnStep(s *orbit.System, t float64)
}

// Config drives a fixed-step run. Dt is the real-time step handed to the
// system each frame; the engine's warp factor converts it to simulated time.
type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

// Result is the recorded outcome of a run. Each state row holds, per body
// in collection order, position then velocity (six values per body).
type Result struct {
	BodyNames  []string
	States     [][]float64
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// StepError wraps a failure with the step it happened on.
type StepError struct {
	Step    int
	Time    float64
	Message string
}

func (e StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
