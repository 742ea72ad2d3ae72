// Package sim drives an orbital system from the host loop: it owns the
// warp factor, converts elapsed real time into system steps, and records
// runs for later inspection.
package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/orbit"
)

// Engine advances a system once per frame. It is single-threaded by
// design: a step completes before the caller reads the updated bodies.
type Engine struct {
	system    *orbit.System
	warp      float64
	warpMin   float64
	warpMax   float64
	metrics   []Metric
	observers []Observer
}

func New(system *orbit.System, warp config.WarpConf) *Engine {
	e := &Engine{
		system:  system,
		warpMin: warp.Min,
		warpMax: warp.Max,
	}
	e.SetWarp(warp.Factor)
	return e
}

func (e *Engine) System() *orbit.System { return e.system }

func (e *Engine) Warp() float64 { return e.warp }

// SetWarp clamps the requested factor into the configured range.
func (e *Engine) SetWarp(w float64) {
	if w < e.warpMin {
		w = e.warpMin
	}
	if w > e.warpMax {
		w = e.warpMax
	}
	e.warp = w
}

func (e *Engine) AddMetric(m Metric)     { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Step advances the system by one frame's worth of real time.
func (e *Engine) Step(realSeconds float64) {
	e.system.Advance(realSeconds * e.warp)
}

// Run executes a full fixed-step run, observing metrics each step and
// recording body state per tick.
func (e *Engine) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		BodyNames: bodyNames(e.system),
		States:    make([][]float64, 0, steps+1),
		Times:     make([]float64, 0, steps+1),
		Metrics:   make(map[string]float64),
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	result.States = append(result.States, snapshot(e.system))
	result.Times = append(result.Times, e.system.Clock())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, m := range e.metrics {
			m.Observe(e.system, e.system.Clock())
		}
		for _, obs := range e.observers {
			obs.OnStep(e.system, e.system.Clock())
		}

		e.Step(cfg.Dt)

		if cfg.ValidateState && !stateValid(e.system) {
			err := StepError{Step: i, Time: e.system.Clock(), Message: "invalid state (NaN/Inf)"}
			result.Errors = append(result.Errors, err)
			break
		}

		result.StepsTaken++
		result.States = append(result.States, snapshot(e.system))
		result.Times = append(result.Times, e.system.Clock())
	}

	// the loop observes before each step, so the final committed state
	// still needs its own observation; skip it if the run broke on an
	// invalid state
	if len(result.Errors) == 0 {
		for _, m := range e.metrics {
			m.Observe(e.system, e.system.Clock())
		}
	}

	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

func bodyNames(s *orbit.System) []string {
	names := make([]string, 0, s.NumBodies())
	for _, b := range s.Bodies() {
		names = append(names, b.Name)
	}
	return names
}

// snapshot flattens the system into one state row: position then velocity
// per body, in collection order.
func snapshot(s *orbit.System) []float64 {
	row := make([]float64, 0, s.NumBodies()*6)
	for _, b := range s.Bodies() {
		row = append(row,
			b.Position.X, b.Position.Y, b.Position.Z,
			b.Velocity.X, b.Velocity.Y, b.Velocity.Z)
	}
	return row
}

func stateValid(s *orbit.System) bool {
	for _, b := range s.Bodies() {
		if !b.Position.IsValid() || !b.Velocity.IsValid() {
			return false
		}
	}
	return true
}
