// Package metrics provides conserved-quantity observations over an
// orbital system: total mechanical energy, linear and angular momentum,
// and their drift across a run.
package metrics

import (
	"math"

	"github.com/san-kum/orbitsim/internal/orbit"
	"github.com/san-kum/orbitsim/internal/vec"
)

// TotalEnergy returns kinetic plus pairwise gravitational potential energy
// of all dynamical bodies.
func TotalEnergy(s *orbit.System) float64 {
	bodies := s.Bodies()
	ke := 0.0
	pe := 0.0
	for i, b := range bodies {
		ke += 0.5 * b.Mass * b.Velocity.Dot(b.Velocity)
		for j := i + 1; j < len(bodies); j++ {
			o := bodies[j]
			if b.Mass == 0 || o.Mass == 0 {
				continue
			}
			r := o.Position.Sub(b.Position).Norm()
			pe -= s.G() * b.Mass * o.Mass / r
		}
	}
	return ke + pe
}

// LinearMomentum returns the mass-weighted velocity sum.
func LinearMomentum(s *orbit.System) vec.Vec3 {
	var p vec.Vec3
	for _, b := range s.Bodies() {
		p = p.Add(b.Velocity.Scale(b.Mass))
	}
	return p
}

// AngularMomentum returns the total orbital angular momentum about the
// origin.
func AngularMomentum(s *orbit.System) vec.Vec3 {
	var l vec.Vec3
	for _, b := range s.Bodies() {
		l = l.Add(b.Position.Cross(b.Velocity.Scale(b.Mass)))
	}
	return l
}

// EnergyDrift tracks the maximum relative departure of total energy from
// its value at the first observation.
type EnergyDrift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(s *orbit.System, t float64) {
	energy := TotalEnergy(s)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++
	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift tracks the maximum absolute departure of linear momentum
// from its first observation. Gravity is internal to the system, so any
// growth is integrator error.
type MomentumDrift struct {
	initial  vec.Vec3
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift { return &MomentumDrift{} }

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(s *orbit.System, t float64) {
	p := LinearMomentum(s)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Norm())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = vec.Vec3{}
	m.maxDrift = 0
	m.samples = 0
}

// MeanEnergy reports the running average of total energy, mostly useful
// as a sanity number on run summaries.
type MeanEnergy struct {
	total   float64
	samples int
}

func NewMeanEnergy() *MeanEnergy { return &MeanEnergy{} }

func (e *MeanEnergy) Name() string { return "mean_energy" }

func (e *MeanEnergy) Observe(s *orbit.System, t float64) {
	e.total += TotalEnergy(s)
	e.samples++
}

func (e *MeanEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *MeanEnergy) Reset() {
	e.total = 0
	e.samples = 0
}
