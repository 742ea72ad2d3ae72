package orbit

import (
	"fmt"

	"github.com/san-kum/orbitsim/internal/body"
	"github.com/san-kum/orbitsim/internal/vec"
)

// Stepper advances every dynamical body in a system by dt simulated
// seconds. Two strategies exist: FrozenStepper integrates each body
// independently against a snapshot of its neighbors, CoupledStepper
// integrates the whole system as one state vector.
type Stepper interface {
	Name() string
	Step(s *System, dt float64)
}

// NewStepper returns the stepper registered under the given name.
func NewStepper(name string) (Stepper, error) {
	switch name {
	case "", "frozen":
		return FrozenStepper{}, nil
	case "coupled":
		return CoupledStepper{}, nil
	default:
		return nil, fmt.Errorf("unknown stepper: %s", name)
	}
}

// FrozenStepper runs classical RK4 on each body separately, evaluating
// gravity against the other bodies' pre-step positions at every stage. The
// intermediate stage positions of the neighbors are not advanced, which
// trades some multi-body coupling accuracy for per-body independence. All
// results are computed before any body is committed, so update order has
// no effect within a tick and a failed evaluation cannot corrupt bodies
// that were already advanced.
type FrozenStepper struct{}

func (FrozenStepper) Name() string { return "frozen" }

func (FrozenStepper) Step(s *System, dt float64) {
	type result struct {
		pos, vel vec.Vec3
	}
	results := make([]result, len(s.bodies))
	for i, b := range s.bodies {
		results[i].pos, results[i].vel = s.rk4(b, dt)
	}
	for i, b := range s.bodies {
		b.Position = results[i].pos
		b.Velocity = results[i].vel
	}
	s.refresh(dt)
}

// rk4 advances one body's position and velocity over dt using the
// classical 4-stage scheme with 1-2-2-1 weights on the coupled system
// dr/dt = v, dv/dt = a(r).
func (s *System) rk4(b *body.Body, dt float64) (vec.Vec3, vec.Vec3) {
	r := b.Position
	v := b.Velocity

	k1 := v.Scale(dt)
	l1 := s.accelAt(b, r).Scale(dt)
	k2 := v.Add(l1.Scale(0.5)).Scale(dt)
	l2 := s.accelAt(b, r.Add(k1.Scale(0.5))).Scale(dt)
	k3 := v.Add(l2.Scale(0.5)).Scale(dt)
	l3 := s.accelAt(b, r.Add(k2.Scale(0.5))).Scale(dt)
	k4 := v.Add(l3).Scale(dt)
	l4 := s.accelAt(b, r.Add(k3)).Scale(dt)

	r = r.Add(k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4).Scale(1.0 / 6.0))
	v = v.Add(l1.Add(l2.Scale(2)).Add(l3.Scale(2)).Add(l4).Scale(1.0 / 6.0))
	return r, v
}

// refresh caches the net gravity at each body's new position for external
// consumers and advances angular state by simple forward Euler. Angular
// dynamics has no force coupling, so RK4 buys nothing there.
func (s *System) refresh(dt float64) {
	for _, b := range s.bodies {
		b.GravityVec = s.GravityAt(b, b.Position)
		b.SetSpin(b.Spin + b.SpinVelocity*dt)
	}
}

// CoupledStepper is the textbook N-body RK4: one state vector over all
// positions and velocities, advanced jointly so that every force
// evaluation sees stage-consistent neighbor positions.
type CoupledStepper struct{}

func (CoupledStepper) Name() string { return "coupled" }

func (CoupledStepper) Step(s *System, dt float64) {
	n := len(s.bodies)
	pos := make([]vec.Vec3, n)
	vel := make([]vec.Vec3, n)
	for i, b := range s.bodies {
		pos[i] = b.Position
		vel[i] = b.Velocity
	}

	k1p, k1v := s.derive(pos, vel)
	k2p, k2v := s.derive(shift(pos, k1p, dt/2), shift(vel, k1v, dt/2))
	k3p, k3v := s.derive(shift(pos, k2p, dt/2), shift(vel, k2v, dt/2))
	k4p, k4v := s.derive(shift(pos, k3p, dt), shift(vel, k3v, dt))

	for i, b := range s.bodies {
		b.Position = pos[i].Add(combine(k1p[i], k2p[i], k3p[i], k4p[i]).Scale(dt / 6))
		b.Velocity = vel[i].Add(combine(k1v[i], k2v[i], k3v[i], k4v[i]).Scale(dt / 6))
	}
	s.refresh(dt)
}

// derive evaluates dr/dt and dv/dt for the whole system at the given stage
// positions.
func (s *System) derive(pos, vel []vec.Vec3) (dpos, dvel []vec.Vec3) {
	n := len(s.bodies)
	dpos = make([]vec.Vec3, n)
	dvel = make([]vec.Vec3, n)
	copy(dpos, vel)
	for i, b := range s.bodies {
		var a vec.Vec3
		for j, other := range s.bodies {
			if i == j || other.Mass == 0 {
				continue
			}
			d := pos[j].Sub(pos[i])
			r := d.Norm()
			a = a.Add(d.Scale(s.g * other.Mass / (r * r * r)))
		}
		if b.Mass != 0 {
			a = a.Add(b.Thrust.Scale(1 / b.Mass))
		}
		dvel[i] = a
	}
	return dpos, dvel
}

func shift(base, delta []vec.Vec3, h float64) []vec.Vec3 {
	out := make([]vec.Vec3, len(base))
	for i := range base {
		out[i] = base[i].Add(delta[i].Scale(h))
	}
	return out
}

func combine(a, b, c, d vec.Vec3) vec.Vec3 {
	return a.Add(b.Scale(2)).Add(c.Scale(2)).Add(d)
}
