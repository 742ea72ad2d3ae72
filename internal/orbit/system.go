// Package orbit implements the gravitational dynamics of an orbital
// system: pairwise Newtonian gravity over an ordered collection of bodies
// and the fixed-step Runge-Kutta integration that advances them.
package orbit

import (
	"fmt"
	"math"

	"github.com/san-kum/orbitsim/internal/body"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/vec"
)

// SimSecondsPerRealSecond is the fixed real-to-simulated time ratio. The
// host-owned warp factor multiplies on top of this before Advance is called.
const SimSecondsPerRealSecond = 1.0

// System owns an ordered collection of bodies plus the global simulation
// parameters. Bodies are owned exclusively by their system; the background
// sphere is rendering context only and is never a subject of integration.
type System struct {
	g       float64 // gravitational constant, already unit-scaled
	scale   float64
	clock   float64 // elapsed simulated seconds
	bodies  []*body.Body
	sphere  *body.Body
	stepper Stepper
}

// New returns an empty system with unit scale, to be populated with AddBody.
func New() *System {
	return &System{
		g:       config.DefaultG,
		scale:   1.0,
		stepper: FrozenStepper{},
	}
}

// FromConfig builds a system from a raw description, applying the unit
// scaling here: mass, radius and position divide by the scale factor,
// velocity by its square root, and G by the scale factor. The background
// sphere keeps its raw radius; it exists only as a backdrop.
func FromConfig(def config.SystemDef) (*System, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	s := &System{
		g:       def.G / def.Scale,
		scale:   def.Scale,
		stepper: FrozenStepper{},
	}
	bg := def.Background
	s.sphere = body.New("celestial sphere", 0, bg.Radius, bg.Mesh, bg.Texture,
		vec.Vec3{}, vec.Vec3{}, bg.Tilt, 0)

	sqrtScale := math.Sqrt(def.Scale)
	for _, bd := range def.Bodies {
		pos := vec.Vec3{X: bd.Position.X, Y: bd.Position.Y, Z: bd.Position.Z}.Scale(1 / def.Scale)
		vel := vec.Vec3{X: bd.Velocity.X, Y: bd.Velocity.Y, Z: bd.Velocity.Z}.Scale(1 / sqrtScale)
		b := body.New(bd.Name, bd.Mass/def.Scale, bd.Radius/def.Scale,
			bd.Mesh, bd.Texture, pos, vel, bd.Tilt, bd.Spin)
		s.bodies = append(s.bodies, b)
	}
	return s, nil
}

func (s *System) G() float64     { return s.g }
func (s *System) Scale() float64 { return s.scale }

// Clock returns the elapsed simulated time in seconds.
func (s *System) Clock() float64 { return s.clock }

func (s *System) SetG(g float64) { s.g = g }

func (s *System) SetStepper(st Stepper) { s.stepper = st }

func (s *System) AddBody(b *body.Body) { s.bodies = append(s.bodies, b) }

// RemoveBody removes the body at position i in the collection.
func (s *System) RemoveBody(i int) error {
	if i < 0 || i >= len(s.bodies) {
		return fmt.Errorf("body index %d out of range [0, %d)", i, len(s.bodies))
	}
	s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
	return nil
}

func (s *System) Body(i int) *body.Body { return s.bodies[i] }

func (s *System) NumBodies() int { return len(s.bodies) }

// Bodies returns the dynamical bodies in collection order. Callers must
// not mutate body state while a step is in progress.
func (s *System) Bodies() []*body.Body { return s.bodies }

func (s *System) Background() *body.Body { return s.sphere }

func (s *System) SetBackground(b *body.Body) { s.sphere = b }

// Drawables returns every body the renderer should draw: the background
// sphere first, then the dynamical bodies in collection order.
func (s *System) Drawables() []*body.Body {
	out := make([]*body.Body, 0, len(s.bodies)+1)
	if s.sphere != nil {
		out = append(out, s.sphere)
	}
	return append(out, s.bodies...)
}

// GravityAt evaluates the net gravitational acceleration felt at position
// pos by the subject, summing G*m/r^2 toward every other body. The subject
// is excluded from its own sum; zero-mass bodies contribute nothing.
// Coincident positions are undefined and guarded against at load time.
func (s *System) GravityAt(subject *body.Body, pos vec.Vec3) vec.Vec3 {
	var net vec.Vec3
	for _, other := range s.bodies {
		if other == subject || other.Mass == 0 {
			continue
		}
		d := other.Position.Sub(pos)
		r := d.Norm()
		net = net.Add(d.Scale(s.g * other.Mass / (r * r * r)))
	}
	return net
}

// accelAt is the right-hand side of the velocity ODE: gravity at the
// candidate position plus the body's thrust. A zero-mass subject skips the
// thrust term (it would divide by zero and is non-dynamical anyway).
func (s *System) accelAt(subject *body.Body, pos vec.Vec3) vec.Vec3 {
	a := s.GravityAt(subject, pos)
	if subject.Mass != 0 {
		a = a.Add(subject.Thrust.Scale(1 / subject.Mass))
	}
	return a
}

// Advance converts an elapsed real-time duration to simulated seconds,
// advances the clock and steps every body in the collection. The
// background sphere stays where it is. A zero elapsed time leaves all body
// state numerically untouched, including the cached gravity vectors.
func (s *System) Advance(realSeconds float64) {
	dt := realSeconds * SimSecondsPerRealSecond
	s.clock += dt
	if dt == 0 {
		return
	}
	s.stepper.Step(s, dt)
}
