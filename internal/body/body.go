// Package body models the physical and kinematic state of one simulated
// mass. A body knows nothing about other bodies; gravitational coupling
// lives in the orbit package.
package body

import (
	"math"

	"github.com/san-kum/orbitsim/internal/vec"
)

// DefaultRotationAxis is the spin axis of an untilted body.
var DefaultRotationAxis = vec.Vec3{X: 0, Y: 1, Z: 0}

const degToRad = math.Pi / 180

// Body is one simulated mass with linear and angular state. A Mass of 0
// marks a non-dynamical reference body (e.g. the background sphere): it
// exerts no gravity and is skipped by the kinematic update.
type Body struct {
	Name    string
	Mass    float64
	Radius  float64
	Mesh    string
	Texture string

	// GravityVec caches the net gravity evaluated at the body's current
	// position, refreshed after each integration step.
	GravityVec vec.Vec3

	Position vec.Vec3
	Velocity vec.Vec3
	Accel    vec.Vec3
	Thrust   vec.Vec3

	// RotationAxis is the tilted spin axis, set once from the input tilt
	// and never modified by the simulation. Tilt is kept in radians.
	RotationAxis vec.Vec3
	Tilt         float64

	Spin         float64
	SpinVelocity float64
	SpinAccel    float64
	SpinThrust   float64
}

// New builds a body from raw description values. tiltDeg is in degrees and
// converted here; everything past this boundary is radians.
func New(name string, mass, radius float64, mesh, texture string, position, velocity vec.Vec3, tiltDeg, spinRate float64) *Body {
	b := &Body{
		Name:     name,
		Mass:     mass,
		Radius:   radius,
		Mesh:     mesh,
		Texture:  texture,
		Position: position,
		Velocity: velocity,
	}
	b.SetTilt(tiltDeg * degToRad)
	b.SpinVelocity = spinRate
	return b
}

// SetTilt fixes the spin axis at the given inclination (radians), rotating
// the default axis about X.
func (b *Body) SetTilt(tilt float64) {
	b.Tilt = tilt
	b.RotationAxis = DefaultRotationAxis.RotateX(tilt)
}

// SetSpin stores an angular position wrapped to [0, 2pi).
func (b *Body) SetSpin(spin float64) {
	b.Spin = wrapAngle(spin)
}

// Step advances linear and angular state by dt seconds using forward Euler
// driven by the stored thrust and cached gravity. It is the standalone
// integration path for bodies outside a System; a body owned by a System is
// advanced by the system's Runge-Kutta step instead, never by both in the
// same tick.
func (b *Body) Step(dt float64) {
	if b.Mass == 0 {
		return
	}

	b.Accel = b.Accel.Add(b.Thrust.Scale(dt / b.Mass))
	b.Velocity = b.Velocity.Add(b.Accel.Scale(dt)).Add(b.GravityVec.Scale(1 / b.Mass))
	b.Position = b.Position.Add(b.Velocity.Scale(dt))

	b.SpinAccel += dt * b.SpinThrust / b.Mass
	b.SpinVelocity += dt * b.SpinAccel
	b.SetSpin(b.Spin + dt*b.SpinVelocity)
}

// ModelToWorld recomputes the body's model-to-world transform from current
// state: scale, tilt, spin, then translation.
func (b *Body) ModelToWorld() vec.Mat4 {
	m := vec.Scale(vec.Vec3{X: b.Radius, Y: b.Radius, Z: b.Radius})
	m = vec.RotateAxis(b.Spin, DefaultRotationAxis).Mul(m)
	if b.RotationAxis != DefaultRotationAxis {
		incline := DefaultRotationAxis.Cross(b.RotationAxis)
		m = vec.RotateAxis(b.Tilt, incline).Mul(m)
	}
	return vec.Translate(b.Position).Mul(m)
}

func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
