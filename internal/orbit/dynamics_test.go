package orbit_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/body"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/orbit"
	"github.com/san-kum/orbitsim/internal/vec"
)

func newBody(name string, mass float64, pos, vel vec.Vec3) *body.Body {
	return body.New(name, mass, 1, "", "", pos, vel, 0, 0)
}

var _ = Describe("gravity field evaluation", func() {
	var sys *orbit.System

	BeforeEach(func() {
		sys = orbit.New()
		sys.SetG(1.0)
	})

	It("ignores zero-mass sources at any distance", func() {
		massive := newBody("planet", 100, vec.Vec3{}, vec.Vec3{})
		backdrop := newBody("backdrop", 0, vec.Vec3{X: 10}, vec.Vec3{})
		sys.AddBody(massive)
		sys.AddBody(backdrop)

		g := sys.GravityAt(massive, massive.Position)
		Expect(g.Norm()).To(BeZero())
	})

	It("pulls a massless probe with G*m/r^2", func() {
		source := newBody("planet", 100, vec.Vec3{}, vec.Vec3{})
		probe := newBody("probe", 0, vec.Vec3{X: 5}, vec.Vec3{})
		sys.AddBody(source)
		sys.AddBody(probe)

		g := sys.GravityAt(probe, probe.Position)
		Expect(g.Norm()).To(BeNumerically("~", 100.0/25.0, 1e-12))
		// Directed back toward the source.
		Expect(g.X).To(BeNumerically("<", 0))
	})

	It("scales linearly with source mass", func() {
		source := newBody("planet", 50, vec.Vec3{Y: 3}, vec.Vec3{})
		probe := newBody("probe", 0, vec.Vec3{}, vec.Vec3{})
		sys.AddBody(source)
		sys.AddBody(probe)

		before := sys.GravityAt(probe, probe.Position).Norm()
		source.Mass *= 2
		after := sys.GravityAt(probe, probe.Position).Norm()

		Expect(after).To(BeNumerically("~", 2*before, 1e-12))
	})

	It("evaluates at the candidate position, not the stored one", func() {
		source := newBody("planet", 100, vec.Vec3{}, vec.Vec3{})
		probe := newBody("probe", 0, vec.Vec3{X: 5}, vec.Vec3{})
		sys.AddBody(source)
		sys.AddBody(probe)

		g := sys.GravityAt(probe, vec.Vec3{X: 10})
		Expect(g.Norm()).To(BeNumerically("~", 1.0, 1e-12))
	})
})

var _ = Describe("time advance", func() {
	It("leaves all state untouched for a zero elapsed time", func() {
		sys := orbit.New()
		sys.SetG(1.0)
		a := newBody("a", 10, vec.Vec3{X: 1}, vec.Vec3{Y: 0.5})
		b := newBody("b", 20, vec.Vec3{X: -1}, vec.Vec3{Y: -0.25})
		sys.AddBody(a)
		sys.AddBody(b)
		beforeA, beforeB := *a, *b

		sys.Advance(0)

		Expect(*a).To(Equal(beforeA))
		Expect(*b).To(Equal(beforeB))
	})

	It("never moves the background sphere", func() {
		cfg := config.GetPreset("earth-moon")
		sys, err := orbit.FromConfig(cfg.System)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 100; i++ {
			sys.Advance(10)
		}
		Expect(sys.Background().Position).To(Equal(vec.Vec3{}))
		Expect(sys.Clock()).To(BeNumerically("~", 1000.0, 1e-9))
	})
})

var _ = Describe("orbital stability", func() {
	// A probe on an analytically circular orbit must come back to its
	// starting point after one Kepler period.
	circularOrbitDrift := func(st orbit.Stepper) float64 {
		const (
			centralMass = 1000.0
			radius      = 100.0
		)
		sys := orbit.New()
		sys.SetG(1.0)
		sys.SetStepper(st)

		v := math.Sqrt(centralMass / radius)
		sys.AddBody(newBody("central", centralMass, vec.Vec3{}, vec.Vec3{}))
		probe := newBody("probe", 0, vec.Vec3{X: radius}, vec.Vec3{Y: v})
		sys.AddBody(probe)

		period := 2 * math.Pi * math.Sqrt(radius*radius*radius/centralMass)
		steps := 10000
		dt := period / float64(steps)
		for i := 0; i < steps; i++ {
			sys.Advance(dt)
		}
		return probe.Position.Sub(vec.Vec3{X: radius}).Norm()
	}

	It("returns to the start within 1% of r with the frozen stepper", func() {
		Expect(circularOrbitDrift(orbit.FrozenStepper{})).To(BeNumerically("<", 1.0))
	})

	It("returns to the start within 1% of r with the coupled stepper", func() {
		Expect(circularOrbitDrift(orbit.CoupledStepper{})).To(BeNumerically("<", 1.0))
	})
})

var _ = Describe("unit scaling", func() {
	It("divides mass, radius and position by s, velocity by sqrt(s), G by s", func() {
		const s = 4.0
		def := config.SystemDef{
			Name: "scaled", G: 8.0, Scale: s,
			Bodies: []config.BodyDef{
				{
					Name: "planet", Mass: 12, Radius: 2,
					Position: config.Triple{X: 16},
					Velocity: config.Triple{Y: 6},
				},
			},
		}

		sys, err := orbit.FromConfig(def)
		Expect(err).NotTo(HaveOccurred())

		Expect(sys.G()).To(Equal(2.0))
		b := sys.Body(0)
		Expect(b.Mass).To(Equal(3.0))
		Expect(b.Radius).To(Equal(0.5))
		Expect(b.Position.X).To(Equal(4.0))
		Expect(b.Velocity.Y).To(Equal(3.0))
	})

	It("rejects descriptions with coincident bodies", func() {
		def := config.SystemDef{
			G: 1, Scale: 1,
			Bodies: []config.BodyDef{
				{Name: "a", Mass: 1, Position: config.Triple{X: 2}},
				{Name: "b", Mass: 1, Position: config.Triple{X: 2}},
			},
		}
		_, err := orbit.FromConfig(def)
		Expect(err).To(HaveOccurred())
	})
})
