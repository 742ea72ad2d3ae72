package config

import "sort"

// Presets are builtin system descriptions, in raw (unscaled) units:
// kilometers, kilograms, seconds, G in km^3/(kg*s^2). Tilt is in degrees,
// spin in radians per second.
var Presets = map[string]*Config{
	"earth-moon": {
		Dt: 0.02, Duration: 60, Stepper: "frozen",
		Warp: WarpConf{Factor: 50000, Min: 1, Max: 1e6},
		System: SystemDef{
			Name: "earth-moon", G: DefaultG, Scale: 1000,
			Background: BackgroundDef{Mesh: "sphere.obj", Texture: "stars.png", Radius: 5e6, Tilt: 0},
			Bodies: []BodyDef{
				{
					Name: "earth", Mass: 5.972e24, Radius: 6371,
					Mesh: "sphere.obj", Texture: "earth.png",
					Tilt: 23.44, Spin: 7.2921e-5,
				},
				{
					Name: "moon", Mass: 7.342e22, Radius: 1737,
					Mesh: "sphere.obj", Texture: "moon.png",
					Position: Triple{X: 384400},
					Velocity: Triple{Z: -1.018},
					Tilt:     6.68, Spin: 2.6617e-6,
				},
			},
		},
	},
	"sol": {
		Dt: 0.02, Duration: 60, Stepper: "frozen",
		Warp: WarpConf{Factor: 1e6, Min: 1, Max: 1e7},
		System: SystemDef{
			Name: "sol", G: DefaultG, Scale: 1e6,
			Background: BackgroundDef{Mesh: "sphere.obj", Texture: "stars.png", Radius: 1e10, Tilt: 0},
			Bodies: []BodyDef{
				{
					Name: "sun", Mass: 1.989e30, Radius: 696000,
					Mesh: "sphere.obj", Texture: "sun.png",
					Tilt: 7.25, Spin: 2.865e-6,
				},
				{
					Name: "mercury", Mass: 3.301e23, Radius: 2440,
					Mesh: "sphere.obj", Texture: "mercury.png",
					Position: Triple{X: 5.79e7},
					Velocity: Triple{Z: -47.87},
					Tilt:     0.03, Spin: 1.24e-6,
				},
				{
					Name: "venus", Mass: 4.867e24, Radius: 6052,
					Mesh: "sphere.obj", Texture: "venus.png",
					Position: Triple{X: 1.082e8},
					Velocity: Triple{Z: -35.02},
					Tilt:     177.4, Spin: -2.99e-7,
				},
				{
					Name: "earth", Mass: 5.972e24, Radius: 6371,
					Mesh: "sphere.obj", Texture: "earth.png",
					Position: Triple{X: 1.496e8},
					Velocity: Triple{Z: -29.78},
					Tilt:     23.44, Spin: 7.2921e-5,
				},
				{
					Name: "mars", Mass: 6.417e23, Radius: 3390,
					Mesh: "sphere.obj", Texture: "mars.png",
					Position: Triple{X: 2.279e8},
					Velocity: Triple{Z: -24.13},
					Tilt:     25.19, Spin: 7.088e-5,
				},
			},
		},
	},
	"binary": {
		Dt: 0.02, Duration: 100, Stepper: "coupled",
		Warp: WarpConf{Factor: 1000, Min: 1, Max: 1e5},
		System: SystemDef{
			Name: "binary", G: DefaultG, Scale: 100,
			Background: BackgroundDef{Mesh: "sphere.obj", Texture: "stars.png", Radius: 1e6, Tilt: 0},
			Bodies: []BodyDef{
				{
					Name: "alpha", Mass: 1e24, Radius: 3000,
					Mesh: "sphere.obj", Texture: "star_a.png",
					Position: Triple{X: 10000},
					Velocity: Triple{Z: -1.29},
					Tilt:     10, Spin: 1e-4,
				},
				{
					Name: "beta", Mass: 1e24, Radius: 3000,
					Mesh: "sphere.obj", Texture: "star_b.png",
					Position: Triple{X: -10000},
					Velocity: Triple{Z: 1.29},
					Tilt:     -10, Spin: 1e-4,
				},
			},
		},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
