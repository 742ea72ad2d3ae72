// Package config loads and saves declarative system descriptions. Values
// are stored raw, exactly as written; unit scaling is applied by the orbit
// package when a system is built.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultG        = 6.67384e-20
	DefaultDt       = 0.02
	DefaultDuration = 60.0
	DefaultWarp     = 1.0
	DefaultWarpMin  = 0.01
	DefaultWarpMax  = 10000.0
)

type Config struct {
	Dt       float64   `yaml:"dt"`
	Duration float64   `yaml:"duration"`
	Stepper  string    `yaml:"stepper"`
	Warp     WarpConf  `yaml:"warp"`
	System   SystemDef `yaml:"system"`
}

// WarpConf bounds the host-owned real-to-simulated time multiplier.
type WarpConf struct {
	Factor float64 `yaml:"factor"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
}

// SystemDef is the raw description of an orbital system: global constants,
// the background sphere, and the initial body records.
type SystemDef struct {
	Name       string        `yaml:"name"`
	G          float64       `yaml:"g"`
	Scale      float64       `yaml:"scale"`
	Background BackgroundDef `yaml:"background"`
	Bodies     []BodyDef     `yaml:"bodies"`
}

type BackgroundDef struct {
	Mesh    string  `yaml:"mesh"`
	Texture string  `yaml:"texture"`
	Radius  float64 `yaml:"radius"`
	Tilt    float64 `yaml:"tilt"`
}

type BodyDef struct {
	Name     string  `yaml:"name"`
	Mass     float64 `yaml:"mass"`
	Radius   float64 `yaml:"radius"`
	Mesh     string  `yaml:"mesh"`
	Texture  string  `yaml:"texture"`
	Position Triple  `yaml:"position"`
	Velocity Triple  `yaml:"velocity"`
	Tilt     float64 `yaml:"tilt"` // degrees
	Spin     float64 `yaml:"spin"` // radians per second
}

type Triple struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Stepper:  "frozen",
		Warp: WarpConf{
			Factor: DefaultWarp,
			Min:    DefaultWarpMin,
			Max:    DefaultWarpMax,
		},
		System: SystemDef{
			G:     DefaultG,
			Scale: 1.0,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects descriptions the dynamics core cannot accept, in
// particular coincident initial positions (degenerate gravity) and
// non-positive scale factors.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Warp.Min <= 0 || c.Warp.Max < c.Warp.Min {
		return fmt.Errorf("warp bounds [%f, %f] invalid", c.Warp.Min, c.Warp.Max)
	}
	return c.System.Validate()
}

func (s *SystemDef) Validate() error {
	if s.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %f", s.Scale)
	}
	if s.G <= 0 {
		return fmt.Errorf("g must be positive, got %g", s.G)
	}
	for i, b := range s.Bodies {
		if b.Mass < 0 {
			return fmt.Errorf("body %q: negative mass", b.Name)
		}
		for j := 0; j < i; j++ {
			o := s.Bodies[j]
			if b.Position == o.Position {
				return fmt.Errorf("bodies %q and %q share position (%g, %g, %g)",
					o.Name, b.Name, b.Position.X, b.Position.Y, b.Position.Z)
			}
		}
	}
	return nil
}
