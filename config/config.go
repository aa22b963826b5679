// Package config loads the TOML configuration shared by the hosts.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/milk9111/kakip/loop"
	"github.com/milk9111/kakip/physics"
	"github.com/milk9111/kakip/sim"
)

//go:embed default.toml
var defaultTOML string

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Arena   ArenaConfig   `toml:"arena"`
	Step    StepConfig    `toml:"step"`
	Physics PhysicsConfig `toml:"physics"`
	Catalog CatalogConfig `toml:"catalog"`
}

type ArenaConfig struct {
	Magnitude     float64 `toml:"magnitude"`
	EntityCount   int     `toml:"entity_count"`
	WallThickness float64 `toml:"wall_thickness"`
	SpriteScale   float64 `toml:"sprite_scale"`
	Seed          uint64  `toml:"seed"`
}

type StepConfig struct {
	Rate               int `toml:"rate"`
	VelocityIterations int `toml:"velocity_iterations"`
	PositionIterations int `toml:"position_iterations"`
}

type PhysicsConfig struct {
	Backend string `toml:"backend"`
}

type CatalogConfig struct {
	Path     string `toml:"path"`
	Category string `toml:"category"`
}

// Default returns the embedded configuration.
func Default() Config {
	var c Config
	if _, err := toml.Decode(defaultTOML, &c); err != nil {
		panic("config: embedded default.toml: " + err.Error())
	}
	return c
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes TOML text over the defaults.
func Parse(data string) (Config, error) {
	c := Default()
	if _, err := toml.Decode(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Save writes c to path as TOML.
func Save(path string, c Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: save %s: %w", path, err)
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		_ = f.Close()
		return fmt.Errorf("config: encode %s: %w", path, err)
	}
	return f.Close()
}

func (c Config) Validate() error {
	switch {
	case c.Arena.Magnitude <= 0:
		return fmt.Errorf("%w: arena.magnitude %v", ErrInvalid, c.Arena.Magnitude)
	case c.Arena.EntityCount < 0 || c.Arena.EntityCount > sim.MaxEntities:
		return fmt.Errorf("%w: arena.entity_count %d", ErrInvalid, c.Arena.EntityCount)
	case c.Arena.WallThickness <= 0:
		return fmt.Errorf("%w: arena.wall_thickness %v", ErrInvalid, c.Arena.WallThickness)
	case c.Arena.SpriteScale <= 0:
		return fmt.Errorf("%w: arena.sprite_scale %v", ErrInvalid, c.Arena.SpriteScale)
	case c.Step.Rate <= 0:
		return fmt.Errorf("%w: step.rate %d", ErrInvalid, c.Step.Rate)
	case c.Step.VelocityIterations <= 0 || c.Step.PositionIterations <= 0:
		return fmt.Errorf("%w: step iterations %d/%d", ErrInvalid, c.Step.VelocityIterations, c.Step.PositionIterations)
	}
	if _, err := physics.ParseKind(c.Physics.Backend); err != nil {
		return fmt.Errorf("%w: physics.backend: %v", ErrInvalid, err)
	}
	return nil
}

// Settings converts the configuration into simulation settings.
func (c Config) Settings() (sim.Settings, error) {
	kind, err := physics.ParseKind(c.Physics.Backend)
	if err != nil {
		return sim.Settings{}, err
	}
	return sim.Settings{
		Magnitude:   c.Arena.Magnitude,
		SpriteScale: c.Arena.SpriteScale,
		MaxEntities: sim.MaxEntities,
		Seed:        c.Arena.Seed,
		Backend:     kind,
		Step: sim.StepParams{
			Dt:                 1 / float64(c.Step.Rate),
			VelocityIterations: c.Step.VelocityIterations,
			PositionIterations: c.Step.PositionIterations,
		},
	}, nil
}

// Interval is the wall-clock period between steps.
func (c Config) Interval() time.Duration {
	return loop.Interval(c.Step.Rate)
}
