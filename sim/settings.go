package sim

import "github.com/milk9111/kakip/physics"

const (
	DefaultMagnitude     = 20.0
	DefaultEntityCount   = 100
	DefaultWallThickness = 10.0
	// DefaultSpriteScale maps a 480 px wide sprite to 2 world units.
	DefaultSpriteScale = 2.0 / 480
	MaxEntities        = 1000

	entityDensity  = 1.0
	entityFriction = 0.3
)

// StepParams configures a single fixed integration step.
type StepParams struct {
	Dt                 float64
	VelocityIterations int
	PositionIterations int
}

// DefaultStepParams is one 60 Hz step with 8 velocity and 3 position
// iterations.
func DefaultStepParams() StepParams {
	return StepParams{Dt: 1.0 / 60, VelocityIterations: 8, PositionIterations: 3}
}

// Settings holds the arena-independent simulation parameters.
type Settings struct {
	Magnitude   float64
	SpriteScale float64
	MaxEntities int
	// Seed makes every arena build deterministic when non-zero.
	Seed    uint64
	Backend physics.Kind
	Step    StepParams
}

func DefaultSettings() Settings {
	return Settings{
		Magnitude:   DefaultMagnitude,
		SpriteScale: DefaultSpriteScale,
		MaxEntities: MaxEntities,
		Backend:     physics.DefaultKind,
		Step:        DefaultStepParams(),
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.Magnitude <= 0 {
		s.Magnitude = def.Magnitude
	}
	if s.SpriteScale <= 0 {
		s.SpriteScale = def.SpriteScale
	}
	if s.MaxEntities <= 0 {
		s.MaxEntities = def.MaxEntities
	}
	if s.Backend == "" {
		s.Backend = def.Backend
	}
	if s.Step.Dt <= 0 {
		s.Step.Dt = def.Step.Dt
	}
	if s.Step.VelocityIterations <= 0 {
		s.Step.VelocityIterations = def.Step.VelocityIterations
	}
	if s.Step.PositionIterations <= 0 {
		s.Step.PositionIterations = def.Step.PositionIterations
	}
	return s
}
