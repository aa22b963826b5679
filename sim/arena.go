package sim

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/milk9111/kakip/physics"
)

// ArenaSpec is the input of one arena build.
type ArenaSpec struct {
	ScreenWidth   float64
	ScreenHeight  float64
	Sprites       []SpriteDesc
	EntityCount   int
	WallThickness float64
}

func (s ArenaSpec) validate(maxEntities int) error {
	if !(s.ScreenWidth > 0 && s.ScreenHeight > 0) {
		return fmt.Errorf("screen %vx%v: %w", s.ScreenWidth, s.ScreenHeight, ErrInvalidExtent)
	}
	if len(s.Sprites) == 0 {
		return ErrEmptyCatalog
	}
	for i, sp := range s.Sprites {
		if sp.PixelWidth <= 0 || sp.PixelHeight <= 0 {
			return fmt.Errorf("sprite %d (%dx%d): %w", i, sp.PixelWidth, sp.PixelHeight, ErrInvalidSprite)
		}
	}
	if s.EntityCount < 0 || s.EntityCount > maxEntities {
		return fmt.Errorf("%d not in [0, %d]: %w", s.EntityCount, maxEntities, ErrInvalidEntityCount)
	}
	if !(s.WallThickness > 0) {
		return fmt.Errorf("thickness %v: %w", s.WallThickness, ErrInvalidThickness)
	}
	return nil
}

// Arena is one backend world with its walls and entities.
type Arena struct {
	backend     physics.Backend
	mapper      Mapper
	worldWidth  float64
	worldHeight float64
	walls       [4]physics.Handle
	entities    []entityRecord
}

// buildArena constructs a complete arena or nothing. The backend is closed
// on every error path.
func buildArena(spec ArenaSpec, settings Settings, rng *rand.Rand) (*Arena, error) {
	if err := spec.validate(settings.MaxEntities); err != nil {
		return nil, err
	}
	ww, wh, err := WorldExtents(spec.ScreenWidth, spec.ScreenHeight, settings.Magnitude)
	if err != nil {
		return nil, err
	}
	mapper, err := NewMapper(spec.ScreenWidth, spec.ScreenHeight, ww, wh)
	if err != nil {
		return nil, err
	}
	backend, err := physics.New(settings.Backend, 0, 0)
	if err != nil {
		return nil, err
	}

	a := &Arena{
		backend:     backend,
		mapper:      mapper,
		worldWidth:  ww,
		worldHeight: wh,
		entities:    make([]entityRecord, 0, spec.EntityCount),
	}
	if err := a.buildWalls(spec.WallThickness); err != nil {
		backend.Close()
		return nil, err
	}

	for i := 0; i < spec.EntityCount; i++ {
		spriteID := rng.IntN(len(spec.Sprites))
		sprite := spec.Sprites[spriteID]

		x := rng.Float64() * ww
		y := rng.Float64() * wh
		hw := float64(sprite.PixelWidth) * settings.SpriteScale / 2
		hh := float64(sprite.PixelHeight) * settings.SpriteScale / 2
		angle := rng.Float64() * 2 * math.Pi

		if _, err := a.spawn(spriteID, x, y, angle, hw, hh); err != nil {
			backend.Close()
			return nil, fmt.Errorf("spawn entity %d: %w", i, err)
		}
	}
	return a, nil
}

// buildWalls closes the world rectangle with four static boxes lying just
// outside it: top, right, bottom, left.
func (a *Arena) buildWalls(t float64) error {
	w, h := a.worldWidth, a.worldHeight
	walls := [4]struct{ cx, cy, w, h float64 }{
		{cx: w / 2, cy: h + t/2, w: w, h: t},
		{cx: w + t/2, cy: h / 2, w: t, h: h + 2*t},
		{cx: w / 2, cy: -t / 2, w: w, h: t},
		{cx: -t / 2, cy: h / 2, w: t, h: h + 2*t},
	}
	for i, wall := range walls {
		body := a.backend.CreateStaticBody(wall.cx, wall.cy, 0)
		if err := a.backend.AttachBox(body, wall.w/2, wall.h/2); err != nil {
			return fmt.Errorf("wall %d: %w", i, err)
		}
		a.walls[i] = body
	}
	return nil
}

func (a *Arena) spawn(spriteID int, x, y, angle, halfWidth, halfHeight float64) (int, error) {
	body := a.backend.CreateDynamicBody(x, y, angle, entityDensity, entityFriction)
	if err := a.backend.AttachBox(body, halfWidth, halfHeight); err != nil {
		return 0, err
	}
	a.entities = append(a.entities, entityRecord{
		spriteID:   spriteID,
		halfWidth:  halfWidth,
		halfHeight: halfHeight,
		body:       body,
	})
	return len(a.entities) - 1, nil
}

func (a *Arena) entity(id int) (Entity, error) {
	if id < 0 || id >= len(a.entities) {
		return Entity{}, fmt.Errorf("entity %d: %w", id, physics.ErrStaleHandle)
	}
	rec := a.entities[id]
	pose, err := a.backend.Pose(rec.body)
	if err != nil {
		return Entity{}, err
	}
	return Entity{
		ID:         id,
		SpriteID:   rec.spriteID,
		X:          pose.X,
		Y:          pose.Y,
		Angle:      pose.Angle,
		HalfWidth:  rec.halfWidth,
		HalfHeight: rec.halfHeight,
		Body:       rec.body,
	}, nil
}

// hitTest returns the first entity, in creation order, containing the point.
func (a *Arena) hitTest(x, y float64) (int, bool) {
	for i, rec := range a.entities {
		if a.backend.TestPoint(rec.body, x, y) {
			return i, true
		}
	}
	return 0, false
}

func (a *Arena) close() {
	if a == nil || a.backend == nil {
		return
	}
	a.backend.Close()
	a.backend = nil
	a.entities = nil
}
