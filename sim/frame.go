package sim

import "math"

// SpriteFrame is one entity in screen space. Degrees are clockwise-positive
// as screens draw them.
type SpriteFrame struct {
	ScreenX         float64
	ScreenY         float64
	Degrees         float64
	PixelHalfWidth  float64
	PixelHalfHeight float64
	SpriteID        int
	Dragged         bool
}

// Frame is everything a renderer needs for one draw.
type Frame struct {
	ScreenWidth  float64
	ScreenHeight float64
	WorldWidth   float64
	WorldHeight  float64
	Sprites      []SpriteFrame
}

// Degrees converts a world angle (counter-clockwise radians) to screen
// degrees (clockwise).
func Degrees(angle float64) float64 {
	return -angle * 180 / math.Pi
}

// Frame snapshots the arena for rendering. It is empty before a build.
func (s *Simulation) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.arena == nil {
		return Frame{}
	}

	m := s.arena.mapper
	sw, sh := m.ScreenSize()
	f := Frame{
		ScreenWidth:  sw,
		ScreenHeight: sh,
		WorldWidth:   s.arena.worldWidth,
		WorldHeight:  s.arena.worldHeight,
	}
	dragged, dragging := s.drag.Target()

	entities := s.entitiesLocked()
	f.Sprites = make([]SpriteFrame, 0, len(entities))
	for _, e := range entities {
		x, y := m.ToScreen(e.X, e.Y)
		hw, hh := m.ScaleToScreen(e.HalfWidth, e.HalfHeight)
		f.Sprites = append(f.Sprites, SpriteFrame{
			ScreenX:         x,
			ScreenY:         y,
			Degrees:         Degrees(e.Angle),
			PixelHalfWidth:  hw,
			PixelHalfHeight: hh,
			SpriteID:        e.SpriteID,
			Dragged:         dragging && dragged == e.ID,
		})
	}
	return f
}
