// Package sim is the kaki-seed sandbox core: a bounded arena of rotating
// boxes stepped at a fixed rate, with a single-entity drag interaction.
package sim

import (
	"log"
	"math/rand/v2"
	"sync"

	"github.com/milk9111/kakip/physics"
)

// State is the arena lifecycle state.
type State int

const (
	Uninitialized State = iota
	Ready
	Stepping
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Stepping:
		return "stepping"
	default:
		return "uninitialized"
	}
}

// Simulation owns one arena and serializes every operation on it behind a
// single mutex; the backend is not reentrant.
type Simulation struct {
	mu       sync.Mutex
	settings Settings
	arena    *Arena
	drag     DragState
	state    State

	steps      uint64
	fixedSteps uint64
	extraTime  float64
}

func New(settings Settings) *Simulation {
	return &Simulation{settings: settings.withDefaults()}
}

func (s *Simulation) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// BuildArena replaces the current arena with a freshly populated one. On
// error the previous arena is left untouched.
func (s *Simulation) BuildArena(screenWidth, screenHeight float64, sprites []SpriteDesc, entityCount int, wallThickness float64) error {
	spec := ArenaSpec{
		ScreenWidth:   screenWidth,
		ScreenHeight:  screenHeight,
		Sprites:       sprites,
		EntityCount:   entityCount,
		WallThickness: wallThickness,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	arena, err := buildArena(spec, s.settings, s.newRand())
	if err != nil {
		log.Printf("Simulation: build arena failed: %v", err)
		return err
	}

	s.arena.close()
	s.arena = arena
	s.drag = Idle()
	s.state = Ready
	s.steps, s.fixedSteps, s.extraTime = 0, 0, 0
	log.Printf("Simulation: arena %.2fx%.2f built with %d entities (%s)",
		arena.worldWidth, arena.worldHeight, len(arena.entities), arena.backend.Kind())
	return nil
}

func (s *Simulation) newRand() *rand.Rand {
	if s.settings.Seed != 0 {
		return rand.New(rand.NewPCG(s.settings.Seed, s.settings.Seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Step advances the arena by one step with the configured parameters.
func (s *Simulation) Step() {
	s.StepWith(s.settings.Step)
}

// StepWith advances the arena by exactly one step of p.Dt seconds. It is a
// no-op before an arena is built.
func (s *Simulation) StepWith(p StepParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.arena == nil {
		return
	}
	s.arena.backend.Step(p.Dt, p.VelocityIterations, p.PositionIterations)
	s.steps++
	if p.Dt == s.settings.Step.Dt {
		s.fixedSteps++
	} else {
		s.extraTime += p.Dt
	}
	s.state = Stepping
}

// Steps is the number of steps taken since the arena was built.
func (s *Simulation) Steps() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps
}

// SimTime is the simulated time in seconds since the arena was built.
func (s *Simulation) SimTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.fixedSteps)*s.settings.Step.Dt + s.extraTime
}

func (s *Simulation) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HitTest returns the first entity, in creation order, whose box contains
// the world point.
func (s *Simulation) HitTest(worldX, worldY float64) (Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.arena == nil {
		return Entity{}, false
	}
	id, ok := s.arena.hitTest(worldX, worldY)
	if !ok {
		return Entity{}, false
	}
	e, err := s.arena.entity(id)
	if err != nil {
		log.Printf("Simulation: hit test entity %d: %v", id, err)
		return Entity{}, false
	}
	return e, true
}

// BeginDrag starts dragging the entity under the point. A miss leaves the
// drag state idle.
func (s *Simulation) BeginDrag(worldX, worldY float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginDragLocked(worldX, worldY)
}

func (s *Simulation) beginDragLocked(worldX, worldY float64) bool {
	if s.arena == nil {
		return false
	}
	id, ok := s.arena.hitTest(worldX, worldY)
	if !ok {
		return false
	}
	s.drag = Dragging(id)
	return true
}

// UpdateDrag teleports the dragged entity to the point, keeping its angle.
// The body's position is overwritten directly, so it may overlap neighbours
// during a fast drag.
func (s *Simulation) UpdateDrag(worldX, worldY float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateDragLocked(worldX, worldY)
}

func (s *Simulation) updateDragLocked(worldX, worldY float64) {
	id, ok := s.drag.Target()
	if !ok || s.arena == nil || id >= len(s.arena.entities) {
		return
	}
	body := s.arena.entities[id].body
	pose, err := s.arena.backend.Pose(body)
	if err != nil {
		log.Printf("Simulation: drag entity %d: %v", id, err)
		return
	}
	if err := s.arena.backend.SetTransform(body, worldX, worldY, pose.Angle); err != nil {
		log.Printf("Simulation: drag entity %d: %v", id, err)
	}
}

func (s *Simulation) EndDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag = Idle()
}

func (s *Simulation) Drag() DragState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag
}

// TouchDown maps a screen point into the world and begins a drag there.
func (s *Simulation) TouchDown(screenX, screenY float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.arena == nil {
		return false
	}
	return s.beginDragLocked(s.arena.mapper.ToWorld(screenX, screenY))
}

func (s *Simulation) TouchMove(screenX, screenY float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.arena == nil {
		return
	}
	s.updateDragLocked(s.arena.mapper.ToWorld(screenX, screenY))
}

func (s *Simulation) TouchUp() {
	s.EndDrag()
}

// Mapper returns the current arena's coordinate mapper.
func (s *Simulation) Mapper() (Mapper, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.arena == nil {
		return Mapper{}, false
	}
	return s.arena.mapper, true
}

// Extents returns the current world width and height.
func (s *Simulation) Extents() (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.arena == nil {
		return 0, 0, ErrNotReady
	}
	return s.arena.worldWidth, s.arena.worldHeight, nil
}

// Entities returns views of all entities in creation order.
func (s *Simulation) Entities() []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entitiesLocked()
}

func (s *Simulation) entitiesLocked() []Entity {
	if s.arena == nil {
		return nil
	}
	out := make([]Entity, 0, len(s.arena.entities))
	for i := range s.arena.entities {
		e, err := s.arena.entity(i)
		if err != nil {
			log.Printf("Simulation: entity %d: %v", i, err)
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *Simulation) Entity(id int) (Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.arena == nil {
		return Entity{}, false
	}
	e, err := s.arena.entity(id)
	if err != nil {
		return Entity{}, false
	}
	return e, true
}

// Backend exposes the backend kind of the current arena.
func (s *Simulation) Backend() (physics.Kind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.arena == nil {
		return "", false
	}
	return s.arena.backend.Kind(), true
}

// Reset destroys the arena and returns to Uninitialized.
func (s *Simulation) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arena.close()
	s.arena = nil
	s.drag = Idle()
	s.state = Uninitialized
	s.steps, s.fixedSteps, s.extraTime = 0, 0, 0
}

func (s *Simulation) Close() {
	s.Reset()
}
