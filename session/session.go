// Package session owns the lifecycle around one simulation: the drawing
// surface size, the selected sprite category and the periodic step task.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/milk9111/kakip/catalog"
	"github.com/milk9111/kakip/config"
	"github.com/milk9111/kakip/loop"
	"github.com/milk9111/kakip/sim"
)

// Phase is a touch phase delivered by the input host.
type Phase int

const (
	Down Phase = iota
	Move
	Up
)

type Option func(*Session)

// WithStepObserver registers fn to receive a frame after every step. It runs
// on the step goroutine and must not call back into the Session, whose
// rebuilds wait for the in-flight step.
func WithStepObserver(fn func(sim.Frame)) Option {
	return func(s *Session) {
		s.onStep = fn
	}
}

type Session struct {
	ctx    context.Context
	onStep func(sim.Frame)

	mu       sync.Mutex
	sim      *sim.Simulation
	cfg      config.Config
	catalog  *catalog.Catalog
	category int
	screenW  float64
	screenH  float64
	task     *loop.Task
}

// New creates a session. Nothing is built until the first SurfaceChanged.
func New(ctx context.Context, cfg config.Config, cat *catalog.Catalog, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}
	s := &Session{
		ctx:     ctx,
		sim:     sim.New(settings),
		cfg:     cfg,
		catalog: cat,
	}
	if i, ok := cat.Index(cfg.Catalog.Category); ok {
		s.category = i
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sim returns the current simulation. It changes when ApplyConfig swaps
// backend settings.
func (s *Session) Sim() *sim.Simulation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim
}

// SurfaceChanged rebuilds the arena for a new surface size and starts
// stepping.
func (s *Session) SurfaceChanged(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screenW, s.screenH = float64(width), float64(height)
	return s.rebuildLocked()
}

// SurfaceDestroyed stops stepping. The arena is kept until the next
// SurfaceChanged.
func (s *Session) SurfaceDestroyed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task.Cancel()
	s.task = nil
	s.screenW, s.screenH = 0, 0
}

// SetCategory switches the sprite category and rebuilds the arena.
func (s *Session) SetCategory(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.catalog.Category(i); err != nil {
		return err
	}
	prev := s.category
	s.category = i
	if err := s.rebuildLocked(); err != nil {
		s.category = prev
		return err
	}
	return nil
}

func (s *Session) SetCategoryByName(name string) error {
	s.mu.Lock()
	i, ok := s.catalog.Index(name)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", catalog.ErrUnknownCategory, name)
	}
	return s.SetCategory(i)
}

// Category returns the selected category index and name.
func (s *Session) Category() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, err := s.catalog.Category(s.category)
	if err != nil {
		return s.category, ""
	}
	return s.category, cat.Name
}

func (s *Session) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, s.catalog.Len())
	for _, c := range s.catalog.Categories {
		names = append(names, c.Name)
	}
	return names
}

// CategorySprites returns the sprites of the selected category.
func (s *Session) CategorySprites() []catalog.Sprite {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, err := s.catalog.Category(s.category)
	if err != nil {
		return nil
	}
	return cat.Sprites
}

// Reset rebuilds the arena with the current category.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildLocked()
}

// ApplyConfig replaces the configuration and catalog, then rebuilds. A nil
// catalog keeps the current one.
func (s *Session) ApplyConfig(cfg config.Config, cat *catalog.Catalog) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cat == nil {
		cat = s.catalog
	}
	if err := cat.Validate(); err != nil {
		return err
	}

	s.task.Cancel()
	s.task = nil
	if settings != s.sim.Settings() {
		s.sim.Close()
		s.sim = sim.New(settings)
	}
	s.cfg = cfg
	s.catalog = cat
	if i, ok := cat.Index(cfg.Catalog.Category); ok {
		s.category = i
	} else if s.category >= cat.Len() {
		s.category = 0
	}
	return s.rebuildLocked()
}

// Touch routes one screen-space input event into the simulation.
func (s *Session) Touch(phase Phase, x, y float64) {
	sm := s.Sim()
	switch phase {
	case Down:
		sm.TouchDown(x, y)
	case Move:
		sm.TouchMove(x, y)
	case Up:
		sm.TouchUp()
	}
}

func (s *Session) Frame() sim.Frame {
	return s.Sim().Frame()
}

// Running reports whether the step task is active.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task != nil
}

// Close stops stepping and releases the arena.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task.Cancel()
	s.task = nil
	s.sim.Close()
}

// rebuildLocked cancels stepping before touching the backend, builds a new
// arena and restarts stepping. A failed build keeps the previous arena.
func (s *Session) rebuildLocked() error {
	if s.screenW <= 0 || s.screenH <= 0 {
		return nil
	}
	s.task.Cancel()
	s.task = nil

	cat, err := s.catalog.Category(s.category)
	if err != nil {
		return err
	}
	buildErr := s.sim.BuildArena(s.screenW, s.screenH, cat.Descriptors(), s.cfg.Arena.EntityCount, s.cfg.Arena.WallThickness)
	if buildErr != nil {
		log.Printf("Session: rebuild %q: %v", cat.Name, buildErr)
	}
	if s.sim.State() != sim.Uninitialized {
		s.startLocked()
	}
	return buildErr
}

func (s *Session) startLocked() {
	sm := s.sim
	onStep := s.onStep
	s.task = loop.Start(s.ctx, s.cfg.Interval(), func() {
		sm.Step()
		if onStep != nil {
			onStep(sm.Frame())
		}
	})
}
